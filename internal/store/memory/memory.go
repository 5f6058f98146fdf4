// Package memory is the in-process store driver. Every collection lives in a
// slice guarded by its own lock; nothing survives a restart.
package memory

import (
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
)

type DB struct {
	Containers    *ContainerStore
	ShippingLines *ReferenceStore
	IsoCodes      *ReferenceStore
	Clients       *ReferenceStore
	Users         *UserStore
}

func New() *DB {
	return &DB{
		Containers:    NewContainerStore(),
		ShippingLines: NewReferenceStore(models.KindShippingLine),
		IsoCodes:      NewReferenceStore(models.KindIsoCode),
		Clients:       NewReferenceStore(models.KindClient),
		Users:         NewUserStore(),
	}
}

// Stores exposes the collections behind the store interfaces.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Containers: db.Containers,
		References: store.References{
			ShippingLines: db.ShippingLines,
			IsoCodes:      db.IsoCodes,
			Clients:       db.Clients,
		},
		Users: db.Users,
	}
}

// Reset empties every collection and restarts id allocation.
func (db *DB) Reset() {
	db.Containers.Reset()
	db.ShippingLines.Reset()
	db.IsoCodes.Reset()
	db.Clients.Reset()
	db.Users.Reset()
}
