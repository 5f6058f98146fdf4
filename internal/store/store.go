// Package store defines the persistence contracts of the yard. The memory
// package backs development and tests, mongostore backs production; both must
// behave identically behind these interfaces.
package store

import (
	"context"
	"time"

	"container-yard-api-server/internal/models"
)

type ContainerStore interface {
	List(ctx context.Context, filter ContainerFilter) (ContainerPage, error)
	// All returns every record, for aggregation.
	All(ctx context.Context) ([]models.Container, error)
	Get(ctx context.Context, id string) (models.Container, error)
	// FindByNumber returns the present record for number if there is one,
	// otherwise the most recently created record.
	FindByNumber(ctx context.Context, number string) (models.Container, error)
	// Insert assigns the id. It fails with a conflict when a present record
	// already carries the same container number.
	Insert(ctx context.Context, c models.Container) (models.Container, error)
	Update(ctx context.Context, id string, patch models.ContainerPatch, now time.Time) (models.Container, error)
	// Exit moves the IN_PARK record of number to OUT in one atomic step.
	// Client exits only match records that entered through the client gate.
	Exit(ctx context.Context, number string, exit models.ExitUpdate, now time.Time) (models.Container, error)
	AddPhoto(ctx context.Context, id string, photo models.MediaPointer, now time.Time) (models.Container, error)
	Delete(ctx context.Context, id string) error
}

type ReferenceStore interface {
	Kind() models.ReferenceKind
	List(ctx context.Context) ([]models.Reference, error)
	Get(ctx context.Context, id string) (models.Reference, error)
	// Create assigns the id.
	Create(ctx context.Context, ref models.Reference) (models.Reference, error)
	Update(ctx context.Context, id string, patch models.ReferencePatch, now time.Time) (models.Reference, error)
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	// Create assigns the id and fails with a conflict on a duplicate username.
	Create(ctx context.Context, u models.User) (models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error)
	Delete(ctx context.Context, id string) error
}

// References groups the three reference collections.
type References struct {
	ShippingLines ReferenceStore
	IsoCodes      ReferenceStore
	Clients       ReferenceStore
}

// ByKind returns the store for kind, nil for an unknown kind.
func (r References) ByKind(kind models.ReferenceKind) ReferenceStore {
	switch kind {
	case models.KindShippingLine:
		return r.ShippingLines
	case models.KindIsoCode:
		return r.IsoCodes
	case models.KindClient:
		return r.Clients
	}
	return nil
}

// Stores is everything a driver provides.
type Stores struct {
	Containers ContainerStore
	References References
	Users      UserStore
}
