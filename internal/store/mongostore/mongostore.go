// Package mongostore persists the yard in MongoDB. Documents use string ids
// (UUIDs) so that ids look the same whichever driver is configured.
package mongostore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
)

const (
	containersCollection = "containers"
	usersCollection      = "users"
)

// New wires every collection of db behind the store interfaces.
func New(db *mongo.Database) store.Stores {
	return store.Stores{
		Containers: &ContainerStore{coll: db.Collection(containersCollection)},
		References: store.References{
			ShippingLines: NewReferenceStore(db, models.KindShippingLine),
			IsoCodes:      NewReferenceStore(db, models.KindIsoCode),
			Clients:       NewReferenceStore(db, models.KindClient),
		},
		Users: &UserStore{coll: db.Collection(usersCollection)},
	}
}

// EnsureIndexes creates the indexes the stores rely on. The unique sparse
// index on activeNumber is what keeps present container numbers unique.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(containersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "activeNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_active_number"),
		},
		{Keys: bson.D{{Key: "containerNumber", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "shippingLineId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("container indexes: %w", err)
	}

	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_username"),
	})
	if err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	return nil
}

// notFound turns mongo.ErrNoDocuments into an apperr not found error.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(format, args...)
	}
	return err
}

var sortByCreation = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
