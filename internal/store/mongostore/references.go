// internal/store/mongostore/references.go
package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
)

// ReferenceStore keeps one kind of reference entity in the collection of the
// same name.
type ReferenceStore struct {
	kind models.ReferenceKind
	coll *mongo.Collection
}

func NewReferenceStore(db *mongo.Database, kind models.ReferenceKind) *ReferenceStore {
	return &ReferenceStore{kind: kind, coll: db.Collection(string(kind))}
}

func (s *ReferenceStore) Kind() models.ReferenceKind { return s.kind }

func (s *ReferenceStore) List(ctx context.Context) ([]models.Reference, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(sortByCreation))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.kind, err)
	}
	defer cursor.Close(ctx)

	refs := []models.Reference{}
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.kind, err)
	}
	return refs, nil
}

func (s *ReferenceStore) Get(ctx context.Context, id string) (models.Reference, error) {
	var ref models.Reference
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ref); err != nil {
		return models.Reference{}, notFound(err, "%s %s not found", s.kind.Label(), id)
	}
	return ref, nil
}

func (s *ReferenceStore) Create(ctx context.Context, ref models.Reference) (models.Reference, error) {
	ref.ID = uuid.NewString()
	if _, err := s.coll.InsertOne(ctx, ref); err != nil {
		return models.Reference{}, fmt.Errorf("insert %s: %w", s.kind.Label(), err)
	}
	return ref, nil
}

func (s *ReferenceStore) Update(ctx context.Context, id string, patch models.ReferencePatch, now time.Time) (models.Reference, error) {
	var ref models.Reference
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, referencePatchUpdate(patch, now),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&ref)
	if err != nil {
		return models.Reference{}, notFound(err, "%s %s not found", s.kind.Label(), id)
	}
	return ref, nil
}

func (s *ReferenceStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.kind.Label(), err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("%s %s not found", s.kind.Label(), id)
	}
	return nil
}
