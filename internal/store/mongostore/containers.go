// internal/store/mongostore/containers.go
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
	"container-yard-api-server/internal/store"
)

type ContainerStore struct {
	coll *mongo.Collection
}

func (s *ContainerStore) List(ctx context.Context, filter store.ContainerFilter) (store.ContainerPage, error) {
	f := filter.Normalize()
	q := containerQuery(f)

	total, err := s.coll.CountDocuments(ctx, q)
	if err != nil {
		return store.ContainerPage{}, fmt.Errorf("count containers: %w", err)
	}

	containers := []models.Container{}
	if offset := f.Offset(); int64(offset) < total {
		opts := options.Find().
			SetSort(sortByCreation).
			SetSkip(int64(offset)).
			SetLimit(int64(f.Limit))
		containers, err = s.find(ctx, q, opts)
		if err != nil {
			return store.ContainerPage{}, err
		}
	}

	return store.ContainerPage{
		Containers: containers,
		Total:      int(total),
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: store.TotalPages(int(total), f.Limit),
	}, nil
}

func (s *ContainerStore) All(ctx context.Context) ([]models.Container, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(sortByCreation))
}

func (s *ContainerStore) find(ctx context.Context, q bson.M, opts *options.FindOptions) ([]models.Container, error) {
	cursor, err := s.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("find containers: %w", err)
	}
	defer cursor.Close(ctx)

	containers := []models.Container{}
	if err := cursor.All(ctx, &containers); err != nil {
		return nil, fmt.Errorf("decode containers: %w", err)
	}
	return containers, nil
}

func (s *ContainerStore) Get(ctx context.Context, id string) (models.Container, error) {
	var c models.Container
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		return models.Container{}, notFound(err, "container %s not found", id)
	}
	return c, nil
}

func (s *ContainerStore) FindByNumber(ctx context.Context, number string) (models.Container, error) {
	var c models.Container
	err := s.coll.FindOne(ctx, presentQuery(number)).Decode(&c)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Container{}, err
	}

	latest := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err = s.coll.FindOne(ctx, bson.M{"containerNumber": number}, latest).Decode(&c)
	if err != nil {
		return models.Container{}, notFound(err, "container %s not found", number)
	}
	return c, nil
}

func (s *ContainerStore) Insert(ctx context.Context, c models.Container) (models.Container, error) {
	c.ID = uuid.NewString()
	if c.Status.Present() {
		c.ActiveNumber = c.ContainerNumber
	}

	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Container{}, apperr.Conflict("container %s is already in the yard", c.ContainerNumber)
		}
		return models.Container{}, fmt.Errorf("insert container: %w", err)
	}
	return c, nil
}

func (s *ContainerStore) Update(ctx context.Context, id string, patch models.ContainerPatch, now time.Time) (models.Container, error) {
	return s.findAndUpdate(ctx, bson.M{"_id": id}, containerPatchUpdate(patch, now), id)
}

// Exit is a single conditional FindOneAndUpdate: of two concurrent exits
// only one can still match status IN_PARK.
func (s *ContainerStore) Exit(ctx context.Context, number string, exit models.ExitUpdate, now time.Time) (models.Container, error) {
	var c models.Container
	err := s.coll.FindOneAndUpdate(ctx,
		exitQuery(number, exit.RecordID, exit.Source),
		exitUpdate(exit, now),
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Container{}, fmt.Errorf("exit container: %w", err)
	}

	current, err := s.FindByNumber(ctx, number)
	if err != nil {
		return models.Container{}, err
	}
	if current.Status != models.StatusInPark {
		return models.Container{}, apperr.InvalidState("container %s is not in the park (status %s)", number, current.Status)
	}
	if exit.RecordID != "" && current.ID != exit.RecordID {
		return models.Container{}, apperr.InvalidState("container %s record %s is no longer in the park", number, exit.RecordID)
	}
	return models.Container{}, apperr.InvalidState("container %s was not brought in by a client", number)
}

func (s *ContainerStore) AddPhoto(ctx context.Context, id string, photo models.MediaPointer, now time.Time) (models.Container, error) {
	update := bson.M{
		"$push": bson.M{"photos": photo},
		"$set":  bson.M{"updatedAt": now},
	}
	return s.findAndUpdate(ctx, bson.M{"_id": id}, update, id)
}

func (s *ContainerStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete container: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("container %s not found", id)
	}
	return nil
}

func (s *ContainerStore) findAndUpdate(ctx context.Context, q, update bson.M, id string) (models.Container, error) {
	var c models.Container
	err := s.coll.FindOneAndUpdate(ctx, q, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return models.Container{}, notFound(err, "container %s not found", id)
	}
	return c, nil
}
