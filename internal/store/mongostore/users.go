// internal/store/mongostore/users.go
package mongostore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/models"
)

type UserStore struct {
	coll *mongo.Collection
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(sortByCreation))
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return models.User{}, notFound(err, "user %s not found", id)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return models.User{}, notFound(err, "user %s not found", username)
	}
	return u, nil
}

func (s *UserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = uuid.NewString()
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, apperr.Conflict("username %s is already taken", u.Username)
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *UserStore) Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	update := userPatchUpdate(patch)
	if len(update["$set"].(bson.M)) == 0 {
		return s.Get(ctx, id)
	}

	var u models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, apperr.Conflict("username %s is already taken", *patch.Username)
		}
		return models.User{}, notFound(err, "user %s not found", id)
	}
	return u, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("user %s not found", id)
	}
	return nil
}
