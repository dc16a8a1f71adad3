package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"noteshelf/model"
	"noteshelf/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUserRepo struct {
	Database        *mongo.Database
	MongoCollection *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{
		Database:        db,
		MongoCollection: db.Collection(usersCollection),
	}
}

func (r *MongoUserRepo) CreateUser(ctx context.Context, user *model.User) error {
	timer := utils.TrackDBOperation("insert", usersCollection)
	defer timer.ObserveDuration()

	id, err := nextSequence(ctx, r.Database, usersCollection)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.MongoCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *MongoUserRepo) FindUserByID(ctx context.Context, id uint) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepo) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepo) FindUserByResetToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"reset_password_token": token})
}

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	timer := utils.TrackDBOperation("find", usersCollection)
	defer timer.ObserveDuration()

	var user model.User
	err := r.MongoCollection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepo) SaveUser(ctx context.Context, user *model.User) error {
	timer := utils.TrackDBOperation("update", usersCollection)
	defer timer.ObserveDuration()

	user.UpdatedAt = time.Now().UTC()
	res, err := r.MongoCollection.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("save user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes owned notes first so a failure never leaves orphans
// readable through the public path.
func (r *MongoUserRepo) DeleteUser(ctx context.Context, id uint) error {
	timer := utils.TrackDBOperation("delete", usersCollection)
	defer timer.ObserveDuration()

	if _, err := r.Database.Collection(notesCollection).DeleteMany(ctx, bson.M{"user_id": id}); err != nil {
		return fmt.Errorf("delete notes of user: %w", err)
	}
	res, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepo) Ping(ctx context.Context) error {
	return r.Database.Client().Ping(ctx, nil)
}
