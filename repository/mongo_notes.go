package repository

import (
	"context"
	"errors"
	"fmt"

	"noteshelf/model"
	"noteshelf/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoNotesRepo struct {
	Database        *mongo.Database
	MongoCollection *mongo.Collection
}

func NewMongoNotesRepo(db *mongo.Database) *MongoNotesRepo {
	return &MongoNotesRepo{
		Database:        db,
		MongoCollection: db.Collection(notesCollection),
	}
}

func (r *MongoNotesRepo) CreateNote(ctx context.Context, note *model.Note) error {
	timer := utils.TrackDBOperation("insert", notesCollection)
	defer timer.ObserveDuration()

	id, err := nextSequence(ctx, r.Database, notesCollection)
	if err != nil {
		return err
	}
	note.ID = id
	if note.Tags == nil {
		note.Tags = model.Tags{}
	}
	if _, err := r.MongoCollection.InsertOne(ctx, note); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *MongoNotesRepo) ListNotes(ctx context.Context, userID uint) ([]model.Note, error) {
	timer := utils.TrackDBOperation("find", notesCollection)
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cursor, err := r.MongoCollection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := make([]model.Note, 0)
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

func (r *MongoNotesRepo) GetNote(ctx context.Context, id, userID uint) (*model.Note, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user_id": userID})
}

func (r *MongoNotesRepo) GetPublicNote(ctx context.Context, id uint) (*model.Note, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoNotesRepo) findOne(ctx context.Context, filter bson.M) (*model.Note, error) {
	timer := utils.TrackDBOperation("find", notesCollection)
	defer timer.ObserveDuration()

	var note model.Note
	err := r.MongoCollection.FindOne(ctx, filter).Decode(&note)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find note: %w", err)
	}
	return &note, nil
}

func (r *MongoNotesRepo) SaveNote(ctx context.Context, note *model.Note) error {
	timer := utils.TrackDBOperation("update", notesCollection)
	defer timer.ObserveDuration()

	if note.Tags == nil {
		note.Tags = model.Tags{}
	}
	update := bson.M{"$set": bson.M{
		"title":       note.Title,
		"content":     note.Content,
		"tags":        note.Tags,
		"attachment":  note.Attachment,
		"is_pinned":   note.IsPinned,
		"is_favorite": note.IsFavorite,
		"updated_at":  note.UpdatedAt,
	}}
	res, err := r.MongoCollection.UpdateOne(ctx, bson.M{"_id": note.ID, "user_id": note.UserID}, update)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotesRepo) DeleteNote(ctx context.Context, id, userID uint) error {
	timer := utils.TrackDBOperation("delete", notesCollection)
	defer timer.ObserveDuration()

	res, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoNotesRepo) ListAttachments(ctx context.Context, userID uint) ([]string, error) {
	timer := utils.TrackDBOperation("find", notesCollection)
	defer timer.ObserveDuration()

	filter := bson.M{"user_id": userID, "attachment": bson.M{"$nin": bson.A{"", nil}}}
	opts := options.Find().SetProjection(bson.M{"attachment": 1})
	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer cursor.Close(ctx)

	var refs []string
	for cursor.Next(ctx) {
		var doc struct {
			Attachment string `bson:"attachment"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode attachment: %w", err)
		}
		refs = append(refs, doc.Attachment)
	}
	return refs, cursor.Err()
}
