package repository

import (
	"context"
	"errors"
	"fmt"

	"noteshelf/model"
	"noteshelf/utils"

	"gorm.io/gorm"
)

type NotesRepo struct {
	DB *gorm.DB
}

func NewNotesRepo(db *gorm.DB) *NotesRepo {
	return &NotesRepo{DB: db}
}

func (r *NotesRepo) CreateNote(ctx context.Context, note *model.Note) error {
	timer := utils.TrackDBOperation("insert", "notes")
	defer timer.ObserveDuration()

	if note.Tags == nil {
		note.Tags = model.Tags{}
	}
	if err := r.DB.WithContext(ctx).Create(note).Error; err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (r *NotesRepo) ListNotes(ctx context.Context, userID uint) ([]model.Note, error) {
	timer := utils.TrackDBOperation("find", "notes")
	defer timer.ObserveDuration()

	notes := make([]model.Note, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (r *NotesRepo) GetNote(ctx context.Context, id, userID uint) (*model.Note, error) {
	timer := utils.TrackDBOperation("find", "notes")
	defer timer.ObserveDuration()

	var note model.Note
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find note: %w", err)
	}
	return &note, nil
}

func (r *NotesRepo) GetPublicNote(ctx context.Context, id uint) (*model.Note, error) {
	timer := utils.TrackDBOperation("find", "notes")
	defer timer.ObserveDuration()

	var note model.Note
	err := r.DB.WithContext(ctx).First(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find note: %w", err)
	}
	return &note, nil
}

// SaveNote overwrites the stored row matching the note's id and owner.
func (r *NotesRepo) SaveNote(ctx context.Context, note *model.Note) error {
	timer := utils.TrackDBOperation("update", "notes")
	defer timer.ObserveDuration()

	if note.Tags == nil {
		note.Tags = model.Tags{}
	}
	res := r.DB.WithContext(ctx).
		Model(&model.Note{}).
		Where("id = ? AND user_id = ?", note.ID, note.UserID).
		Select("title", "content", "tags", "attachment", "is_pinned", "is_favorite", "updated_at").
		Updates(note)
	if res.Error != nil {
		return fmt.Errorf("update note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotesRepo) DeleteNote(ctx context.Context, id, userID uint) error {
	timer := utils.TrackDBOperation("delete", "notes")
	defer timer.ObserveDuration()

	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Note{})
	if res.Error != nil {
		return fmt.Errorf("delete note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotesRepo) ListAttachments(ctx context.Context, userID uint) ([]string, error) {
	timer := utils.TrackDBOperation("find", "notes")
	defer timer.ObserveDuration()

	var refs []string
	err := r.DB.WithContext(ctx).
		Model(&model.Note{}).
		Where("user_id = ? AND attachment <> ''", userID).
		Pluck("attachment", &refs).Error
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return refs, nil
}
