package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"noteshelf/dto"
	"noteshelf/export"
	"noteshelf/model"
	"noteshelf/repository"
	"noteshelf/storage"
	"noteshelf/utils"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	maxTitleLength = 255
	maxTags        = 20
	maxTagLength   = 50
)

type NotesService struct {
	Notes  repository.NoteRepository
	Blobs  storage.BlobStore
	Logger *zap.Logger
	Now    func() time.Time

	policy *bluemonday.Policy
}

func NewNotesService(notes repository.NoteRepository, blobs storage.BlobStore, logger *zap.Logger) *NotesService {
	return &NotesService{
		Notes:  notes,
		Blobs:  blobs,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
		policy: bluemonday.UGCPolicy(),
	}
}

func (svc *NotesService) sanitize(content string) string {
	return strings.TrimSpace(svc.policy.Sanitize(content))
}

func normalizeTags(tags []string) ([]string, error) {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if utf8.RuneCountInString(trimmed) > maxTagLength {
			return nil, utils.ValidationError("Tags must be at most 50 characters")
		}
		normalized = append(normalized, trimmed)
	}
	if len(normalized) > maxTags {
		return nil, utils.ValidationError("A note can have at most 20 tags")
	}
	return normalized, nil
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) > maxTitleLength {
		return utils.ValidationError("Title must be at most 255 characters")
	}
	return nil
}

func (svc *NotesService) Create(ctx context.Context, userID uint, in dto.NoteInput) (*model.Note, error) {
	title := strings.TrimSpace(in.Title)
	content := svc.sanitize(in.Content)
	if title == "" || content == "" {
		return nil, utils.ValidationError("Title and content are required")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	now := svc.Now()
	note := &model.Note{
		Title:     title,
		Content:   content,
		Tags:      tags,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.IsPinned != nil {
		note.IsPinned = *in.IsPinned
	}
	if in.IsFavorite != nil {
		note.IsFavorite = *in.IsFavorite
	}
	if in.Attachment != nil {
		ref, err := svc.storeAttachment(ctx, in.Attachment)
		if err != nil {
			return nil, err
		}
		note.Attachment = ref
	}

	if err := svc.Notes.CreateNote(ctx, note); err != nil {
		removeBlob(ctx, svc.Blobs, svc.Logger, note.Attachment)
		return nil, utils.ServerError("Failed to create note", err)
	}

	utils.TrackNoteOperation("create")
	return note, nil
}

func (svc *NotesService) List(ctx context.Context, userID uint) ([]model.Note, error) {
	notes, err := svc.Notes.ListNotes(ctx, userID)
	if err != nil {
		return nil, utils.ServerError("Failed to fetch notes", err)
	}
	utils.TrackNoteOperation("list")
	return notes, nil
}

// Stats summarizes the caller's notes.
func (svc *NotesService) Stats(ctx context.Context, userID uint) (*dto.NoteStats, error) {
	notes, err := svc.Notes.ListNotes(ctx, userID)
	if err != nil {
		return nil, utils.ServerError("Failed to fetch notes", err)
	}

	stats := &dto.NoteStats{Total: len(notes), TagCounts: map[string]int{}}
	for i := range notes {
		n := &notes[i]
		if n.IsPinned {
			stats.Pinned++
		}
		if n.IsFavorite {
			stats.Favorite++
		}
		if n.Attachment != "" {
			stats.WithFiles++
		}
		for _, tag := range n.Tags {
			stats.TagCounts[strings.ToLower(tag)]++
		}
	}
	if len(notes) > 0 {
		// list is ordered by modification time
		last := notes[0].UpdatedAt
		stats.LastEdited = &last
	}
	return stats, nil
}

// Update applies the supplied fields. Empty strings leave the stored value
// in place; booleans and tags change only when present. The modification
// time is always refreshed.
func (svc *NotesService) Update(ctx context.Context, userID, noteID uint, in dto.NoteInput) (*model.Note, error) {
	note, err := svc.Notes.GetNote(ctx, noteID, userID)
	if err != nil {
		return nil, svc.lookupError(err)
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		note.Title = title
	}
	if strings.TrimSpace(in.Content) != "" {
		content := svc.sanitize(in.Content)
		if content == "" {
			return nil, utils.ValidationError("Content cannot be empty")
		}
		note.Content = content
	}
	if in.TagsSet {
		tags, err := normalizeTags(in.Tags)
		if err != nil {
			return nil, err
		}
		note.Tags = tags
	}
	if in.IsPinned != nil {
		note.IsPinned = *in.IsPinned
	}
	if in.IsFavorite != nil {
		note.IsFavorite = *in.IsFavorite
	}

	var previousAttachment string
	if in.Attachment != nil {
		ref, err := svc.storeAttachment(ctx, in.Attachment)
		if err != nil {
			return nil, err
		}
		previousAttachment = note.Attachment
		note.Attachment = ref
	}

	note.UpdatedAt = svc.Now()
	if err := svc.Notes.SaveNote(ctx, note); err != nil {
		if in.Attachment != nil {
			removeBlob(ctx, svc.Blobs, svc.Logger, note.Attachment)
		}
		return nil, svc.lookupError(err)
	}

	removeBlob(ctx, svc.Blobs, svc.Logger, previousAttachment)
	utils.TrackNoteOperation("update")
	return note, nil
}

func (svc *NotesService) Delete(ctx context.Context, userID, noteID uint) error {
	note, err := svc.Notes.GetNote(ctx, noteID, userID)
	if err != nil {
		return svc.lookupError(err)
	}
	if err := svc.Notes.DeleteNote(ctx, noteID, userID); err != nil {
		return svc.lookupError(err)
	}

	removeBlob(ctx, svc.Blobs, svc.Logger, note.Attachment)
	utils.TrackNoteOperation("delete")
	return nil
}

// PublicRead returns any note by id, without an owner check.
func (svc *NotesService) PublicRead(ctx context.Context, noteID uint) (*model.Note, error) {
	note, err := svc.Notes.GetPublicNote(ctx, noteID)
	if err != nil {
		return nil, svc.lookupError(err)
	}
	utils.TrackNoteOperation("public_read")
	return note, nil
}

// Export renders a note owned by userID.
func (svc *NotesService) Export(ctx context.Context, userID, noteID uint, format export.Format) (export.Rendered, error) {
	note, err := svc.Notes.GetNote(ctx, noteID, userID)
	if err != nil {
		return export.Rendered{}, svc.lookupError(err)
	}
	return svc.render(note, format)
}

// PublicExport renders any note by id.
func (svc *NotesService) PublicExport(ctx context.Context, noteID uint, format export.Format) (export.Rendered, error) {
	note, err := svc.Notes.GetPublicNote(ctx, noteID)
	if err != nil {
		return export.Rendered{}, svc.lookupError(err)
	}
	return svc.render(note, format)
}

var renderFailures = map[export.Format]string{
	export.FormatPDF:  "Failed to generate PDF",
	export.FormatDOCX: "Failed to generate Word document",
	export.FormatText: "Failed to generate text file",
}

func (svc *NotesService) render(note *model.Note, format export.Format) (export.Rendered, error) {
	out, err := export.Render(format, export.Document{
		Title:     note.Title,
		Content:   note.Content,
		UpdatedAt: note.UpdatedAt,
	})
	utils.TrackExport(string(format), err == nil)
	if err != nil {
		msg, ok := renderFailures[format]
		if !ok {
			msg = "Failed to export note"
		}
		return export.Rendered{}, utils.ServerError(msg, err)
	}
	return out, nil
}

func (svc *NotesService) storeAttachment(ctx context.Context, upload *dto.Upload) (string, error) {
	ref, err := svc.Blobs.Put(ctx, upload.Filename, upload.Data)
	if err != nil {
		return "", utils.ServerError("Failed to store attachment", err)
	}
	return ref, nil
}

func (svc *NotesService) lookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NotFoundError("Note not found")
	}
	return utils.ServerError("Failed to access note", err)
}
