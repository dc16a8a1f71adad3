package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"noteshelf/dto"
	"noteshelf/model"
	"noteshelf/repository"
	"noteshelf/services"
	"noteshelf/storage"
	"noteshelf/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ProfileService struct {
	Users  repository.UserRepository
	Notes  repository.NoteRepository
	Blobs  storage.BlobStore
	Logger *zap.Logger
	Now    func() time.Time
}

func NewProfileService(users repository.UserRepository, notes repository.NoteRepository, blobs storage.BlobStore, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		Users:  users,
		Notes:  notes,
		Blobs:  blobs,
		Logger: logger,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// UpdateProfile applies the non-empty fields of upd.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, upd dto.ProfileUpdate) (*model.User, error) {
	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NotFoundError("User not found")
		}
		return nil, utils.ServerError("Failed to update profile", err)
	}

	if username := strings.TrimSpace(upd.Username); username != "" && username != user.Username {
		if err := s.ensureFree(ctx, s.Users.FindUserByUsername, username, user.ID, "Username already taken"); err != nil {
			return nil, err
		}
		user.Username = username
	}
	if email := normalizeEmail(upd.Email); email != "" && email != user.Email {
		if !looksLikeEmail(email) {
			return nil, utils.ValidationError("Email must be a valid email address")
		}
		if err := s.ensureFree(ctx, s.Users.FindUserByEmail, email, user.ID, "Email already in use"); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if gender := strings.TrimSpace(upd.Gender); gender != "" {
		user.Gender = gender
	}
	if dob := strings.TrimSpace(upd.DOB); dob != "" {
		parsed, err := parseDOB(dob)
		if err != nil {
			return nil, utils.ValidationError("Date of birth must be in YYYY-MM-DD format")
		}
		user.DOB = &parsed
	}
	if strings.TrimSpace(upd.NewPassword) != "" {
		hashed, err := services.HashPassword(upd.NewPassword)
		if err != nil {
			return nil, utils.ServerError("Failed to update profile", err)
		}
		user.Password = hashed
	}

	var previousAvatar string
	if upd.Avatar != nil {
		ref, err := s.storeAvatar(ctx, upd.Avatar)
		if err != nil {
			return nil, err
		}
		previousAvatar = user.ProfilePic
		user.ProfilePic = ref
	}

	user.UpdatedAt = s.Now()
	if err := s.Users.SaveUser(ctx, user); err != nil {
		if upd.Avatar != nil {
			s.removeBlob(ctx, user.ProfilePic)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.ConflictError("Username or email already in use")
		}
		return nil, utils.ServerError("Failed to update profile", err)
	}

	if previousAvatar != "" {
		s.removeBlob(ctx, previousAvatar)
	}
	return user, nil
}

func (s *ProfileService) ensureFree(ctx context.Context, find func(context.Context, string) (*model.User, error), value string, selfID uint, msg string) error {
	other, err := find(ctx, value)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return utils.ServerError("Failed to update profile", err)
	case other.ID != selfID:
		return utils.ConflictError(msg)
	}
	return nil
}

func (s *ProfileService) storeAvatar(ctx context.Context, upload *dto.Upload) (string, error) {
	data, err := services.PrepareAvatar(upload.Data)
	if err != nil {
		if errors.Is(err, services.ErrNotAnImage) {
			return "", utils.ValidationError("Avatar must be an image")
		}
		return "", utils.ServerError("Failed to process avatar", err)
	}
	ref, err := s.Blobs.Put(ctx, "avatar.jpg", data)
	if err != nil {
		return "", utils.ServerError("Failed to store avatar", err)
	}
	return ref, nil
}

// DeleteAccount removes the avatar and attachment files, then the user and
// its notes. File removal failures are logged only.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID uint) error {
	user, err := s.Users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NotFoundError("User not found")
		}
		return utils.ServerError("Failed to delete account", err)
	}

	attachments, err := s.Notes.ListAttachments(ctx, userID)
	if err != nil {
		s.Logger.Warn("listing attachments failed", zap.Uint("user_id", userID), zap.Error(err))
	}

	if err := s.Users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NotFoundError("User not found")
		}
		return utils.ServerError("Failed to delete account", err)
	}

	s.removeBlob(ctx, user.ProfilePic)
	for _, ref := range attachments {
		s.removeBlob(ctx, ref)
	}
	s.Logger.Info("account deleted", zap.Uint("user_id", userID))
	return nil
}

func (s *ProfileService) removeBlob(ctx context.Context, ref string) {
	removeBlob(ctx, s.Blobs, s.Logger, ref)
}

func removeBlob(ctx context.Context, blobs storage.BlobStore, logger *zap.Logger, ref string) {
	if ref == "" {
		return
	}
	if err := blobs.Delete(ctx, ref); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("removing stored file failed", zap.String("ref", ref), zap.Error(err))
	}
}

func parseDOB(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	// clients sometimes send a full ISO timestamp
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}

var fieldValidator = validator.New()

func looksLikeEmail(s string) bool {
	return fieldValidator.Var(s, "email") == nil
}
