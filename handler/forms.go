package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"noteshelf/dto"

	"github.com/gin-gonic/gin"
)

var errBadForm = errors.New("invalid form data")

func isForm(c *gin.Context) bool {
	ct := c.ContentType()
	return strings.HasPrefix(ct, "multipart/") || ct == "application/x-www-form-urlencoded"
}

// formFile reads the first uploaded file among names. A missing file yields
// nil without error.
func formFile(c *gin.Context, names ...string) (*dto.Upload, error) {
	for _, name := range names {
		fh, err := c.FormFile(name)
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return readUpload(fh)
	}
	return nil, nil
}

func readUpload(fh *multipart.FileHeader) (*dto.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &dto.Upload{
		Filename: fh.Filename,
		Data:     data,
	}, nil
}

// flexBool accepts true, "true", "1" and their false counterparts.
type flexBool struct {
	set   bool
	value bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		b.set, b.value = true, v
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errBadForm
	}
	v, err := parseBool(s)
	if err != nil {
		return err
	}
	b.set, b.value = true, v
	return nil
}

func (b flexBool) ptr() *bool {
	if !b.set {
		return nil
	}
	v := b.value
	return &v
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errBadForm
	}
	return v, nil
}

// flexTags accepts a JSON array or a string holding a JSON array.
type flexTags struct {
	set  bool
	tags []string
}

func (t *flexTags) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		t.set, t.tags = true, arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errBadForm
	}
	tags, err := parseTags([]string{s})
	if err != nil {
		return err
	}
	t.set, t.tags = true, tags
	return nil
}

// parseTags handles repeated form fields, a single JSON encoded array, or a
// single comma separated list.
func parseTags(values []string) ([]string, error) {
	if len(values) != 1 {
		return values, nil
	}
	v := strings.TrimSpace(values[0])
	if strings.HasPrefix(v, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(v), &tags); err != nil {
			return nil, errBadForm
		}
		return tags, nil
	}
	if v == "" {
		return []string{}, nil
	}
	return strings.Split(v, ","), nil
}

type noteRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       flexTags `json:"tags"`
	IsPinned   flexBool `json:"isPinned"`
	IsFavorite flexBool `json:"isFavorite"`
}

// bindNoteInput reads a note from either a JSON body or a form with an
// optional "attachment" file.
func bindNoteInput(c *gin.Context) (dto.NoteInput, error) {
	if !isForm(c) {
		var req noteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return dto.NoteInput{}, errBadForm
		}
		return dto.NoteInput{
			Title:      req.Title,
			Content:    req.Content,
			Tags:       req.Tags.tags,
			TagsSet:    req.Tags.set,
			IsPinned:   req.IsPinned.ptr(),
			IsFavorite: req.IsFavorite.ptr(),
		}, nil
	}

	in := dto.NoteInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
	}
	if values, ok := c.GetPostFormArray("tags"); ok {
		tags, err := parseTags(values)
		if err != nil {
			return dto.NoteInput{}, err
		}
		in.Tags, in.TagsSet = tags, true
	}
	for field, dst := range map[string]**bool{"isPinned": &in.IsPinned, "isFavorite": &in.IsFavorite} {
		if raw, ok := c.GetPostForm(field); ok {
			v, err := parseBool(raw)
			if err != nil {
				return dto.NoteInput{}, err
			}
			*dst = &v
		}
	}

	upload, err := formFile(c, "attachment")
	if err != nil {
		return dto.NoteInput{}, errBadForm
	}
	in.Attachment = upload
	return in, nil
}

type profileRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Gender      string `json:"gender"`
	DOB         string `json:"dob"`
	NewPassword string `json:"newPassword"`
}

func bindProfileUpdate(c *gin.Context) (dto.ProfileUpdate, error) {
	if !isForm(c) {
		var req profileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return dto.ProfileUpdate{}, errBadForm
		}
		return dto.ProfileUpdate{
			Username:    req.Username,
			Email:       req.Email,
			Gender:      req.Gender,
			DOB:         req.DOB,
			NewPassword: req.NewPassword,
		}, nil
	}

	upd := dto.ProfileUpdate{
		Username:    c.PostForm("username"),
		Email:       c.PostForm("email"),
		Gender:      c.PostForm("gender"),
		DOB:         c.PostForm("dob"),
		NewPassword: c.PostForm("newPassword"),
	}
	avatar, err := formFile(c, "avatar", "profilePic")
	if err != nil {
		return dto.ProfileUpdate{}, errBadForm
	}
	upd.Avatar = avatar
	return upd, nil
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
