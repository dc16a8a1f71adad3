package dto

import (
	"strconv"
	"time"

	"noteshelf/model"
)

type Link struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"` // Optional: GET, POST, PUT, DELETE
}

type NoteResponse struct {
	ID         uint            `json:"id"`
	Title      string          `json:"title"`
	Content    string          `json:"content"`
	Tags       []string        `json:"tags"`
	Attachment string          `json:"attachment,omitempty"`
	IsPinned   bool            `json:"isPinned"`
	IsFavorite bool            `json:"isFavorite"`
	UserID     uint            `json:"userId"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Links      map[string]Link `json:"_links,omitempty"`
}

// NoteLinks lists the endpoints a client can follow from a note.
func NoteLinks(id uint, owned bool) map[string]Link {
	base := "/api/notes/"
	sid := strconv.FormatUint(uint64(id), 10)
	links := map[string]Link{
		"public":     {Href: base + "share/public/" + sid, Method: "GET"},
		"public_pdf": {Href: base + "download-pdf-public/" + sid, Method: "GET"},
	}
	if owned {
		links["self"] = Link{Href: base + sid, Method: "PUT"}
		links["delete"] = Link{Href: base + sid, Method: "DELETE"}
		links["pdf"] = Link{Href: base + "download-pdf/" + sid, Method: "GET"}
		links["word"] = Link{Href: base + "download-word/" + sid, Method: "GET"}
		links["txt"] = Link{Href: base + "download-txt/" + sid, Method: "GET"}
	}
	return links
}

func ToNoteResponse(note *model.Note, owned bool) NoteResponse {
	tags := []string(note.Tags)
	if tags == nil {
		tags = []string{}
	}
	return NoteResponse{
		ID:         note.ID,
		Title:      note.Title,
		Content:    note.Content,
		Tags:       tags,
		Attachment: note.Attachment,
		IsPinned:   note.IsPinned,
		IsFavorite: note.IsFavorite,
		UserID:     note.UserID,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
		Links:      NoteLinks(note.ID, owned),
	}
}

func ToNoteResponses(notes []model.Note) []NoteResponse {
	responses := make([]NoteResponse, len(notes))
	for i := range notes {
		responses[i] = ToNoteResponse(&notes[i], true)
	}
	return responses
}

// NoteInput carries create/update fields after binding. Nil pointers mean
// the field was not supplied.
type NoteInput struct {
	Title      string
	Content    string
	Tags       []string
	TagsSet    bool
	IsPinned   *bool
	IsFavorite *bool
	Attachment *Upload
}

// Upload is a file received in a multipart request.
type Upload struct {
	Filename string
	Data     []byte
}

type NoteStats struct {
	Total      int            `json:"total"`
	Pinned     int            `json:"pinned"`
	Favorite   int            `json:"favorite"`
	WithFiles  int            `json:"withAttachments"`
	TagCounts  map[string]int `json:"tagCounts"`
	LastEdited *time.Time     `json:"lastEdited,omitempty"`
}
