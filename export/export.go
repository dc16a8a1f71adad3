package export

import (
	"fmt"
	"mime"
	"strings"
	"time"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "txt"
)

const timestampLayout = "2006-01-02 15:04:05 MST"

var contentTypes = map[Format]string{
	FormatPDF:  "application/pdf",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FormatText: "text/plain; charset=utf-8",
}

// Document is the part of a note that exports render.
type Document struct {
	Title     string
	Content   string // HTML
	UpdatedAt time.Time
}

type Rendered struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ContentDisposition returns the attachment header value for r.
func (r Rendered) ContentDisposition() string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": r.Filename})
}

// Render produces doc in the requested format.
func Render(format Format, doc Document) (Rendered, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatPDF:
		data, err = RenderPDF(doc)
	case FormatDOCX:
		data, err = RenderDOCX(doc)
	case FormatText:
		data, err = RenderText(doc)
	default:
		return Rendered{}, fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{
		Data:        data,
		ContentType: contentTypes[format],
		Filename:    Filename(doc.Title, format),
	}, nil
}

// Filename replaces whitespace runs in title with underscores.
func Filename(title string, format Format) string {
	base := strings.Join(strings.Fields(title), "_")
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"':
			return '-'
		}
		return r
	}, base)
	if base == "" {
		base = "note"
	}
	return base + "." + string(format)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
