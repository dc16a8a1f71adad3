package export

import (
	"bytes"
	"fmt"
	"text/template"
)

var textTemplate = template.Must(template.New("note").Parse(`TITLE: {{.Title}}
LAST UPDATED: {{.Updated}}

{{.Body}}
`))

// RenderText produces the plain text export.
func RenderText(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	err := textTemplate.Execute(&buf, struct {
		Title, Updated, Body string
	}{doc.Title, timestamp(doc.UpdatedAt), StripHTML(doc.Content)})
	if err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}
	return buf.Bytes(), nil
}
