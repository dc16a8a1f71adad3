package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`

const documentFooter = `<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr></w:body></w:document>`

type runStyle struct {
	bold, italic bool
	halfPoints   int
}

// RenderDOCX builds a WordprocessingML package with a bold title paragraph,
// a timestamp paragraph and one paragraph per line of body text.
func RenderDOCX(doc Document) ([]byte, error) {
	var body strings.Builder
	body.WriteString(documentHeader)
	writeParagraph(&body, doc.Title, runStyle{bold: true, halfPoints: 32})
	writeParagraph(&body, "Last updated: "+timestamp(doc.UpdatedAt), runStyle{italic: true, halfPoints: 20})
	for _, line := range strings.Split(StripHTML(doc.Content), "\n") {
		writeParagraph(&body, line, runStyle{})
	}
	body.WriteString(documentFooter)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", body.String()},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("render docx: %w", err)
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, fmt.Errorf("render docx: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeParagraph(b *strings.Builder, text string, st runStyle) {
	b.WriteString("<w:p>")
	if text != "" {
		b.WriteString("<w:r>")
		if st.bold || st.italic || st.halfPoints > 0 {
			b.WriteString("<w:rPr>")
			if st.bold {
				b.WriteString("<w:b/>")
			}
			if st.italic {
				b.WriteString("<w:i/>")
			}
			if st.halfPoints > 0 {
				fmt.Fprintf(b, `<w:sz w:val="%d"/>`, st.halfPoints)
			}
			b.WriteString("</w:rPr>")
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(text))
		b.WriteString("</w:t></w:r>")
	}
	b.WriteString("</w:p>")
}
