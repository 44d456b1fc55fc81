package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/knolhq/knol/pkg/knowledge"
)

// DOCXLoader extracts text from DOCX files. A DOCX is a ZIP archive; the
// document body lives in word/document.xml as paragraphs of text runs.
type DOCXLoader struct{}

// NewDOCXLoader creates a DOCX loader.
func NewDOCXLoader() *DOCXLoader {
	return &DOCXLoader{}
}

// Format returns the docx format tag.
func (l *DOCXLoader) Format() knowledge.Format {
	return knowledge.FormatDOCX
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraphXML `xml:"p"`
	} `xml:"body"`
}

type paragraphXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Text []struct {
		Content string `xml:",chardata"`
	} `xml:"t"`
}

// Extract opens the archive, parses the document body and joins paragraph
// text with newlines.
func (l *DOCXLoader) Extract(_ context.Context, data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a DOCX archive: %v", knowledge.ErrUnreadableDocument, err)
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: opening document body: %v", knowledge.ErrUnreadableDocument, err)
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: reading document body: %v", knowledge.ErrUnreadableDocument, err)
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", fmt.Errorf("%w: parsing document body: %v", knowledge.ErrUnreadableDocument, err)
		}

		var b strings.Builder
		for i, para := range doc.Body.Paragraphs {
			if i > 0 {
				b.WriteString("\n")
			}
			for _, run := range para.Runs {
				for _, t := range run.Text {
					b.WriteString(t.Content)
				}
			}
		}

		return Normalize(b.String()), nil
	}

	return "", fmt.Errorf("%w: archive has no word/document.xml", knowledge.ErrUnreadableDocument)
}

var _ Loader = (*DOCXLoader)(nil)
