package loader

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/knolhq/knol/pkg/knowledge"
)

// PDFLoader extracts text from PDF files.
type PDFLoader struct{}

// NewPDFLoader creates a PDF loader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Format returns the pdf format tag.
func (l *PDFLoader) Format() knowledge.Format {
	return knowledge.FormatPDF
}

// Extract walks every page and concatenates its plain text. Malformed and
// password-protected files fail with knowledge.ErrUnreadableDocument; a
// page that yields no text is skipped, but a document with no readable
// pages at all is an error rather than an empty success.
func (l *PDFLoader) Extract(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", knowledge.ErrUnreadableDocument, err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	extracted := 0

	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		b.WriteString(text)
		b.WriteString("\n")
		extracted++
	}

	if pages > 0 && extracted == 0 {
		return "", fmt.Errorf("%w: no extractable text in %d pages", knowledge.ErrUnreadableDocument, pages)
	}

	return Normalize(b.String()), nil
}

var _ Loader = (*PDFLoader)(nil)
