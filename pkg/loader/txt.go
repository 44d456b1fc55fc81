package loader

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/knolhq/knol/pkg/knowledge"
)

// TXTLoader extracts text from plain-text files. UTF-8 input is used as-is;
// bytes that do not decode as UTF-8 fall back to Shift-JIS, matching the
// corpora this system was built for.
type TXTLoader struct{}

// NewTXTLoader creates a plain-text loader.
func NewTXTLoader() *TXTLoader {
	return &TXTLoader{}
}

// Format returns the txt format tag.
func (l *TXTLoader) Format() knowledge.Format {
	return knowledge.FormatTXT
}

// Extract decodes the file bytes as UTF-8 or Shift-JIS and normalises them.
func (l *TXTLoader) Extract(_ context.Context, data []byte) (string, error) {
	if utf8.Valid(data) {
		return Normalize(string(data)), nil
	}

	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("%w: not valid UTF-8 or Shift-JIS: %v", knowledge.ErrUnreadableDocument, err)
	}

	return Normalize(string(decoded)), nil
}

var _ Loader = (*TXTLoader)(nil)
