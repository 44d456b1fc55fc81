// Package loader extracts plain text from source document files. Each
// format has its own Loader; all of them produce normalised text (LF line
// endings, control characters stripped) so downstream components never see
// format-specific artifacts.
package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knolhq/knol/pkg/knowledge"
)

// Loader extracts plain text from raw file bytes.
type Loader interface {
	// Format returns the format tag this loader handles.
	Format() knowledge.Format

	// Extract returns the normalised plain text of the document.
	// Malformed input fails with knowledge.ErrUnreadableDocument; partial
	// or corrupted text is never returned silently.
	Extract(ctx context.Context, data []byte) (string, error)
}

// Registry selects a loader by filename extension.
type Registry struct {
	loaders map[knowledge.Format]Loader
}

// NewRegistry creates a registry over the given loaders.
func NewRegistry(loaders ...Loader) *Registry {
	r := &Registry{loaders: make(map[knowledge.Format]Loader, len(loaders))}
	for _, l := range loaders {
		r.loaders[l.Format()] = l
	}
	return r
}

// NewDefaultRegistry creates a registry with the TXT, PDF and DOCX loaders.
func NewDefaultRegistry() *Registry {
	return NewRegistry(NewTXTLoader(), NewPDFLoader(), NewDOCXLoader())
}

// Formats returns the formats this registry can handle.
func (r *Registry) Formats() []knowledge.Format {
	formats := make([]knowledge.Format, 0, len(r.loaders))
	for f := range r.loaders {
		formats = append(formats, f)
	}
	return formats
}

// DetectFormat maps a filename to its format tag.
func DetectFormat(filename string) (knowledge.Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", ".md":
		return knowledge.FormatTXT, nil
	case ".pdf":
		return knowledge.FormatPDF, nil
	case ".docx":
		return knowledge.FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", knowledge.ErrUnsupportedFormat, filename)
	}
}

// Extract detects the format from filename and extracts text with the
// matching loader.
func (r *Registry) Extract(ctx context.Context, data []byte, filename string) (string, knowledge.Format, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return "", "", err
	}

	l, ok := r.loaders[format]
	if !ok {
		return "", "", fmt.Errorf("%w: no loader registered for %s", knowledge.ErrUnsupportedFormat, format)
	}

	text, err := l.Extract(ctx, data)
	if err != nil {
		return "", "", fmt.Errorf("extracting %s: %w", filename, err)
	}

	return text, format, nil
}
