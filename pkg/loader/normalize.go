package loader

import "strings"

// Normalize converts extracted text to the canonical form downstream
// components expect: LF line endings and no control characters other than
// newline and tab.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		// Strip C0/C1 control characters and the BOM.
		if r < 0x20 || (r >= 0x7f && r < 0xa0) || r == '\ufeff' {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
