package importer

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// readPDFText returns the plain text of every page, one page per block.
func readPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(cleanText(text))
		sb.WriteString("\n\n")
	}
	return sb.String(), nil
}

// cleanText normalizes line endings and strips NUL bytes left by PDF
// extraction.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
