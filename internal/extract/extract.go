// Package extract turns document files into plain text for context ingestion.
package extract

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/petasbytes/go-assistants/internal/fsops"
)

// Extractor converts a document on disk to text.
type Extractor interface {
	// Supports reports whether path has a recognized document extension.
	// Folder scans use it as a filter; ExtractText accepts any file.
	Supports(path string) bool
	ExtractText(path string) (string, error)
}

// Extensions lists the recognized document extensions, lower case.
var Extensions = []string{".pdf", ".txt", ".md"}

// Documents extracts PDF files and reads every other file verbatim.
type Documents struct{}

func (Documents) Supports(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (Documents) ExtractText(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return PDFText(path)
	}
	return fsops.ReadFile(path)
}

// PDFText returns the plain text of every page of the PDF at path.
func PDFText(path string) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("extract: malformed pdf %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("extract: open pdf: %w", err)
	}
	defer f.Close()

	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract: pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rd); err != nil {
		return "", fmt.Errorf("extract: read pdf text: %w", err)
	}
	return buf.String(), nil
}
