// Package extract turns uploaded document bytes into plain text.
//
// Dispatch is by file extension only, case-insensitive. Every format is a
// single linear pass over the input; nothing beyond concatenation is done
// across pages or sheets. Extraction is pure: same bytes in, same text out.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when the file extension is not in the
// allow-list. No extraction is attempted.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ErrInvalidEncoding marks text input that is not valid UTF-8.
var ErrInvalidEncoding = errors.New("invalid text encoding")

// ExtractionError wraps any underlying parser failure so a corrupt upload
// surfaces as a user-visible message instead of crashing the session.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s failed: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

var supportedFormats = []string{"txt", "md", "pdf", "docx", "xlsx", "xls", "csv"}

// SupportedFormats returns the upload allow-list, lowercased, without dots.
func SupportedFormats() []string {
	out := make([]string, len(supportedFormats))
	copy(out, supportedFormats)
	return out
}

// IsSupported reports whether the filename's extension is in the allow-list.
func IsSupported(filename string) bool {
	ext := normalizeExt(filename)
	for _, f := range supportedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// Extract produces the normalized text of a document from its raw bytes.
// The declared extension of filename picks the parser. Parser failures,
// including panics from the underlying libraries on corrupt input, are
// reported as *ExtractionError.
func Extract(data []byte, filename string) (text string, err error) {
	ext := normalizeExt(filename)

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Filename: filename, Err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	switch ext {
	case "txt", "md":
		text, err = extractPlainText(data)
	case "pdf":
		text, err = extractPDF(data)
	case "docx":
		text, err = extractDocx(data)
	case "xlsx":
		text, err = extractXLSX(data)
	case "xls":
		text, err = extractXLS(data)
	case "csv":
		text, err = extractCSV(data)
	default:
		return "", ErrUnsupportedFormat
	}

	if err != nil {
		return "", &ExtractionError{Filename: filename, Err: err}
	}
	return text, nil
}

func normalizeExt(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}
