package docimport

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnrecognizedFormat is returned when a detector produces no blocks
// from non-empty input. It is fatal to the whole import call.
var ErrUnrecognizedFormat = errors.New("unrecognized document format")

// Kind names a supported input family.
type Kind string

const (
	KindRichText  Kind = "richtext"
	KindDocx      Kind = "docx"
	KindHTML      Kind = "html"
	KindPlainText Kind = "plaintext"
	KindMarkdown  Kind = "markdown"
)

// Detector reduces one input family to a block sequence.
type Detector interface {
	Parse(raw []byte) ([]Block, error)
}

var detectors = map[Kind]Detector{
	KindRichText:  &richTextDetector{},
	KindDocx:      &docxDetector{},
	KindHTML:      &htmlDetector{},
	KindPlainText: &lineDetector{},
	KindMarkdown:  &lineDetector{markdown: true},
}

// DetectorFor returns the detector registered for kind.
func DetectorFor(kind Kind) (Detector, error) {
	d, ok := detectors[kind]
	if !ok {
		return nil, fmt.Errorf("no detector for kind %q", kind)
	}
	return d, nil
}

// SniffKind maps a file name to an input kind by extension.
// Unknown extensions fall back to plain text.
func SniffKind(filename string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".doc", ".rtf":
		return KindRichText
	case ".docx":
		return KindDocx
	case ".html", ".htm", ".xhtml":
		return KindHTML
	case ".md", ".markdown":
		return KindMarkdown
	default:
		return KindPlainText
	}
}
