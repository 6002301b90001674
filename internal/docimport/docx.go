package docimport

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxDetector reads the main document part of an OOXML container and
// reduces its paragraphs to blocks. Bold, underline, and color run
// properties become emphasis spans so formatting answer marks survive.
type docxDetector struct{}

func (d *docxDetector) Parse(raw []byte) ([]Block, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, ErrUnrecognizedFormat
	}
	var doc []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open document part: %w", err)
		}
		doc, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read document part: %w", err)
		}
		break
	}
	if doc == nil {
		return nil, ErrUnrecognizedFormat
	}

	blocks, err := docxBlocks(doc)
	if err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, ErrUnrecognizedFormat
	}
	return blocks, nil
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Props *docxRunProps `xml:"rPr"`
	Text  []string      `xml:"t"`
}

type docxRunProps struct {
	Bold      *docxToggle `xml:"b"`
	Underline *docxToggle `xml:"u"`
	Color     *docxToggle `xml:"color"`
}

type docxToggle struct {
	Val string `xml:"val,attr"`
}

// docxBlocks streams the document XML and emits one block per
// text-bearing paragraph, table cells included.
func docxBlocks(doc []byte) ([]Block, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var blocks []Block
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode document part: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "p" {
			continue
		}
		var p docxParagraph
		if err := dec.DecodeElement(&p, &start); err != nil {
			return nil, fmt.Errorf("decode paragraph: %w", err)
		}
		if blk, ok := paragraphBlock(p); ok {
			blocks = append(blocks, blk)
		}
	}
	return blocks, nil
}

func paragraphBlock(p docxParagraph) (Block, bool) {
	var b strings.Builder
	var spans []Emphasis
	for _, r := range p.Runs {
		text := strings.Join(r.Text, "")
		if text == "" {
			continue
		}
		start := b.Len()
		b.WriteString(text)
		if em, ok := runEmphasis(r.Props); ok {
			em.Start, em.End = start, b.Len()
			spans = append(spans, em)
		}
	}
	text := b.String()
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Block{}, false
	}
	spans = shiftSpans(spans, strings.Index(text, trimmed))
	return docxClassify(trimmed, spans), true
}

// docxClassify mirrors the line detector's block typing: numbered lines
// stay question paragraphs, option-shaped lines become list items, and
// everything else runs through the marker classifier.
func docxClassify(text string, spans []Emphasis) Block {
	if matchQuestionNumber(text) == "" {
		if optionLineRe.MatchString(text) {
			return Block{Kind: BlockListItem, Text: text, Spans: spans}
		}
		if kind, payload, hint := classifyMarker(text); kind != BlockParagraph {
			return Block{Kind: kind, Text: payload, TypeHint: hint}
		}
	}
	return Block{Kind: BlockParagraph, Text: text, Spans: spans}
}

func runEmphasis(props *docxRunProps) (Emphasis, bool) {
	if props == nil {
		return Emphasis{}, false
	}
	var em Emphasis
	if props.Bold != nil && !toggleOff(props.Bold.Val) {
		em.Bold = true
	}
	if props.Underline != nil && props.Underline.Val != "none" {
		em.Underline = true
	}
	if props.Color != nil && props.Color.Val != "" && !strings.EqualFold(props.Color.Val, "auto") {
		em.Color = docxColor(props.Color.Val)
	}
	if !em.Bold && !em.Underline && em.Color == "" {
		return Emphasis{}, false
	}
	return em, true
}

func toggleOff(val string) bool {
	switch val {
	case "false", "0", "off":
		return true
	}
	return false
}

// docxColor normalizes a w:color value to the span convention the HTML
// detector uses: a lowercase name or "#"-prefixed hex code.
func docxColor(val string) string {
	val = strings.ToLower(val)
	if len(val) == 6 && isHex(val) {
		return "#" + val
	}
	return val
}

func isHex(s string) bool {
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
