package docimport

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// htmlDetector reduces an HTML tree to blocks. One block is emitted per
// leaf-level text-bearing element; bold/underline/color formatting
// encountered on the way down becomes emphasis spans on the block text.
type htmlDetector struct{}

func (d *htmlDetector) Parse(raw []byte) ([]Block, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	var blocks []Block
	walkBlocks(doc, &blocks)
	if len(bytes.TrimSpace(raw)) > 0 && len(blocks) == 0 {
		return nil, ErrUnrecognizedFormat
	}
	return blocks, nil
}

var blockElements = map[string]BlockKind{
	"p": BlockParagraph, "div": BlockParagraph,
	"li": BlockListItem,
	"h1": BlockHeading, "h2": BlockHeading, "h3": BlockHeading,
	"h4": BlockHeading, "h5": BlockHeading, "h6": BlockHeading,
	"tr": BlockTableRow,
}

func walkBlocks(n *html.Node, out *[]Block) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "head":
			return
		}
		if kind, ok := blockElements[n.Data]; ok && !hasBlockChild(n) {
			text, spans := collectInline(n, inlineState{})
			trimmed := strings.TrimSpace(text)
			if trimmed == "" {
				return
			}
			spans = shiftSpans(spans, strings.Index(text, trimmed))
			b := Block{Kind: kind, Text: trimmed, Spans: spans}
			if kind == BlockParagraph || kind == BlockTableRow {
				mk, payload, hint := classifyMarker(text)
				if mk != BlockParagraph {
					b = Block{Kind: mk, Text: payload, TypeHint: hint}
				}
			} else if kind == BlockHeading {
				if m := sectionHeadingRe.FindStringSubmatch(text); m != nil {
					b.TypeHint = sectionHints[m[1]]
				}
			}
			*out = append(*out, b)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkBlocks(c, out)
	}
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if _, ok := blockElements[c.Data]; ok {
				return true
			}
			if hasBlockChild(c) {
				return true
			}
		}
	}
	return false
}

type inlineState struct {
	bold      bool
	underline bool
	color     string
}

var colorStyleRe = regexp.MustCompile(`(?i)color\s*:\s*([#a-z0-9]+)`)

// collectInline flattens the inline content under n, accumulating one
// emphasis span per formatted text run. Table cells are separated by a
// tab so row text stays splittable.
func collectInline(n *html.Node, st inlineState) (string, []Emphasis) {
	var b strings.Builder
	var spans []Emphasis
	var visit func(*html.Node, inlineState)
	visit = func(n *html.Node, st inlineState) {
		switch n.Type {
		case html.TextNode:
			text := n.Data
			if strings.TrimSpace(text) == "" {
				return
			}
			start := b.Len()
			b.WriteString(text)
			if st.bold || st.underline || st.color != "" {
				spans = append(spans, Emphasis{
					Start: start, End: b.Len(),
					Bold: st.bold, Underline: st.underline, Color: st.color,
				})
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return
			case "b", "strong":
				st.bold = true
			case "u", "ins":
				st.underline = true
			case "br":
				b.WriteString(" ")
				return
			case "td", "th":
				if b.Len() > 0 {
					b.WriteString("\t")
				}
			case "font":
				for _, a := range n.Attr {
					if a.Key == "color" {
						st.color = strings.ToLower(a.Val)
					}
				}
			}
			for _, a := range n.Attr {
				if a.Key == "style" {
					style := strings.ToLower(a.Val)
					if m := colorStyleRe.FindStringSubmatch(style); m != nil {
						st.color = m[1]
					}
					if strings.Contains(style, "font-weight: bold") || strings.Contains(style, "font-weight:bold") {
						st.bold = true
					}
					if strings.Contains(style, "text-decoration") && strings.Contains(style, "underline") {
						st.underline = true
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c, st)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c, st)
	}
	return b.String(), spans
}
