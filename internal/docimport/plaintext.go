package docimport

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/drillbook/drillbook/internal/bank"
)

// lineDetector handles plain text and, with markdown enabled, lightweight
// markup. Each meaningful line becomes one block; the segmenter decides
// unit boundaries from the numbering pattern left intact in paragraph
// text.
type lineDetector struct {
	markdown bool
}

var (
	// A question number: "1、", "12.", "3)", "4）".
	questionNumberRe = regexp.MustCompile(`^(\s*\d+\s*)(、|．|\.|）|\))\s*`)

	optionLineRe = regexp.MustCompile(`^\s*([A-Ha-h])\s*(?:、|．|\.|）|\))\s*(.+)$`)
	bulletLineRe = regexp.MustCompile(`^\s*[-*]\s+(.+)$`)
	mdHeadingRe  = regexp.MustCompile(`^\s*#{1,6}\s+(.*)$`)
	mdBoldRe     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// matchQuestionNumber returns the numbering prefix that opens a question
// line, or "" when the line does not start one. An ASCII dot directly
// followed by a digit is a decimal point, not a numbering delimiter, so
// "3.14 is pi" does not match.
func matchQuestionNumber(line string) string {
	m := questionNumberRe.FindStringSubmatchIndex(line)
	if m == nil {
		return ""
	}
	delimStart, delimEnd := m[4], m[5]
	if line[delimStart:delimEnd] == "." && delimEnd < len(line) && line[delimEnd] >= '0' && line[delimEnd] <= '9' {
		return ""
	}
	return line[:m[1]]
}

func (d *lineDetector) Parse(raw []byte) ([]Block, error) {
	var blocks []Block
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		blocks = append(blocks, d.parseLine(line))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) > 0 && len(blocks) == 0 {
		return nil, ErrUnrecognizedFormat
	}
	return blocks, nil
}

func (d *lineDetector) parseLine(line string) Block {
	if d.markdown {
		if m := mdHeadingRe.FindStringSubmatch(line); m != nil {
			var hint bank.QuestionType
			if sm := sectionHeadingRe.FindStringSubmatch(m[1]); sm != nil {
				hint = sectionHints[sm[1]]
			}
			return Block{Kind: BlockHeading, Text: strings.TrimSpace(m[1]), TypeHint: hint}
		}
	}

	if m := bulletLineRe.FindStringSubmatch(line); m != nil {
		text, spans := d.inline(m[1])
		return Block{Kind: BlockListItem, Text: text, Spans: spans}
	}
	// A numbered line is a question opener. It must reach the segmenter
	// as a paragraph even when its stem happens to contain a section
	// heading phrase or an option-like prefix.
	if matchQuestionNumber(line) == "" {
		if m := optionLineRe.FindStringSubmatch(line); m != nil {
			text, spans := d.inline(strings.ToUpper(m[1]) + ". " + m[2])
			return Block{Kind: BlockListItem, Text: text, Spans: spans}
		}
		kind, text, hint := classifyMarker(line)
		if kind != BlockParagraph {
			return Block{Kind: kind, Text: text, TypeHint: hint}
		}
	}
	text, spans := d.inline(line)
	return Block{Kind: BlockParagraph, Text: text, Spans: spans}
}

// inline strips markdown bold markers and records the covered ranges as
// emphasis spans. Plain text passes through untouched.
func (d *lineDetector) inline(s string) (string, []Emphasis) {
	if !d.markdown || !strings.Contains(s, "**") {
		return s, nil
	}
	var spans []Emphasis
	var b strings.Builder
	last := 0
	for _, loc := range mdBoldRe.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:loc[0]])
		start := b.Len()
		b.WriteString(s[loc[2]:loc[3]])
		spans = append(spans, Emphasis{Start: start, End: b.Len(), Bold: true})
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String(), spans
}
