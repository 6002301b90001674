// Package docimport turns heterogeneous source documents into canonical
// questions. Detectors reduce raw bytes to a flat block sequence, the
// segmenter groups blocks into question units, and the answer key
// resolver extracts the correct answer from formatting or marker blocks.
package docimport

import (
	"regexp"
	"strings"

	"github.com/drillbook/drillbook/internal/bank"
)

// BlockKind tags the structural role of a block within a document.
type BlockKind string

const (
	BlockHeading        BlockKind = "heading"
	BlockParagraph      BlockKind = "paragraph"
	BlockListItem       BlockKind = "list-item"
	BlockTableRow       BlockKind = "table-row"
	BlockAnswerMarker   BlockKind = "answer-marker"
	BlockAnalysisMarker BlockKind = "analysis-marker"
)

// Emphasis is an inline formatting span over Block.Text, byte-offset
// half-open [Start, End). The resolver reads these to find marked-correct
// options in rich and HTML sources.
type Emphasis struct {
	Start     int
	End       int
	Bold      bool
	Underline bool
	Color     string // lowercase CSS-ish color name or hex, "" if none
}

// Block is one text-bearing element of the source document.
// Heading blocks may carry a question-type hint parsed from section
// titles like 单选题 or 判断题.
type Block struct {
	Kind     BlockKind
	Text     string
	Spans    []Emphasis
	TypeHint bank.QuestionType
}

var (
	answerMarkerRe   = regexp.MustCompile(`^\s*(?:正确答案|参考答案|答案|[Aa]nswer)\s*[:：]\s*(.*)$`)
	analysisMarkerRe = regexp.MustCompile(`^\s*(?:答案解析|解析|[Aa]nalysis|[Ee]xplanation)\s*[:：]\s*(.*)$`)
	sectionHeadingRe = regexp.MustCompile(`^\s*(?:[一二三四五六七八九十0-9]+\s*[、.．]\s*)?(单选题|多选题|判断题|填空题|简答题)`)
)

var sectionHints = map[string]bank.QuestionType{
	"单选题": bank.TypeSingleChoice,
	"多选题": bank.TypeMultiChoice,
	"判断题": bank.TypeTrueFalse,
	"填空题": bank.TypeFillIn,
	"简答题": bank.TypeShortAnswer,
}

// classifyMarker reclassifies a paragraph-like text as a section heading,
// answer marker, or analysis marker. Returns the adjusted kind, the
// payload text (marker prefix stripped), and a type hint for headings.
func classifyMarker(text string) (BlockKind, string, bank.QuestionType) {
	if m := sectionHeadingRe.FindStringSubmatch(text); m != nil {
		return BlockHeading, strings.TrimSpace(text), sectionHints[m[1]]
	}
	if m := analysisMarkerRe.FindStringSubmatch(text); m != nil {
		return BlockAnalysisMarker, strings.TrimSpace(m[1]), ""
	}
	if m := answerMarkerRe.FindStringSubmatch(text); m != nil {
		return BlockAnswerMarker, strings.TrimSpace(m[1]), ""
	}
	return BlockParagraph, text, ""
}

// shiftSpans rebases emphasis spans after cutting n leading bytes of text.
func shiftSpans(spans []Emphasis, n int) []Emphasis {
	if n == 0 || len(spans) == 0 {
		return spans
	}
	out := make([]Emphasis, 0, len(spans))
	for _, s := range spans {
		s.Start -= n
		s.End -= n
		if s.End <= 0 {
			continue
		}
		if s.Start < 0 {
			s.Start = 0
		}
		out = append(out, s)
	}
	return out
}
