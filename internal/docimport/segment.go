package docimport

import (
	"regexp"
	"strings"

	"github.com/drillbook/drillbook/internal/bank"
)

// Unit is one candidate question carved out of the block sequence.
// Options keep their emphasis spans so the resolver can read formatting
// marks; Label is parsed from the option text when present, otherwise
// assigned sequentially.
type Unit struct {
	Ordinal  int
	Stem     string
	Options  []OptionCandidate
	Answer   string // text of the unit's answer-marker block, "" if none
	Analysis string
	Hint     bank.QuestionType // from the enclosing section heading
}

// OptionCandidate is a potential option with its source formatting.
type OptionCandidate struct {
	Label string
	Text  string
	Spans []Emphasis
}

var (
	optionLabelRe = regexp.MustCompile(`^\s*([A-Ha-h])\s*(?:、|．|\.|）|\))\s*`)
	underscoreRe  = regexp.MustCompile(`_{2,}|＿{2,}`)
)

// Segment groups blocks into question units. Boundaries, in order: a
// heading block closes the current unit, then either updates the section
// hint or, when it carries a leading question number, opens the next
// unit; a paragraph with a leading question number closes the current
// unit and opens the next; everything else attaches to the open unit.
func Segment(blocks []Block) []Unit {
	var units []Unit
	var cur *Unit
	var hint bank.QuestionType
	ordinal := 0

	flush := func() {
		if cur != nil {
			units = append(units, *cur)
			cur = nil
		}
	}

	for _, blk := range blocks {
		switch blk.Kind {
		case BlockHeading:
			flush()
			if blk.TypeHint != "" {
				hint = blk.TypeHint
				continue
			}
			// A numbered heading with no section phrase is a question
			// stem promoted to a heading by the source formatting.
			if m := matchQuestionNumber(blk.Text); m != "" {
				ordinal++
				cur = &Unit{
					Ordinal: ordinal,
					Stem:    strings.TrimSpace(blk.Text[len(m):]),
					Hint:    hint,
				}
			}
		case BlockParagraph, BlockTableRow:
			if m := matchQuestionNumber(blk.Text); m != "" {
				flush()
				ordinal++
				cur = &Unit{
					Ordinal: ordinal,
					Stem:    strings.TrimSpace(blk.Text[len(m):]),
					Hint:    hint,
				}
				continue
			}
			if cur == nil {
				continue
			}
			if len(cur.Options) == 0 && cur.Answer == "" {
				// Stem continuation line.
				cur.Stem = strings.TrimSpace(cur.Stem + " " + blk.Text)
			}
		case BlockListItem:
			if cur == nil {
				continue
			}
			cur.Options = append(cur.Options, optionCandidate(blk, len(cur.Options)))
		case BlockAnswerMarker:
			if cur != nil {
				cur.Answer = blk.Text
			}
		case BlockAnalysisMarker:
			if cur != nil {
				cur.Analysis = blk.Text
			}
		}
	}
	flush()
	return units
}

func optionCandidate(blk Block, index int) OptionCandidate {
	text := blk.Text
	spans := blk.Spans
	label := ""
	if m := optionLabelRe.FindStringSubmatch(text); m != nil {
		label = strings.ToUpper(m[1])
		cut := len(m[0])
		text = text[cut:]
		spans = shiftSpans(spans, cut)
	}
	if label == "" {
		label = string(rune('A' + index))
	}
	return OptionCandidate{Label: label, Text: strings.TrimSpace(text), Spans: spans}
}

// Classify assigns the preliminary question type before answer
// resolution. Multi-choice promotion for units with more than one marked
// option happens in the resolver.
func Classify(u *Unit) bank.QuestionType {
	if len(u.Options) >= 2 {
		if len(u.Options) == 2 && bank.IsTrueFalsePair(u.Options[0].Text, u.Options[1].Text) {
			return bank.TypeTrueFalse
		}
		if u.Hint == bank.TypeMultiChoice {
			return bank.TypeMultiChoice
		}
		return bank.TypeSingleChoice
	}

	// Zero-option units. A section hint wins; otherwise a trailing
	// question mark or an underscore placeholder means fill-in.
	if u.Hint == bank.TypeTrueFalse {
		return bank.TypeTrueFalse
	}
	if u.Hint == bank.TypeFillIn || u.Hint == bank.TypeShortAnswer {
		return u.Hint
	}
	stem := strings.TrimSpace(u.Stem)
	if underscoreRe.MatchString(stem) {
		return bank.TypeFillIn
	}
	if strings.HasSuffix(stem, "?") || strings.HasSuffix(stem, "？") {
		return bank.TypeFillIn
	}
	return bank.TypeShortAnswer
}
