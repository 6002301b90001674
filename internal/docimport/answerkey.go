package docimport

import (
	"regexp"
	"sort"
	"strings"

	"github.com/drillbook/drillbook/internal/bank"
)

var (
	checkPrefixRe = regexp.MustCompile(`^\s*[✓√]\s*`)
	correctTagRe  = regexp.MustCompile(`(?i)\s*[\[(（](?:correct|正确|√|✓)[\])）]\s*$`)
	redColorNames = map[string]bool{"red": true, "#ff0000": true, "#f00": true, "crimson": true, "darkred": true}
)

// optionMarked reports whether an option candidate carries a
// correct-answer annotation: a bold, underlined, or red emphasis span on
// any of its text runs, a leading check mark, or a trailing
// "[correct]"-style tag. The cleaned option text has the mark stripped.
func optionMarked(o OptionCandidate) (marked bool, cleaned string) {
	cleaned = o.Text
	for _, s := range o.Spans {
		if s.Bold || s.Underline || redColorNames[s.Color] {
			marked = true
			break
		}
	}
	if m := checkPrefixRe.FindString(cleaned); m != "" {
		marked = true
		cleaned = cleaned[len(m):]
	}
	if m := correctTagRe.FindString(cleaned); m != "" {
		marked = true
		cleaned = cleaned[:len(cleaned)-len(m)]
	}
	return marked, strings.TrimSpace(cleaned)
}

// Resolve turns a segmented unit into a canonical question. Per-unit
// failures come back as *bank.RejectError; the caller collects them
// without aborting the batch.
func Resolve(u *Unit, sourceFile string) (*bank.Question, error) {
	if len(u.Options) == 1 {
		return nil, &bank.RejectError{Code: bank.RejectInsufficientOptions, Detail: "1 option"}
	}

	typ := Classify(u)
	q := &bank.Question{
		Type:     typ,
		Stem:     bank.CollapseSpace(u.Stem),
		Analysis: bank.CollapseSpace(u.Analysis),
		Source:   bank.Source{File: sourceFile, Ordinal: u.Ordinal},
	}

	switch typ {
	case bank.TypeSingleChoice, bank.TypeMultiChoice:
		if err := resolveChoice(u, q); err != nil {
			return nil, err
		}
	case bank.TypeTrueFalse:
		if err := resolveTrueFalse(u, q); err != nil {
			return nil, err
		}
	default:
		answer := bank.CollapseSpace(u.Answer)
		if answer == "" {
			return nil, &bank.RejectError{Code: bank.RejectNoAnswerKey}
		}
		q.Correct = []string{answer}
	}

	q.ID = bank.ContentHash(q.Type, q.Stem, q.Options, q.Correct)
	if err := bank.Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}

func resolveChoice(u *Unit, q *bank.Question) error {
	valid := make(map[string]bool, len(u.Options))
	var correct []string
	for _, o := range u.Options {
		marked, cleaned := optionMarked(o)
		q.Options = append(q.Options, bank.Option{Label: o.Label, Text: bank.CollapseSpace(cleaned)})
		valid[o.Label] = true
		if marked {
			correct = append(correct, o.Label)
		}
	}

	// An answer-marker block naming labels overrides formatting marks.
	if labels := bank.NormalizeLabels(u.Answer); len(labels) > 0 {
		inOptions := true
		for _, l := range labels {
			if !valid[l] {
				inOptions = false
				break
			}
		}
		if inOptions {
			correct = labels
		}
	}

	if len(correct) == 0 {
		return &bank.RejectError{Code: bank.RejectNoAnswerKey}
	}
	sort.Strings(correct)
	q.Correct = dedupe(correct)
	if len(q.Correct) > 1 {
		q.Type = bank.TypeMultiChoice
	}
	return nil
}

func resolveTrueFalse(u *Unit, q *bank.Question) error {
	if len(u.Options) == 2 {
		// A marked option or an answer marker naming its label decides.
		markerLabels := bank.NormalizeLabels(u.Answer)
		for _, o := range u.Options {
			marked, cleaned := optionMarked(o)
			if !marked && len(markerLabels) == 1 && markerLabels[0] == o.Label {
				marked = true
			}
			if !marked {
				continue
			}
			if canon, ok := bank.FoldTrueFalse(cleaned); ok {
				q.Correct = []string{canon}
				return nil
			}
		}
	}
	if canon, ok := bank.FoldTrueFalse(u.Answer); ok {
		q.Correct = []string{canon}
		return nil
	}
	return &bank.RejectError{Code: bank.RejectNoAnswerKey}
}

func dedupe(labels []string) []string {
	out := labels[:0]
	for i, l := range labels {
		if i == 0 || l != labels[i-1] {
			out = append(out, l)
		}
	}
	return out
}
