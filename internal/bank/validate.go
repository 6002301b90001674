package bank

import "fmt"

// RejectCode identifies why a question was rejected.
type RejectCode string

const (
	RejectEmptyStem           RejectCode = "empty-stem"
	RejectNoCorrectAnswer     RejectCode = "no-correct-answer"
	RejectCorrectNotInOptions RejectCode = "correct-answer-not-in-options"
	RejectInsufficientOptions RejectCode = "insufficient-options"
	RejectNoAnswerKey         RejectCode = "no-answer-key"
	RejectUnknownType         RejectCode = "unknown-type"
)

// RejectError marks a single question as unusable without failing the
// surrounding import batch.
type RejectError struct {
	Code   RejectCode
	Detail string
}

func (e *RejectError) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

// Validate checks the structural invariants of a canonical question.
// A nil return means the question may be persisted.
func Validate(q *Question) error {
	if !KnownType(q.Type) {
		return &RejectError{Code: RejectUnknownType, Detail: string(q.Type)}
	}
	if CollapseSpace(q.Stem) == "" {
		return &RejectError{Code: RejectEmptyStem}
	}
	if len(q.Correct) == 0 {
		return &RejectError{Code: RejectNoCorrectAnswer}
	}

	switch q.Type {
	case TypeSingleChoice, TypeMultiChoice:
		if len(q.Options) < 2 {
			return &RejectError{Code: RejectInsufficientOptions, Detail: fmt.Sprintf("%d options", len(q.Options))}
		}
		have := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			have[o.Label] = true
		}
		for _, c := range q.Correct {
			if !have[c] {
				return &RejectError{Code: RejectCorrectNotInOptions, Detail: c}
			}
		}
		if q.Type == TypeSingleChoice && len(q.Correct) != 1 {
			return &RejectError{Code: RejectCorrectNotInOptions, Detail: "single-choice with multiple correct labels"}
		}
	case TypeTrueFalse:
		if _, ok := FoldTrueFalse(q.Correct[0]); !ok {
			return &RejectError{Code: RejectNoCorrectAnswer, Detail: q.Correct[0]}
		}
	case TypeFillIn, TypeShortAnswer:
		if CollapseSpace(q.Correct[0]) == "" {
			return &RejectError{Code: RejectNoAnswerKey}
		}
	}
	return nil
}
