// Package bank defines the canonical question model shared by the import
// pipeline, the quiz engine, and the store. Questions are immutable once
// imported; their identity is a content hash so the same document can be
// imported twice without creating duplicates.
package bank

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// QuestionType classifies how a question is asked and answered.
type QuestionType string

const (
	TypeSingleChoice QuestionType = "single-choice"
	TypeMultiChoice  QuestionType = "multi-choice"
	TypeTrueFalse    QuestionType = "true-false"
	TypeFillIn       QuestionType = "fill-in"
	TypeShortAnswer  QuestionType = "short-answer"
)

// KnownType reports whether t is one of the five supported question types.
func KnownType(t QuestionType) bool {
	switch t {
	case TypeSingleChoice, TypeMultiChoice, TypeTrueFalse, TypeFillIn, TypeShortAnswer:
		return true
	}
	return false
}

// Option is one labeled choice of a choice-type question.
type Option struct {
	Label string // "A".."H"
	Text  string
}

// Source records where a question came from inside an imported document.
type Source struct {
	File    string
	Ordinal int // 1-based position of the unit within the document
}

// Question is the canonical representation produced by import.
//
// Correct holds normalized correct-answer labels for choice types
// (sorted, deduped, e.g. ["B"] or ["A","C"]), the folded token "true" or
// "false" for true-false, and the literal expected text for fill-in and
// short-answer (a single element).
type Question struct {
	ID       string
	Type     QuestionType
	Stem     string
	Options  []Option
	Correct  []string
	Analysis string
	Score    float64
	Source   Source
}

// Attempt is one answer submission. Attempts are append-only.
type Attempt struct {
	QuestionID string
	Given      string
	Correct    bool
	At         time.Time
}

// ContentHash derives the question's stable identity from its normalized
// content. Source metadata is deliberately excluded so the same question
// imported from two files collapses to one row.
func ContentHash(typ QuestionType, stem string, options []Option, correct []string) string {
	h := sha256.New()
	h.Write([]byte(typ))
	h.Write([]byte{0})
	h.Write([]byte(CollapseSpace(stem)))
	for _, o := range options {
		h.Write([]byte{0})
		h.Write([]byte(o.Label))
		h.Write([]byte{1})
		h.Write([]byte(CollapseSpace(o.Text)))
	}
	for _, c := range correct {
		h.Write([]byte{2})
		h.Write([]byte(CollapseSpace(c)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// OptionText returns the text of the option with the given label, or "".
func (q *Question) OptionText(label string) string {
	for _, o := range q.Options {
		if o.Label == label {
			return o.Text
		}
	}
	return ""
}

// CorrectDisplay renders the correct answer for feedback screens:
// joined labels for choice types, the literal text otherwise.
func (q *Question) CorrectDisplay() string {
	switch q.Type {
	case TypeSingleChoice, TypeMultiChoice:
		return strings.Join(q.Correct, "")
	default:
		if len(q.Correct) == 0 {
			return ""
		}
		return q.Correct[0]
	}
}
