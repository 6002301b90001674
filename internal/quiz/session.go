// Package quiz runs a practice session over a working set: one question
// at a time, one submission per question, wrongbook bookkeeping applied
// atomically with each attempt.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/drillbook/drillbook/internal/bank"
	"github.com/drillbook/drillbook/internal/wrongbook"
)

var (
	// ErrAlreadyAnswered signals a second submit on the same question
	// without advancing. Callers should treat it as a programming error.
	ErrAlreadyAnswered = errors.New("question already answered")

	ErrEmptyWorkingSet = errors.New("working set is empty")
)

// OrderMode selects how a session sequences its working set.
type OrderMode string

const (
	OrderSequential OrderMode = "sequential"
	OrderRandom     OrderMode = "random"
)

// AttemptRecorder is the storage capability Submit needs: load the prior
// wrongbook snapshot, then apply the attempt and the new snapshot as one
// atomic unit. A nil entry means the attempt leaves the wrongbook
// untouched.
type AttemptRecorder interface {
	WrongbookEntry(ctx context.Context, questionID string) (*wrongbook.Entry, error)
	ApplyAttempt(ctx context.Context, attempt bank.Attempt, entry *wrongbook.Entry) error
}

// Session drills one working set. A single session is active per
// process; methods are not safe for concurrent use.
type Session struct {
	id        string
	questions []bank.Question
	order     []int // materialized presentation order, fixed at start
	cursor    int   // position within order
	history   []int // cursor trail for back-navigation
	answered  map[int]bool
	recorder  AttemptRecorder
	rng       *rand.Rand
	now       func() time.Time
}

// Option tweaks session construction. Used by tests to pin the clock
// and the shuffle seed.
type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// Start builds a session over the given working set. Random mode
// materializes one permutation up front so every question is presented
// exactly once per pass.
func Start(questions []bank.Question, mode OrderMode, recorder AttemptRecorder, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyWorkingSet
	}
	s := &Session{
		id:        uuid.NewString(),
		questions: questions,
		order:     make([]int, len(questions)),
		answered:  make(map[int]bool),
		recorder:  recorder,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	for i := range s.order {
		s.order[i] = i
	}
	if mode == OrderRandom {
		s.rng.Shuffle(len(s.order), func(i, j int) {
			s.order[i], s.order[j] = s.order[j], s.order[i]
		})
	}
	return s, nil
}

// ID is the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Size is the working set size.
func (s *Session) Size() int { return len(s.questions) }

// Position is the 0-based cursor position within the presentation order.
func (s *Session) Position() int { return s.cursor }

// View is what the UI may show before an answer is submitted. It never
// carries the correct answer.
type View struct {
	QuestionID string
	Position   int // 0-based within the session order
	Total      int
	Type       bank.QuestionType
	Stem       string
	Options    []bank.Option
	Answered   bool
}

// Current describes the question at the cursor.
func (s *Session) Current() View {
	q := s.current()
	return View{
		QuestionID: q.ID,
		Position:   s.cursor,
		Total:      len(s.questions),
		Type:       q.Type,
		Stem:       q.Stem,
		Options:    q.Options,
		Answered:   s.answered[s.cursor],
	}
}

func (s *Session) current() *bank.Question {
	return &s.questions[s.order[s.cursor]]
}

// Outcome is the feedback unlocked by Submit.
type Outcome struct {
	Correct       bool
	CorrectAnswer string
	Analysis      string
	Streak        int
	InWrongbook   bool
	Evicted       bool
}

// Submit grades the answer for the current question, then records the
// attempt and the wrongbook transition through the recorder in one
// atomic operation before returning. A second submit without advancing
// fails with ErrAlreadyAnswered.
func (s *Session) Submit(ctx context.Context, answer string) (*Outcome, error) {
	if s.answered[s.cursor] {
		return nil, ErrAlreadyAnswered
	}
	q := s.current()
	correct := Check(q, answer)

	prev, err := s.recorder.WrongbookEntry(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("load wrongbook entry: %w", err)
	}
	entry := wrongbook.Transition(prev, q.ID, correct, s.now())
	attempt := bank.Attempt{
		QuestionID: q.ID,
		Given:      answer,
		Correct:    correct,
		At:         s.now(),
	}
	// A correct answer on a question that was never in the wrongbook
	// creates no entry.
	var upsert *wrongbook.Entry
	if prev != nil || entry.Active {
		upsert = &entry
	}
	if err := s.recorder.ApplyAttempt(ctx, attempt, upsert); err != nil {
		return nil, fmt.Errorf("apply attempt: %w", err)
	}

	s.answered[s.cursor] = true
	return &Outcome{
		Correct:       correct,
		CorrectAnswer: q.CorrectDisplay(),
		Analysis:      q.Analysis,
		Streak:        entry.Streak,
		InWrongbook:   entry.Active,
		Evicted:       wrongbook.Evicted(prev, entry),
	}, nil
}

// Check grades one answer against a question. Choice types compare
// normalized label sets, true-false folds synonyms, free text compares
// case-insensitively after whitespace collapse.
func Check(q *bank.Question, answer string) bool {
	switch q.Type {
	case bank.TypeSingleChoice, bank.TypeMultiChoice:
		return bank.EqualLabelSets(bank.NormalizeLabels(answer), q.Correct)
	case bank.TypeTrueFalse:
		canon, ok := bank.FoldTrueFalse(answer)
		return ok && len(q.Correct) == 1 && canon == q.Correct[0]
	default:
		return len(q.Correct) == 1 && bank.EqualAnswerText(answer, q.Correct[0])
	}
}

// Next moves the cursor forward. Returns false at the end of the pass.
func (s *Session) Next() bool {
	if s.cursor+1 >= len(s.order) {
		return false
	}
	s.history = append(s.history, s.cursor)
	s.cursor++
	return true
}

// Prev replays the visit history. Returns false at the start.
func (s *Session) Prev() bool {
	if len(s.history) == 0 {
		return false
	}
	s.cursor = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	return true
}

// Jump moves the cursor to the 0-based position within the session
// order.
func (s *Session) Jump(pos int) error {
	if pos < 0 || pos >= len(s.order) {
		return fmt.Errorf("jump position %d out of range [0,%d)", pos, len(s.order))
	}
	if pos == s.cursor {
		return nil
	}
	s.history = append(s.history, s.cursor)
	s.cursor = pos
	return nil
}

// RandomNext jumps to a randomly chosen unanswered question, preferring
// anything but the current one. Falls back to Next when everything else
// has been answered.
func (s *Session) RandomNext() bool {
	var candidates []int
	for pos := range s.order {
		if pos != s.cursor && !s.answered[pos] {
			candidates = append(candidates, pos)
		}
	}
	if len(candidates) == 0 {
		return s.Next()
	}
	pick := candidates[s.rng.Intn(len(candidates))]
	s.history = append(s.history, s.cursor)
	s.cursor = pick
	return true
}

// Remaining counts unanswered questions in this pass.
func (s *Session) Remaining() int {
	return len(s.order) - len(s.answered)
}
