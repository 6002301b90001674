package quiz

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/drillbook/drillbook/internal/bank"
	"github.com/drillbook/drillbook/internal/wrongbook"
)

type fakeRecorder struct {
	entries  map[string]wrongbook.Entry
	attempts []bank.Attempt
	failNext bool
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{entries: make(map[string]wrongbook.Entry)}
}

func (r *fakeRecorder) WrongbookEntry(_ context.Context, id string) (*wrongbook.Entry, error) {
	if e, ok := r.entries[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (r *fakeRecorder) ApplyAttempt(_ context.Context, a bank.Attempt, e *wrongbook.Entry) error {
	if r.failNext {
		r.failNext = false
		return errors.New("storage down")
	}
	r.attempts = append(r.attempts, a)
	if e != nil {
		r.entries[e.QuestionID] = *e
	}
	return nil
}

func testQuestions(n int) []bank.Question {
	qs := make([]bank.Question, n)
	for i := range qs {
		qs[i] = bank.Question{
			ID:   string(rune('a' + i)),
			Type: bank.TypeSingleChoice,
			Stem: "stem",
			Options: []bank.Option{
				{Label: "A", Text: "right"}, {Label: "B", Text: "wrong"},
			},
			Correct: []string{"A"},
		}
	}
	return qs
}

func startTest(t *testing.T, qs []bank.Question, mode OrderMode, rec AttemptRecorder) *Session {
	t.Helper()
	s, err := Start(qs, mode, rec,
		WithRand(rand.New(rand.NewSource(7))),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return s
}

func TestStartEmptyWorkingSet(t *testing.T) {
	if _, err := Start(nil, OrderSequential, newFakeRecorder()); !errors.Is(err, ErrEmptyWorkingSet) {
		t.Errorf("Start(nil) error = %v, want ErrEmptyWorkingSet", err)
	}
}

func TestRandomOrderVisitsEveryQuestionOnce(t *testing.T) {
	qs := testQuestions(8)
	s := startTest(t, qs, OrderRandom, newFakeRecorder())

	seen := make(map[string]int)
	for {
		seen[s.Current().QuestionID]++
		if !s.Next() {
			break
		}
	}
	if len(seen) != len(qs) {
		t.Fatalf("visited %d distinct questions, want %d", len(seen), len(qs))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("question %s visited %d times, want 1", id, n)
		}
	}
}

func TestCurrentNeverExposesCorrectAnswer(t *testing.T) {
	s := startTest(t, testQuestions(1), OrderSequential, newFakeRecorder())
	v := s.Current()
	if v.Stem == "" || len(v.Options) != 2 {
		t.Fatalf("view = %+v", v)
	}
	// The view carries no correctness data before or after submit; what
	// it does carry must not change shape once answered.
	if _, err := s.Submit(context.Background(), "A"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	after := s.Current()
	if !after.Answered {
		t.Error("Answered = false after submit")
	}
	if after.Stem != v.Stem {
		t.Error("view changed stem after submit")
	}
}

func TestSubmitTwiceFails(t *testing.T) {
	s := startTest(t, testQuestions(2), OrderSequential, newFakeRecorder())
	if _, err := s.Submit(context.Background(), "A"); err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if _, err := s.Submit(context.Background(), "B"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("second Submit() error = %v, want ErrAlreadyAnswered", err)
	}
	// Advancing unlocks the next question.
	if !s.Next() {
		t.Fatal("Next() = false")
	}
	if _, err := s.Submit(context.Background(), "B"); err != nil {
		t.Errorf("Submit() after advance error = %v", err)
	}
}

func TestSubmitRecordsAttemptAndTransition(t *testing.T) {
	rec := newFakeRecorder()
	s := startTest(t, testQuestions(1), OrderSequential, rec)
	out, err := s.Submit(context.Background(), "B")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if out.Correct {
		t.Error("Correct = true for wrong answer")
	}
	if out.CorrectAnswer != "A" {
		t.Errorf("CorrectAnswer = %q, want A", out.CorrectAnswer)
	}
	if !out.InWrongbook || out.Streak != 0 {
		t.Errorf("outcome = %+v, want in wrongbook with streak 0", out)
	}
	if len(rec.attempts) != 1 || rec.attempts[0].Given != "B" || rec.attempts[0].Correct {
		t.Errorf("attempts = %+v", rec.attempts)
	}
	e := rec.entries["a"]
	if !e.Active || e.Streak != 0 {
		t.Errorf("stored entry = %+v", e)
	}
}

func TestFirstCorrectAnswerCreatesNoWrongbookEntry(t *testing.T) {
	rec := newFakeRecorder()
	s := startTest(t, testQuestions(1), OrderSequential, rec)
	out, err := s.Submit(context.Background(), "A")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !out.Correct || out.InWrongbook || out.Evicted {
		t.Errorf("outcome = %+v, want correct and untracked", out)
	}
	if len(rec.attempts) != 1 {
		t.Fatalf("attempts = %+v, want 1", rec.attempts)
	}
	if _, ok := rec.entries["a"]; ok {
		t.Errorf("wrongbook entry created for never-wrong question: %+v", rec.entries["a"])
	}
}

func TestSubmitStorageFailureDoesNotMarkAnswered(t *testing.T) {
	rec := newFakeRecorder()
	rec.failNext = true
	s := startTest(t, testQuestions(1), OrderSequential, rec)
	if _, err := s.Submit(context.Background(), "A"); err == nil {
		t.Fatal("Submit() = nil error, want storage failure")
	}
	// The failed submission must not consume the question.
	if _, err := s.Submit(context.Background(), "A"); err != nil {
		t.Errorf("retry Submit() error = %v", err)
	}
}

func TestEvictionAfterThreeCorrect(t *testing.T) {
	rec := newFakeRecorder()
	rec.entries["a"] = wrongbook.Entry{QuestionID: "a", Streak: 2, Active: true}
	s := startTest(t, testQuestions(1), OrderSequential, rec)
	out, err := s.Submit(context.Background(), "A")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !out.Correct || !out.Evicted {
		t.Errorf("outcome = %+v, want correct and evicted", out)
	}
	if out.Streak != wrongbook.EvictionThreshold {
		t.Errorf("Streak = %d, want %d", out.Streak, wrongbook.EvictionThreshold)
	}
	if e := rec.entries["a"]; e.Active {
		t.Errorf("entry still active: %+v", e)
	}
}

func TestPrevReplaysHistory(t *testing.T) {
	s := startTest(t, testQuestions(5), OrderRandom, newFakeRecorder())
	first := s.Current().QuestionID
	s.Next()
	second := s.Current().QuestionID
	if err := s.Jump(4); err != nil {
		t.Fatalf("Jump() error = %v", err)
	}
	if !s.Prev() {
		t.Fatal("Prev() = false")
	}
	if got := s.Current().QuestionID; got != second {
		t.Errorf("after first Prev at %q, want %q", got, second)
	}
	if !s.Prev() {
		t.Fatal("second Prev() = false")
	}
	if got := s.Current().QuestionID; got != first {
		t.Errorf("after second Prev at %q, want %q", got, first)
	}
	if s.Prev() {
		t.Error("Prev() at start = true, want false")
	}
}

func TestJumpOutOfRange(t *testing.T) {
	s := startTest(t, testQuestions(3), OrderSequential, newFakeRecorder())
	if err := s.Jump(3); err == nil {
		t.Error("Jump(3) = nil error, want out of range")
	}
	if err := s.Jump(-1); err == nil {
		t.Error("Jump(-1) = nil error, want out of range")
	}
}

func TestRandomNextSkipsAnswered(t *testing.T) {
	s := startTest(t, testQuestions(3), OrderSequential, newFakeRecorder())
	ctx := context.Background()
	if _, err := s.Submit(ctx, "A"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	answeredID := s.Current().QuestionID
	for i := 0; i < 2; i++ {
		if !s.RandomNext() {
			t.Fatalf("RandomNext() = false on step %d", i)
		}
		if got := s.Current().QuestionID; got == answeredID {
			t.Fatalf("RandomNext() landed on answered question %q", got)
		}
		if _, err := s.Submit(ctx, "A"); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	if s.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", s.Remaining())
	}
}

func TestCheck(t *testing.T) {
	choice := &bank.Question{Type: bank.TypeMultiChoice, Correct: []string{"A", "C"}}
	tf := &bank.Question{Type: bank.TypeTrueFalse, Correct: []string{"false"}}
	fill := &bank.Question{Type: bank.TypeFillIn, Correct: []string{"北京"}}

	tests := []struct {
		name   string
		q      *bank.Question
		answer string
		want   bool
	}{
		{"multi exact", choice, "AC", true},
		{"multi reversed", choice, "ca", true},
		{"multi partial", choice, "A", false},
		{"multi superset", choice, "ABC", false},
		{"tf synonym", tf, "错", true},
		{"tf english", tf, "False", true},
		{"tf wrong", tf, "对", false},
		{"tf garbage", tf, "meh", false},
		{"fill exact", fill, "北京", true},
		{"fill padded", fill, "  北京 ", true},
		{"fill wrong", fill, "上海", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Check(tt.q, tt.answer); got != tt.want {
				t.Errorf("Check(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}
