package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/drillbook/drillbook/internal/bank"
	"github.com/drillbook/drillbook/internal/wrongbook"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	// One named in-memory database per test so cases stay isolated.
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleQuestions() []bank.Question {
	qs := []bank.Question{
		{
			Type: bank.TypeSingleChoice,
			Stem: "2+2=?",
			Options: []bank.Option{
				{Label: "A", Text: "3"}, {Label: "B", Text: "4"}, {Label: "C", Text: "5"},
			},
			Correct: []string{"B"},
			Source:  bank.Source{File: "math.txt", Ordinal: 1},
		},
		{
			Type:    bank.TypeTrueFalse,
			Stem:    "The earth is flat.",
			Correct: []string{"false"},
			Source:  bank.Source{File: "math.txt", Ordinal: 2},
		},
	}
	for i := range qs {
		qs[i].ID = bank.ContentHash(qs[i].Type, qs[i].Stem, qs[i].Options, qs[i].Correct)
	}
	return qs
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not asserted here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"questions", "attempts", "wrongbook", "llm_events"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestPersistQuestionsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	qs := sampleQuestions()

	n, err := s.PersistQuestions(ctx, qs)
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	n, err = s.PersistQuestions(ctx, qs)
	if err != nil {
		t.Fatalf("re-persist: %v", err)
	}
	if n != 0 {
		t.Errorf("re-insert = %d, want 0", n)
	}

	count, err := s.CountQuestions(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestLoadWorkingSetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	qs := sampleQuestions()
	if _, err := s.PersistQuestions(ctx, qs); err != nil {
		t.Fatalf("persist: %v", err)
	}

	got, err := s.LoadWorkingSet(ctx, SelectAll)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d questions, want 2", len(got))
	}
	q := got[0]
	if q.Stem != "2+2=?" || q.Type != bank.TypeSingleChoice {
		t.Errorf("question 0 = %+v", q)
	}
	if len(q.Options) != 3 || q.Options[1] != (bank.Option{Label: "B", Text: "4"}) {
		t.Errorf("options = %+v", q.Options)
	}
	if !bank.EqualLabelSets(q.Correct, []string{"B"}) {
		t.Errorf("correct = %v", q.Correct)
	}
	if q.Source.File != "math.txt" || q.Source.Ordinal != 1 {
		t.Errorf("source = %+v", q.Source)
	}
}

func TestApplyAttemptAtomicWithWrongbook(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	qs := sampleQuestions()
	if _, err := s.PersistQuestions(ctx, qs); err != nil {
		t.Fatalf("persist: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	entry := wrongbook.Transition(nil, qs[0].ID, false, now)
	err := s.ApplyAttempt(ctx, bank.Attempt{
		QuestionID: qs[0].ID, Given: "A", Correct: false, At: now,
	}, &entry)
	if err != nil {
		t.Fatalf("apply attempt: %v", err)
	}

	got, err := s.WrongbookEntry(ctx, qs[0].ID)
	if err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if got == nil || !got.Active || got.Streak != 0 {
		t.Errorf("entry = %+v, want active streak 0", got)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Attempts != 1 || st.CorrectAttempts != 0 {
		t.Errorf("attempts = %d/%d, want 1/0", st.CorrectAttempts, st.Attempts)
	}
	if st.WrongbookActive != 1 {
		t.Errorf("wrongbook active = %d, want 1", st.WrongbookActive)
	}
	if st.StreakCounts[0] != 1 {
		t.Errorf("streak distribution = %v, want {0:1}", st.StreakCounts)
	}
}

func TestApplyAttemptNilEntrySkipsWrongbook(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	qs := sampleQuestions()
	if _, err := s.PersistQuestions(ctx, qs); err != nil {
		t.Fatalf("persist: %v", err)
	}

	now := time.Now().UTC()
	err := s.ApplyAttempt(ctx, bank.Attempt{
		QuestionID: qs[0].ID, Given: "B", Correct: true, At: now,
	}, nil)
	if err != nil {
		t.Fatalf("apply attempt: %v", err)
	}

	got, err := s.WrongbookEntry(ctx, qs[0].ID)
	if err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if got != nil {
		t.Errorf("entry = %+v, want none", got)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Attempts != 1 || st.CorrectAttempts != 1 {
		t.Errorf("attempts = %d/%d, want 1/1", st.CorrectAttempts, st.Attempts)
	}
	if st.WrongbookActive != 0 {
		t.Errorf("wrongbook active = %d, want 0", st.WrongbookActive)
	}
}

func TestApplyAttemptRejectsUnknownQuestion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	entry := wrongbook.Transition(nil, "missing", false, now)
	err := s.ApplyAttempt(ctx, bank.Attempt{QuestionID: "missing", Given: "A", At: now}, &entry)
	if err == nil {
		t.Fatal("expected foreign key failure for unknown question")
	}

	// Transaction rolled back: no attempt row either.
	st, statErr := s.Stats(ctx)
	if statErr != nil {
		t.Fatalf("stats: %v", statErr)
	}
	if st.Attempts != 0 {
		t.Errorf("attempts = %d after rollback, want 0", st.Attempts)
	}
}

func TestWorkingSetWrongbookActive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	qs := sampleQuestions()
	if _, err := s.PersistQuestions(ctx, qs); err != nil {
		t.Fatalf("persist: %v", err)
	}

	now := time.Now().UTC()
	entry := wrongbook.Transition(nil, qs[1].ID, false, now)
	if err := s.ApplyAttempt(ctx, bank.Attempt{QuestionID: qs[1].ID, Given: "true", At: now}, &entry); err != nil {
		t.Fatalf("apply attempt: %v", err)
	}

	got, err := s.LoadWorkingSet(ctx, SelectWrongbookActive)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != qs[1].ID {
		t.Errorf("wrongbook working set = %+v, want only %s", got, qs[1].ID)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if _, err := s.PersistQuestions(ctx, sampleQuestions()); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	count, err := s.CountQuestions(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d after reset, want 0", count)
	}
}

func TestAppendLLMRequest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	err := s.AppendLLMRequest(ctx, LLMRequestEventData{
		Provider: "mock", Model: "mock-1", Purpose: "explain",
		LatencyMs: 12, Success: true,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	var n int
	if err := s.DB().QueryRow(`SELECT COUNT(*) FROM llm_events`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("llm_events = %d, want 1", n)
	}
}
