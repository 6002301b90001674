package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/drillbook/drillbook/internal/bank"
)

// WorkingSetSelector picks which questions a session draws from.
type WorkingSetSelector string

const (
	SelectAll             WorkingSetSelector = "all"
	SelectWrongbookActive WorkingSetSelector = "wrongbook-active"
)

// PersistQuestions inserts the accepted import batch in one transaction.
// Rows keyed by an already-present content hash are ignored, so
// re-importing the same document is a no-op. Returns the number of rows
// newly inserted.
func (s *Store) PersistQuestions(ctx context.Context, questions []bank.Question) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO questions
		(id, type, stem, options, correct, analysis, score, source_file, source_ordinal, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
	for _, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return 0, fmt.Errorf("marshal options: %w", err)
		}
		res, err := stmt.ExecContext(ctx, q.ID, string(q.Type), q.Stem, string(opts),
			strings.Join(q.Correct, "\x1f"), q.Analysis, q.Score,
			q.Source.File, q.Source.Ordinal, now)
		if err != nil {
			return 0, fmt.Errorf("insert question %s: %w", q.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// LoadWorkingSet returns the questions matched by the selector, in
// import order.
func (s *Store) LoadWorkingSet(ctx context.Context, sel WorkingSetSelector) ([]bank.Question, error) {
	query := `SELECT q.id, q.type, q.stem, q.options, q.correct, q.analysis, q.score, q.source_file, q.source_ordinal
		FROM questions q`
	if sel == SelectWrongbookActive {
		query += ` JOIN wrongbook w ON w.question_id = q.id AND w.active = 1`
	} else if sel != SelectAll {
		return nil, fmt.Errorf("unknown working set selector %q", sel)
	}
	query += ` ORDER BY q.rowid`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load working set: %w", err)
	}
	defer rows.Close()

	var out []bank.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// Question loads a single question by id. Returns sql.ErrNoRows wrapped
// when absent.
func (s *Store) Question(ctx context.Context, id string) (*bank.Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, type, stem, options, correct, analysis, score, source_file, source_ordinal
		FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if err != nil {
		return nil, fmt.Errorf("load question %s: %w", id, err)
	}
	return &q, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (bank.Question, error) {
	var q bank.Question
	var typ, opts, correct string
	if err := row.Scan(&q.ID, &typ, &q.Stem, &opts, &correct, &q.Analysis, &q.Score,
		&q.Source.File, &q.Source.Ordinal); err != nil {
		return q, err
	}
	q.Type = bank.QuestionType(typ)
	if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
		return q, fmt.Errorf("unmarshal options: %w", err)
	}
	if correct != "" {
		q.Correct = strings.Split(correct, "\x1f")
	}
	return q, nil
}

// CountQuestions returns the bank size.
func (s *Store) CountQuestions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}

// Reset drops all stored data. Used by the reset command.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"attempts", "wrongbook", "llm_events", "questions"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
