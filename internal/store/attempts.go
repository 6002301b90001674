package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/drillbook/drillbook/internal/bank"
	"github.com/drillbook/drillbook/internal/wrongbook"
)

// ApplyAttempt appends one attempt and upserts the matching wrongbook
// snapshot as a single transaction. Either both land or neither does. A
// nil entry records the attempt alone and leaves the wrongbook untouched.
func (s *Store) ApplyAttempt(ctx context.Context, attempt bank.Attempt, entry *wrongbook.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (question_id, given, correct, at) VALUES (?, ?, ?, ?)`,
		attempt.QuestionID, attempt.Given, attempt.Correct, attempt.At.UTC()); err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}

	if entry != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO wrongbook (question_id, streak, active, added_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(question_id) DO UPDATE SET
				streak = excluded.streak,
				active = excluded.active,
				added_at = excluded.added_at,
				updated_at = excluded.updated_at`,
			entry.QuestionID, entry.Streak, entry.Active,
			entry.AddedAt.UTC(), entry.UpdatedAt.UTC()); err != nil {
			return fmt.Errorf("upsert wrongbook entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// WrongbookEntry loads the snapshot for a question; nil when the
// question has never entered the wrongbook.
func (s *Store) WrongbookEntry(ctx context.Context, questionID string) (*wrongbook.Entry, error) {
	var e wrongbook.Entry
	err := s.db.QueryRowContext(ctx,
		`SELECT question_id, streak, active, added_at, updated_at FROM wrongbook WHERE question_id = ?`,
		questionID).Scan(&e.QuestionID, &e.Streak, &e.Active, &e.AddedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load wrongbook entry: %w", err)
	}
	return &e, nil
}

// ActiveWrongbookEntries lists active entries, most recently touched
// first.
func (s *Store) ActiveWrongbookEntries(ctx context.Context) ([]wrongbook.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, streak, active, added_at, updated_at FROM wrongbook
		 WHERE active = 1 ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list wrongbook: %w", err)
	}
	defer rows.Close()

	var out []wrongbook.Entry
	for rows.Next() {
		var e wrongbook.Entry
		if err := rows.Scan(&e.QuestionID, &e.Streak, &e.Active, &e.AddedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wrongbook entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ActiveWrongbookCount counts active entries.
func (s *Store) ActiveWrongbookCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wrongbook WHERE active = 1`).Scan(&n)
	return n, err
}
