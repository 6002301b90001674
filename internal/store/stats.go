package store

import (
	"context"
	"fmt"
)

// Stats summarizes practice history for the stats command and the home
// screen badges.
type Stats struct {
	Questions       int
	Attempts        int
	CorrectAttempts int
	WrongbookActive int
	// StreakCounts maps current streak (0..2) to the number of active
	// wrongbook entries holding it.
	StreakCounts map[int]int
}

// Accuracy is the fraction of correct attempts, 0 when nothing has been
// answered yet.
func (st *Stats) Accuracy() float64 {
	if st.Attempts == 0 {
		return 0
	}
	return float64(st.CorrectAttempts) / float64(st.Attempts)
}

// Stats gathers bank size, attempt accuracy, and the wrongbook streak
// distribution.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{StreakCounts: make(map[int]int)}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&st.Questions); err != nil {
		return nil, fmt.Errorf("count questions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(correct), 0) FROM attempts`).Scan(&st.Attempts, &st.CorrectAttempts); err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wrongbook WHERE active = 1`).Scan(&st.WrongbookActive); err != nil {
		return nil, fmt.Errorf("count wrongbook: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT streak, COUNT(*) FROM wrongbook WHERE active = 1 GROUP BY streak`)
	if err != nil {
		return nil, fmt.Errorf("streak distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var streak, count int
		if err := rows.Scan(&streak, &count); err != nil {
			return nil, fmt.Errorf("scan streak row: %w", err)
		}
		st.StreakCounts[streak] = count
	}
	return st, rows.Err()
}
