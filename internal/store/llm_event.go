package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LLMRequestEventData captures one provider call for the request log.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	QuestionID   string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// AppendLLMRequest records one LLM call outcome.
func (s *Store) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO llm_events
		 (provider, model, purpose, question_id, input_tokens, output_tokens,
		  latency_ms, success, error, request_body, response_body, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.Provider, data.Model, data.Purpose, data.QuestionID,
		data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success,
		data.ErrorMessage, data.RequestBody, data.ResponseBody, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// LLMEvent is one logged provider call.
type LLMEvent struct {
	ID int
	LLMRequestEventData
	Timestamp time.Time
}

const llmEventColumns = `id, provider, model, purpose, question_id,
	input_tokens, output_tokens, latency_ms, success, error,
	request_body, response_body, at`

func scanLLMEvent(row interface{ Scan(...any) error }) (*LLMEvent, error) {
	var e LLMEvent
	err := row.Scan(&e.ID, &e.Provider, &e.Model, &e.Purpose, &e.QuestionID,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success,
		&e.ErrorMessage, &e.RequestBody, &e.ResponseBody, &e.Timestamp)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// QueryLLMEvents returns the most recent logged calls, newest first.
// purpose filters when non-empty.
func (s *Store) QueryLLMEvents(ctx context.Context, limit int, purpose string) ([]*LLMEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + llmEventColumns + ` FROM llm_events`
	args := []any{}
	if purpose != "" {
		query += ` WHERE purpose = ?`
		args = append(args, purpose)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var events []*LLMEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetLLMEvent loads one event by ID. Returns nil, nil when absent.
func (s *Store) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+llmEventColumns+` FROM llm_events WHERE id = ?`, id)
	e, err := scanLLMEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return e, nil
}

// LLMUsage aggregates token counts per grouping key.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// LLMUsageByPurpose aggregates usage per purpose.
func (s *Store) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT purpose, COUNT(*), COALESCE(SUM(input_tokens), 0),
		        COALESCE(SUM(output_tokens), 0), COALESCE(AVG(latency_ms), 0)
		 FROM llm_events GROUP BY purpose ORDER BY purpose`)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		var avg float64
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		u.AvgLatencyMs = int(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

// LLMUsageByModel aggregates usage per model for cost estimation.
func (s *Store) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model, COUNT(*), COALESCE(SUM(input_tokens), 0),
		        COALESCE(SUM(output_tokens), 0)
		 FROM llm_events GROUP BY model ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
