package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Translation is one attempt to translate the clipboard.
type Translation struct {
	ID           int64
	CreatedAt    time.Time
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	SourceChars  int
	ResultChars  int
	Latency      time.Duration
	Success      bool
	ErrorMessage string
}

// Usage sums the ledger over a period.
type Usage struct {
	Translations int
	Failures     int
	InputTokens  int64
	OutputTokens int64
	CostUSD      float64
}

// RecordTranslation appends t to the ledger and sets its ID. A zero
// CreatedAt is stamped with the current time.
func (db *DB) RecordTranslation(ctx context.Context, t *Translation) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	var errorMessage sql.NullString
	if t.ErrorMessage != "" {
		errorMessage = sql.NullString{String: t.ErrorMessage, Valid: true}
	}

	result, err := db.conn.ExecContext(ctx, `
		INSERT INTO translations (
			created_at_ms, model, input_tokens, output_tokens, cost_usd,
			source_chars, result_chars, latency_ms, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.CreatedAt.UnixMilli(), t.Model, t.InputTokens, t.OutputTokens, t.CostUSD,
		t.SourceChars, t.ResultChars, t.Latency.Milliseconds(), t.Success, errorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save translation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}
	t.ID = id
	return nil
}

// Recent returns up to limit translations, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Translation, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			id, created_at_ms, model, input_tokens, output_tokens, cost_usd,
			source_chars, result_chars, latency_ms, success, error_message
		FROM translations
		ORDER BY created_at_ms DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query translations: %w", err)
	}
	defer rows.Close()

	var out []Translation
	for rows.Next() {
		var (
			t            Translation
			createdAtMs  int64
			latencyMs    int64
			errorMessage sql.NullString
		)
		err := rows.Scan(
			&t.ID, &createdAtMs, &t.Model, &t.InputTokens, &t.OutputTokens, &t.CostUSD,
			&t.SourceChars, &t.ResultChars, &latencyMs, &t.Success, &errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		t.CreatedAt = time.UnixMilli(createdAtMs)
		t.Latency = time.Duration(latencyMs) * time.Millisecond
		t.ErrorMessage = errorMessage.String
		out = append(out, t)
	}

	return out, rows.Err()
}

// Totals sums every translation recorded at or after since.
func (db *DB) Totals(ctx context.Context, since time.Time) (Usage, error) {
	var u Usage
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(input_tokens), 0),
			COALESCE(SUM(output_tokens), 0),
			COALESCE(SUM(cost_usd), 0)
		FROM translations
		WHERE created_at_ms >= ?`, since.UnixMilli()).Scan(
		&u.Translations, &u.Failures, &u.InputTokens, &u.OutputTokens, &u.CostUSD,
	)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to query usage totals: %w", err)
	}
	return u, nil
}
