package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RecordUsage adds one provider call's token counts to the tenant's daily
// usage row. Metering is per calendar day in UTC.
func (r *Repo) RecordUsage(ctx context.Context, tenantID uuid.UUID, provider string, inputTokens, outputTokens int64) error {
	query := `
		INSERT INTO ai_usage_daily (tenant_id, usage_date, provider, input_tokens, output_tokens, request_count)
		VALUES ($1, (now() AT TIME ZONE 'utc')::date, $2, $3, $4, 1)
		ON CONFLICT (tenant_id, usage_date, provider) DO UPDATE SET
			input_tokens = ai_usage_daily.input_tokens + EXCLUDED.input_tokens,
			output_tokens = ai_usage_daily.output_tokens + EXCLUDED.output_tokens,
			request_count = ai_usage_daily.request_count + 1,
			updated_at = now()`

	if _, err := r.pool.Exec(ctx, query, tenantID, provider, inputTokens, outputTokens); err != nil {
		return fmt.Errorf("record ai usage: %w", err)
	}
	return nil
}

// ListUsage retrieves daily usage rows for a tenant within a date range.
func (r *Repo) ListUsage(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]UsageRecord, error) {
	query := `
		SELECT tenant_id, usage_date, provider, input_tokens, output_tokens, request_count
		FROM ai_usage_daily
		WHERE tenant_id = $1 AND usage_date BETWEEN $2::date AND $3::date
		ORDER BY usage_date DESC, provider ASC`

	rows, err := r.pool.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list ai usage: %w", err)
	}
	defer rows.Close()

	records := make([]UsageRecord, 0)
	for rows.Next() {
		var rec UsageRecord
		if err := rows.Scan(&rec.TenantID, &rec.UsageDate, &rec.Provider, &rec.InputTokens, &rec.OutputTokens, &rec.RequestCount); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
