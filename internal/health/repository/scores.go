package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"salespulse_backend/platform/apperr"
)

const scoreNotFoundMessage = "health score not found"

const scoreColumns = `
	id, tenant_id, customer_id,
	payment_score, engagement_score, order_frequency_score, growth_score, issue_score,
	overall_score, risk_tier, trend, risk_factors,
	total_orders, total_revenue_cents, avg_order_value_cents, days_since_last_order,
	avg_payment_delay_days, recent_issue_count, calculated_at`

// UpsertScore inserts or replaces the health score for a customer.
// Recalculation is last-write-wins; no score history is retained.
func (r *Repo) UpsertScore(ctx context.Context, params UpsertParams) (HealthScore, error) {
	query := `
		INSERT INTO customer_health_scores (
			tenant_id, customer_id,
			payment_score, engagement_score, order_frequency_score, growth_score, issue_score,
			overall_score, risk_tier, trend, risk_factors,
			total_orders, total_revenue_cents, avg_order_value_cents, days_since_last_order,
			avg_payment_delay_days, recent_issue_count, calculated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now())
		ON CONFLICT (tenant_id, customer_id) DO UPDATE SET
			payment_score = EXCLUDED.payment_score,
			engagement_score = EXCLUDED.engagement_score,
			order_frequency_score = EXCLUDED.order_frequency_score,
			growth_score = EXCLUDED.growth_score,
			issue_score = EXCLUDED.issue_score,
			overall_score = EXCLUDED.overall_score,
			risk_tier = EXCLUDED.risk_tier,
			trend = EXCLUDED.trend,
			risk_factors = EXCLUDED.risk_factors,
			total_orders = EXCLUDED.total_orders,
			total_revenue_cents = EXCLUDED.total_revenue_cents,
			avg_order_value_cents = EXCLUDED.avg_order_value_cents,
			days_since_last_order = EXCLUDED.days_since_last_order,
			avg_payment_delay_days = EXCLUDED.avg_payment_delay_days,
			recent_issue_count = EXCLUDED.recent_issue_count,
			calculated_at = now()
		RETURNING ` + scoreColumns

	row := r.pool.QueryRow(ctx, query,
		params.TenantID, params.CustomerID,
		params.PaymentScore, params.EngagementScore, params.OrderFrequencyScore,
		params.GrowthScore, params.IssueScore,
		params.OverallScore, params.RiskTier, params.Trend, params.RiskFactors,
		params.TotalOrders, params.TotalRevenueCents, params.AvgOrderValueCents, params.DaysSinceLastOrder,
		params.AvgPaymentDelayDays, params.RecentIssueCount,
	)

	score, err := scanScore(row)
	if err != nil {
		return HealthScore{}, fmt.Errorf("upsert health score: %w", err)
	}
	return score, nil
}

// GetScore retrieves the stored health score for a customer.
func (r *Repo) GetScore(ctx context.Context, tenantID, customerID uuid.UUID) (HealthScore, error) {
	query := `SELECT ` + scoreColumns + `
		FROM customer_health_scores
		WHERE tenant_id = $1 AND customer_id = $2`

	score, err := scanScore(r.pool.QueryRow(ctx, query, tenantID, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return HealthScore{}, apperr.NotFound(scoreNotFoundMessage)
		}
		return HealthScore{}, fmt.Errorf("get health score: %w", err)
	}
	return score, nil
}

// ListScores retrieves health scores for a tenant, optionally filtered by
// risk tier, ordered worst-first.
func (r *Repo) ListScores(ctx context.Context, tenantID uuid.UUID, riskTier string) ([]HealthScore, error) {
	var tierParam interface{}
	if riskTier != "" {
		tierParam = riskTier
	}

	query := `SELECT ` + scoreColumns + `
		FROM customer_health_scores
		WHERE tenant_id = $1
		  AND ($2::text IS NULL OR risk_tier = $2)
		ORDER BY overall_score ASC`

	rows, err := r.pool.Query(ctx, query, tenantID, tierParam)
	if err != nil {
		return nil, fmt.Errorf("list health scores: %w", err)
	}
	defer rows.Close()

	scores := make([]HealthScore, 0)
	for rows.Next() {
		score, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan health score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate health scores: %w", err)
	}

	return scores, nil
}

func scanScore(row pgx.Row) (HealthScore, error) {
	var s HealthScore
	err := row.Scan(
		&s.ID, &s.TenantID, &s.CustomerID,
		&s.PaymentScore, &s.EngagementScore, &s.OrderFrequencyScore, &s.GrowthScore, &s.IssueScore,
		&s.OverallScore, &s.RiskTier, &s.Trend, &s.RiskFactors,
		&s.TotalOrders, &s.TotalRevenueCents, &s.AvgOrderValueCents, &s.DaysSinceLastOrder,
		&s.AvgPaymentDelayDays, &s.RecentIssueCount, &s.CalculatedAt,
	)
	return s, err
}
