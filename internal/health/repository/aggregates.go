package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new health repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CustomerExists reports whether a customer exists within a tenant.
func (r *Repo) CustomerExists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1 AND tenant_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, customerID, tenantID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check customer exists: %w", err)
	}
	return exists, nil
}

// CustomerAggregates gathers all scoring inputs for one customer in a single
// round trip. Recency counts use a fixed 30-day lookback window. Missing
// history produces zero counts and NULL recency values, never an error.
func (r *Repo) CustomerAggregates(ctx context.Context, tenantID, customerID uuid.UUID) (Aggregates, error) {
	query := `
		WITH invoice_stats AS (
			SELECT
				COUNT(*) AS total_invoices,
				COUNT(*) FILTER (WHERE status = 'paid') AS paid_invoices,
				COUNT(*) FILTER (
					WHERE status NOT IN ('paid', 'cancelled')
					  AND due_date IS NOT NULL
					  AND due_date < now()
				) AS overdue_invoices,
				COALESCE(AVG(
					EXTRACT(EPOCH FROM (paid_at - due_date)) / 86400.0
				) FILTER (WHERE status = 'paid' AND paid_at IS NOT NULL AND due_date IS NOT NULL), 0) AS avg_payment_delay_days
			FROM invoices
			WHERE tenant_id = $1 AND customer_id = $2
		),
		activity_stats AS (
			SELECT
				EXTRACT(DAY FROM now() - MAX(occurred_at))::int AS days_since_last_activity,
				COUNT(*) FILTER (
					WHERE activity_type = 'customer_issue'
					  AND occurred_at >= now() - INTERVAL '30 days'
				) AS recent_issue_count
			FROM customer_activities
			WHERE tenant_id = $1 AND customer_id = $2
		),
		order_stats AS (
			SELECT
				COUNT(*) AS total_orders,
				COALESCE(SUM(total_cents), 0) AS total_revenue_cents,
				COALESCE(AVG(total_cents), 0)::bigint AS avg_order_value_cents,
				COUNT(*) FILTER (WHERE issued_at >= now() - INTERVAL '30 days') AS recent_order_count,
				EXTRACT(DAY FROM now() - MAX(issued_at))::int AS days_since_last_order
			FROM sales_documents
			WHERE tenant_id = $1 AND customer_id = $2
			  AND doc_type = 'order'
			  AND status <> 'cancelled'
		)
		SELECT
			i.total_invoices, i.paid_invoices, i.overdue_invoices, i.avg_payment_delay_days,
			a.days_since_last_activity, a.recent_issue_count,
			o.total_orders, o.total_revenue_cents, o.avg_order_value_cents,
			o.recent_order_count, o.days_since_last_order
		FROM invoice_stats i, activity_stats a, order_stats o`

	var agg Aggregates
	err := r.pool.QueryRow(ctx, query, tenantID, customerID).Scan(
		&agg.TotalInvoices, &agg.PaidInvoices, &agg.OverdueInvoices, &agg.AvgPaymentDelayDays,
		&agg.DaysSinceLastActivity, &agg.RecentIssueCount,
		&agg.TotalOrders, &agg.TotalRevenueCents, &agg.AvgOrderValueCents,
		&agg.RecentOrderCount, &agg.DaysSinceLastOrder,
	)
	if err != nil {
		return Aggregates{}, fmt.Errorf("aggregate customer metrics: %w", err)
	}

	return agg, nil
}
