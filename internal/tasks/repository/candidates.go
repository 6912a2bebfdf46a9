package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// candidateLimit caps each candidate query to the top entries by value or
// urgency so the snapshot sent to the AI provider stays bounded.
const candidateLimit = 10

// StaleLead is an open lead with no recent activity.
type StaleLead struct {
	ID                  uuid.UUID
	Name                string
	ContactEmail        string
	ContactPhone        string
	EstimatedValueCents int64
	DaysSinceActivity   int
}

// StaleQuote is a sent quote that has not been accepted or rejected.
type StaleQuote struct {
	ID            uuid.UUID
	Number        string
	CustomerID    *uuid.UUID
	CustomerName  string
	TotalCents    int64
	DaysSinceSent int
}

// OverdueInvoice is an unpaid invoice past its due date.
type OverdueInvoice struct {
	ID            uuid.UUID
	Number        string
	CustomerID    uuid.UUID
	CustomerName  string
	CustomerPhone *string
	AmountCents   int64
	DaysOverdue   int
}

// AtRiskCustomer is a customer whose health score sits in a high or
// critical risk tier.
type AtRiskCustomer struct {
	ID           uuid.UUID
	Name         string
	Phone        *string
	OverallScore int
	RiskTier     string
	RiskFactors  []string
}

// DormantCustomer is a previously ordering customer with no orders in the
// dormancy window.
type DormantCustomer struct {
	ID                 uuid.UUID
	Name               string
	Phone              *string
	TotalOrders        int
	TotalRevenueCents  int64
	DaysSinceLastOrder int
}

// CandidateSet bundles the five candidate queries feeding one scan.
type CandidateSet struct {
	StaleLeads       []StaleLead
	StaleQuotes      []StaleQuote
	OverdueInvoices  []OverdueInvoice
	AtRiskCustomers  []AtRiskCustomer
	DormantCustomers []DormantCustomer
}

// Size returns the total number of candidate entities in the set.
func (s CandidateSet) Size() int {
	return len(s.StaleLeads) + len(s.StaleQuotes) + len(s.OverdueInvoices) +
		len(s.AtRiskCustomers) + len(s.DormantCustomers)
}

// CandidateReader gathers scan candidates for a tenant.
type CandidateReader interface {
	StaleLeads(ctx context.Context, tenantID uuid.UUID) ([]StaleLead, error)
	StaleQuotes(ctx context.Context, tenantID uuid.UUID) ([]StaleQuote, error)
	OverdueInvoices(ctx context.Context, tenantID uuid.UUID) ([]OverdueInvoice, error)
	AtRiskCustomers(ctx context.Context, tenantID uuid.UUID) ([]AtRiskCustomer, error)
	DormantCustomers(ctx context.Context, tenantID uuid.UUID) ([]DormantCustomer, error)
}

// StaleLeads finds open leads with no activity for over a week, highest
// value first.
func (r *Repo) StaleLeads(ctx context.Context, tenantID uuid.UUID) ([]StaleLead, error) {
	query := `
		SELECT id, name, contact_email, contact_phone, estimated_value_cents,
			EXTRACT(DAY FROM now() - COALESCE(last_activity_at, created_at))::int AS days_since_activity
		FROM leads
		WHERE tenant_id = $1
		  AND status IN ('open', 'contacted')
		  AND COALESCE(last_activity_at, created_at) < now() - INTERVAL '7 days'
		ORDER BY estimated_value_cents DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("query stale leads: %w", err)
	}
	defer rows.Close()

	leads := make([]StaleLead, 0)
	for rows.Next() {
		var l StaleLead
		if err := rows.Scan(&l.ID, &l.Name, &l.ContactEmail, &l.ContactPhone, &l.EstimatedValueCents, &l.DaysSinceActivity); err != nil {
			return nil, fmt.Errorf("scan stale lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// StaleQuotes finds sent quotes without a response for over a week, highest
// value first.
func (r *Repo) StaleQuotes(ctx context.Context, tenantID uuid.UUID) ([]StaleQuote, error) {
	query := `
		SELECT q.id, q.number, q.customer_id, COALESCE(c.name, ''), q.total_cents,
			EXTRACT(DAY FROM now() - q.issued_at)::int AS days_since_sent
		FROM sales_documents q
		LEFT JOIN customers c ON c.id = q.customer_id
		WHERE q.tenant_id = $1
		  AND q.doc_type = 'quote'
		  AND q.status = 'sent'
		  AND q.issued_at < now() - INTERVAL '7 days'
		ORDER BY q.total_cents DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("query stale quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]StaleQuote, 0)
	for rows.Next() {
		var q StaleQuote
		if err := rows.Scan(&q.ID, &q.Number, &q.CustomerID, &q.CustomerName, &q.TotalCents, &q.DaysSinceSent); err != nil {
			return nil, fmt.Errorf("scan stale quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// OverdueInvoices finds unpaid invoices past their due date, most overdue
// first.
func (r *Repo) OverdueInvoices(ctx context.Context, tenantID uuid.UUID) ([]OverdueInvoice, error) {
	query := `
		SELECT i.id, i.number, i.customer_id, c.name, c.phone, i.amount_cents,
			EXTRACT(DAY FROM now() - i.due_date)::int AS days_overdue
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id
		WHERE i.tenant_id = $1
		  AND i.status NOT IN ('paid', 'cancelled')
		  AND i.due_date IS NOT NULL
		  AND i.due_date < now()
		ORDER BY days_overdue DESC, i.amount_cents DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("query overdue invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]OverdueInvoice, 0)
	for rows.Next() {
		var inv OverdueInvoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &inv.CustomerName, &inv.CustomerPhone, &inv.AmountCents, &inv.DaysOverdue); err != nil {
			return nil, fmt.Errorf("scan overdue invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// AtRiskCustomers finds customers whose latest health score puts them in a
// high or critical tier, worst first.
func (r *Repo) AtRiskCustomers(ctx context.Context, tenantID uuid.UUID) ([]AtRiskCustomer, error) {
	query := `
		SELECT c.id, c.name, c.phone, h.overall_score, h.risk_tier, h.risk_factors
		FROM customer_health_scores h
		JOIN customers c ON c.id = h.customer_id
		WHERE h.tenant_id = $1
		  AND h.risk_tier IN ('high', 'critical')
		ORDER BY h.overall_score ASC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("query at-risk customers: %w", err)
	}
	defer rows.Close()

	customers := make([]AtRiskCustomer, 0)
	for rows.Next() {
		var c AtRiskCustomer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.OverallScore, &c.RiskTier, &c.RiskFactors); err != nil {
			return nil, fmt.Errorf("scan at-risk customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// DormantCustomers finds customers who ordered before but not in the last
// 90 days, highest historical revenue first.
func (r *Repo) DormantCustomers(ctx context.Context, tenantID uuid.UUID) ([]DormantCustomer, error) {
	query := `
		SELECT c.id, c.name, c.phone,
			COUNT(o.id)::int AS total_orders,
			COALESCE(SUM(o.total_cents), 0) AS total_revenue_cents,
			EXTRACT(DAY FROM now() - MAX(o.issued_at))::int AS days_since_last_order
		FROM customers c
		JOIN sales_documents o ON o.customer_id = c.id
			AND o.doc_type = 'order'
			AND o.status <> 'cancelled'
		WHERE c.tenant_id = $1
		GROUP BY c.id, c.name, c.phone
		HAVING MAX(o.issued_at) < now() - INTERVAL '90 days'
		ORDER BY total_revenue_cents DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("query dormant customers: %w", err)
	}
	defer rows.Close()

	customers := make([]DormantCustomer, 0)
	for rows.Next() {
		var c DormantCustomer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.TotalOrders, &c.TotalRevenueCents, &c.DaysSinceLastOrder); err != nil {
			return nil, fmt.Errorf("scan dormant customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
