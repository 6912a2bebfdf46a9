package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Aggregates holds the raw metrics gathered for one customer.
// Every field has a defined zero-value meaning so a customer with no
// history still produces a valid score.
type Aggregates struct {
	TotalInvoices   int
	PaidInvoices    int
	OverdueInvoices int
	// AvgPaymentDelayDays is the mean days between due date and payment
	// across paid invoices, 0 when nothing has been paid.
	AvgPaymentDelayDays float64

	// DaysSinceLastActivity is nil when the customer has no recorded activity.
	DaysSinceLastActivity *int
	// RecentIssueCount counts customer_issue activities in the lookback window.
	RecentIssueCount int

	TotalOrders       int
	TotalRevenueCents int64
	AvgOrderValueCents int64
	// RecentOrderCount counts orders placed in the lookback window.
	RecentOrderCount int
	// DaysSinceLastOrder is nil when the customer has never ordered.
	DaysSinceLastOrder *int
}

// HealthScore is the persisted scoring record, one row per (tenant, customer).
type HealthScore struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	CustomerID uuid.UUID

	PaymentScore        int
	EngagementScore     int
	OrderFrequencyScore int
	GrowthScore         int
	IssueScore          int
	OverallScore        int
	RiskTier            string
	Trend               string
	RiskFactors         []string

	TotalOrders         int
	TotalRevenueCents   int64
	AvgOrderValueCents  int64
	DaysSinceLastOrder  *int
	AvgPaymentDelayDays float64
	RecentIssueCount    int

	CalculatedAt time.Time
}

// UpsertParams contains everything needed to write a health score record.
type UpsertParams struct {
	TenantID   uuid.UUID
	CustomerID uuid.UUID

	PaymentScore        int
	EngagementScore     int
	OrderFrequencyScore int
	GrowthScore         int
	IssueScore          int
	OverallScore        int
	RiskTier            string
	Trend               string
	RiskFactors         []string

	TotalOrders         int
	TotalRevenueCents   int64
	AvgOrderValueCents  int64
	DaysSinceLastOrder  *int
	AvgPaymentDelayDays float64
	RecentIssueCount    int
}

// AggregateReader gathers scoring inputs for a customer.
type AggregateReader interface {
	CustomerAggregates(ctx context.Context, tenantID, customerID uuid.UUID) (Aggregates, error)
	CustomerExists(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error)
}

// ScoreStore persists and reads health score records.
type ScoreStore interface {
	UpsertScore(ctx context.Context, params UpsertParams) (HealthScore, error)
	GetScore(ctx context.Context, tenantID, customerID uuid.UUID) (HealthScore, error)
	ListScores(ctx context.Context, tenantID uuid.UUID, riskTier string) ([]HealthScore, error)
}

// Repository combines all health repository operations.
type Repository interface {
	AggregateReader
	ScoreStore
}
