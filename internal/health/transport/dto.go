// Package transport defines response DTOs for the health module.
package transport

import "github.com/google/uuid"

// HealthScoreResponse is the API representation of a customer health score.
type HealthScoreResponse struct {
	CustomerID   uuid.UUID `json:"customerId"`
	Scores       Scores    `json:"scores"`
	OverallScore int       `json:"overallScore"`
	RiskTier     string    `json:"riskTier"`
	Trend        string    `json:"trend"`
	RiskFactors  []string  `json:"riskFactors"`
	Metrics      Metrics   `json:"metrics"`
	CalculatedAt string    `json:"calculatedAt"`
}

// Scores groups the five component scores.
type Scores struct {
	Payment        int `json:"payment"`
	Engagement     int `json:"engagement"`
	OrderFrequency int `json:"orderFrequency"`
	Growth         int `json:"growth"`
	Issue          int `json:"issue"`
}

// Metrics groups the aggregate figures the scores were derived from.
type Metrics struct {
	TotalOrders         int     `json:"totalOrders"`
	TotalRevenueCents   int64   `json:"totalRevenueCents"`
	AvgOrderValueCents  int64   `json:"avgOrderValueCents"`
	DaysSinceLastOrder  *int    `json:"daysSinceLastOrder"`
	AvgPaymentDelayDays float64 `json:"avgPaymentDelayDays"`
	RecentIssueCount    int     `json:"recentIssueCount"`
}

// HealthScoreListResponse wraps a tenant-wide list of health scores.
type HealthScoreListResponse struct {
	Items []HealthScoreResponse `json:"items"`
}
