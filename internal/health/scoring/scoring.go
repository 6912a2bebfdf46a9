// Package scoring contains the pure health-score calculation.
// All functions are deterministic and free of I/O so the scoring rules
// can be tested in isolation from the aggregate queries that feed them.
package scoring

import "math"

// Sub-score weights. They must sum to 1.0.
const (
	weightPayment        = 0.30
	weightEngagement     = 0.20
	weightOrderFrequency = 0.20
	weightGrowth         = 0.15
	weightIssue          = 0.15
)

// Risk tiers derived from the overall score.
const (
	TierLow      = "low"
	TierMedium   = "medium"
	TierHigh     = "high"
	TierCritical = "critical"
)

// Risk factor tags assembled from individual sub-scores.
const (
	FactorPaymentDelays   = "payment_delays"
	FactorLowEngagement   = "low_engagement"
	FactorDecliningOrders = "declining_orders"
	FactorMultipleIssues  = "multiple_issues"
)

// neutralScore is the midpoint default used when a metric has no source data.
// Missing data never fails a calculation.
const neutralScore = 50

// SubScores holds the five component scores, each in [0,100].
type SubScores struct {
	Payment        int
	Engagement     int
	OrderFrequency int
	Growth         int
	Issue          int
}

// Result is the combined scoring outcome.
type Result struct {
	SubScores
	Overall     int
	RiskTier    string
	RiskFactors []string
}

// PaymentScore scores payment behavior from invoice counts.
// Paid invoices push the score up, overdue invoices drag it down.
func PaymentScore(totalInvoices, paidInvoices, overdueInvoices int) int {
	if totalInvoices <= 0 {
		return neutralScore
	}
	paidRatio := float64(paidInvoices) / float64(totalInvoices)
	overdueRatio := float64(overdueInvoices) / float64(totalInvoices)
	return clamp(int(math.Round(paidRatio*100 - overdueRatio*50)))
}

// EngagementScore scores recency of the last recorded activity.
// A nil input means the customer has no activity history at all.
func EngagementScore(daysSinceLastActivity *int) int {
	if daysSinceLastActivity == nil {
		return neutralScore
	}
	days := *daysSinceLastActivity
	switch {
	case days <= 7:
		return 100
	case days <= 30:
		return 80
	case days <= 90:
		return 60
	default:
		return 40
	}
}

// OrderFrequencyScore scores the number of orders placed in the recent window.
func OrderFrequencyScore(recentOrders int) int {
	switch {
	case recentOrders >= 4:
		return 100
	case recentOrders >= 2:
		return 80
	case recentOrders >= 1:
		return 60
	default:
		return 40
	}
}

// GrowthScore is a placeholder until historical revenue comparison lands.
// It always returns the neutral midpoint.
func GrowthScore() int {
	return neutralScore
}

// IssueScore scores the number of customer issue activities in the recent window.
func IssueScore(recentIssues int) int {
	switch {
	case recentIssues == 0:
		return 100
	case recentIssues <= 2:
		return 60
	default:
		return 40
	}
}

// Combine applies the fixed weights to the sub-scores and derives the risk
// tier and risk factor tags. The overall score is always in [0,100].
func Combine(scores SubScores) Result {
	overall := clamp(int(math.Round(
		weightPayment*float64(scores.Payment) +
			weightEngagement*float64(scores.Engagement) +
			weightOrderFrequency*float64(scores.OrderFrequency) +
			weightGrowth*float64(scores.Growth) +
			weightIssue*float64(scores.Issue),
	)))

	return Result{
		SubScores:   scores,
		Overall:     overall,
		RiskTier:    riskTier(overall),
		RiskFactors: riskFactors(scores),
	}
}

func riskTier(overall int) string {
	switch {
	case overall >= 70:
		return TierLow
	case overall >= 50:
		return TierMedium
	case overall >= 30:
		return TierHigh
	default:
		return TierCritical
	}
}

func riskFactors(scores SubScores) []string {
	factors := make([]string, 0, 4)
	if scores.Payment < 50 {
		factors = append(factors, FactorPaymentDelays)
	}
	if scores.Engagement < 50 {
		factors = append(factors, FactorLowEngagement)
	}
	if scores.OrderFrequency < 50 {
		factors = append(factors, FactorDecliningOrders)
	}
	if scores.Issue < 70 {
		factors = append(factors, FactorMultipleIssues)
	}
	return factors
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
