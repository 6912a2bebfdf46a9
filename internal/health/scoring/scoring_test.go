package scoring

import (
	"math"
	"testing"
)

func TestPaymentScore(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		paid    int
		overdue int
		want    int
	}{
		{"no invoices defaults to neutral", 0, 0, 0, 50},
		{"all paid", 10, 10, 0, 100},
		{"all overdue", 10, 0, 10, 0},
		{"half paid half overdue", 10, 5, 5, 25},
		{"mostly paid some overdue", 10, 8, 1, 75},
		{"rounding", 3, 2, 1, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaymentScore(tt.total, tt.paid, tt.overdue)
			if got != tt.want {
				t.Errorf("PaymentScore(%d, %d, %d) = %d, want %d", tt.total, tt.paid, tt.overdue, got, tt.want)
			}
		})
	}
}

func TestEngagementScore(t *testing.T) {
	days := func(d int) *int { return &d }

	tests := []struct {
		name  string
		input *int
		want  int
	}{
		{"no activity defaults to neutral", nil, 50},
		{"same day", days(0), 100},
		{"within a week", days(7), 100},
		{"within a month", days(30), 80},
		{"within a quarter", days(90), 60},
		{"beyond a quarter", days(91), 40},
		{"long dormant", days(400), 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EngagementScore(tt.input)
			if got != tt.want {
				t.Errorf("EngagementScore = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOrderFrequencyScore(t *testing.T) {
	tests := []struct {
		orders int
		want   int
	}{
		{0, 40},
		{1, 60},
		{2, 80},
		{3, 80},
		{4, 100},
		{10, 100},
	}

	for _, tt := range tests {
		got := OrderFrequencyScore(tt.orders)
		if got != tt.want {
			t.Errorf("OrderFrequencyScore(%d) = %d, want %d", tt.orders, got, tt.want)
		}
	}
}

func TestIssueScore(t *testing.T) {
	tests := []struct {
		issues int
		want   int
	}{
		{0, 100},
		{1, 60},
		{2, 60},
		{3, 40},
		{12, 40},
	}

	for _, tt := range tests {
		got := IssueScore(tt.issues)
		if got != tt.want {
			t.Errorf("IssueScore(%d) = %d, want %d", tt.issues, got, tt.want)
		}
	}
}

func TestGrowthScoreIsNeutralPlaceholder(t *testing.T) {
	if got := GrowthScore(); got != 50 {
		t.Errorf("GrowthScore() = %d, want 50", got)
	}
}

func TestCombineWeightedFormula(t *testing.T) {
	scores := SubScores{
		Payment:        80,
		Engagement:     60,
		OrderFrequency: 100,
		Growth:         50,
		Issue:          40,
	}

	want := int(math.Round(0.30*80 + 0.20*60 + 0.20*100 + 0.15*50 + 0.15*40))
	result := Combine(scores)
	if result.Overall != want {
		t.Errorf("Combine overall = %d, want %d", result.Overall, want)
	}
}

func TestCombineRiskTierBoundaries(t *testing.T) {
	tests := []struct {
		overall int
		want    string
	}{
		{71, TierLow},
		{70, TierLow},
		{69, TierMedium},
		{50, TierMedium},
		{49, TierHigh},
		{30, TierHigh},
		{29, TierCritical},
		{0, TierCritical},
		{100, TierLow},
	}

	for _, tt := range tests {
		// All sub-scores equal to the target overall makes the weighted sum
		// equal the target exactly, since the weights sum to 1.0.
		result := Combine(SubScores{
			Payment:        tt.overall,
			Engagement:     tt.overall,
			OrderFrequency: tt.overall,
			Growth:         tt.overall,
			Issue:          tt.overall,
		})
		if result.Overall != tt.overall {
			t.Fatalf("Combine overall = %d, want %d", result.Overall, tt.overall)
		}
		if result.RiskTier != tt.want {
			t.Errorf("tier(%d) = %q, want %q", tt.overall, result.RiskTier, tt.want)
		}
	}
}

func TestCombineRiskFactors(t *testing.T) {
	result := Combine(SubScores{
		Payment:        49,
		Engagement:     40,
		OrderFrequency: 40,
		Growth:         50,
		Issue:          60,
	})

	want := []string{FactorPaymentDelays, FactorLowEngagement, FactorDecliningOrders, FactorMultipleIssues}
	if len(result.RiskFactors) != len(want) {
		t.Fatalf("risk factors = %v, want %v", result.RiskFactors, want)
	}
	for i, factor := range want {
		if result.RiskFactors[i] != factor {
			t.Errorf("risk factor[%d] = %q, want %q", i, result.RiskFactors[i], factor)
		}
	}

	healthy := Combine(SubScores{Payment: 90, Engagement: 100, OrderFrequency: 80, Growth: 50, Issue: 100})
	if len(healthy.RiskFactors) != 0 {
		t.Errorf("healthy customer should have no risk factors, got %v", healthy.RiskFactors)
	}
}

func TestCombineNewCustomerScenario(t *testing.T) {
	// A customer with no invoices, no activities, and no orders lands on
	// the neutral defaults except order frequency (0 orders) and issues
	// (0 issues scores a perfect 100).
	scores := SubScores{
		Payment:        PaymentScore(0, 0, 0),
		Engagement:     EngagementScore(nil),
		OrderFrequency: OrderFrequencyScore(0),
		Growth:         GrowthScore(),
		Issue:          IssueScore(0),
	}

	if scores.Payment != 50 || scores.Engagement != 50 || scores.OrderFrequency != 40 || scores.Growth != 50 || scores.Issue != 100 {
		t.Fatalf("unexpected sub-scores for empty customer: %+v", scores)
	}

	result := Combine(scores)
	if result.Overall != 56 {
		t.Errorf("empty customer overall = %d, want 56", result.Overall)
	}
	if result.RiskTier != TierMedium {
		t.Errorf("empty customer tier = %q, want %q", result.RiskTier, TierMedium)
	}
}

func TestCombineClampsToRange(t *testing.T) {
	for _, scores := range []SubScores{
		{Payment: 0, Engagement: 0, OrderFrequency: 0, Growth: 0, Issue: 0},
		{Payment: 100, Engagement: 100, OrderFrequency: 100, Growth: 100, Issue: 100},
	} {
		result := Combine(scores)
		if result.Overall < 0 || result.Overall > 100 {
			t.Errorf("overall %d out of range for %+v", result.Overall, scores)
		}
	}
}
