package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salespulse_backend/internal/events"
	"salespulse_backend/internal/health/repository"
	"salespulse_backend/internal/health/scoring"
	"salespulse_backend/internal/health/transport"
	"salespulse_backend/platform/apperr"
	"salespulse_backend/platform/logger"
)

// Trend values. Genuine trend detection needs a prior snapshot to compare
// against, which is not retained; recalculation always reports "stable".
const trendStable = "stable"

// Service provides business logic for customer health scoring.
type Service struct {
	repo repository.Repository
	bus  events.Bus
	log  *logger.Logger
}

// New creates a new health service.
func New(repo repository.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log}
}

// Recalculate recomputes and persists a customer's health score from the
// current aggregates. The operation is idempotent: unchanged source data
// yields an identical record.
func (s *Service) Recalculate(ctx context.Context, tenantID, customerID uuid.UUID) (transport.HealthScoreResponse, error) {
	exists, err := s.repo.CustomerExists(ctx, tenantID, customerID)
	if err != nil {
		return transport.HealthScoreResponse{}, err
	}
	if !exists {
		return transport.HealthScoreResponse{}, apperr.NotFound("customer not found")
	}

	agg, err := s.repo.CustomerAggregates(ctx, tenantID, customerID)
	if err != nil {
		return transport.HealthScoreResponse{}, err
	}

	result := scoring.Combine(scoring.SubScores{
		Payment:        scoring.PaymentScore(agg.TotalInvoices, agg.PaidInvoices, agg.OverdueInvoices),
		Engagement:     scoring.EngagementScore(agg.DaysSinceLastActivity),
		OrderFrequency: scoring.OrderFrequencyScore(agg.RecentOrderCount),
		Growth:         scoring.GrowthScore(),
		Issue:          scoring.IssueScore(agg.RecentIssueCount),
	})

	score, err := s.repo.UpsertScore(ctx, repository.UpsertParams{
		TenantID:   tenantID,
		CustomerID: customerID,

		PaymentScore:        result.Payment,
		EngagementScore:     result.Engagement,
		OrderFrequencyScore: result.OrderFrequency,
		GrowthScore:         result.Growth,
		IssueScore:          result.Issue,
		OverallScore:        result.Overall,
		RiskTier:            result.RiskTier,
		Trend:               trendStable,
		RiskFactors:         result.RiskFactors,

		TotalOrders:         agg.TotalOrders,
		TotalRevenueCents:   agg.TotalRevenueCents,
		AvgOrderValueCents:  agg.AvgOrderValueCents,
		DaysSinceLastOrder:  agg.DaysSinceLastOrder,
		AvgPaymentDelayDays: agg.AvgPaymentDelayDays,
		RecentIssueCount:    agg.RecentIssueCount,
	})
	if err != nil {
		return transport.HealthScoreResponse{}, err
	}

	s.bus.Publish(ctx, events.CustomerHealthRecalculated{
		BaseEvent:    events.NewBaseEvent(),
		TenantID:     tenantID,
		CustomerID:   customerID,
		OverallScore: score.OverallScore,
		RiskTier:     score.RiskTier,
	})

	return toResponse(score), nil
}

// Get retrieves the stored health score for a customer. A customer that has
// never been scored gets a first-touch recalculation instead of a 404.
func (s *Service) Get(ctx context.Context, tenantID, customerID uuid.UUID) (transport.HealthScoreResponse, error) {
	score, err := s.repo.GetScore(ctx, tenantID, customerID)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return s.Recalculate(ctx, tenantID, customerID)
		}
		return transport.HealthScoreResponse{}, err
	}
	return toResponse(score), nil
}

// List retrieves the tenant's health scores, worst-first, optionally
// filtered by risk tier.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, riskTier string) (transport.HealthScoreListResponse, error) {
	switch riskTier {
	case "", scoring.TierLow, scoring.TierMedium, scoring.TierHigh, scoring.TierCritical:
	default:
		return transport.HealthScoreListResponse{}, apperr.BadRequest("invalid risk tier")
	}

	scores, err := s.repo.ListScores(ctx, tenantID, riskTier)
	if err != nil {
		return transport.HealthScoreListResponse{}, err
	}

	items := make([]transport.HealthScoreResponse, 0, len(scores))
	for _, score := range scores {
		items = append(items, toResponse(score))
	}
	return transport.HealthScoreListResponse{Items: items}, nil
}

func toResponse(score repository.HealthScore) transport.HealthScoreResponse {
	riskFactors := score.RiskFactors
	if riskFactors == nil {
		riskFactors = []string{}
	}

	return transport.HealthScoreResponse{
		CustomerID: score.CustomerID,
		Scores: transport.Scores{
			Payment:        score.PaymentScore,
			Engagement:     score.EngagementScore,
			OrderFrequency: score.OrderFrequencyScore,
			Growth:         score.GrowthScore,
			Issue:          score.IssueScore,
		},
		OverallScore: score.OverallScore,
		RiskTier:     score.RiskTier,
		Trend:        score.Trend,
		RiskFactors:  riskFactors,
		Metrics: transport.Metrics{
			TotalOrders:         score.TotalOrders,
			TotalRevenueCents:   score.TotalRevenueCents,
			AvgOrderValueCents:  score.AvgOrderValueCents,
			DaysSinceLastOrder:  score.DaysSinceLastOrder,
			AvgPaymentDelayDays: score.AvgPaymentDelayDays,
			RecentIssueCount:    score.RecentIssueCount,
		},
		CalculatedAt: score.CalculatedAt.Format(time.RFC3339),
	}
}
