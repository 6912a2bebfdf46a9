package synthesizer

import (
	"context"
	"fmt"

	"salespulse_backend/internal/tasks/repository"
	"salespulse_backend/platform/phone"
)

// Fixed rule-path confidence constants, one per heuristic. The AI path gets
// its confidence from the provider; the rules assign these.
const (
	confidencePaymentReminder = 90
	confidenceAtRisk          = 85
	confidenceStaleQuote      = 80
	confidenceStaleLead       = 75
	confidenceReactivate      = 70
)

// highValueThresholdCents marks the amount above which follow-ups get a
// high priority (10000 in whole currency units).
const highValueThresholdCents = 10000 * 100

// criticalOverdueDays is the overdue age at which a payment reminder
// escalates to critical priority.
const criticalOverdueDays = 30

// RuleSource is the deterministic task generator. Given the same candidate
// set it always produces the same drafts, making it both the availability
// fallback for the AI path and a predictable baseline.
type RuleSource struct{}

// NewRuleSource creates the rule-based task source.
func NewRuleSource() *RuleSource {
	return &RuleSource{}
}

var _ TaskSource = (*RuleSource)(nil)

// Generate derives task drafts from the candidate set using fixed heuristics.
func (s *RuleSource) Generate(_ context.Context, candidates repository.CandidateSet) (Result, error) {
	drafts := make([]DraftTask, 0, candidates.Size())

	for _, lead := range candidates.StaleLeads {
		drafts = append(drafts, staleLead(lead))
	}
	for _, quote := range candidates.StaleQuotes {
		drafts = append(drafts, staleQuote(quote))
	}
	for _, invoice := range candidates.OverdueInvoices {
		drafts = append(drafts, overdueInvoice(invoice))
	}
	for _, customer := range candidates.AtRiskCustomers {
		drafts = append(drafts, atRiskCustomer(customer))
	}
	for _, customer := range candidates.DormantCustomers {
		drafts = append(drafts, dormantCustomer(customer))
	}

	return Result{Tasks: drafts, Source: SourceRules}, nil
}

func staleLead(lead repository.StaleLead) DraftTask {
	priority := repository.PriorityMedium
	if lead.EstimatedValueCents > highValueThresholdCents {
		priority = repository.PriorityHigh
	}

	return DraftTask{
		TaskType:    repository.TypeFollowUpLead,
		Priority:    priority,
		Title:       fmt.Sprintf("Follow up with lead %s", lead.Name),
		Description: fmt.Sprintf("Lead %s has had no activity for %d days.", lead.Name, lead.DaysSinceActivity),
		Rationale:   "Open leads without recent contact go cold quickly.",
		EntityType:  repository.EntityLead,
		EntityID:    lead.ID,
		SuggestedActions: contactActions(
			"Reach out to revive the conversation",
			lead.ContactPhone,
		),
		PotentialValueCents: lead.EstimatedValueCents,
		Confidence:          confidenceStaleLead,
	}
}

func staleQuote(quote repository.StaleQuote) DraftTask {
	priority := repository.PriorityMedium
	if quote.TotalCents > highValueThresholdCents {
		priority = repository.PriorityHigh
	}

	return DraftTask{
		TaskType:    repository.TypeFollowUpQuote,
		Priority:    priority,
		Title:       fmt.Sprintf("Chase quote %s", quote.Number),
		Description: fmt.Sprintf("Quote %s for %s was sent %d days ago without a response.", quote.Number, quote.CustomerName, quote.DaysSinceSent),
		Rationale:   "Quotes left unanswered for over a week rarely close on their own.",
		EntityType:  repository.EntityQuote,
		EntityID:    quote.ID,
		SuggestedActions: []repository.SuggestedAction{
			{Action: "Ask whether the quote matches expectations", Channel: "email"},
		},
		PotentialValueCents: quote.TotalCents,
		Confidence:          confidenceStaleQuote,
	}
}

func overdueInvoice(invoice repository.OverdueInvoice) DraftTask {
	priority := repository.PriorityHigh
	riskLevel := "medium"
	if invoice.DaysOverdue > criticalOverdueDays {
		priority = repository.PriorityCritical
		riskLevel = "high"
	}

	return DraftTask{
		TaskType:    repository.TypePaymentReminder,
		Priority:    priority,
		Title:       fmt.Sprintf("Payment reminder for invoice %s", invoice.Number),
		Description: fmt.Sprintf("Invoice %s for %s is %d days overdue.", invoice.Number, invoice.CustomerName, invoice.DaysOverdue),
		Rationale:   "Overdue invoices directly affect cash flow and payment behavior worsens with age.",
		EntityType:  repository.EntityInvoice,
		EntityID:    invoice.ID,
		SuggestedActions: contactActions(
			"Send a payment reminder",
			stringValue(invoice.CustomerPhone),
		),
		PotentialValueCents: invoice.AmountCents,
		RiskLevel:           riskLevel,
		Confidence:          confidencePaymentReminder,
	}
}

func atRiskCustomer(customer repository.AtRiskCustomer) DraftTask {
	priority := repository.PriorityHigh
	if customer.RiskTier == "critical" {
		priority = repository.PriorityCritical
	}

	return DraftTask{
		TaskType:    repository.TypeAtRiskCustomer,
		Priority:    priority,
		Title:       fmt.Sprintf("Check in with at-risk customer %s", customer.Name),
		Description: fmt.Sprintf("Health score for %s dropped to %d (%s risk).", customer.Name, customer.OverallScore, customer.RiskTier),
		Rationale:   "Customers in a high risk tier are the most likely to churn without intervention.",
		EntityType:  repository.EntityCustomer,
		EntityID:    customer.ID,
		SuggestedActions: contactActions(
			"Schedule a check-in conversation",
			stringValue(customer.Phone),
		),
		RiskLevel:  customer.RiskTier,
		Confidence: confidenceAtRisk,
	}
}

func dormantCustomer(customer repository.DormantCustomer) DraftTask {
	priority := repository.PriorityMedium
	if customer.TotalRevenueCents > highValueThresholdCents {
		priority = repository.PriorityHigh
	}

	return DraftTask{
		TaskType:    repository.TypeReactivateCustomer,
		Priority:    priority,
		Title:       fmt.Sprintf("Reactivate dormant customer %s", customer.Name),
		Description: fmt.Sprintf("%s has not ordered in %d days after %d previous orders.", customer.Name, customer.DaysSinceLastOrder, customer.TotalOrders),
		Rationale:   "Winning back a past customer is cheaper than acquiring a new one.",
		EntityType:  repository.EntityCustomer,
		EntityID:    customer.ID,
		SuggestedActions: contactActions(
			"Offer a reorder incentive",
			stringValue(customer.Phone),
		),
		PotentialValueCents: customer.TotalRevenueCents,
		Confidence:          confidenceReactivate,
	}
}

// contactActions picks the contact channel for an action: phone when the
// number is dialable, email otherwise.
func contactActions(action, phoneNumber string) []repository.SuggestedAction {
	channel := "email"
	if phone.IsDialable(phoneNumber) {
		channel = "call"
	}
	return []repository.SuggestedAction{{Action: action, Channel: channel}}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
