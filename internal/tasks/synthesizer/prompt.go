package synthesizer

import (
	"fmt"
	"strings"

	"salespulse_backend/internal/tasks/repository"
)

const systemPrompt = `You are a sales operations assistant. You receive a snapshot of a company's
pipeline and must suggest concrete sales tasks.

Respond with ONLY a JSON array of task objects. Each object must have:
  "taskType": one of "follow_up_lead", "follow_up_quote", "payment_reminder", "at_risk_customer", "reactivate_customer"
  "priority": one of "low", "medium", "high", "critical"
  "title": short imperative summary
  "description": one or two sentences of context
  "rationale": why this task matters now
  "entityType": one of "lead", "quote", "invoice", "customer"
  "entityId": the exact id from the snapshot the task refers to
  "suggestedActions": array of {"action": string, "channel": "call"|"email"|"whatsapp"}
  "potentialValueCents": integer, 0 when unknown
  "riskLevel": "low"|"medium"|"high" or ""
  "confidence": integer 0-100

Suggest at most one task per entity. Do not invent entities that are not in
the snapshot. Do not wrap the array in markdown or any other text.`

// BuildPrompt serializes the candidate set into the natural-language
// snapshot sent to the AI provider. The layout is fixed so provider
// behavior stays comparable across scans.
func BuildPrompt(candidates repository.CandidateSet) string {
	var b strings.Builder

	b.WriteString("Pipeline snapshot:\n")

	b.WriteString("\nStale leads (no recent activity):\n")
	if len(candidates.StaleLeads) == 0 {
		b.WriteString("  none\n")
	}
	for _, lead := range candidates.StaleLeads {
		fmt.Fprintf(&b, "  - id=%s name=%q estimatedValueCents=%d daysSinceActivity=%d\n",
			lead.ID, lead.Name, lead.EstimatedValueCents, lead.DaysSinceActivity)
	}

	b.WriteString("\nStale quotes (sent, no response):\n")
	if len(candidates.StaleQuotes) == 0 {
		b.WriteString("  none\n")
	}
	for _, quote := range candidates.StaleQuotes {
		fmt.Fprintf(&b, "  - id=%s number=%q customer=%q totalCents=%d daysSinceSent=%d\n",
			quote.ID, quote.Number, quote.CustomerName, quote.TotalCents, quote.DaysSinceSent)
	}

	b.WriteString("\nOverdue invoices:\n")
	if len(candidates.OverdueInvoices) == 0 {
		b.WriteString("  none\n")
	}
	for _, invoice := range candidates.OverdueInvoices {
		fmt.Fprintf(&b, "  - id=%s number=%q customer=%q amountCents=%d daysOverdue=%d\n",
			invoice.ID, invoice.Number, invoice.CustomerName, invoice.AmountCents, invoice.DaysOverdue)
	}

	b.WriteString("\nAt-risk customers (low health score):\n")
	if len(candidates.AtRiskCustomers) == 0 {
		b.WriteString("  none\n")
	}
	for _, customer := range candidates.AtRiskCustomers {
		fmt.Fprintf(&b, "  - id=%s name=%q healthScore=%d riskTier=%s riskFactors=%s\n",
			customer.ID, customer.Name, customer.OverallScore, customer.RiskTier,
			strings.Join(customer.RiskFactors, ","))
	}

	b.WriteString("\nDormant customers (no recent orders):\n")
	if len(candidates.DormantCustomers) == 0 {
		b.WriteString("  none\n")
	}
	for _, customer := range candidates.DormantCustomers {
		fmt.Fprintf(&b, "  - id=%s name=%q totalOrders=%d totalRevenueCents=%d daysSinceLastOrder=%d\n",
			customer.ID, customer.Name, customer.TotalOrders, customer.TotalRevenueCents,
			customer.DaysSinceLastOrder)
	}

	return b.String()
}
