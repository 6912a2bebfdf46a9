package synthesizer

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"salespulse_backend/internal/tasks/repository"
)

func fixedCandidates() repository.CandidateSet {
	phone := "+31612345678"
	return repository.CandidateSet{
		StaleLeads: []repository.StaleLead{
			{
				ID:                  uuid.MustParse("11111111-1111-1111-1111-111111111111"),
				Name:                "Acme BV",
				ContactEmail:        "sales@acme.test",
				ContactPhone:        phone,
				EstimatedValueCents: 1500000,
				DaysSinceActivity:   12,
			},
		},
		OverdueInvoices: []repository.OverdueInvoice{
			{
				ID:           uuid.MustParse("22222222-2222-2222-2222-222222222222"),
				Number:       "INV-0042",
				CustomerID:   uuid.MustParse("33333333-3333-3333-3333-333333333333"),
				CustomerName: "Globex",
				AmountCents:  800000,
				DaysOverdue:  45,
			},
		},
		AtRiskCustomers: []repository.AtRiskCustomer{
			{
				ID:           uuid.MustParse("44444444-4444-4444-4444-444444444444"),
				Name:         "Initech",
				OverallScore: 25,
				RiskTier:     "critical",
				RiskFactors:  []string{"payment_delays"},
			},
		},
	}
}

func TestRuleSourceIsDeterministic(t *testing.T) {
	source := NewRuleSource()
	candidates := fixedCandidates()

	first, err := source.Generate(context.Background(), candidates)
	if err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	second, err := source.Generate(context.Background(), candidates)
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("rule source is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if first.Source != SourceRules {
		t.Errorf("source = %q, want %q", first.Source, SourceRules)
	}
	if first.Usage != nil || first.Snapshot != nil {
		t.Error("rule source must not report usage or snapshot")
	}
}

func TestRuleSourceOverdueInvoiceEscalation(t *testing.T) {
	source := NewRuleSource()

	// 45 days overdue crosses the 30-day escalation threshold.
	result, err := source.Generate(context.Background(), repository.CandidateSet{
		OverdueInvoices: []repository.OverdueInvoice{
			{
				ID:          uuid.New(),
				Number:      "INV-1",
				CustomerID:  uuid.New(),
				AmountCents: 800000,
				DaysOverdue: 45,
			},
		},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(result.Tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(result.Tasks))
	}

	task := result.Tasks[0]
	if task.TaskType != repository.TypePaymentReminder {
		t.Errorf("task type = %q, want %q", task.TaskType, repository.TypePaymentReminder)
	}
	if task.Priority != repository.PriorityCritical {
		t.Errorf("priority = %q, want %q for 45 days overdue", task.Priority, repository.PriorityCritical)
	}
	if task.Confidence != 90 {
		t.Errorf("confidence = %d, want 90", task.Confidence)
	}
}

func TestRuleSourceRecentOverdueStaysHigh(t *testing.T) {
	source := NewRuleSource()

	result, err := source.Generate(context.Background(), repository.CandidateSet{
		OverdueInvoices: []repository.OverdueInvoice{
			{ID: uuid.New(), Number: "INV-2", CustomerID: uuid.New(), DaysOverdue: 10},
		},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got := result.Tasks[0].Priority; got != repository.PriorityHigh {
		t.Errorf("priority = %q, want %q for 10 days overdue", got, repository.PriorityHigh)
	}
}

func TestRuleSourceHighValueLeadPriority(t *testing.T) {
	source := NewRuleSource()

	tests := []struct {
		name       string
		valueCents int64
		want       string
	}{
		{"above threshold", 10000*100 + 1, repository.PriorityHigh},
		{"at threshold", 10000 * 100, repository.PriorityMedium},
		{"below threshold", 500000, repository.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := source.Generate(context.Background(), repository.CandidateSet{
				StaleLeads: []repository.StaleLead{
					{ID: uuid.New(), Name: "Lead", EstimatedValueCents: tt.valueCents, DaysSinceActivity: 10},
				},
			})
			if err != nil {
				t.Fatalf("generate failed: %v", err)
			}
			if got := result.Tasks[0].Priority; got != tt.want {
				t.Errorf("priority = %q, want %q for value %d", got, tt.want, tt.valueCents)
			}
		})
	}
}

func TestRuleSourceContactChannel(t *testing.T) {
	source := NewRuleSource()
	dialable := "+31612345678"
	bogus := "not-a-number"

	result, err := source.Generate(context.Background(), repository.CandidateSet{
		AtRiskCustomers: []repository.AtRiskCustomer{
			{ID: uuid.New(), Name: "Reachable", Phone: &dialable, OverallScore: 20, RiskTier: "critical"},
			{ID: uuid.New(), Name: "Unreachable", Phone: &bogus, OverallScore: 20, RiskTier: "critical"},
		},
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(result.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(result.Tasks))
	}

	if got := result.Tasks[0].SuggestedActions[0].Channel; got != "call" {
		t.Errorf("dialable customer channel = %q, want call", got)
	}
	if got := result.Tasks[1].SuggestedActions[0].Channel; got != "email" {
		t.Errorf("non-dialable customer channel = %q, want email", got)
	}
}

func TestRuleSourceEmptyCandidates(t *testing.T) {
	source := NewRuleSource()

	result, err := source.Generate(context.Background(), repository.CandidateSet{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(result.Tasks) != 0 {
		t.Errorf("got %d tasks from empty candidates, want 0", len(result.Tasks))
	}
}
