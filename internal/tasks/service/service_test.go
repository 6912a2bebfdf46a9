package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"salespulse_backend/internal/events"
	"salespulse_backend/internal/tasks/repository"
	"salespulse_backend/internal/tasks/synthesizer"
	"salespulse_backend/internal/tasks/transport"
	"salespulse_backend/platform/logger"
)

// fakeRepo is an in-memory Repository for exercising the scan flow.
type fakeRepo struct {
	candidates repository.CandidateSet
	settings   repository.AISettings

	tasks    []repository.Task
	scanLogs map[uuid.UUID]*repository.ScanLog
	usage    []repository.UsageRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{scanLogs: make(map[uuid.UUID]*repository.ScanLog)}
}

func (f *fakeRepo) StaleLeads(_ context.Context, _ uuid.UUID) ([]repository.StaleLead, error) {
	return f.candidates.StaleLeads, nil
}
func (f *fakeRepo) StaleQuotes(_ context.Context, _ uuid.UUID) ([]repository.StaleQuote, error) {
	return f.candidates.StaleQuotes, nil
}
func (f *fakeRepo) OverdueInvoices(_ context.Context, _ uuid.UUID) ([]repository.OverdueInvoice, error) {
	return f.candidates.OverdueInvoices, nil
}
func (f *fakeRepo) AtRiskCustomers(_ context.Context, _ uuid.UUID) ([]repository.AtRiskCustomer, error) {
	return f.candidates.AtRiskCustomers, nil
}
func (f *fakeRepo) DormantCustomers(_ context.Context, _ uuid.UUID) ([]repository.DormantCustomer, error) {
	return f.candidates.DormantCustomers, nil
}

func (f *fakeRepo) FindActive(_ context.Context, tenantID uuid.UUID, taskType string, entityType *string, entityID *uuid.UUID) (repository.Task, bool, error) {
	for _, task := range f.tasks {
		if task.TenantID != tenantID || task.TaskType != taskType {
			continue
		}
		if task.Status != repository.StatusPending && task.Status != repository.StatusSnoozed {
			continue
		}
		if !ptrEqual(task.EntityType, entityType) || !uuidPtrEqual(task.EntityID, entityID) {
			continue
		}
		return task, true, nil
	}
	return repository.Task{}, false, nil
}

func (f *fakeRepo) Insert(_ context.Context, params repository.UpsertTaskParams) (repository.Task, error) {
	scanID := params.ScanID
	task := repository.Task{
		ID:                  uuid.New(),
		TenantID:            params.TenantID,
		ScanID:              &scanID,
		TaskType:            params.TaskType,
		Priority:            params.Priority,
		Status:              repository.StatusPending,
		Title:               params.Title,
		Description:         params.Description,
		Rationale:           params.Rationale,
		EntityType:          params.EntityType,
		EntityID:            params.EntityID,
		SuggestedActions:    params.SuggestedActions,
		PotentialValueCents: params.PotentialValueCents,
		RiskLevel:           params.RiskLevel,
		Confidence:          params.Confidence,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeRepo) Refresh(_ context.Context, taskID uuid.UUID, params repository.UpsertTaskParams) (repository.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID != taskID {
			continue
		}
		scanID := params.ScanID
		f.tasks[i].ScanID = &scanID
		f.tasks[i].Priority = params.Priority
		f.tasks[i].Title = params.Title
		f.tasks[i].Description = params.Description
		f.tasks[i].Rationale = params.Rationale
		f.tasks[i].Confidence = params.Confidence
		f.tasks[i].UpdatedAt = time.Now()
		return f.tasks[i], nil
	}
	return repository.Task{}, errors.New("task not found")
}

func (f *fakeRepo) GetByID(_ context.Context, _, id uuid.UUID) (repository.Task, error) {
	for _, task := range f.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return repository.Task{}, errors.New("task not found")
}

func (f *fakeRepo) List(_ context.Context, params repository.ListTasksParams) ([]repository.Task, int, error) {
	matched := make([]repository.Task, 0)
	for _, task := range f.tasks {
		if task.TenantID != params.TenantID {
			continue
		}
		if params.Status != "" && task.Status != params.Status {
			continue
		}
		if params.TaskType != "" && task.TaskType != params.TaskType {
			continue
		}
		matched = append(matched, task)
	}
	return matched, len(matched), nil
}

func (f *fakeRepo) Dismiss(_ context.Context, _, id uuid.UUID) (repository.Task, error) {
	return f.setStatus(id, repository.StatusDismissed)
}
func (f *fakeRepo) Complete(_ context.Context, _, id uuid.UUID) (repository.Task, error) {
	return f.setStatus(id, repository.StatusCompleted)
}
func (f *fakeRepo) Snooze(_ context.Context, _, id uuid.UUID, until time.Time) (repository.Task, error) {
	task, err := f.setStatus(id, repository.StatusSnoozed)
	if err != nil {
		return repository.Task{}, err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].SnoozedUntil = &until
		}
	}
	return task, nil
}

func (f *fakeRepo) WakeExpiredSnoozes(_ context.Context) (int, error) {
	woken := 0
	now := time.Now()
	for i := range f.tasks {
		if f.tasks[i].Status == repository.StatusSnoozed &&
			f.tasks[i].SnoozedUntil != nil && !f.tasks[i].SnoozedUntil.After(now) {
			f.tasks[i].Status = repository.StatusPending
			f.tasks[i].SnoozedUntil = nil
			woken++
		}
	}
	return woken, nil
}

func (f *fakeRepo) CountCritical(_ context.Context, tenantID, scanID uuid.UUID) (int, error) {
	count := 0
	for _, task := range f.tasks {
		if task.TenantID == tenantID && task.ScanID != nil && *task.ScanID == scanID &&
			task.Priority == repository.PriorityCritical &&
			(task.Status == repository.StatusPending || task.Status == repository.StatusSnoozed) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) setStatus(id uuid.UUID, status string) (repository.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Status = status
			return f.tasks[i], nil
		}
	}
	return repository.Task{}, errors.New("task not found")
}

func (f *fakeRepo) CreateScanLog(_ context.Context, tenantID uuid.UUID, triggerType string) (repository.ScanLog, error) {
	log := repository.ScanLog{
		ID:          uuid.New(),
		TenantID:    tenantID,
		TriggerType: triggerType,
		Status:      repository.ScanStatusRunning,
		StartedAt:   time.Now(),
	}
	f.scanLogs[log.ID] = &log
	return log, nil
}

func (f *fakeRepo) CompleteScanLog(_ context.Context, params repository.CompleteScanParams) (repository.ScanLog, error) {
	log, ok := f.scanLogs[params.ScanID]
	if !ok {
		return repository.ScanLog{}, errors.New("scan log not found")
	}
	now := time.Now()
	log.Status = repository.ScanStatusCompleted
	log.Source = params.Source
	log.EntitiesScanned = params.EntitiesScanned
	log.TasksCreated = params.TasksCreated
	log.TasksUpdated = params.TasksUpdated
	log.CompletedAt = &now
	return *log, nil
}

func (f *fakeRepo) FailScanLog(_ context.Context, scanID uuid.UUID, errorMessage string) error {
	log, ok := f.scanLogs[scanID]
	if !ok {
		return errors.New("scan log not found")
	}
	log.Status = repository.ScanStatusFailed
	log.ErrorMessage = errorMessage
	return nil
}

func (f *fakeRepo) ListScanLogs(_ context.Context, tenantID uuid.UUID, _ int) ([]repository.ScanLog, error) {
	logs := make([]repository.ScanLog, 0)
	for _, log := range f.scanLogs {
		if log.TenantID == tenantID {
			logs = append(logs, *log)
		}
	}
	return logs, nil
}

func (f *fakeRepo) GetAISettings(_ context.Context, tenantID uuid.UUID) (repository.AISettings, error) {
	if f.settings.TenantID == tenantID {
		return f.settings, nil
	}
	return repository.AISettings{TenantID: tenantID}, nil
}

func (f *fakeRepo) UpsertAISettings(_ context.Context, settings repository.AISettings) (repository.AISettings, error) {
	f.settings = settings
	return settings, nil
}

func (f *fakeRepo) ListAIEnabledTenants(_ context.Context) ([]uuid.UUID, error) {
	if f.settings.AIEnabled {
		return []uuid.UUID{f.settings.TenantID}, nil
	}
	return nil, nil
}

func (f *fakeRepo) RecordUsage(_ context.Context, tenantID uuid.UUID, provider string, inputTokens, outputTokens int64) error {
	f.usage = append(f.usage, repository.UsageRecord{
		TenantID:     tenantID,
		Provider:     provider,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		RequestCount: 1,
	})
	return nil
}

func (f *fakeRepo) ListUsage(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]repository.UsageRecord, error) {
	return f.usage, nil
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// failingSource always errors, standing in for an unreachable AI provider.
type failingSource struct{}

func (failingSource) Generate(_ context.Context, _ repository.CandidateSet) (synthesizer.Result, error) {
	return synthesizer.Result{}, errors.New("provider unreachable")
}

// cannedSource returns a fixed result, standing in for a healthy provider.
type cannedSource struct {
	result synthesizer.Result
}

func (s cannedSource) Generate(_ context.Context, _ repository.CandidateSet) (synthesizer.Result, error) {
	return s.result, nil
}

func testService(repo *fakeRepo, aiSource synthesizer.TaskSource) *Service {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	return New(repo, aiSource, synthesizer.NewRuleSource(), nil, bus, log)
}

func overdueCandidates() repository.CandidateSet {
	return repository.CandidateSet{
		OverdueInvoices: []repository.OverdueInvoice{
			{
				ID:           uuid.MustParse("22222222-2222-2222-2222-222222222222"),
				Number:       "INV-0042",
				CustomerID:   uuid.New(),
				CustomerName: "Globex",
				AmountCents:  800000,
				DaysOverdue:  45,
			},
		},
	}
}

func TestRunScanCreatesTasks(t *testing.T) {
	repo := newFakeRepo()
	repo.candidates = overdueCandidates()
	svc := testService(repo, nil)
	tenantID := uuid.New()

	result, err := svc.RunScan(context.Background(), tenantID, "manual")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if result.TasksCreated != 1 {
		t.Errorf("tasksCreated = %d, want 1", result.TasksCreated)
	}
	if result.TasksUpdated != 0 {
		t.Errorf("tasksUpdated = %d, want 0", result.TasksUpdated)
	}
	if result.Source != synthesizer.SourceRules {
		t.Errorf("source = %q, want %q", result.Source, synthesizer.SourceRules)
	}
	if result.EntitiesScanned != 1 {
		t.Errorf("entitiesScanned = %d, want 1", result.EntitiesScanned)
	}
}

func TestRunScanDedupsRepeatScan(t *testing.T) {
	repo := newFakeRepo()
	repo.candidates = overdueCandidates()
	svc := testService(repo, nil)
	tenantID := uuid.New()

	first, err := svc.RunScan(context.Background(), tenantID, "manual")
	if err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	if first.TasksCreated != 1 {
		t.Fatalf("first scan created = %d, want 1", first.TasksCreated)
	}

	second, err := svc.RunScan(context.Background(), tenantID, "manual")
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if second.TasksCreated != 0 {
		t.Errorf("repeat scan created = %d, want 0", second.TasksCreated)
	}
	if second.TasksUpdated != 1 {
		t.Errorf("repeat scan updated = %d, want 1", second.TasksUpdated)
	}
	if len(repo.tasks) != 1 {
		t.Errorf("task rows = %d, want 1 after repeat scan", len(repo.tasks))
	}
}

func TestRunScanDismissedTaskGetsNewRow(t *testing.T) {
	repo := newFakeRepo()
	repo.candidates = overdueCandidates()
	svc := testService(repo, nil)
	tenantID := uuid.New()

	if _, err := svc.RunScan(context.Background(), tenantID, "manual"); err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	if _, err := svc.Dismiss(context.Background(), tenantID, repo.tasks[0].ID); err != nil {
		t.Fatalf("dismiss failed: %v", err)
	}

	result, err := svc.RunScan(context.Background(), tenantID, "manual")
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}
	if result.TasksCreated != 1 {
		t.Errorf("scan after dismiss created = %d, want 1 (terminal tasks leave the dedup key free)", result.TasksCreated)
	}
	if len(repo.tasks) != 2 {
		t.Errorf("task rows = %d, want 2", len(repo.tasks))
	}
}

func TestRunScanFallsBackWhenProviderFails(t *testing.T) {
	repo := newFakeRepo()
	repo.candidates = overdueCandidates()
	tenantID := uuid.New()
	repo.settings = repository.AISettings{TenantID: tenantID, AIEnabled: true}
	svc := testService(repo, failingSource{})

	result, err := svc.RunScan(context.Background(), tenantID, "manual")
	if err != nil {
		t.Fatalf("scan should succeed via rule fallback, got: %v", err)
	}
	if result.Source != synthesizer.SourceRules {
		t.Errorf("source = %q, want %q after provider failure", result.Source, synthesizer.SourceRules)
	}
	if result.TasksCreated != 1 {
		t.Errorf("tasksCreated = %d, want 1", result.TasksCreated)
	}
	if len(repo.usage) != 0 {
		t.Errorf("failed provider call must not be metered, got %d usage rows", len(repo.usage))
	}
}

func TestRunScanUsesAIForEntitledTenant(t *testing.T) {
	repo := newFakeRepo()
	repo.candidates = overdueCandidates()
	tenantID := uuid.New()
	repo.settings = repository.AISettings{TenantID: tenantID, AIEnabled: true}

	invoiceID := repo.candidates.OverdueInvoices[0].ID
	entityType := repository.EntityInvoice
	svc := testService(repo, cannedSource{result: synthesizer.Result{
		Tasks: []synthesizer.DraftTask{
			{
				TaskType:   repository.TypePaymentReminder,
				Priority:   repository.PriorityCritical,
				Title:      "Chase INV-0042",
				EntityType: entityType,
				EntityID:   invoiceID,
				Confidence: 95,
			},
		},
		Source:   synthesizer.SourceAI,
		Usage:    &synthesizer.Usage{Provider: "gemini", InputTokens: 1200, OutputTokens: 300},
		Snapshot: &synthesizer.Snapshot{Prompt: "snapshot", RawResponse: "[]"},
	}})

	result, err := svc.RunScan(context.Background(), tenantID, "scheduled")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.Source != synthesizer.SourceAI {
		t.Errorf("source = %q, want %q", result.Source, synthesizer.SourceAI)
	}
	if result.TasksCreated != 1 {
		t.Errorf("tasksCreated = %d, want 1", result.TasksCreated)
	}
	if len(repo.usage) != 1 {
		t.Fatalf("usage rows = %d, want 1", len(repo.usage))
	}
	if repo.usage[0].InputTokens != 1200 || repo.usage[0].OutputTokens != 300 {
		t.Errorf("metered tokens = %d/%d, want 1200/300", repo.usage[0].InputTokens, repo.usage[0].OutputTokens)
	}
}

func TestRunScanSkipsAIForUnentitledTenant(t *testing.T) {
	repo := newFakeRepo()
	repo.candidates = overdueCandidates()
	tenantID := uuid.New()
	// No settings row: the tenant is not entitled.
	svc := testService(repo, cannedSource{result: synthesizer.Result{Source: synthesizer.SourceAI}})

	result, err := svc.RunScan(context.Background(), tenantID, "manual")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.Source != synthesizer.SourceRules {
		t.Errorf("source = %q, want %q for unentitled tenant", result.Source, synthesizer.SourceRules)
	}
}

func TestSnoozeLifecycle(t *testing.T) {
	repo := newFakeRepo()
	repo.candidates = overdueCandidates()
	svc := testService(repo, nil)
	tenantID := uuid.New()

	if _, err := svc.RunScan(context.Background(), tenantID, "manual"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	taskID := repo.tasks[0].ID

	until := time.Now().Add(-time.Minute).Format(time.RFC3339)
	if _, err := svc.Snooze(context.Background(), tenantID, taskID, transport.SnoozeRequest{Until: until}); err == nil {
		t.Error("snoozing into the past should fail")
	}

	until = time.Now().Add(time.Hour).Format(time.RFC3339)
	task, err := svc.Snooze(context.Background(), tenantID, taskID, transport.SnoozeRequest{Until: until})
	if err != nil {
		t.Fatalf("snooze failed: %v", err)
	}
	if task.Status != repository.StatusSnoozed {
		t.Errorf("status = %q, want %q", task.Status, repository.StatusSnoozed)
	}

	// Force the wake time into the past and sweep.
	past := time.Now().Add(-time.Minute)
	repo.tasks[0].SnoozedUntil = &past
	woken, err := svc.WakeExpiredSnoozes(context.Background())
	if err != nil {
		t.Fatalf("wake failed: %v", err)
	}
	if woken != 1 {
		t.Errorf("woken = %d, want 1", woken)
	}
	if repo.tasks[0].Status != repository.StatusPending {
		t.Errorf("status after wake = %q, want %q", repo.tasks[0].Status, repository.StatusPending)
	}
}
