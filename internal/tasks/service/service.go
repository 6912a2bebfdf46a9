package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"salespulse_backend/internal/events"
	"salespulse_backend/internal/tasks/ports"
	"salespulse_backend/internal/tasks/repository"
	"salespulse_backend/internal/tasks/synthesizer"
	"salespulse_backend/internal/tasks/transport"
	"salespulse_backend/platform/apperr"
	"salespulse_backend/platform/logger"
)

// Service orchestrates task scans and the task lifecycle.
type Service struct {
	repo     repository.Repository
	aiSource synthesizer.TaskSource
	rules    synthesizer.TaskSource
	archiver ports.SnapshotArchiver
	bus      events.Bus
	log      *logger.Logger
}

// New creates a new tasks service. aiSource and archiver may be nil when no
// provider or object store is configured; the rule source carries scans then.
func New(
	repo repository.Repository,
	aiSource synthesizer.TaskSource,
	rules synthesizer.TaskSource,
	archiver ports.SnapshotArchiver,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		aiSource: aiSource,
		rules:    rules,
		archiver: archiver,
		bus:      bus,
		log:      log,
	}
}

// RunScan executes one task scan for a tenant: gather candidates, generate
// suggestions, dedup against active tasks, and record the outcome on a scan
// log. The scan always produces a result; only infrastructure failures
// (database, scan log) fail it.
func (s *Service) RunScan(ctx context.Context, tenantID uuid.UUID, triggerType string) (transport.ScanResultResponse, error) {
	if triggerType == "" {
		triggerType = "manual"
	}

	scanLog, err := s.repo.CreateScanLog(ctx, tenantID, triggerType)
	if err != nil {
		return transport.ScanResultResponse{}, err
	}

	result, err := s.runScanBody(ctx, tenantID, scanLog.ID)
	if err != nil {
		if failErr := s.repo.FailScanLog(ctx, scanLog.ID, err.Error()); failErr != nil {
			s.log.DatabaseError("fail scan log", failErr)
		}
		s.log.ScanEvent("scan_failed", tenantID.String(), scanLog.ID.String(), "error", err.Error())
		return transport.ScanResultResponse{}, apperr.Wrap(apperr.KindInternal, "scan failed", err)
	}

	return result, nil
}

func (s *Service) runScanBody(ctx context.Context, tenantID, scanID uuid.UUID) (transport.ScanResultResponse, error) {
	candidates, err := s.gatherCandidates(ctx, tenantID)
	if err != nil {
		return transport.ScanResultResponse{}, err
	}

	generated := s.generate(ctx, tenantID, scanID, candidates)

	created, updated := 0, 0
	for _, draft := range generated.Tasks {
		wasCreated, err := s.upsertDraft(ctx, tenantID, scanID, draft)
		if err != nil {
			return transport.ScanResultResponse{}, err
		}
		if wasCreated {
			created++
		} else {
			updated++
		}
	}

	scanLog, err := s.repo.CompleteScanLog(ctx, repository.CompleteScanParams{
		ScanID:          scanID,
		Source:          generated.Source,
		EntitiesScanned: candidates.Size(),
		TasksCreated:    created,
		TasksUpdated:    updated,
	})
	if err != nil {
		return transport.ScanResultResponse{}, err
	}

	s.log.ScanEvent("scan_completed", tenantID.String(), scanID.String(),
		"source", generated.Source,
		"entities_scanned", candidates.Size(),
		"tasks_created", created,
		"tasks_updated", updated,
	)

	criticalCount, err := s.repo.CountCritical(ctx, tenantID, scanID)
	if err != nil {
		s.log.DatabaseError("count critical tasks", err)
		criticalCount = 0
	}

	s.bus.Publish(ctx, events.ScanCompleted{
		BaseEvent:     events.NewBaseEvent(),
		TenantID:      tenantID,
		ScanID:        scanID,
		TriggerType:   scanLog.TriggerType,
		TasksCreated:  created,
		TasksUpdated:  updated,
		CriticalCount: criticalCount,
	})

	return transport.ScanResultResponse{
		ScanID:              scanID,
		Source:              generated.Source,
		EntitiesScanned:     candidates.Size(),
		TasksCreated:        created,
		TasksUpdated:        updated,
		TasksClosed:         scanLog.TasksClosed,
		TotalTasksGenerated: len(generated.Tasks),
	}, nil
}

// gatherCandidates runs the five candidate queries concurrently. Each query
// is independent and capped, so the whole gather is bounded.
func (s *Service) gatherCandidates(ctx context.Context, tenantID uuid.UUID) (repository.CandidateSet, error) {
	var set repository.CandidateSet

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		set.StaleLeads, err = s.repo.StaleLeads(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		set.StaleQuotes, err = s.repo.StaleQuotes(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		set.OverdueInvoices, err = s.repo.OverdueInvoices(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		set.AtRiskCustomers, err = s.repo.AtRiskCustomers(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		set.DormantCustomers, err = s.repo.DormantCustomers(gctx, tenantID)
		return err
	})

	if err := g.Wait(); err != nil {
		return repository.CandidateSet{}, err
	}
	return set, nil
}

// generate picks the task source. The AI path runs only for entitled
// tenants with a configured provider; any AI failure falls back to the
// deterministic rules, so generation itself cannot fail.
func (s *Service) generate(ctx context.Context, tenantID, scanID uuid.UUID, candidates repository.CandidateSet) synthesizer.Result {
	if s.aiSource != nil {
		settings, err := s.repo.GetAISettings(ctx, tenantID)
		if err != nil {
			s.log.DatabaseError("get ai settings", err)
		} else if settings.AIEnabled {
			result, err := s.aiSource.Generate(ctx, candidates)
			if err == nil {
				s.meterAndArchive(ctx, tenantID, scanID, result)
				return result
			}
			s.log.AIProviderError("task synthesis", err)
			// Usage is unknown when the call itself failed; nothing to meter.
		}
	}

	result, _ := s.rules.Generate(ctx, candidates)
	return result
}

// meterAndArchive records token usage and archives the prompt/response
// snapshot. Both are best-effort side channels of a successful AI run.
func (s *Service) meterAndArchive(ctx context.Context, tenantID, scanID uuid.UUID, result synthesizer.Result) {
	if result.Usage != nil {
		err := s.repo.RecordUsage(ctx, tenantID, result.Usage.Provider, result.Usage.InputTokens, result.Usage.OutputTokens)
		if err != nil {
			s.log.DatabaseError("record ai usage", err)
		}
	}
	if s.archiver != nil && result.Snapshot != nil {
		if err := s.archiver.Archive(ctx, tenantID, scanID, *result.Snapshot); err != nil {
			s.log.Warn("snapshot archive failed", "error", err.Error())
		}
	}
}

// upsertDraft applies the dedup rule: refresh a matching active task in
// place, insert a pending one otherwise. Returns true when a row was created.
func (s *Service) upsertDraft(ctx context.Context, tenantID, scanID uuid.UUID, draft synthesizer.DraftTask) (bool, error) {
	entityType := draft.EntityType
	entityID := draft.EntityID

	params := repository.UpsertTaskParams{
		TenantID:            tenantID,
		ScanID:              scanID,
		TaskType:            draft.TaskType,
		Priority:            draft.Priority,
		Title:               draft.Title,
		Description:         draft.Description,
		Rationale:           draft.Rationale,
		EntityType:          &entityType,
		EntityID:            &entityID,
		SuggestedActions:    draft.SuggestedActions,
		PotentialValueCents: draft.PotentialValueCents,
		RiskLevel:           draft.RiskLevel,
		DueDate:             draft.DueDate,
		Confidence:          draft.Confidence,
	}

	existing, found, err := s.repo.FindActive(ctx, tenantID, draft.TaskType, params.EntityType, params.EntityID)
	if err != nil {
		return false, err
	}
	if found {
		if _, err := s.repo.Refresh(ctx, existing.ID, params); err != nil {
			return false, err
		}
		return false, nil
	}

	if _, err := s.repo.Insert(ctx, params); err != nil {
		return false, err
	}
	return true, nil
}

// List retrieves tasks with filters and pagination.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListTasksRequest) (transport.TaskListResponse, error) {
	switch req.Status {
	case "", repository.StatusPending, repository.StatusSnoozed, repository.StatusDismissed, repository.StatusCompleted:
	default:
		return transport.TaskListResponse{}, apperr.BadRequest("invalid status filter")
	}

	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.List(ctx, repository.ListTasksParams{
		TenantID: tenantID,
		Status:   req.Status,
		TaskType: req.TaskType,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	})
	if err != nil {
		return transport.TaskListResponse{}, err
	}

	responses := make([]transport.TaskResponse, 0, len(items))
	for _, task := range items {
		responses = append(responses, toTaskResponse(task))
	}

	return transport.TaskListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Get retrieves one task.
func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (transport.TaskResponse, error) {
	task, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return transport.TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

// Dismiss marks an active task dismissed.
func (s *Service) Dismiss(ctx context.Context, tenantID, id uuid.UUID) (transport.TaskResponse, error) {
	task, err := s.repo.Dismiss(ctx, tenantID, id)
	if err != nil {
		return transport.TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

// Complete marks an active task completed.
func (s *Service) Complete(ctx context.Context, tenantID, id uuid.UUID) (transport.TaskResponse, error) {
	task, err := s.repo.Complete(ctx, tenantID, id)
	if err != nil {
		return transport.TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

// Snooze puts an active task to sleep until the given time.
func (s *Service) Snooze(ctx context.Context, tenantID, id uuid.UUID, req transport.SnoozeRequest) (transport.TaskResponse, error) {
	until, err := time.Parse(time.RFC3339, req.Until)
	if err != nil {
		return transport.TaskResponse{}, apperr.BadRequest("until must be RFC3339")
	}
	if !until.After(time.Now()) {
		return transport.TaskResponse{}, apperr.BadRequest("until must be in the future")
	}

	task, err := s.repo.Snooze(ctx, tenantID, id, until)
	if err != nil {
		return transport.TaskResponse{}, err
	}
	return toTaskResponse(task), nil
}

// WakeExpiredSnoozes re-surfaces snoozed tasks whose wake time has passed.
// Called from the background sweeper.
func (s *Service) WakeExpiredSnoozes(ctx context.Context) (int, error) {
	return s.repo.WakeExpiredSnoozes(ctx)
}

// ListScans retrieves the tenant's recent scan history.
func (s *Service) ListScans(ctx context.Context, tenantID uuid.UUID) (transport.ScanLogListResponse, error) {
	logs, err := s.repo.ListScanLogs(ctx, tenantID, 20)
	if err != nil {
		return transport.ScanLogListResponse{}, err
	}

	items := make([]transport.ScanLogResponse, 0, len(logs))
	for _, log := range logs {
		items = append(items, toScanLogResponse(log))
	}
	return transport.ScanLogListResponse{Items: items}, nil
}

// ListAIEnabledTenants returns tenants entitled to scheduled scans.
func (s *Service) ListAIEnabledTenants(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListAIEnabledTenants(ctx)
}

// GetSettings retrieves the tenant's AI settings.
func (s *Service) GetSettings(ctx context.Context, tenantID uuid.UUID) (transport.AISettingsResponse, error) {
	settings, err := s.repo.GetAISettings(ctx, tenantID)
	if err != nil {
		return transport.AISettingsResponse{}, err
	}
	return transport.AISettingsResponse{AIEnabled: settings.AIEnabled, DigestEmail: settings.DigestEmail}, nil
}

// UpdateSettings updates the tenant's AI settings.
func (s *Service) UpdateSettings(ctx context.Context, tenantID uuid.UUID, req transport.UpdateAISettingsRequest) (transport.AISettingsResponse, error) {
	settings, err := s.repo.UpsertAISettings(ctx, repository.AISettings{
		TenantID:    tenantID,
		AIEnabled:   req.AIEnabled,
		DigestEmail: req.DigestEmail,
	})
	if err != nil {
		return transport.AISettingsResponse{}, err
	}
	return transport.AISettingsResponse{AIEnabled: settings.AIEnabled, DigestEmail: settings.DigestEmail}, nil
}

// Usage retrieves the tenant's daily AI token usage for the last 30 days.
func (s *Service) Usage(ctx context.Context, tenantID uuid.UUID) (transport.UsageListResponse, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	records, err := s.repo.ListUsage(ctx, tenantID, from, to)
	if err != nil {
		return transport.UsageListResponse{}, err
	}

	items := make([]transport.UsageDayResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, transport.UsageDayResponse{
			Date:         rec.UsageDate.Format("2006-01-02"),
			Provider:     rec.Provider,
			InputTokens:  rec.InputTokens,
			OutputTokens: rec.OutputTokens,
			RequestCount: rec.RequestCount,
		})
	}
	return transport.UsageListResponse{Items: items}, nil
}

func toTaskResponse(task repository.Task) transport.TaskResponse {
	actions := task.SuggestedActions
	if actions == nil {
		actions = []repository.SuggestedAction{}
	}

	return transport.TaskResponse{
		ID:          task.ID,
		ScanID:      task.ScanID,
		TaskType:    task.TaskType,
		Priority:    task.Priority,
		Status:      task.Status,
		Title:       task.Title,
		Description: task.Description,
		Rationale:   task.Rationale,

		EntityType: task.EntityType,
		EntityID:   task.EntityID,

		SuggestedActions:    actions,
		PotentialValueCents: task.PotentialValueCents,
		RiskLevel:           task.RiskLevel,
		DueDate:             formatDate(task.DueDate),
		Confidence:          task.Confidence,

		SnoozedUntil: formatTime(task.SnoozedUntil),
		CreatedAt:    task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    task.UpdatedAt.Format(time.RFC3339),
	}
}

func toScanLogResponse(log repository.ScanLog) transport.ScanLogResponse {
	return transport.ScanLogResponse{
		ID:              log.ID,
		TriggerType:     log.TriggerType,
		Status:          log.Status,
		Source:          log.Source,
		EntitiesScanned: log.EntitiesScanned,
		TasksCreated:    log.TasksCreated,
		TasksUpdated:    log.TasksUpdated,
		TasksClosed:     log.TasksClosed,
		ErrorMessage:    log.ErrorMessage,
		StartedAt:       log.StartedAt.Format(time.RFC3339),
		CompletedAt:     formatTime(log.CompletedAt),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format("2006-01-02")
	return &formatted
}
