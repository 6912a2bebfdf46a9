package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"salespulse_backend/platform/apperr"
)

const taskNotFoundMessage = "task not found"

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new tasks repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const taskColumns = `
	id, tenant_id, scan_id, task_type, priority, status, title, description, rationale,
	entity_type, entity_id, suggested_actions, potential_value_cents, risk_level,
	due_date, confidence, snoozed_until, dismissed_at, completed_at, created_at, updated_at`

// FindActive looks up a pending or snoozed task matching the dedup key
// (tenant, task type, linked entity). Terminal tasks never match, so a
// fresh scan may open a new task for an entity that was dismissed before.
func (r *Repo) FindActive(ctx context.Context, tenantID uuid.UUID, taskType string, entityType *string, entityID *uuid.UUID) (Task, bool, error) {
	query := `SELECT ` + taskColumns + `
		FROM ai_sales_tasks
		WHERE tenant_id = $1
		  AND task_type = $2
		  AND entity_type IS NOT DISTINCT FROM $3
		  AND entity_id IS NOT DISTINCT FROM $4
		  AND status IN ('pending', 'snoozed')
		LIMIT 1`

	task, err := scanTask(r.pool.QueryRow(ctx, query, tenantID, taskType, entityType, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, false, nil
		}
		return Task{}, false, fmt.Errorf("find active task: %w", err)
	}
	return task, true, nil
}

// Insert creates a new pending task.
func (r *Repo) Insert(ctx context.Context, params UpsertTaskParams) (Task, error) {
	actions, err := marshalActions(params.SuggestedActions)
	if err != nil {
		return Task{}, err
	}

	query := `
		INSERT INTO ai_sales_tasks (
			tenant_id, scan_id, task_type, priority, status, title, description, rationale,
			entity_type, entity_id, suggested_actions, potential_value_cents, risk_level,
			due_date, confidence
		) VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + taskColumns

	task, err := scanTask(r.pool.QueryRow(ctx, query,
		params.TenantID, params.ScanID, params.TaskType, params.Priority,
		params.Title, params.Description, params.Rationale,
		params.EntityType, params.EntityID, actions,
		params.PotentialValueCents, params.RiskLevel, params.DueDate, params.Confidence,
	))
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// Refresh updates a matched active task in place with the latest scan's
// values and re-attributes it to the current scan. Status is untouched so a
// snoozed task stays snoozed.
func (r *Repo) Refresh(ctx context.Context, taskID uuid.UUID, params UpsertTaskParams) (Task, error) {
	actions, err := marshalActions(params.SuggestedActions)
	if err != nil {
		return Task{}, err
	}

	query := `
		UPDATE ai_sales_tasks SET
			scan_id = $2,
			priority = $3,
			title = $4,
			description = $5,
			rationale = $6,
			suggested_actions = $7,
			potential_value_cents = $8,
			risk_level = $9,
			due_date = $10,
			confidence = $11,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + taskColumns

	task, err := scanTask(r.pool.QueryRow(ctx, query,
		taskID, params.ScanID, params.Priority, params.Title, params.Description,
		params.Rationale, actions, params.PotentialValueCents, params.RiskLevel,
		params.DueDate, params.Confidence,
	))
	if err != nil {
		return Task{}, fmt.Errorf("refresh task: %w", err)
	}
	return task, nil
}

// GetByID retrieves a task by ID within a tenant.
func (r *Repo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM ai_sales_tasks
		WHERE id = $1 AND tenant_id = $2`

	task, err := scanTask(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.NotFound(taskNotFoundMessage)
		}
		return Task{}, fmt.Errorf("get task by id: %w", err)
	}
	return task, nil
}

// List retrieves tasks with optional status and type filters, newest first.
func (r *Repo) List(ctx context.Context, params ListTasksParams) ([]Task, int, error) {
	var statusParam interface{}
	if params.Status != "" {
		statusParam = params.Status
	}
	var typeParam interface{}
	if params.TaskType != "" {
		typeParam = params.TaskType
	}

	countQuery := `
		SELECT COUNT(*)
		FROM ai_sales_tasks
		WHERE tenant_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR task_type = $3)`

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, params.TenantID, statusParam, typeParam).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + `
		FROM ai_sales_tasks
		WHERE tenant_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR task_type = $3)
		ORDER BY created_at DESC
		OFFSET $4 LIMIT $5`

	rows, err := r.pool.Query(ctx, query, params.TenantID, statusParam, typeParam, params.Offset, params.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, total, nil
}

// Dismiss marks an active task dismissed.
func (r *Repo) Dismiss(ctx context.Context, tenantID, id uuid.UUID) (Task, error) {
	return r.transition(ctx, tenantID, id, `
		UPDATE ai_sales_tasks SET
			status = 'dismissed',
			dismissed_at = now(),
			snoozed_until = NULL,
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status IN ('pending', 'snoozed')
		RETURNING `+taskColumns)
}

// Complete marks an active task completed.
func (r *Repo) Complete(ctx context.Context, tenantID, id uuid.UUID) (Task, error) {
	return r.transition(ctx, tenantID, id, `
		UPDATE ai_sales_tasks SET
			status = 'completed',
			completed_at = now(),
			snoozed_until = NULL,
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status IN ('pending', 'snoozed')
		RETURNING `+taskColumns)
}

// Snooze puts a pending task to sleep until the given time. An already
// snoozed task can be re-snoozed with a new wake time.
func (r *Repo) Snooze(ctx context.Context, tenantID, id uuid.UUID, until time.Time) (Task, error) {
	query := `
		UPDATE ai_sales_tasks SET
			status = 'snoozed',
			snoozed_until = $3,
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND status IN ('pending', 'snoozed')
		RETURNING ` + taskColumns

	task, err := scanTask(r.pool.QueryRow(ctx, query, id, tenantID, until))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.Conflict("task is not active")
		}
		return Task{}, fmt.Errorf("snooze task: %w", err)
	}
	return task, nil
}

// WakeExpiredSnoozes flips snoozed tasks whose wake time has passed back to
// pending. Runs across all tenants from the background sweeper.
func (r *Repo) WakeExpiredSnoozes(ctx context.Context) (int, error) {
	query := `
		UPDATE ai_sales_tasks SET
			status = 'pending',
			snoozed_until = NULL,
			updated_at = now()
		WHERE status = 'snoozed' AND snoozed_until <= now()`

	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("wake expired snoozes: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// CountCritical counts active critical-priority tasks attributed to a scan.
func (r *Repo) CountCritical(ctx context.Context, tenantID, scanID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM ai_sales_tasks
		WHERE tenant_id = $1 AND scan_id = $2
		  AND priority = 'critical'
		  AND status IN ('pending', 'snoozed')`

	var count int
	if err := r.pool.QueryRow(ctx, query, tenantID, scanID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count critical tasks: %w", err)
	}
	return count, nil
}

func (r *Repo) transition(ctx context.Context, tenantID, id uuid.UUID, query string) (Task, error) {
	task, err := scanTask(r.pool.QueryRow(ctx, query, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.Conflict("task is not active")
		}
		return Task{}, fmt.Errorf("update task status: %w", err)
	}
	return task, nil
}

func marshalActions(actions []SuggestedAction) ([]byte, error) {
	if actions == nil {
		actions = []SuggestedAction{}
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return nil, fmt.Errorf("marshal suggested actions: %w", err)
	}
	return data, nil
}

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	var actionsRaw []byte

	err := row.Scan(
		&t.ID, &t.TenantID, &t.ScanID, &t.TaskType, &t.Priority, &t.Status,
		&t.Title, &t.Description, &t.Rationale,
		&t.EntityType, &t.EntityID, &actionsRaw, &t.PotentialValueCents, &t.RiskLevel,
		&t.DueDate, &t.Confidence, &t.SnoozedUntil, &t.DismissedAt, &t.CompletedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return Task{}, err
	}

	if len(actionsRaw) > 0 {
		if err := json.Unmarshal(actionsRaw, &t.SuggestedActions); err != nil {
			return Task{}, fmt.Errorf("unmarshal suggested actions: %w", err)
		}
	}
	return t, nil
}
