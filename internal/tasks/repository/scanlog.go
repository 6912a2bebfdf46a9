package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const scanLogColumns = `
	id, tenant_id, trigger_type, status, source, entities_scanned,
	tasks_created, tasks_updated, tasks_closed, error_message, started_at, completed_at`

// CreateScanLog opens a new scan log row in the running state.
func (r *Repo) CreateScanLog(ctx context.Context, tenantID uuid.UUID, triggerType string) (ScanLog, error) {
	query := `
		INSERT INTO ai_scan_logs (tenant_id, trigger_type, status)
		VALUES ($1, $2, 'running')
		RETURNING ` + scanLogColumns

	log, err := scanScanLog(r.pool.QueryRow(ctx, query, tenantID, triggerType))
	if err != nil {
		return ScanLog{}, fmt.Errorf("create scan log: %w", err)
	}
	return log, nil
}

// CompleteScanLog records the final counters and marks the scan completed.
// tasks_closed stays at its default; no code path computes task closure yet.
func (r *Repo) CompleteScanLog(ctx context.Context, params CompleteScanParams) (ScanLog, error) {
	query := `
		UPDATE ai_scan_logs SET
			status = 'completed',
			source = $2,
			entities_scanned = $3,
			tasks_created = $4,
			tasks_updated = $5,
			completed_at = now()
		WHERE id = $1
		RETURNING ` + scanLogColumns

	log, err := scanScanLog(r.pool.QueryRow(ctx, query,
		params.ScanID, params.Source, params.EntitiesScanned, params.TasksCreated, params.TasksUpdated,
	))
	if err != nil {
		return ScanLog{}, fmt.Errorf("complete scan log: %w", err)
	}
	return log, nil
}

// FailScanLog marks a scan failed with its error message.
func (r *Repo) FailScanLog(ctx context.Context, scanID uuid.UUID, errorMessage string) error {
	query := `
		UPDATE ai_scan_logs SET
			status = 'failed',
			error_message = $2,
			completed_at = now()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, scanID, errorMessage); err != nil {
		return fmt.Errorf("fail scan log: %w", err)
	}
	return nil
}

// ListScanLogs retrieves the most recent scans for a tenant.
func (r *Repo) ListScanLogs(ctx context.Context, tenantID uuid.UUID, limit int) ([]ScanLog, error) {
	query := `SELECT ` + scanLogColumns + `
		FROM ai_scan_logs
		WHERE tenant_id = $1
		ORDER BY started_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list scan logs: %w", err)
	}
	defer rows.Close()

	logs := make([]ScanLog, 0)
	for rows.Next() {
		log, err := scanScanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scan log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func scanScanLog(row pgx.Row) (ScanLog, error) {
	var l ScanLog
	err := row.Scan(
		&l.ID, &l.TenantID, &l.TriggerType, &l.Status, &l.Source, &l.EntitiesScanned,
		&l.TasksCreated, &l.TasksUpdated, &l.TasksClosed, &l.ErrorMessage,
		&l.StartedAt, &l.CompletedAt,
	)
	return l, err
}
