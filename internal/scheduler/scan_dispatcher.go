package scheduler

import (
	"context"
	"time"

	tasksservice "salespulse_backend/internal/tasks/service"
	"salespulse_backend/platform/logger"
)

const defaultScanDispatchInterval = 24 * time.Hour

// ScanDispatcher periodically enqueues a scheduled scan for every tenant
// that has AI task generation enabled. The worker picks the jobs up from
// the queue, so a slow scan for one tenant never blocks the others.
type ScanDispatcher struct {
	tasks    *tasksservice.Service
	client   *Client
	log      *logger.Logger
	interval time.Duration
}

func NewScanDispatcher(tasks *tasksservice.Service, client *Client, log *logger.Logger, interval time.Duration) *ScanDispatcher {
	if interval <= 0 {
		interval = defaultScanDispatchInterval
	}

	return &ScanDispatcher{
		tasks:    tasks,
		client:   client,
		log:      log,
		interval: interval,
	}
}

func (d *ScanDispatcher) Run(ctx context.Context) {
	if d == nil || d.tasks == nil || d.client == nil {
		return
	}

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *ScanDispatcher) dispatch(ctx context.Context) {
	tenants, err := d.tasks.ListAIEnabledTenants(ctx)
	if err != nil {
		d.log.Error("scan dispatch failed to list tenants", "error", err)
		return
	}

	enqueued := 0
	for _, tenantID := range tenants {
		payload := AIScanPayload{
			TenantID:    tenantID.String(),
			TriggerType: "scheduled",
		}
		if err := d.client.ScheduleScan(ctx, payload, time.Now()); err != nil {
			d.log.Error("failed to enqueue scheduled scan", "tenantId", tenantID, "error", err)
			continue
		}
		enqueued++
	}

	if enqueued > 0 {
		d.log.Info("scheduled scans enqueued", "tenants", enqueued)
	}
}
