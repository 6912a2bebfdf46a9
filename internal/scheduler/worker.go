package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	healthservice "salespulse_backend/internal/health/service"
	tasksservice "salespulse_backend/internal/tasks/service"
	"salespulse_backend/platform/config"
	"salespulse_backend/platform/logger"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	tasks  *tasksservice.Service
	health *healthservice.Service
	log    *logger.Logger
}

func NewWorker(
	cfg config.SchedulerConfig,
	tasks *tasksservice.Service,
	health *healthservice.Service,
	log *logger.Logger,
) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		tasks:  tasks,
		health: health,
		log:    log,
	}

	mux.HandleFunc(TaskAIScan, w.handleAIScan)
	mux.HandleFunc(TaskHealthRecalc, w.handleHealthRecalc)

	return w, nil
}

func (w *Worker) handleAIScan(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAIScanPayload(task)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	triggerType := payload.TriggerType
	if triggerType == "" {
		triggerType = "scheduled"
	}

	_, err = w.tasks.RunScan(ctx, tenantID, triggerType)
	return err
}

func (w *Worker) handleHealthRecalc(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseHealthRecalcPayload(task)
	if err != nil {
		return err
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return err
	}

	customerID, err := uuid.Parse(payload.CustomerID)
	if err != nil {
		return err
	}

	_, err = w.health.Recalculate(ctx, tenantID, customerID)
	return err
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
