package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAIScan = "tasks.scan"

const TaskHealthRecalc = "health.recalculate"

type AIScanPayload struct {
	TenantID    string `json:"tenantId"`
	TriggerType string `json:"triggerType"`
}

type HealthRecalcPayload struct {
	TenantID   string `json:"tenantId"`
	CustomerID string `json:"customerId"`
}

func NewAIScanTask(payload AIScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAIScan, data), nil
}

func ParseAIScanPayload(task *asynq.Task) (AIScanPayload, error) {
	var payload AIScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AIScanPayload{}, err
	}
	return payload, nil
}

func NewHealthRecalcTask(payload HealthRecalcPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskHealthRecalc, data), nil
}

func ParseHealthRecalcPayload(task *asynq.Task) (HealthRecalcPayload, error) {
	var payload HealthRecalcPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return HealthRecalcPayload{}, err
	}
	return payload, nil
}
