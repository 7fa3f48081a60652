package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTreeWarmup refreshes cached tree levels for companies.
	TaskTreeWarmup = "accounting:tree_warmup"
	// TreeWarmupCron runs the warmup daily shortly after midnight UTC.
	TreeWarmupCron = "15 0 * * *"
)

// TreeWarmupPayload scopes a warmup run. An empty company warms every company.
type TreeWarmupPayload struct {
	Company string `json:"company,omitempty"`
}

// NewTreeWarmupTask constructs an Asynq task.
func NewTreeWarmupTask(payload TreeWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTreeWarmup, data), nil
}
