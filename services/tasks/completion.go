package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeCompleteElapsed = "reservation:complete-elapsed"

// CompletionPayload is carried by every completion task.
type CompletionPayload struct {
	ScheduledAt time.Time `json:"scheduledAt"`
}

// NewCompleteElapsedTask builds the periodic task. Unique keeps overlapping
// schedules from piling up while a run is still queued.
func NewCompleteElapsedTask(scheduledAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(CompletionPayload{ScheduledAt: scheduledAt})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCompleteElapsed, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
		asynq.Unique(10 * time.Minute),
	}
	return task, opts, nil
}
