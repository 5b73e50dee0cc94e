package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"staybook/config"
	"staybook/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Completer is the slice of the reservation service the worker drives.
type Completer interface {
	CompleteElapsed(ctx context.Context) (int, error)
}

// CompletionWorker periodically completes stays whose checkout has passed:
// an asynq scheduler enqueues the task on the configured cron spec and an
// asynq server runs it.
type CompletionWorker struct {
	scheduler *asynq.Scheduler
	server    *asynq.Server
	mux       *asynq.ServeMux
	logger    *zap.Logger
}

func redisOpts() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitCompletionWorker registers the periodic task and its handler. Call
// Start to run it.
func InitCompletionWorker(completer Completer, logger *zap.Logger) (*CompletionWorker, error) {
	opts := redisOpts()

	scheduler := asynq.NewScheduler(opts, &asynq.SchedulerOpts{
		Location: time.UTC,
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Warn("Failed to enqueue completion task", zap.Error(err))
			}
		},
	})
	task, taskOpts, err := tasks.NewCompleteElapsedTask(time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to build completion task: %w", err)
	}
	entryID, err := scheduler.Register(config.AppConfig.CompletionSchedule, task, taskOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid completion schedule %q: %w", config.AppConfig.CompletionSchedule, err)
	}
	logger.Info("Completion task scheduled",
		zap.String("entryId", entryID),
		zap.String("schedule", config.AppConfig.CompletionSchedule))

	server := asynq.NewServer(opts, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCompleteElapsed, HandleCompleteElapsedTask(completer, logger))

	return &CompletionWorker{scheduler: scheduler, server: server, mux: mux, logger: logger}, nil
}

// Start runs the scheduler and the server in the background, retrying the
// server start with backoff.
func (w *CompletionWorker) Start() {
	if err := w.scheduler.Start(); err != nil {
		w.logger.Error("Completion scheduler failed to start", zap.Error(err))
	}

	go func() {
		const maxAttempts = 5
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err := w.server.Start(w.mux)
			if err == nil {
				w.logger.Info("Completion worker started")
				return
			}
			w.logger.Warn("Completion worker failed to start",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			time.Sleep(time.Duration(attempt*2) * time.Second)
		}
		w.logger.Error("Completion worker gave up after max attempts")
	}()
}

func (w *CompletionWorker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

func HandleCompleteElapsedTask(completer Completer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.CompletionPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid completion payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}

		n, err := completer.CompleteElapsed(ctx)
		if err != nil {
			logger.Error("Completing elapsed reservations failed", zap.Error(err))
			return err
		}
		logger.Debug("Completion run finished", zap.Int("completed", n))
		return nil
	}
}
