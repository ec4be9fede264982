// Package cron hosts the background dispatch worker.
package cron

import (
	"context"
	"encoding/json"
	"time"

	"helper/config"
	"helper/services/dispatch"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// QueueRedisOpt builds the asynq Redis connection from the app config. The
// enqueueing client in main uses the same options.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitDispatchWorker runs the asynq worker in background. It consumes
// fan-out tasks enqueued at booking or payment settlement, and the delayed
// retry tasks the dispatcher schedules when a pass finds nobody.
func InitDispatchWorker(d *dispatch.Dispatcher, logger *zap.Logger) {
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(dispatch.TypeDispatchFanout, handleDispatchTask(d, logger))
	mux.HandleFunc(dispatch.TypeDispatchRetry, handleDispatchTask(d, logger))

	go func() {
		logger.Info("starting dispatch worker")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("dispatch worker failed to start",
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			if attempts == maxAttempts {
				logger.Fatal("dispatch worker gave up")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

func handleDispatchTask(d *dispatch.Dispatcher, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p dispatch.FanoutPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid dispatch payload", zap.Error(err))
			return err
		}
		attempt := p.Attempt
		if attempt < 1 {
			attempt = 1
		}
		return d.Dispatch(ctx, p.MissionID, attempt, p.RadiusKm)
	}
}
