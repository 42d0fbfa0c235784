package worker

import (
	"context"
	
	"github.com/hibiken/asynq"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/rs/zerolog/log"
)

/*
 This file contains code that will pick up the tasks from the Redis queue and process them.
*/

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// Notifier is the part of the notification service the tasks run.
type Notifier interface {
	NotifyOnPriceChange(ctx context.Context, e notification.PriceChangeEvent) int
	NotifySystem(ctx context.Context, recipientID, title, message string) bool
}

type RedisTaskProcessor struct {
	server   *asynq.Server
	notifier Notifier
}

func NewRedisTaskProcessor(redisOpt asynq.RedisClientOpt, notifier Notifier) *RedisTaskProcessor {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).
					Bytes("payload", task.Payload()).Msg("process task failed")
			}),
			Logger: NewLogger(),
		},
	)
	
	return &RedisTaskProcessor{
		server:   server,
		notifier: notifier,
	}
}

// Start registers the task handlers for the mux, attaches the mux to the asynq server, and starts the server.
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()
	
	mux.HandleFunc(TaskSendNotification, processor.ProcessTaskSendNotification)
	mux.HandleFunc(TaskPriceChange, processor.ProcessTaskPriceChange)
	
	return processor.server.Start(mux)
}

// Shutdown waits for in-flight tasks, then stops the server.
func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}
