package worker

import (
	"context"
	"encoding/json"
	"fmt"
	
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// PayloadSendNotification contain all data of the task that we want to store in Redis.
type PayloadSendNotification struct {
	RecipientID string `json:"recipient_id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
}

func (distributor *RedisTaskDistributor) DistributeTaskSendNotification(
	ctx context.Context,
	payload *PayloadSendNotification,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}
	
	task := asynq.NewTask(TaskSendNotification, jsonPayload, opts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	
	log.Info().Str("type", task.Type()).Bytes("payload", task.Payload()).Str("queue", info.Queue).Int("max_retry", info.MaxRetry).Msg("task enqueued")
	
	return nil
}

func (processor *RedisTaskProcessor) ProcessTaskSendNotification(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadSendNotification
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}
	if payload.RecipientID == "" || payload.Title == "" || payload.Message == "" {
		return fmt.Errorf("recipient_id, title and message are required: %w", asynq.SkipRetry)
	}
	
	// Nothing was written when NotifySystem fails, so a retry cannot duplicate.
	if !processor.notifier.NotifySystem(ctx, payload.RecipientID, payload.Title, payload.Message) {
		return fmt.Errorf("failed to create system notification for %s", payload.RecipientID)
	}
	
	log.Info().Str("type", task.Type()).Str("recipient_id", payload.RecipientID).Msg("task processed")
	
	return nil
}
