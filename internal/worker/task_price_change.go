package worker

import (
	"context"
	"encoding/json"
	"fmt"
	
	"github.com/hibiken/asynq"
	"github.com/katatrina/gundam-notification/internal/notification"
	"github.com/rs/zerolog/log"
)

type PayloadPriceChange struct {
	notification.PriceChangeEvent
}

func (distributor *RedisTaskDistributor) DistributeTaskPriceChange(
	ctx context.Context,
	payload *PayloadPriceChange,
	opts ...asynq.Option,
) error {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}
	
	task := asynq.NewTask(TaskPriceChange, jsonPayload, opts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	
	log.Info().Str("type", task.Type()).Int64("product_id", payload.ProductID).Str("queue", info.Queue).Msg("task enqueued")
	
	return nil
}

// ProcessTaskPriceChange fans a price change out to every liker. The fan-out
// is best-effort and never retried, so a partial failure cannot notify
// anyone twice.
func (processor *RedisTaskProcessor) ProcessTaskPriceChange(
	ctx context.Context,
	task *asynq.Task,
) error {
	var payload PayloadPriceChange
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}
	
	created := processor.notifier.NotifyOnPriceChange(ctx, payload.PriceChangeEvent)
	
	log.Info().Str("type", task.Type()).
		Int64("product_id", payload.ProductID).
		Int("notifications_created", created).
		Msg("task processed")
	
	return nil
}
