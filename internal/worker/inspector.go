package worker

import (
	"context"
	
	"github.com/hibiken/asynq"
)

type TaskInspector interface {
	// PendingTasks returns how many tasks are waiting in queue.
	PendingTasks(ctx context.Context, queue string) (int, error)
	Close() error
}

type RedisTaskInspector struct {
	inspector *asynq.Inspector
}

func NewTaskInspector(redisOpt asynq.RedisClientOpt) TaskInspector {
	return &RedisTaskInspector{
		inspector: asynq.NewInspector(redisOpt),
	}
}

func (i *RedisTaskInspector) PendingTasks(ctx context.Context, queue string) (int, error) {
	info, err := i.inspector.GetQueueInfo(queue)
	if err != nil {
		return 0, err
	}
	return info.Pending, nil
}

func (i *RedisTaskInspector) Close() error {
	return i.inspector.Close()
}
