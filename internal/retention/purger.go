package retention

import (
	"context"
	"fmt"
	"time"
	
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultInterval = 1 * time.Hour
	purgeTimeout    = 5 * time.Minute
)

// ReadNotificationDeleter is the part of the store the purger needs.
type ReadNotificationDeleter interface {
	DeleteReadNotificationsBefore(ctx context.Context, readAt *time.Time) (int64, error)
}

// Purger định kỳ xóa các thông báo đã đọc quá thời hạn lưu trữ.
// Thông báo chưa đọc không bao giờ bị xóa.
type Purger struct {
	store     ReadNotificationDeleter
	retention time.Duration
	interval  time.Duration
	scheduler gocron.Scheduler
	now       func() time.Time
}

type Option func(*Purger)

func WithInterval(interval time.Duration) Option {
	return func(p *Purger) {
		p.interval = interval
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Purger) {
		p.now = now
	}
}

func NewPurger(store ReadNotificationDeleter, retention time.Duration, opts ...Option) (*Purger, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %s", retention)
	}
	
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	
	p := &Purger{
		store:     store,
		retention: retention,
		interval:  defaultInterval,
		scheduler: scheduler,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	
	return p, nil
}

// Start bắt đầu chạy cronjob xóa thông báo cũ.
func (p *Purger) Start() error {
	_, err := p.scheduler.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(
			func() {
				ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
				defer cancel()
				
				p.PurgeOnce(ctx)
			},
		),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	
	p.scheduler.Start()
	return nil
}

// Stop dừng cronjob.
func (p *Purger) Stop() error {
	return p.scheduler.Shutdown()
}

// PurgeOnce deletes read notifications whose read_at is older than the
// retention window and returns how many were deleted.
func (p *Purger) PurgeOnce(ctx context.Context) (int64, error) {
	cutoff := p.now().Add(-p.retention)
	
	log.Info().
		Str("job", "purge_read_notifications").
		Time("cutoff", cutoff).
		Msg("Purging read notifications")
	
	deleted, err := p.store.DeleteReadNotificationsBefore(ctx, &cutoff)
	if err != nil {
		log.Error().Err(err).Str("job", "purge_read_notifications").Msg("failed to purge read notifications")
		return 0, err
	}
	
	log.Info().Str("job", "purge_read_notifications").Int64("deleted", deleted).Msg("Purged read notifications")
	return deleted, nil
}
