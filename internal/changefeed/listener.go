package changefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
	
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jpillora/backoff"
	"github.com/katatrina/gundam-notification/internal/alert"
	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
	"github.com/katatrina/gundam-notification/internal/event"
	"github.com/rs/zerolog/log"
)

// Channel is the Postgres notification channel the insert trigger writes to.
const Channel = "notification_created"

var (
	ErrChannel         = errors.New("change feed channel error")
	ErrTriggerNotFound = errors.New("notification insert trigger is not installed")
)

// TriggerChecker reports whether the insert trigger feeding Channel exists.
type TriggerChecker interface {
	NotificationTriggerExists(ctx context.Context) (bool, error)
}

// notificationConn is a connection already listening on Channel.
// *pgx.Conn satisfies it.
type notificationConn interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

type dialFunc func(ctx context.Context) (notificationConn, error)

// Listener turns rows inserted into notifications, by any writer, into
// pushes. It owns one dedicated connection outside the pool.
type Listener struct {
	dial      dialFunc
	publisher event.Publisher
	alerter   alert.Notifier
	backoff   *backoff.Backoff
	
	mu   sync.Mutex
	conn notificationConn
}

type Option func(*Listener)

// WithAlerter sends an ops alert every time the channel is lost.
func WithAlerter(alerter alert.Notifier) Option {
	return func(l *Listener) {
		l.alerter = alerter
	}
}

// WithBackoff overrides the reconnect delays.
func WithBackoff(min, max time.Duration) Option {
	return func(l *Listener) {
		l.backoff.Min = min
		l.backoff.Max = max
	}
}

// NewListener verifies the trigger is installed, then opens the channel.
// Startup fails when either step fails.
func NewListener(ctx context.Context, connString string, checker TriggerChecker, publisher event.Publisher, opts ...Option) (*Listener, error) {
	exists, err := checker.NotificationTriggerExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to check notification trigger: %w", ErrChannel, err)
	}
	if !exists {
		return nil, ErrTriggerNotFound
	}
	
	l := newListener(postgresDialer(connString), publisher, opts...)
	if err := l.connect(ctx); err != nil {
		return nil, err
	}
	
	return l, nil
}

func newListener(dial dialFunc, publisher event.Publisher, opts ...Option) *Listener {
	l := &Listener{
		dial:      dial,
		publisher: publisher,
		alerter:   alert.LogNotifier{},
		backoff: &backoff.Backoff{
			Min:    500 * time.Millisecond,
			Max:    30 * time.Second,
			Factor: 2,
			Jitter: true,
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// postgresDialer opens a dedicated pgx connection and subscribes it to Channel.
func postgresDialer(connString string) dialFunc {
	return func(ctx context.Context) (notificationConn, error) {
		conn, err := pgx.Connect(ctx, connString)
		if err != nil {
			return nil, fmt.Errorf("failed to connect: %w", err)
		}
		
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
			conn.Close(context.Background())
			return nil, fmt.Errorf("failed to listen on %s: %w", Channel, err)
		}
		return conn, nil
	}
}

func (l *Listener) connect(ctx context.Context) error {
	conn, err := l.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrChannel, err)
	}
	
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
	
	log.Info().Str("channel", Channel).Msg("listening for new notifications")
	return nil
}

// Run delivers notifications until ctx is cancelled. A lost connection is
// re-established with exponential backoff.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		
		log.Error().Err(err).Str("channel", Channel).Msg("change feed connection lost")
		if alertErr := l.alerter.Alert(ctx, fmt.Sprintf("Mất kết nối change feed %q: %v", Channel, err)); alertErr != nil {
			log.Error().Err(alertErr).Msg("failed to send ops alert")
		}
		
		if !l.reconnect(ctx) {
			return nil
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	
	if conn == nil {
		return fmt.Errorf("%w: no connection", ErrChannel)
	}
	
	for {
		pgNotification, err := conn.WaitForNotification(ctx)
		if err != nil {
			l.closeConn()
			return fmt.Errorf("%w: %w", ErrChannel, err)
		}
		
		notification, err := DecodePayload(pgNotification.Payload)
		if err != nil {
			log.Error().Err(err).Str("payload", pgNotification.Payload).Msg("failed to decode change feed payload")
			continue
		}
		
		l.publisher.PublishNotification(ctx, notification)
	}
}

func (l *Listener) reconnect(ctx context.Context) bool {
	for {
		delay := l.backoff.Duration()
		log.Info().Dur("delay", delay).Msg("reconnecting change feed")
		
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		
		if err := l.connect(ctx); err != nil {
			log.Error().Err(err).Msg("failed to reconnect change feed")
			continue
		}
		
		l.backoff.Reset()
		return true
	}
}

func (l *Listener) closeConn() {
	l.mu.Lock()
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()
	
	if conn != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		conn.Close(ctx)
	}
}

// Close releases the dedicated connection. Call it after Run returned.
func (l *Listener) Close() {
	l.closeConn()
}

// DecodePayload parses the row_to_json payload of the insert trigger.
func DecodePayload(payload string) (db.Notification, error) {
	var notification db.Notification
	if err := json.Unmarshal([]byte(payload), &notification); err != nil {
		return db.Notification{}, err
	}
	if notification.ID == 0 || notification.RecipientID == "" {
		return db.Notification{}, fmt.Errorf("payload is missing id or recipient_id")
	}
	if !notification.Type.Valid() {
		return db.Notification{}, fmt.Errorf("unknown notification type %q", notification.Type)
	}
	
	return notification, nil
}
