package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	db "github.com/katatrina/gundam-notification/internal/db/sqlc"
)

// timeLayout is fixed-width so that TEXT comparison orders like time.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const notificationColumns = `id, recipient_id, type, title, message,
	related_product_id, related_article_id, related_comment_id,
	is_read, read_at, created_at`

// Store implements db.Store on top of a local SQLite database. It backs
// local development and the test suite.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ db.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for created_at and read_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore opens (or creates) a SQLite database at dsn and runs any pending
// schema migrations.
func NewStore(dsn string, opts ...Option) (*Store, error) {
	sqlDB, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and serializes writers.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:  sqlDB,
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.runMigrations(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks if the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// CreateNotification inserts a notification row and returns it.
func (s *Store) CreateNotification(ctx context.Context, arg db.CreateNotificationParams) (db.Notification, error) {
	query := `
		INSERT INTO notifications (
			recipient_id, type, title, message,
			related_product_id, related_article_id, related_comment_id,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + notificationColumns

	row := s.db.QueryRowxContext(ctx, query,
		arg.RecipientID, string(arg.Type), arg.Title, arg.Message,
		arg.RelatedProductID, arg.RelatedArticleID, arg.RelatedCommentID,
		formatTime(s.now()),
	)
	return scanNotification(row)
}

// ListNotificationsByRecipient returns a page of the recipient's
// notifications, most recent first.
func (s *Store) ListNotificationsByRecipient(ctx context.Context, arg db.ListNotificationsByRecipientParams) ([]db.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE recipient_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.QueryxContext(ctx, query, arg.RecipientID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []db.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// CountUnreadNotifications returns how many unread rows the recipient has.
func (s *Store) CountUnreadNotifications(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM notifications WHERE recipient_id = ? AND is_read = 0", recipientID)
	return count, err
}

// MarkNotificationRead flips is_read for a row owned by the recipient. An
// already-read row keeps its original read_at.
func (s *Store) MarkNotificationRead(ctx context.Context, arg db.MarkNotificationReadParams) (db.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = 1, read_at = COALESCE(read_at, ?)
		WHERE id = ? AND recipient_id = ?
		RETURNING ` + notificationColumns

	row := s.db.QueryRowxContext(ctx, query, formatTime(s.now()), arg.ID, arg.RecipientID)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return n, db.ErrRecordNotFound
	}
	return n, err
}

// MarkAllNotificationsRead marks every unread row of the recipient as read
// and reports how many rows changed.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1, read_at = ? WHERE recipient_id = ? AND is_read = 0",
		formatTime(s.now()), recipientID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListProductLikerIDs returns the users who liked the product.
func (s *Store) ListProductLikerIDs(ctx context.Context, productID int64) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids,
		"SELECT user_id FROM product_likes WHERE product_id = ? ORDER BY created_at ASC", productID)
	return ids, err
}

// DeleteReadNotificationsBefore removes read rows whose read_at is older
// than the cutoff.
func (s *Store) DeleteReadNotificationsBefore(ctx context.Context, readAt *time.Time) (int64, error) {
	if readAt == nil {
		return 0, nil
	}
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notifications WHERE is_read = 1 AND read_at < ?", formatTime(*readAt))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// NotificationTriggerExists always reports false: SQLite has no change feed.
func (s *Store) NotificationTriggerExists(ctx context.Context) (bool, error) {
	return false, nil
}

// AddProductLike records that userID liked productID. The CRUD layer owns
// likes in production; this is used for local seeding and tests.
func (s *Store) AddProductLike(ctx context.Context, productID int64, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO product_likes (product_id, user_id, created_at) VALUES (?, ?, ?)",
		productID, userID, formatTime(s.now()))
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// scanTime accepts both TEXT values and driver-parsed time.Time values.
type scanTime struct {
	Time  time.Time
	Valid bool
}

func (t *scanTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported scan type for time: %T", src)
	}
}

func (t *scanTime) parse(v string) error {
	parsed, err := time.Parse(timeLayout, v)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("parsing time %q: %w", v, err)
		}
	}
	t.Time, t.Valid = parsed.UTC(), true
	return nil
}

func scanNotification(row interface{ Scan(dest ...interface{}) error }) (db.Notification, error) {
	var (
		n         db.Notification
		readAt    scanTime
		createdAt scanTime
	)
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.Type,
		&n.Title,
		&n.Message,
		&n.RelatedProductID,
		&n.RelatedArticleID,
		&n.RelatedCommentID,
		&n.IsRead,
		&readAt,
		&createdAt,
	)
	if err != nil {
		return db.Notification{}, err
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	n.CreatedAt = createdAt.Time
	return n, nil
}
