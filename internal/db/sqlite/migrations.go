package sqlite

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations mirrors internal/db/migration for the SQLite engine. SQLite has
// no LISTEN/NOTIFY, so there is no trigger: deployments on this driver must
// use direct delivery.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	recipient_id       TEXT NOT NULL,
	type               TEXT NOT NULL CHECK (type IN ('comment', 'like', 'price_change', 'system')),
	title              TEXT NOT NULL,
	message            TEXT NOT NULL,
	related_product_id INTEGER,
	related_article_id INTEGER,
	related_comment_id INTEGER,
	is_read            INTEGER NOT NULL DEFAULT 0,
	read_at            TEXT,
	created_at         TEXT NOT NULL,
	CHECK (related_product_id IS NULL OR related_article_id IS NULL)
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient_created
	ON notifications(recipient_id, created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient_unread
	ON notifications(recipient_id, is_read);

CREATE TABLE IF NOT EXISTS product_likes (
	product_id INTEGER NOT NULL,
	user_id    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (product_id, user_id)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
