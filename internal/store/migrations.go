package store

// migration is a single versioned schema change.
type migration struct {
	version int
	sql     string
}

// migrations are applied in order; each runs at most once per database.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS emails (
	id INTEGER PRIMARY KEY,
	sender TEXT NOT NULL,
	recipient TEXT NOT NULL DEFAULT '',
	cc TEXT NOT NULL DEFAULT '',
	subject TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT '',
	preview TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'normal',
	is_read INTEGER NOT NULL DEFAULT 0,
	is_starred INTEGER NOT NULL DEFAULT 0,
	folder TEXT NOT NULL DEFAULT 'inbox',
	received_at TIMESTAMP,
	fetched_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_emails_folder ON emails(folder);
CREATE INDEX IF NOT EXISTS idx_emails_received ON emails(received_at DESC);

CREATE TABLE IF NOT EXISTS accounts (
	id INTEGER PRIMARY KEY,
	email_address TEXT NOT NULL,
	provider TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'active',
	is_active INTEGER NOT NULL DEFAULT 1,
	last_synced_at TIMESTAMP,
	created_at TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
