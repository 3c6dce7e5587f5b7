package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS emails (
	id        TEXT PRIMARY KEY,
	thread_id TEXT NOT NULL DEFAULT '',
	subject   TEXT NOT NULL DEFAULT '',
	sender    TEXT NOT NULL DEFAULT '',
	date      TEXT NOT NULL DEFAULT '',
	body      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS attachments (
	id        TEXT PRIMARY KEY,
	email_id  TEXT NOT NULL REFERENCES emails(id),
	filename  TEXT NOT NULL DEFAULT '',
	mime_type TEXT NOT NULL DEFAULT '',
	data      BLOB
);

CREATE TABLE IF NOT EXISTS urls (
	id       TEXT PRIMARY KEY,
	email_id TEXT NOT NULL REFERENCES emails(id),
	url      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS url_checks (
	url         TEXT PRIMARY KEY,
	email_id    TEXT REFERENCES emails(id),
	is_safe     INTEGER NOT NULL CHECK(is_safe IN (0, 1)),
	ipqs_result INTEGER NOT NULL CHECK(ipqs_result IN (0, 1)),
	gsb_result  INTEGER NOT NULL CHECK(gsb_result IN (0, 1)),
	checked_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_attachments_email_id ON attachments(email_id);
CREATE INDEX IF NOT EXISTS idx_urls_email_id ON urls(email_id);
CREATE INDEX IF NOT EXISTS idx_url_checks_is_safe ON url_checks(is_safe);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
ALTER TABLE url_checks ADD COLUMN unknown_sources TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS idx_url_checks_checked_at ON url_checks(checked_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
