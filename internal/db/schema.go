package db

const schemaSQL = `
-- ===========================================================================
-- RECEIVER RECORDS (discovery blobs, from store)
-- ===========================================================================

CREATE TABLE IF NOT EXISTS receiver_records (
  record_id TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  created_at TEXT NOT NULL DEFAULT (datetime('now')),
  updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

-- ===========================================================================
-- ROUTINES (from scheduler)
-- ===========================================================================

CREATE TABLE IF NOT EXISTS routines (
  routine_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  enabled INTEGER NOT NULL DEFAULT 1,
  receiver_id TEXT NOT NULL,
  zone TEXT NOT NULL,
  action TEXT NOT NULL,
  parameter TEXT,
  cron_expr TEXT NOT NULL,
  last_run_at TEXT,
  created_at TEXT NOT NULL DEFAULT (datetime('now')),
  updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_routines_receiver ON routines(receiver_id);
CREATE INDEX IF NOT EXISTS idx_routines_enabled ON routines(enabled);

-- ===========================================================================
-- AUDIT (command log)
-- ===========================================================================

CREATE TABLE IF NOT EXISTS audit_events (
  event_id TEXT PRIMARY KEY,
  receiver_id TEXT NOT NULL,
  zone TEXT,
  action TEXT NOT NULL,
  parameter TEXT,
  outcome TEXT NOT NULL,
  error_code TEXT,
  request_id TEXT,
  created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_audit_receiver ON audit_events(receiver_id);
CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_events(created_at);
`
