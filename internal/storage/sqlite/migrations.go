package sqlite

// schema contains the database schema DDL. Times are unix milliseconds.
const schema = `
-- Animation catalog
CREATE TABLE IF NOT EXISTS catalog (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    build_tag TEXT NOT NULL,
    indexed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS animations (
    idx INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    ani_id INTEGER NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    frames INTEGER NOT NULL,
    steps INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL
);

-- Playback log
CREATE TABLE IF NOT EXISTS playbacks (
    id TEXT PRIMARY KEY,
    animation_idx INTEGER NOT NULL,
    name TEXT NOT NULL,
    started_at INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_playbacks_started ON playbacks(started_at);

-- Display statistics
CREATE TABLE IF NOT EXISTS stats (
    at INTEGER PRIMARY KEY,
    fps REAL NOT NULL,
    frames INTEGER NOT NULL,
    start_timeouts INTEGER NOT NULL,
    wait_timeouts INTEGER NOT NULL,
    brightness INTEGER NOT NULL
);

-- Configuration overrides
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Frame cache
CREATE TABLE IF NOT EXISTS frame_cache (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    frame_data BLOB NOT NULL,
    generated_at INTEGER NOT NULL
);
`
