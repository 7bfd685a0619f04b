package storage

const (
	initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id          TEXT PRIMARY KEY,
    endpoint    TEXT NOT NULL,
    start_time  TIMESTAMP NOT NULL,
    end_time    TIMESTAMP,
    outcome     TEXT,
    reason      TEXT
);

CREATE TABLE IF NOT EXISTS samples (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id  TEXT NOT NULL REFERENCES sessions(id),
    timestamp   TIMESTAMP NOT NULL,
    distance    REAL NOT NULL,
    frame_bytes INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_samples_session_time ON samples(session_id, timestamp);`

	insertSessionSQL = `
INSERT INTO sessions (
                      id,
                      endpoint,
                      start_time)
VALUES (?, ?, ?)`

	endSessionSQL = `
UPDATE sessions
SET end_time = ?,
    outcome  = ?,
    reason   = ?
WHERE id = ?`

	insertSampleSQL = `
INSERT INTO samples (session_id,
                     timestamp,
                     distance,
                     frame_bytes)
VALUES (?, ?, ?, ?)`

	selectSamplesSQL = `
SELECT
    timestamp,
    distance,
    frame_bytes
FROM samples
WHERE
    session_id = ?
ORDER BY id`
)
