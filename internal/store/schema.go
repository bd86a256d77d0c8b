package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id      TEXT PRIMARY KEY,
    display_name TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reflections (
    id         TEXT PRIMARY KEY,
    user_id    TEXT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
    title      TEXT NOT NULL DEFAULT '',
    category   TEXT NOT NULL DEFAULT '',
    text       TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reflections_user ON reflections(user_id, created_at);

CREATE TABLE IF NOT EXISTS reflection_analyses (
    reflection_id   TEXT PRIMARY KEY REFERENCES reflections(id) ON DELETE CASCADE,
    depth           INTEGER NOT NULL,
    coherence       INTEGER NOT NULL,
    metacognition   INTEGER NOT NULL,
    actionable      INTEGER NOT NULL,
    overall         REAL NOT NULL,
    level           TEXT NOT NULL,
    feedback        TEXT NOT NULL,
    prompts_json    TEXT NOT NULL,
    word_count      INTEGER NOT NULL,
    sentence_count  INTEGER NOT NULL,
    paragraph_count INTEGER NOT NULL,
    source          TEXT NOT NULL,
    prompt_source   TEXT NOT NULL DEFAULT '',
    analyzed_at     TEXT NOT NULL
);
`
