package journal

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    title TEXT NOT NULL,
    narrative TEXT NOT NULL,
    entry_date TEXT NOT NULL,
    setting TEXT NOT NULL DEFAULT '',
    lucidity_level INTEGER NOT NULL DEFAULT 0,
    emotional_intensity INTEGER NOT NULL DEFAULT 0,
    is_recurring INTEGER NOT NULL DEFAULT 0,
    is_nightmare INTEGER NOT NULL DEFAULT 0,
    ritual_performed INTEGER NOT NULL DEFAULT 0,
    ritual_description TEXT NOT NULL DEFAULT '',
    personal_interpretation TEXT NOT NULL DEFAULT '',
    indexed INTEGER NOT NULL DEFAULT 0,
    extracted INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_entries_user_date ON entries(user_id, entry_date DESC);
CREATE INDEX IF NOT EXISTS idx_entries_unindexed ON entries(user_id, indexed);

CREATE TABLE IF NOT EXISTS symbols (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'other',
    universal_meaning TEXT NOT NULL DEFAULT '',
    UNIQUE(user_id, name)
);

CREATE TABLE IF NOT EXISTS symbol_associations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    symbol_id INTEGER NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
    association TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entry_symbols (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
    symbol_id INTEGER NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
    context_note TEXT NOT NULL DEFAULT '',
    personal_meaning TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entry_symbols_entry ON entry_symbols(entry_id);
CREATE INDEX IF NOT EXISTS idx_entry_symbols_symbol ON entry_symbols(symbol_id);

CREATE TABLE IF NOT EXISTS characters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    character_type TEXT NOT NULL DEFAULT 'unknown_person',
    real_world_relation TEXT NOT NULL DEFAULT '',
    UNIQUE(user_id, name)
);

CREATE TABLE IF NOT EXISTS entry_characters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
    character_id INTEGER NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
    role_in_dream TEXT NOT NULL DEFAULT '',
    archetype TEXT NOT NULL DEFAULT '',
    traits TEXT NOT NULL DEFAULT '[]',
    context_note TEXT NOT NULL DEFAULT '',
    personal_significance TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_entry_characters_entry ON entry_characters(entry_id);
CREATE INDEX IF NOT EXISTS idx_entry_characters_char ON entry_characters(character_id);

CREATE TABLE IF NOT EXISTS entry_emotions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
    emotion TEXT NOT NULL,
    phase TEXT NOT NULL DEFAULT 'during',
    intensity INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_entry_emotions_entry ON entry_emotions(entry_id);

CREATE TABLE IF NOT EXISTS entry_themes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id INTEGER NOT NULL REFERENCES entries(id) ON DELETE CASCADE,
    theme TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entry_themes_entry ON entry_themes(entry_id);
`
