package chat

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nightjar-app/nightjar/internal/graph"
)

// Conversation is one chat thread belonging to a user.
type Conversation struct {
	ID        string
	UserID    int64
	Title     string
	CreatedAt time.Time
}

// Message is one persisted turn of a conversation. Sources and QueryType
// are only set on assistant turns.
type Message struct {
	Role      string
	Content   string
	QueryType string
	Sources   []graph.Source
	CreatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS chats (
    id TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    created_at DATETIME DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS chat_messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    query_type TEXT NOT NULL DEFAULT '',
    sources TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_chat_messages_chat ON chat_messages(chat_id, id);
`

// Store persists conversations. It shares the journal's database
// connection rather than opening its own.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return s, nil
}

// Create starts a new conversation and returns its ID.
func (s *Store) Create(userID int64, title string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO chats (id, user_id, title) VALUES (?, ?, ?)`,
		id, userID, title,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Exists reports whether the conversation belongs to the user.
func (s *Store) Exists(userID int64, chatID string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM chats WHERE id = ? AND user_id = ?`,
		chatID, userID,
	).Scan(&n)
	return n > 0, err
}

func (s *Store) List(userID int64) ([]Conversation, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, created_at
		FROM chats
		WHERE user_id = ?
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []Conversation{}
	for rows.Next() {
		var c Conversation
		var createdAt string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

// AddMessage appends one turn to a conversation.
func (s *Store) AddMessage(chatID string, m Message) error {
	sources := m.Sources
	if sources == nil {
		sources = []graph.Source{}
	}
	encoded, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO chat_messages (chat_id, role, content, query_type, sources) VALUES (?, ?, ?, ?, ?)`,
		chatID, m.Role, m.Content, m.QueryType, string(encoded),
	)
	return err
}

// Messages returns the conversation's turns, oldest first.
func (s *Store) Messages(chatID string) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT role, content, query_type, sources, created_at
		FROM chat_messages
		WHERE chat_id = ?
		ORDER BY id ASC`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		var m Message
		var sources, createdAt string
		if err := rows.Scan(&m.Role, &m.Content, &m.QueryType, &sources, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sources), &m.Sources); err != nil {
			m.Sources = nil
		}
		m.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Delete removes a conversation and its messages.
func (s *Store) Delete(userID int64, chatID string) error {
	if _, err := s.db.Exec(`DELETE FROM chat_messages WHERE chat_id = ?`, chatID); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM chats WHERE id = ? AND user_id = ?`, chatID, userID)
	return err
}
