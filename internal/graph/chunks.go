package graph

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"
)

const chunkSchema = `
CREATE TABLE IF NOT EXISTS chunks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dream_id INTEGER NOT NULL,
    content TEXT NOT NULL,
    created_at DATETIME DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_chunks_dream ON chunks(dream_id);
`

const chunkVecSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
    chunk_id INTEGER PRIMARY KEY,
    embedding FLOAT[768]
);
`

type Chunk struct {
	ID       int64
	DreamID  int64
	Content  string
	Distance *float64
}

// ChunkStore keeps one rendered document per indexed entry, with an
// optional embedding for KNN search. Without an embedder, Search scores
// by keyword overlap.
type ChunkStore struct {
	db       *sql.DB
	embedder Embedder
}

func OpenChunks(path string, embedder Embedder) (*ChunkStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(chunkSchema); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(chunkVecSchema); err != nil {
		db.Close()
		return nil, err
	}

	return &ChunkStore{db: db, embedder: embedder}, nil
}

func (c *ChunkStore) Close() error {
	return c.db.Close()
}

func (c *ChunkStore) Add(ctx context.Context, dreamID int64, content string) (int64, error) {
	res, err := c.db.Exec(`INSERT INTO chunks (dream_id, content) VALUES (?, ?)`, dreamID, content)
	if err != nil {
		return 0, fmt.Errorf("insert chunk: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if c.embedder != nil {
		embedding, err := c.embedder.Embed(ctx, content)
		if err != nil {
			return 0, fmt.Errorf("embed chunk: %w", err)
		}
		blob, err := sqlite_vec.SerializeFloat32(embedding)
		if err != nil {
			return 0, err
		}
		if _, err := c.db.Exec(`INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)`, id, blob); err != nil {
			return 0, fmt.Errorf("insert embedding: %w", err)
		}
	}

	return id, nil
}

func (c *ChunkStore) Count() (int, error) {
	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}

// ByDream returns the stored documents for the given entry IDs.
func (c *ChunkStore) ByDream(dreamIDs []int64) ([]Chunk, error) {
	var out []Chunk
	for _, id := range dreamIDs {
		rows, err := c.db.Query(`SELECT id, dream_id, content FROM chunks WHERE dream_id = ?`, id)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var ch Chunk
			if err := rows.Scan(&ch.ID, &ch.DreamID, &ch.Content); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, ch)
		}
		rows.Close()
	}
	return out, nil
}

func (c *ChunkStore) Search(ctx context.Context, query string, limit int) ([]Chunk, error) {
	if limit <= 0 {
		limit = 5
	}
	if c.embedder != nil {
		return c.semanticSearch(ctx, query, limit)
	}
	return c.keywordSearch(query, limit)
}

func (c *ChunkStore) semanticSearch(ctx context.Context, query string, limit int) ([]Chunk, error) {
	embedding, err := c.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	blob, err := sqlite_vec.SerializeFloat32(embedding)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.Query(`
		SELECT ch.id, ch.dream_id, ch.content, v.distance
		FROM vec_chunks v
		JOIN chunks ch ON ch.id = v.chunk_id
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance`, blob, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var ch Chunk
		var distance float64
		if err := rows.Scan(&ch.ID, &ch.DreamID, &ch.Content, &distance); err != nil {
			return nil, err
		}
		ch.Distance = &distance
		out = append(out, ch)
	}
	return out, rows.Err()
}

// keywordSearch scores every chunk by query term overlap. Journals are
// small enough that a full scan is fine.
func (c *ChunkStore) keywordSearch(query string, limit int) ([]Chunk, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	rows, err := c.db.Query(`SELECT id, dream_id, content FROM chunks`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		chunk Chunk
		score int
	}
	var candidates []scored
	for rows.Next() {
		var ch Chunk
		if err := rows.Scan(&ch.ID, &ch.DreamID, &ch.Content); err != nil {
			return nil, err
		}
		lower := strings.ToLower(ch.Content)
		score := 0
		for _, term := range terms {
			score += strings.Count(lower, term)
		}
		if score > 0 {
			candidates = append(candidates, scored{chunk: ch, score: score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]Chunk, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, cand.chunk)
	}
	return out, nil
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"in": true, "on": true, "to": true, "is": true, "are": true, "was": true,
	"what": true, "why": true, "how": true, "do": true, "does": true,
	"my": true, "i": true, "me": true, "about": true,
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	var terms []string
	for _, f := range fields {
		f = strings.Trim(f, ".,!?\"'()")
		if len(f) < 3 || stopwords[f] {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
