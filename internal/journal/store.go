package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// DB exposes the underlying handle so sibling stores can share one database.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateEntry(e *Entry) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO entries (user_id, title, narrative, entry_date, setting,
			lucidity_level, emotional_intensity, is_recurring, is_nightmare,
			ritual_performed, ritual_description, personal_interpretation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.Title, e.Narrative, e.EntryDate, e.Setting,
		e.LucidityLevel, e.EmotionalIntensity, e.IsRecurring, e.IsNightmare,
		e.RitualPerformed, e.RitualDescription, e.PersonalInterpretation)
	if err != nil {
		return 0, fmt.Errorf("create entry: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) Entry(userID, id int64) (*Entry, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, title, narrative, entry_date, setting,
			lucidity_level, emotional_intensity, is_recurring, is_nightmare,
			ritual_performed, ritual_description, personal_interpretation,
			indexed, extracted, created_at
		FROM entries WHERE id = ? AND user_id = ?`, id, userID)

	var e Entry
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Narrative, &e.EntryDate,
		&e.Setting, &e.LucidityLevel, &e.EmotionalIntensity, &e.IsRecurring,
		&e.IsNightmare, &e.RitualPerformed, &e.RitualDescription,
		&e.PersonalInterpretation, &e.Indexed, &e.Extracted, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EntryBundle loads the entry with every sub-element, for document rendering.
func (s *Store) EntryBundle(userID, id int64) (*EntryData, error) {
	entry, err := s.Entry(userID, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	data := &EntryData{Entry: *entry}

	rows, err := s.db.Query(`
		SELECT sym.id, sym.name, sym.category, sym.universal_meaning,
			es.context_note, es.personal_meaning
		FROM entry_symbols es
		JOIN symbols sym ON sym.id = es.symbol_id
		WHERE es.entry_id = ?
		ORDER BY sym.name`, id)
	if err != nil {
		return nil, err
	}
	var symbolIDs []int64
	for rows.Next() {
		var sd SymbolDetail
		var symID int64
		if err := rows.Scan(&symID, &sd.Name, &sd.Category, &sd.UniversalMeaning,
			&sd.ContextNote, &sd.PersonalMeaning); err != nil {
			rows.Close()
			return nil, err
		}
		symbolIDs = append(symbolIDs, symID)
		data.Symbols = append(data.Symbols, sd)
	}
	rows.Close()

	for i, symID := range symbolIDs {
		assoc, err := s.symbolAssociations(symID)
		if err != nil {
			return nil, err
		}
		data.Symbols[i].Associations = assoc
	}

	rows, err = s.db.Query(`
		SELECT ch.name, ch.character_type, ch.real_world_relation,
			ec.role_in_dream, ec.archetype, ec.traits, ec.context_note,
			ec.personal_significance
		FROM entry_characters ec
		JOIN characters ch ON ch.id = ec.character_id
		WHERE ec.entry_id = ?
		ORDER BY ch.name`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var cd CharacterDetail
		var traitsJSON string
		if err := rows.Scan(&cd.Name, &cd.Type, &cd.RealWorldRelation,
			&cd.Role, &cd.Archetype, &traitsJSON, &cd.ContextNote,
			&cd.PersonalSignificance); err != nil {
			rows.Close()
			return nil, err
		}
		json.Unmarshal([]byte(traitsJSON), &cd.Traits)
		data.Characters = append(data.Characters, cd)
	}
	rows.Close()

	rows, err = s.db.Query(`
		SELECT emotion, phase, intensity FROM entry_emotions
		WHERE entry_id = ? ORDER BY phase, intensity DESC`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var ed EmotionDetail
		if err := rows.Scan(&ed.Name, &ed.Phase, &ed.Intensity); err != nil {
			rows.Close()
			return nil, err
		}
		data.Emotions = append(data.Emotions, ed)
	}
	rows.Close()

	rows, err = s.db.Query(`
		SELECT theme FROM entry_themes WHERE entry_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var theme string
		if err := rows.Scan(&theme); err != nil {
			rows.Close()
			return nil, err
		}
		data.Themes = append(data.Themes, theme)
	}
	rows.Close()

	return data, nil
}

func (s *Store) symbolAssociations(symbolID int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT association FROM symbol_associations
		WHERE symbol_id = ? ORDER BY id`, symbolID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AddSymbol upserts a per-user symbol and returns its ID.
func (s *Store) AddSymbol(userID int64, name, category, universalMeaning string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		SELECT id FROM symbols WHERE user_id = ? AND name = ?`, userID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	res, err := s.db.Exec(`
		INSERT INTO symbols (user_id, name, category, universal_meaning)
		VALUES (?, ?, ?, ?)`, userID, name, category, universalMeaning)
	if err != nil {
		return 0, fmt.Errorf("add symbol: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) AttachSymbol(entryID, symbolID int64, contextNote, personalMeaning string) error {
	_, err := s.db.Exec(`
		INSERT INTO entry_symbols (entry_id, symbol_id, context_note, personal_meaning)
		VALUES (?, ?, ?, ?)`, entryID, symbolID, contextNote, personalMeaning)
	return err
}

func (s *Store) AddSymbolAssociation(symbolID int64, association string) error {
	_, err := s.db.Exec(`
		INSERT INTO symbol_associations (symbol_id, association) VALUES (?, ?)`,
		symbolID, association)
	return err
}

func (s *Store) AddCharacter(userID int64, name, characterType, realWorldRelation string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		SELECT id FROM characters WHERE user_id = ? AND name = ?`, userID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	res, err := s.db.Exec(`
		INSERT INTO characters (user_id, name, character_type, real_world_relation)
		VALUES (?, ?, ?, ?)`, userID, name, characterType, realWorldRelation)
	if err != nil {
		return 0, fmt.Errorf("add character: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) AttachCharacter(entryID, characterID int64, role, archetype string, traits []string, contextNote, significance string) error {
	traitsJSON, err := json.Marshal(traits)
	if err != nil {
		return err
	}
	if traits == nil {
		traitsJSON = []byte("[]")
	}
	_, err = s.db.Exec(`
		INSERT INTO entry_characters (entry_id, character_id, role_in_dream,
			archetype, traits, context_note, personal_significance)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entryID, characterID, role, archetype, string(traitsJSON), contextNote, significance)
	return err
}

func (s *Store) AddEmotion(entryID int64, emotion, phase string, intensity int) error {
	_, err := s.db.Exec(`
		INSERT INTO entry_emotions (entry_id, emotion, phase, intensity)
		VALUES (?, ?, ?, ?)`, entryID, emotion, phase, intensity)
	return err
}

func (s *Store) AddTheme(entryID int64, theme string) error {
	_, err := s.db.Exec(`
		INSERT INTO entry_themes (entry_id, theme) VALUES (?, ?)`, entryID, theme)
	return err
}

// UnindexedIDs returns entry IDs not yet in the knowledge graph, oldest first.
func (s *Store) UnindexedIDs(userID int64) ([]int64, error) {
	return s.queryIDs(`
		SELECT id FROM entries WHERE user_id = ? AND indexed = 0 ORDER BY id`, userID)
}

func (s *Store) AllIDs(userID int64) ([]int64, error) {
	return s.queryIDs(`
		SELECT id FROM entries WHERE user_id = ? ORDER BY id`, userID)
}

func (s *Store) queryIDs(query string, args ...any) ([]int64, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) MarkIndexed(id int64) error {
	_, err := s.db.Exec(`UPDATE entries SET indexed = 1 WHERE id = ?`, id)
	return err
}

// MarkManyIndexed flips the indexed flag for a batch of entries in one
// transaction.
func (s *Store) MarkManyIndexed(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := tx.Exec(`UPDATE entries SET indexed = 1 WHERE id = ?`, id); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ResetIndexed(userID int64) error {
	_, err := s.db.Exec(`UPDATE entries SET indexed = 0 WHERE user_id = ?`, userID)
	return err
}

// UsersWithPending lists users that have entries awaiting indexing.
func (s *Store) UsersWithPending() ([]int64, error) {
	return s.queryIDs(`
		SELECT DISTINCT user_id FROM entries WHERE indexed = 0 ORDER BY user_id`)
}
