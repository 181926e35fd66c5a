package journal

import (
	"database/sql"
	"strings"
)

const (
	recentExcerptLen    = 200
	recurringExcerptLen = 300
)

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func like(q string) string {
	return "%" + strings.TrimSpace(q) + "%"
}

func (s *Store) SearchSymbols(userID int64, query, category string) ([]SymbolSummary, error) {
	sqlQuery := `
		SELECT sym.name, sym.category, sym.universal_meaning, COUNT(es.id)
		FROM symbols sym
		LEFT JOIN entry_symbols es ON es.symbol_id = sym.id
		WHERE sym.user_id = ? AND sym.name LIKE ?`
	args := []any{userID, like(query)}
	if category != "" {
		sqlQuery += ` AND sym.category = ?`
		args = append(args, category)
	}
	sqlQuery += `
		GROUP BY sym.id
		ORDER BY COUNT(es.id) DESC, sym.name
		LIMIT 20`

	rows, err := s.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SymbolSummary
	for rows.Next() {
		var sum SymbolSummary
		if err := rows.Scan(&sum.Name, &sum.Category, &sum.UniversalMeaning, &sum.OccurrenceCount); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// SymbolDetails returns nil without error when the symbol is unknown.
func (s *Store) SymbolDetails(userID int64, name string) (*SymbolDetails, error) {
	var symID int64
	d := &SymbolDetails{}
	err := s.db.QueryRow(`
		SELECT id, name, category, universal_meaning FROM symbols
		WHERE user_id = ? AND name LIKE ?`, userID, like(name)).
		Scan(&symID, &d.Name, &d.Category, &d.UniversalMeaning)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	d.Associations, err = s.symbolAssociations(symID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT e.id, e.entry_date, e.title, es.context_note, es.personal_meaning
		FROM entry_symbols es
		JOIN entries e ON e.id = es.entry_id
		WHERE es.symbol_id = ?
		ORDER BY e.entry_date DESC
		LIMIT 10`, symID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a SymbolAppearance
		if err := rows.Scan(&a.DreamID, &a.Date, &a.Title, &a.Context, &a.PersonalMeaning); err != nil {
			return nil, err
		}
		d.Appearances = append(d.Appearances, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM entry_symbols WHERE symbol_id = ?`, symID).Scan(&d.OccurrenceCount); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Store) SymbolEntries(userID int64, name string, limit int) ([]EntrySummary, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(`
		SELECT e.id, e.entry_date, e.title, e.narrative, e.is_recurring, e.is_nightmare
		FROM entry_symbols es
		JOIN symbols sym ON sym.id = es.symbol_id
		JOIN entries e ON e.id = es.entry_id
		WHERE sym.user_id = ? AND sym.name LIKE ?
		ORDER BY e.entry_date DESC
		LIMIT ?`, userID, like(name), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntrySummaries(rows, recurringExcerptLen)
}

func (s *Store) SymbolPatterns(userID int64, name string) (*SymbolPatterns, error) {
	var symID int64
	p := &SymbolPatterns{}
	err := s.db.QueryRow(`
		SELECT id, name FROM symbols WHERE user_id = ? AND name LIKE ?`,
		userID, like(name)).Scan(&symID, &p.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM entry_symbols WHERE symbol_id = ?`, symID).Scan(&p.OccurrenceCount); err != nil {
		return nil, err
	}

	p.CoOccurring, err = s.nameCounts(`
		SELECT sym2.name, COUNT(*) FROM entry_symbols es1
		JOIN entry_symbols es2 ON es2.entry_id = es1.entry_id AND es2.symbol_id != es1.symbol_id
		JOIN symbols sym2 ON sym2.id = es2.symbol_id
		WHERE es1.symbol_id = ?
		GROUP BY sym2.name ORDER BY COUNT(*) DESC LIMIT 10`, symID)
	if err != nil {
		return nil, err
	}

	p.Emotions, err = s.nameCounts(`
		SELECT ee.emotion, COUNT(*) FROM entry_symbols es
		JOIN entry_emotions ee ON ee.entry_id = es.entry_id
		WHERE es.symbol_id = ?
		GROUP BY ee.emotion ORDER BY COUNT(*) DESC LIMIT 10`, symID)
	if err != nil {
		return nil, err
	}

	p.Themes, err = s.nameCounts(`
		SELECT et.theme, COUNT(*) FROM entry_symbols es
		JOIN entry_themes et ON et.entry_id = es.entry_id
		WHERE es.symbol_id = ?
		GROUP BY et.theme ORDER BY COUNT(*) DESC LIMIT 10`, symID)
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (s *Store) SearchCharacters(userID int64, query string) ([]CharacterSummary, error) {
	rows, err := s.db.Query(`
		SELECT ch.name, ch.character_type, ch.real_world_relation, COUNT(ec.id)
		FROM characters ch
		LEFT JOIN entry_characters ec ON ec.character_id = ch.id
		WHERE ch.user_id = ? AND ch.name LIKE ?
		GROUP BY ch.id
		ORDER BY COUNT(ec.id) DESC, ch.name
		LIMIT 20`, userID, like(query))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CharacterSummary
	for rows.Next() {
		var c CharacterSummary
		if err := rows.Scan(&c.Name, &c.Type, &c.RealWorldRelation, &c.OccurrenceCount); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CharacterDetails(userID int64, name string) (*CharacterDetails, error) {
	var charID int64
	d := &CharacterDetails{}
	err := s.db.QueryRow(`
		SELECT id, name, character_type, real_world_relation FROM characters
		WHERE user_id = ? AND name LIKE ?`, userID, like(name)).
		Scan(&charID, &d.Name, &d.Type, &d.RealWorldRelation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM entry_characters WHERE character_id = ?`, charID).Scan(&d.OccurrenceCount); err != nil {
		return nil, err
	}

	d.Archetypes, err = s.nameCounts(`
		SELECT archetype, COUNT(*) FROM entry_characters
		WHERE character_id = ? AND archetype != ''
		GROUP BY archetype ORDER BY COUNT(*) DESC`, charID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT e.id, e.entry_date, e.title, ec.role_in_dream, ec.archetype,
			ec.context_note, ec.personal_significance
		FROM entry_characters ec
		JOIN entries e ON e.id = ec.entry_id
		WHERE ec.character_id = ?
		ORDER BY e.entry_date DESC
		LIMIT 10`, charID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a CharacterAppearance
		if err := rows.Scan(&a.DreamID, &a.Date, &a.Title, &a.Role, &a.Archetype,
			&a.WhatTheyDid, &a.Significance); err != nil {
			return nil, err
		}
		d.Appearances = append(d.Appearances, a)
	}
	return d, rows.Err()
}

func (s *Store) ArchetypeAnalysis(userID int64) ([]ArchetypeGroup, error) {
	rows, err := s.db.Query(`
		SELECT ec.archetype, ch.name, COUNT(*)
		FROM entry_characters ec
		JOIN characters ch ON ch.id = ec.character_id
		WHERE ch.user_id = ? AND ec.archetype != ''
		GROUP BY ec.archetype, ch.name
		ORDER BY ec.archetype, COUNT(*) DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ArchetypeGroup
	index := map[string]int{}
	for rows.Next() {
		var archetype, character string
		var count int
		if err := rows.Scan(&archetype, &character, &count); err != nil {
			return nil, err
		}
		i, ok := index[archetype]
		if !ok {
			i = len(out)
			index[archetype] = i
			out = append(out, ArchetypeGroup{Archetype: archetype})
		}
		out[i].Count += count
		out[i].Characters = append(out[i].Characters, character)
	}
	return out, rows.Err()
}

func (s *Store) EmotionOverview(userID int64) ([]EmotionStat, error) {
	rows, err := s.db.Query(`
		SELECT ee.emotion, COUNT(*), AVG(ee.intensity)
		FROM entry_emotions ee
		JOIN entries e ON e.id = ee.entry_id
		WHERE e.user_id = ?
		GROUP BY ee.emotion
		ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmotionStat
	for rows.Next() {
		var st EmotionStat
		if err := rows.Scan(&st.Emotion, &st.Count, &st.AvgIntensity); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) EmotionEntries(userID int64, emotion string, limit int) ([]EntrySummary, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(`
		SELECT DISTINCT e.id, e.entry_date, e.title, e.narrative, e.is_recurring, e.is_nightmare
		FROM entry_emotions ee
		JOIN entries e ON e.id = ee.entry_id
		WHERE e.user_id = ? AND ee.emotion LIKE ?
		ORDER BY e.entry_date DESC
		LIMIT ?`, userID, like(emotion), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntrySummaries(rows, recurringExcerptLen)
}

func (s *Store) EmotionCorrelations(userID int64, emotion string) (*EmotionCorrelations, error) {
	c := &EmotionCorrelations{Emotion: emotion}
	var err error

	c.CoOccurring, err = s.nameCounts(`
		SELECT ee2.emotion, COUNT(*) FROM entry_emotions ee1
		JOIN entry_emotions ee2 ON ee2.entry_id = ee1.entry_id AND ee2.emotion != ee1.emotion
		JOIN entries e ON e.id = ee1.entry_id
		WHERE e.user_id = ? AND ee1.emotion LIKE ?
		GROUP BY ee2.emotion ORDER BY COUNT(*) DESC LIMIT 10`, userID, like(emotion))
	if err != nil {
		return nil, err
	}

	c.Symbols, err = s.nameCounts(`
		SELECT sym.name, COUNT(*) FROM entry_emotions ee
		JOIN entry_symbols es ON es.entry_id = ee.entry_id
		JOIN symbols sym ON sym.id = es.symbol_id
		JOIN entries e ON e.id = ee.entry_id
		WHERE e.user_id = ? AND ee.emotion LIKE ?
		GROUP BY sym.name ORDER BY COUNT(*) DESC LIMIT 10`, userID, like(emotion))
	if err != nil {
		return nil, err
	}

	c.Themes, err = s.nameCounts(`
		SELECT et.theme, COUNT(*) FROM entry_emotions ee
		JOIN entry_themes et ON et.entry_id = ee.entry_id
		JOIN entries e ON e.id = ee.entry_id
		WHERE e.user_id = ? AND ee.emotion LIKE ?
		GROUP BY et.theme ORDER BY COUNT(*) DESC LIMIT 10`, userID, like(emotion))
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Store) ThemesOverview(userID int64) ([]NameCount, error) {
	return s.nameCounts(`
		SELECT et.theme, COUNT(*) FROM entry_themes et
		JOIN entries e ON e.id = et.entry_id
		WHERE e.user_id = ?
		GROUP BY et.theme ORDER BY COUNT(*) DESC`, userID)
}

func (s *Store) ThemeEntries(userID int64, theme string, limit int) ([]EntrySummary, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(`
		SELECT DISTINCT e.id, e.entry_date, e.title, e.narrative, e.is_recurring, e.is_nightmare
		FROM entry_themes et
		JOIN entries e ON e.id = et.entry_id
		WHERE e.user_id = ? AND et.theme LIKE ?
		ORDER BY e.entry_date DESC
		LIMIT ?`, userID, like(theme), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntrySummaries(rows, recurringExcerptLen)
}

func (s *Store) ThemeAnalysis(userID int64, theme string) (*ThemeAnalysis, error) {
	a := &ThemeAnalysis{Theme: theme}

	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(MIN(e.entry_date), ''), COALESCE(MAX(e.entry_date), '')
		FROM entry_themes et
		JOIN entries e ON e.id = et.entry_id
		WHERE e.user_id = ? AND et.theme LIKE ?`, userID, like(theme)).
		Scan(&a.Count, &a.FirstSeen, &a.LastSeen)
	if err != nil {
		return nil, err
	}
	if a.Count == 0 {
		return nil, nil
	}

	a.Emotions, err = s.nameCounts(`
		SELECT ee.emotion, COUNT(*) FROM entry_themes et
		JOIN entry_emotions ee ON ee.entry_id = et.entry_id
		JOIN entries e ON e.id = et.entry_id
		WHERE e.user_id = ? AND et.theme LIKE ?
		GROUP BY ee.emotion ORDER BY COUNT(*) DESC LIMIT 10`, userID, like(theme))
	if err != nil {
		return nil, err
	}

	a.Symbols, err = s.nameCounts(`
		SELECT sym.name, COUNT(*) FROM entry_themes et
		JOIN entry_symbols es ON es.entry_id = et.entry_id
		JOIN symbols sym ON sym.id = es.symbol_id
		JOIN entries e ON e.id = et.entry_id
		WHERE e.user_id = ? AND et.theme LIKE ?
		GROUP BY sym.name ORDER BY COUNT(*) DESC LIMIT 10`, userID, like(theme))
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Store) SearchEntries(userID int64, query string, limit int) ([]EntrySummary, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := like(query)
	rows, err := s.db.Query(`
		SELECT id, entry_date, title, narrative, is_recurring, is_nightmare
		FROM entries
		WHERE user_id = ? AND (title LIKE ? OR narrative LIKE ? OR personal_interpretation LIKE ?)
		ORDER BY entry_date DESC
		LIMIT ?`, userID, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntrySummaries(rows, recurringExcerptLen)
}

func (s *Store) RecentEntries(userID int64, limit int) ([]EntrySummary, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(`
		SELECT id, entry_date, title, narrative, is_recurring, is_nightmare
		FROM entries
		WHERE user_id = ?
		ORDER BY entry_date DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntrySummaries(rows, recentExcerptLen)
}

func (s *Store) RecurringEntries(userID int64) ([]EntrySummary, error) {
	rows, err := s.db.Query(`
		SELECT id, entry_date, title, narrative, is_recurring, is_nightmare
		FROM entries
		WHERE user_id = ? AND is_recurring = 1
		ORDER BY entry_date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntrySummaries(rows, recurringExcerptLen)
}

// EntryDetails returns nil without error when the entry is unknown.
func (s *Store) EntryDetails(userID, id int64) (*EntryFull, error) {
	data, err := s.EntryBundle(userID, id)
	if err != nil || data == nil {
		return nil, err
	}

	full := &EntryFull{
		DreamID:                data.ID,
		Date:                   data.EntryDate,
		Title:                  data.Title,
		Narrative:              data.Narrative,
		Setting:                data.Setting,
		LucidityLevel:          data.LucidityLevel,
		EmotionalIntensity:     data.EmotionalIntensity,
		IsRecurring:            data.IsRecurring,
		IsNightmare:            data.IsNightmare,
		PersonalInterpretation: data.PersonalInterpretation,
		Symbols:                []string{},
		Characters:             []string{},
		Emotions:               []string{},
		Themes:                 data.Themes,
	}
	for _, sym := range data.Symbols {
		full.Symbols = append(full.Symbols, sym.Name)
	}
	for _, ch := range data.Characters {
		full.Characters = append(full.Characters, ch.Name)
	}
	for _, em := range data.Emotions {
		full.Emotions = append(full.Emotions, em.Name)
	}
	if full.Themes == nil {
		full.Themes = []string{}
	}
	return full, nil
}

func (s *Store) JournalSummary(userID int64) (*Summary, error) {
	sum := &Summary{}
	err := s.db.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(indexed), 0),
			COALESCE(MIN(entry_date), ''),
			COALESCE(MAX(entry_date), ''),
			COALESCE(SUM(is_recurring), 0),
			COALESCE(SUM(is_nightmare), 0),
			COALESCE(SUM(lucidity_level > 0), 0),
			COALESCE(AVG(emotional_intensity), 0)
		FROM entries WHERE user_id = ?`, userID).
		Scan(&sum.TotalDreams, &sum.IndexedDreams, &sum.FirstDate, &sum.LastDate,
			&sum.RecurringCount, &sum.NightmareCount, &sum.LucidCount, &sum.AvgIntensity)
	if err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM symbols WHERE user_id = ?`, userID).Scan(&sum.TotalSymbols); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`
		SELECT COUNT(*) FROM characters WHERE user_id = ?`, userID).Scan(&sum.TotalCharacters); err != nil {
		return nil, err
	}
	if err := s.db.QueryRow(`
		SELECT COUNT(DISTINCT et.theme) FROM entry_themes et
		JOIN entries e ON e.id = et.entry_id
		WHERE e.user_id = ?`, userID).Scan(&sum.TotalThemes); err != nil {
		return nil, err
	}

	return sum, nil
}

func (s *Store) nameCounts(query string, args ...any) ([]NameCount, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NameCount
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		out = append(out, nc)
	}
	return out, rows.Err()
}

func scanEntrySummaries(rows *sql.Rows, excerptLen int) ([]EntrySummary, error) {
	var out []EntrySummary
	for rows.Next() {
		var es EntrySummary
		var narrative string
		if err := rows.Scan(&es.DreamID, &es.Date, &es.Title, &narrative,
			&es.IsRecurring, &es.IsNightmare); err != nil {
			return nil, err
		}
		es.Excerpt = excerpt(narrative, excerptLen)
		out = append(out, es)
	}
	return out, rows.Err()
}
