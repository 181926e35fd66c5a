package journal

import "time"

// Entry is one recorded dream.
type Entry struct {
	ID                     int64
	UserID                 int64
	Title                  string
	Narrative              string
	EntryDate              string // YYYY-MM-DD
	Setting                string
	LucidityLevel          int
	EmotionalIntensity     int
	IsRecurring            bool
	IsNightmare            bool
	RitualPerformed        bool
	RitualDescription      string
	PersonalInterpretation string
	Indexed                bool
	Extracted              bool
	CreatedAt              time.Time
}

// SymbolDetail is a symbol as it appeared in one entry, joined with the
// per-user symbol record.
type SymbolDetail struct {
	Name             string
	Category         string
	ContextNote      string
	UniversalMeaning string
	PersonalMeaning  string
	Associations     []string
}

type CharacterDetail struct {
	Name                 string
	Type                 string
	RealWorldRelation    string
	Role                 string
	Archetype            string
	Traits               []string
	ContextNote          string
	PersonalSignificance string
}

// EmotionDetail phases: "during" (felt in the dream) or "waking".
type EmotionDetail struct {
	Name      string
	Phase     string
	Intensity int
}

// EntryData is an entry with every recorded sub-element, loaded for
// rendering into an indexable document.
type EntryData struct {
	Entry
	Symbols    []SymbolDetail
	Characters []CharacterDetail
	Emotions   []EmotionDetail
	Themes     []string
}

// Result shapes below are handed to the model as tool payloads, hence the
// json tags. "dream_id" is the model-facing name for an entry ID.

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type SymbolSummary struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	UniversalMeaning string `json:"universal_meaning,omitempty"`
	OccurrenceCount  int    `json:"occurrence_count"`
}

type SymbolAppearance struct {
	DreamID         int64  `json:"dream_id"`
	Date            string `json:"date"`
	Title           string `json:"title"`
	Context         string `json:"context,omitempty"`
	PersonalMeaning string `json:"personal_meaning,omitempty"`
}

type SymbolDetails struct {
	Name             string             `json:"name"`
	Category         string             `json:"category"`
	UniversalMeaning string             `json:"universal_meaning,omitempty"`
	OccurrenceCount  int                `json:"occurrence_count"`
	Associations     []string           `json:"personal_associations,omitempty"`
	Appearances      []SymbolAppearance `json:"appearances"`
}

type SymbolPatterns struct {
	Name            string      `json:"name"`
	OccurrenceCount int         `json:"occurrence_count"`
	CoOccurring     []NameCount `json:"co_occurring_symbols"`
	Emotions        []NameCount `json:"associated_emotions"`
	Themes          []NameCount `json:"associated_themes"`
}

type CharacterSummary struct {
	Name              string `json:"name"`
	Type              string `json:"type"`
	RealWorldRelation string `json:"real_world_relation,omitempty"`
	OccurrenceCount   int    `json:"occurrence_count"`
}

type CharacterAppearance struct {
	DreamID      int64  `json:"dream_id"`
	Date         string `json:"date"`
	Title        string `json:"title"`
	Role         string `json:"role,omitempty"`
	Archetype    string `json:"archetype,omitempty"`
	WhatTheyDid  string `json:"what_they_did,omitempty"`
	Significance string `json:"significance,omitempty"`
}

type CharacterDetails struct {
	Name              string                `json:"name"`
	Type              string                `json:"type"`
	RealWorldRelation string                `json:"real_world_relation,omitempty"`
	OccurrenceCount   int                   `json:"occurrence_count"`
	Archetypes        []NameCount           `json:"archetypes"`
	Appearances       []CharacterAppearance `json:"appearances"`
}

type ArchetypeGroup struct {
	Archetype  string   `json:"archetype"`
	Count      int      `json:"count"`
	Characters []string `json:"characters"`
}

type EmotionStat struct {
	Emotion      string  `json:"emotion"`
	Count        int     `json:"count"`
	AvgIntensity float64 `json:"avg_intensity"`
}

type EmotionCorrelations struct {
	Emotion     string      `json:"emotion"`
	CoOccurring []NameCount `json:"co_occurring_emotions"`
	Symbols     []NameCount `json:"associated_symbols"`
	Themes      []NameCount `json:"associated_themes"`
}

type ThemeAnalysis struct {
	Theme     string      `json:"theme"`
	Count     int         `json:"count"`
	Emotions  []NameCount `json:"associated_emotions"`
	Symbols   []NameCount `json:"associated_symbols"`
	FirstSeen string      `json:"first_seen,omitempty"`
	LastSeen  string      `json:"last_seen,omitempty"`
}

type EntrySummary struct {
	DreamID     int64  `json:"dream_id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Excerpt     string `json:"excerpt,omitempty"`
	IsRecurring bool   `json:"is_recurring,omitempty"`
	IsNightmare bool   `json:"is_nightmare,omitempty"`
}

type EntryFull struct {
	DreamID                int64    `json:"dream_id"`
	Date                   string   `json:"date"`
	Title                  string   `json:"title"`
	Narrative              string   `json:"narrative"`
	Setting                string   `json:"setting,omitempty"`
	LucidityLevel          int      `json:"lucidity_level"`
	EmotionalIntensity     int      `json:"emotional_intensity"`
	IsRecurring            bool     `json:"is_recurring"`
	IsNightmare            bool     `json:"is_nightmare"`
	PersonalInterpretation string   `json:"personal_interpretation,omitempty"`
	Symbols                []string `json:"symbols"`
	Characters             []string `json:"characters"`
	Emotions               []string `json:"emotions"`
	Themes                 []string `json:"themes"`
}

type Summary struct {
	TotalDreams     int     `json:"total_dreams"`
	IndexedDreams   int     `json:"indexed_dreams"`
	FirstDate       string  `json:"first_dream_date,omitempty"`
	LastDate        string  `json:"last_dream_date,omitempty"`
	TotalSymbols    int     `json:"total_symbols"`
	TotalCharacters int     `json:"total_characters"`
	TotalThemes     int     `json:"total_themes"`
	RecurringCount  int     `json:"recurring_count"`
	NightmareCount  int     `json:"nightmare_count"`
	LucidCount      int     `json:"lucid_count"`
	AvgIntensity    float64 `json:"avg_emotional_intensity"`
}
