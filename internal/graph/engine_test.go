package graph

import "testing"

const sampleDocument = `[Dream ID: 12] [Date: 2026-01-10] [Title: The flooded house] [RECURRING, NIGHTMARE]

SETTING: childhood home

DREAM NARRATIVE:
Water rose through the floorboards of my childhood home.

==================================================
SYMBOLS IN THIS DREAM:
==================================================

• SYMBOL: water
  Category: nature
  Context in dream: rising through floorboards
  Universal meaning: emotion, the unconscious
  >>> PERSONAL MEANING: feeling overwhelmed

• SYMBOL: house
  Category: place

==================================================
CHARACTERS IN THIS DREAM:
==================================================

• CHARACTER: Mother
  Type: known_person
  Role in dream: rescuer
  ARCHETYPE: caregiver
  What they did: pulled me upstairs

==================================================
EMOTIONS EXPERIENCED:
==================================================

During the dream:
  • fear (8/10)
Upon waking:
  • relief (5/10)

THEMES: being overwhelmed | family

[Overall emotional intensity: 8/10]
`

func TestParseDocument(t *testing.T) {
	doc, err := parseDocument(sampleDocument)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if doc.DreamID != 12 {
		t.Errorf("expected dream ID 12, got %d", doc.DreamID)
	}
	if doc.Dream.Kind != "dream" || doc.Dream.Name != "[Dream ID: 12] The flooded house" {
		t.Errorf("unexpected dream vertex: %+v", doc.Dream)
	}

	byName := map[string]Vertex{}
	for _, v := range doc.Entities {
		byName[v.Name] = v
	}

	expect := map[string]string{
		"water":             "symbol",
		"house":             "symbol",
		"Mother":            "character",
		"caregiver":         "archetype",
		"fear":              "emotion",
		"relief":            "emotion",
		"being overwhelmed": "theme",
		"family":            "theme",
		"childhood home":    "location",
	}
	for name, kind := range expect {
		v, ok := byName[name]
		if !ok {
			t.Errorf("missing entity %q", name)
			continue
		}
		if v.Kind != kind {
			t.Errorf("entity %q kind = %s, want %s", name, v.Kind, kind)
		}
	}
	if len(doc.Entities) != len(expect) {
		t.Errorf("expected %d entities, got %d: %+v", len(expect), len(doc.Entities), doc.Entities)
	}

	if byName["water"].Description != "category: nature" {
		t.Errorf("unexpected water description: %q", byName["water"].Description)
	}
	if byName["Mother"].Description != "type: known_person" {
		t.Errorf("unexpected Mother description: %q", byName["Mother"].Description)
	}
}

func TestParseDocumentRejectsUntagged(t *testing.T) {
	if _, err := parseDocument("just some text\nwith no header"); err == nil {
		t.Error("expected error for missing header tag")
	}
	if _, err := parseDocument(""); err == nil {
		t.Error("expected error for empty document")
	}
}
