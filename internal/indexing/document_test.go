package indexing

import (
	"strings"
	"testing"

	"github.com/nightjar-app/nightjar/internal/journal"
)

func fullEntry() *journal.EntryData {
	return &journal.EntryData{
		Entry: journal.Entry{
			ID:                     12,
			UserID:                 1,
			Title:                  "The flooded house",
			Narrative:              "Water rose through the floorboards of my childhood home.",
			EntryDate:              "2026-01-10",
			Setting:                "childhood home",
			LucidityLevel:          3,
			EmotionalIntensity:     8,
			IsRecurring:            true,
			IsNightmare:            true,
			RitualPerformed:        true,
			RitualDescription:      "chamomile tea and no screens",
			PersonalInterpretation: "I think this is about feeling overwhelmed at work.",
		},
		Symbols: []journal.SymbolDetail{{
			Name:             "water",
			Category:         "nature",
			ContextNote:      "rising through floorboards",
			UniversalMeaning: "emotion, the unconscious",
			PersonalMeaning:  "feeling overwhelmed",
			Associations:     []string{"the lake house summers"},
		}},
		Characters: []journal.CharacterDetail{{
			Name:                 "Mother",
			Type:                 "known_person",
			RealWorldRelation:    "parent",
			Role:                 "rescuer",
			Archetype:            "caregiver",
			Traits:               []string{"calm", "distant"},
			ContextNote:          "pulled me upstairs",
			PersonalSignificance: "felt protected",
		}},
		Emotions: []journal.EmotionDetail{
			{Name: "fear", Phase: "during", Intensity: 8},
			{Name: "relief", Phase: "waking", Intensity: 5},
		},
		Themes: []string{"being overwhelmed", "family"},
	}
}

func TestRenderLayout(t *testing.T) {
	doc, err := Render(fullEntry())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.HasPrefix(doc, "[Dream ID: 12] [Date: 2026-01-10] [Title: The flooded house] [RECURRING, NIGHTMARE, LUCID (3)]") {
		t.Errorf("unexpected header: %s", strings.SplitN(doc, "\n", 2)[0])
	}

	wantFragments := []string{
		"SETTING: childhood home",
		"DREAM NARRATIVE:\nWater rose through the floorboards",
		"SYMBOLS IN THIS DREAM:",
		"• SYMBOL: water",
		"  Category: nature",
		"  Universal meaning: emotion, the unconscious",
		"  >>> PERSONAL MEANING: feeling overwhelmed",
		"  Personal associations: the lake house summers",
		"CHARACTERS IN THIS DREAM:",
		"• CHARACTER: Mother",
		"  Type: known_person",
		"  Real-world relation: parent",
		"  ARCHETYPE: caregiver",
		"  Traits: calm, distant",
		"  What they did: pulled me upstairs",
		"  >>> PERSONAL SIGNIFICANCE: felt protected",
		"EMOTIONS EXPERIENCED:",
		"During the dream:\n  • fear (8/10)",
		"Upon waking:\n  • relief (5/10)",
		"THEMES: being overwhelmed | family",
		"PRE-SLEEP RITUAL: chamomile tea and no screens",
		"★★★ DREAMER'S PERSONAL INTERPRETATION ★★★",
		"(This is the most important part - the dreamer's own understanding)",
		"I think this is about feeling overwhelmed at work.",
		"[Overall emotional intensity: 8/10]",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(doc, frag) {
			t.Errorf("document missing fragment %q", frag)
		}
	}

	if strings.Count(doc, sectionRule) != 8 {
		t.Errorf("expected 8 section rules, got %d", strings.Count(doc, sectionRule))
	}
}

func TestRenderMinimalEntry(t *testing.T) {
	doc, err := Render(&journal.EntryData{Entry: journal.Entry{
		ID: 5, Title: "Untitled", Narrative: "Brief flash of a red door.", EntryDate: "2026-04-01",
	}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.HasPrefix(doc, "[Dream ID: 5] [Date: 2026-04-01] [Title: Untitled]\n") {
		t.Errorf("minimal header should carry no flags: %s", strings.SplitN(doc, "\n", 2)[0])
	}
	for _, absent := range []string{"SYMBOLS IN THIS DREAM", "CHARACTERS IN THIS DREAM", "EMOTIONS EXPERIENCED", "THEMES:", "PRE-SLEEP RITUAL", "INTERPRETATION"} {
		if strings.Contains(doc, absent) {
			t.Errorf("minimal document should not contain %q", absent)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	a, _ := Render(fullEntry())
	b, _ := Render(fullEntry())
	if a != b {
		t.Error("rendering the same entry twice should be byte-identical")
	}
}

func TestRenderFailures(t *testing.T) {
	if _, err := Render(nil); err == nil {
		t.Error("expected error for nil entry")
	}
	if _, err := Render(&journal.EntryData{Entry: journal.Entry{ID: 9, Title: "Empty"}}); err == nil {
		t.Error("expected error for entry with no narrative")
	}
	if _, err := Render(&journal.EntryData{Entry: journal.Entry{ID: 9, Narrative: "   \n"}}); err == nil {
		t.Error("expected error for whitespace-only narrative")
	}
}
