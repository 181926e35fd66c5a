package indexing

import (
	"fmt"
	"strings"

	"github.com/nightjar-app/nightjar/internal/journal"
)

const sectionRule = "=================================================="

// Render produces the canonical indexable document for one entry. The
// layout is stable: the graph engine parses its tagged header and section
// markers, and source attribution depends on the [Dream ID: N] tag.
func Render(e *journal.EntryData) (string, error) {
	if e == nil {
		return "", fmt.Errorf("no entry to render")
	}
	if strings.TrimSpace(e.Narrative) == "" {
		return "", fmt.Errorf("entry %d has no narrative", e.ID)
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("[Dream ID: %d] [Date: %s] [Title: %s]", e.ID, e.EntryDate, e.Title))
	if flags := headerFlags(e); flags != "" {
		b.WriteString(" [" + flags + "]")
	}
	b.WriteString("\n\n")

	if e.Setting != "" {
		b.WriteString("SETTING: " + e.Setting + "\n\n")
	}

	b.WriteString("DREAM NARRATIVE:\n")
	b.WriteString(e.Narrative + "\n")

	if len(e.Symbols) > 0 {
		writeSectionHeader(&b, "SYMBOLS IN THIS DREAM:")
		for _, sym := range e.Symbols {
			b.WriteString("\n• SYMBOL: " + sym.Name + "\n")
			if sym.Category != "" {
				b.WriteString("  Category: " + sym.Category + "\n")
			}
			if sym.ContextNote != "" {
				b.WriteString("  Context in dream: " + sym.ContextNote + "\n")
			}
			if sym.UniversalMeaning != "" {
				b.WriteString("  Universal meaning: " + sym.UniversalMeaning + "\n")
			}
			if sym.PersonalMeaning != "" {
				b.WriteString("  >>> PERSONAL MEANING: " + sym.PersonalMeaning + "\n")
			}
			if len(sym.Associations) > 0 {
				b.WriteString("  Personal associations: " + strings.Join(sym.Associations, ", ") + "\n")
			}
		}
	}

	if len(e.Characters) > 0 {
		writeSectionHeader(&b, "CHARACTERS IN THIS DREAM:")
		for _, ch := range e.Characters {
			b.WriteString("\n• CHARACTER: " + ch.Name + "\n")
			if ch.Type != "" {
				b.WriteString("  Type: " + ch.Type + "\n")
			}
			if ch.RealWorldRelation != "" {
				b.WriteString("  Real-world relation: " + ch.RealWorldRelation + "\n")
			}
			if ch.Role != "" {
				b.WriteString("  Role in dream: " + ch.Role + "\n")
			}
			if ch.Archetype != "" {
				b.WriteString("  ARCHETYPE: " + ch.Archetype + "\n")
			}
			if len(ch.Traits) > 0 {
				b.WriteString("  Traits: " + strings.Join(ch.Traits, ", ") + "\n")
			}
			if ch.ContextNote != "" {
				b.WriteString("  What they did: " + ch.ContextNote + "\n")
			}
			if ch.PersonalSignificance != "" {
				b.WriteString("  >>> PERSONAL SIGNIFICANCE: " + ch.PersonalSignificance + "\n")
			}
		}
	}

	if len(e.Emotions) > 0 {
		writeSectionHeader(&b, "EMOTIONS EXPERIENCED:")
		b.WriteString("\n")
		writeEmotionPhase(&b, "During the dream:", e.Emotions, "during")
		writeEmotionPhase(&b, "Upon waking:", e.Emotions, "waking")
	}

	if len(e.Themes) > 0 {
		b.WriteString("\nTHEMES: " + strings.Join(e.Themes, " | ") + "\n")
	}

	if e.RitualPerformed && e.RitualDescription != "" {
		b.WriteString("\nPRE-SLEEP RITUAL: " + e.RitualDescription + "\n")
	}

	if e.PersonalInterpretation != "" {
		b.WriteString("\n" + sectionRule + "\n")
		b.WriteString("★★★ DREAMER'S PERSONAL INTERPRETATION ★★★\n")
		b.WriteString("(This is the most important part - the dreamer's own understanding)\n")
		b.WriteString(sectionRule + "\n\n")
		b.WriteString(e.PersonalInterpretation + "\n")
	}

	b.WriteString(fmt.Sprintf("\n[Overall emotional intensity: %d/10]\n", e.EmotionalIntensity))

	return b.String(), nil
}

func headerFlags(e *journal.EntryData) string {
	var flags []string
	if e.IsRecurring {
		flags = append(flags, "RECURRING")
	}
	if e.IsNightmare {
		flags = append(flags, "NIGHTMARE")
	}
	if e.LucidityLevel > 0 {
		flags = append(flags, fmt.Sprintf("LUCID (%d)", e.LucidityLevel))
	}
	return strings.Join(flags, ", ")
}

func writeSectionHeader(b *strings.Builder, title string) {
	b.WriteString("\n" + sectionRule + "\n")
	b.WriteString(title + "\n")
	b.WriteString(sectionRule + "\n")
}

func writeEmotionPhase(b *strings.Builder, label string, emotions []journal.EmotionDetail, phase string) {
	var lines []string
	for _, em := range emotions {
		if em.Phase == phase {
			lines = append(lines, fmt.Sprintf("  • %s (%d/10)", em.Name, em.Intensity))
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString(label + "\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
}
