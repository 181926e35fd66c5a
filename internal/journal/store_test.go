package journal

import (
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndLoadEntry(t *testing.T) {
	s := testStore(t)

	id, err := s.CreateEntry(&Entry{
		UserID:             1,
		Title:              "Falling through water",
		Narrative:          "I was sinking in a dark ocean and could breathe.",
		EntryDate:          "2026-03-14",
		Setting:            "open ocean at night",
		LucidityLevel:      2,
		EmotionalIntensity: 7,
		IsNightmare:        true,
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero entry ID")
	}

	e, err := s.Entry(1, id)
	if err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if e == nil {
		t.Fatal("entry not found")
	}
	if e.Title != "Falling through water" || !e.IsNightmare || e.LucidityLevel != 2 {
		t.Errorf("entry fields mismatch: %+v", e)
	}
	if e.Indexed {
		t.Error("new entry should not be marked indexed")
	}

	// wrong user should not see it
	other, err := s.Entry(2, id)
	if err != nil {
		t.Fatalf("load entry for other user: %v", err)
	}
	if other != nil {
		t.Error("entry leaked across users")
	}
}

func TestEntryBundleLoadsSubElements(t *testing.T) {
	s := testStore(t)

	id, err := s.CreateEntry(&Entry{
		UserID: 1, Title: "Teeth", Narrative: "My teeth crumbled.", EntryDate: "2026-01-02",
	})
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}

	symID, err := s.AddSymbol(1, "teeth", "body", "loss of control")
	if err != nil {
		t.Fatalf("add symbol: %v", err)
	}
	if err := s.AttachSymbol(id, symID, "crumbling while talking", "fear of being heard"); err != nil {
		t.Fatalf("attach symbol: %v", err)
	}
	if err := s.AddSymbolAssociation(symID, "dentist visits as a child"); err != nil {
		t.Fatalf("add association: %v", err)
	}

	charID, err := s.AddCharacter(1, "Mother", "known_person", "parent")
	if err != nil {
		t.Fatalf("add character: %v", err)
	}
	if err := s.AttachCharacter(id, charID, "observer", "wise_elder",
		[]string{"calm", "distant"}, "watched silently", "felt judged"); err != nil {
		t.Fatalf("attach character: %v", err)
	}

	if err := s.AddEmotion(id, "anxiety", "during", 8); err != nil {
		t.Fatalf("add emotion: %v", err)
	}
	if err := s.AddEmotion(id, "relief", "waking", 4); err != nil {
		t.Fatalf("add emotion: %v", err)
	}
	if err := s.AddTheme(id, "loss of control"); err != nil {
		t.Fatalf("add theme: %v", err)
	}

	data, err := s.EntryBundle(1, id)
	if err != nil {
		t.Fatalf("entry bundle: %v", err)
	}
	if data == nil {
		t.Fatal("bundle not found")
	}
	if len(data.Symbols) != 1 || data.Symbols[0].Name != "teeth" {
		t.Errorf("unexpected symbols: %+v", data.Symbols)
	}
	if len(data.Symbols[0].Associations) != 1 {
		t.Errorf("expected 1 association, got %v", data.Symbols[0].Associations)
	}
	if len(data.Characters) != 1 || data.Characters[0].Archetype != "wise_elder" {
		t.Errorf("unexpected characters: %+v", data.Characters)
	}
	if len(data.Characters[0].Traits) != 2 {
		t.Errorf("expected 2 traits, got %v", data.Characters[0].Traits)
	}
	if len(data.Emotions) != 2 {
		t.Errorf("expected 2 emotions, got %+v", data.Emotions)
	}
	if len(data.Themes) != 1 || data.Themes[0] != "loss of control" {
		t.Errorf("unexpected themes: %v", data.Themes)
	}
}

func TestAddSymbolUpserts(t *testing.T) {
	s := testStore(t)

	first, err := s.AddSymbol(1, "water", "nature", "emotion, the unconscious")
	if err != nil {
		t.Fatalf("add symbol: %v", err)
	}
	second, err := s.AddSymbol(1, "water", "nature", "ignored on upsert")
	if err != nil {
		t.Fatalf("re-add symbol: %v", err)
	}
	if first != second {
		t.Errorf("expected same symbol ID, got %d and %d", first, second)
	}

	// same name for another user is a new symbol
	other, err := s.AddSymbol(2, "water", "nature", "")
	if err != nil {
		t.Fatalf("add symbol other user: %v", err)
	}
	if other == first {
		t.Error("symbols should be per-user")
	}
}

func TestIndexedFlagLifecycle(t *testing.T) {
	s := testStore(t)

	var ids []int64
	for _, title := range []string{"one", "two", "three"} {
		id, err := s.CreateEntry(&Entry{UserID: 7, Title: title, Narrative: "n", EntryDate: "2026-02-01"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, id)
	}

	pending, err := s.UnindexedIDs(7)
	if err != nil {
		t.Fatalf("unindexed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending, got %d", len(pending))
	}

	if err := s.MarkIndexed(ids[0]); err != nil {
		t.Fatalf("mark indexed: %v", err)
	}
	pending, _ = s.UnindexedIDs(7)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending after mark, got %d", len(pending))
	}

	users, err := s.UsersWithPending()
	if err != nil {
		t.Fatalf("users with pending: %v", err)
	}
	if len(users) != 1 || users[0] != 7 {
		t.Errorf("expected user 7 pending, got %v", users)
	}

	if err := s.ResetIndexed(7); err != nil {
		t.Fatalf("reset indexed: %v", err)
	}
	pending, _ = s.UnindexedIDs(7)
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending after reset, got %d", len(pending))
	}

	all, err := s.AllIDs(7)
	if err != nil {
		t.Fatalf("all ids: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 ids, got %d", len(all))
	}
}

func TestMarkManyIndexed(t *testing.T) {
	s := testStore(t)

	var ids []int64
	for _, title := range []string{"one", "two", "three"} {
		id, err := s.CreateEntry(&Entry{UserID: 7, Title: title, Narrative: "n", EntryDate: "2026-02-01"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, id)
	}

	if err := s.MarkManyIndexed(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	pending, _ := s.UnindexedIDs(7)
	if len(pending) != 3 {
		t.Fatalf("empty batch must not mark anything, %d pending", len(pending))
	}

	if err := s.MarkManyIndexed(ids[:2]); err != nil {
		t.Fatalf("mark many: %v", err)
	}
	pending, _ = s.UnindexedIDs(7)
	if len(pending) != 1 || pending[0] != ids[2] {
		t.Errorf("pending after batch = %v, want [%d]", pending, ids[2])
	}
}

func TestExcerptTruncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	got := excerpt(long, 200)
	if len(got) != 203 {
		t.Errorf("expected 203 chars (200 + ellipsis), got %d", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("expected ellipsis suffix")
	}

	short := "short narrative"
	if excerpt(short, 200) != short {
		t.Error("short strings should pass through unchanged")
	}
}
