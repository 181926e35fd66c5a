package agent

import (
	"sync"
	"testing"
)

func TestCacheGetOrCreate(t *testing.T) {
	c := NewCache()

	a1, created := c.GetOrCreate(1, "chat-a", func() *Agent { return &Agent{} })
	if !created {
		t.Fatal("first lookup should create")
	}
	a2, created := c.GetOrCreate(1, "chat-a", func() *Agent { return &Agent{} })
	if created {
		t.Fatal("second lookup should hit")
	}
	if a1 != a2 {
		t.Error("same conversation must resolve to the same agent")
	}

	b, _ := c.GetOrCreate(2, "chat-a", func() *Agent { return &Agent{} })
	if b == a1 {
		t.Error("same chat ID under a different user must be a distinct agent")
	}
}

func TestCacheGetAndDelete(t *testing.T) {
	c := NewCache()

	if c.Get(1, "chat-a") != nil {
		t.Error("expected nil for unknown conversation")
	}

	a, _ := c.GetOrCreate(1, "chat-a", func() *Agent { return &Agent{} })
	if c.Get(1, "chat-a") != a {
		t.Error("Get should return the cached agent")
	}

	c.Delete(1, "chat-a")
	if c.Get(1, "chat-a") != nil {
		t.Error("agent should be evicted after delete")
	}
	if c.Len() != 0 {
		t.Errorf("cache length = %d, want 0", c.Len())
	}
}

func TestCacheConcurrentLookupCreatesOnce(t *testing.T) {
	c := NewCache()

	var mu sync.Mutex
	creations := 0
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCreate(1, "chat-a", func() *Agent {
				mu.Lock()
				creations++
				mu.Unlock()
				return &Agent{}
			})
		}()
	}
	wg.Wait()

	if creations != 1 {
		t.Errorf("create ran %d times, want 1", creations)
	}
	if c.Len() != 1 {
		t.Errorf("cache length = %d, want 1", c.Len())
	}
}
