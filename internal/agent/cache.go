package agent

import (
	"fmt"
	"sync"
)

// Cache holds live agents keyed by user and conversation. Lookup-or-create
// runs under the lock; once a caller holds an agent reference, turns on it
// are serialized by the agent itself.
type Cache struct {
	mu     sync.Mutex
	agents map[string]*Agent
}

func NewCache() *Cache {
	return &Cache{agents: make(map[string]*Agent)}
}

func cacheKey(userID int64, chatID string) string {
	return fmt.Sprintf("%d:%s", userID, chatID)
}

// GetOrCreate returns the cached agent for the conversation, building one
// with create on a miss. The second result reports whether the agent was
// just created.
func (c *Cache) GetOrCreate(userID int64, chatID string, create func() *Agent) (*Agent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(userID, chatID)
	if a, ok := c.agents[key]; ok {
		return a, false
	}
	a := create()
	c.agents[key] = a
	return a, true
}

// Get returns the cached agent, or nil when the conversation is not live.
func (c *Cache) Get(userID int64, chatID string) *Agent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agents[cacheKey(userID, chatID)]
}

func (c *Cache) Delete(userID int64, chatID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.agents, cacheKey(userID, chatID))
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.agents)
}
