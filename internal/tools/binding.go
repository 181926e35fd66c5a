package tools

import (
	"sync"

	"github.com/nightjar-app/nightjar/internal/graph"
	"github.com/nightjar-app/nightjar/internal/journal"
)

// Binding carries one user's persistence handles. Handlers read through
// it at call time, so a cached agent picks up rebound handles on its next
// tool call.
type Binding struct {
	mu      sync.RWMutex
	userID  int64
	journal *journal.Store
	graphs  *graph.Manager
}

func NewBinding(userID int64, store *journal.Store, graphs *graph.Manager) *Binding {
	return &Binding{userID: userID, journal: store, graphs: graphs}
}

// Rebind points the handlers at fresh handles.
func (b *Binding) Rebind(store *journal.Store, graphs *graph.Manager) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.journal = store
	b.graphs = graphs
}

func (b *Binding) UserID() int64 {
	return b.userID
}

func (b *Binding) store() *journal.Store {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.journal
}

func (b *Binding) graph() *graph.Service {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.graphs.ForUser(b.userID)
}

// RegisterAll installs the full tool catalog against one binding.
func RegisterAll(r *Registry, b *Binding) {
	registerSymbolTools(r, b)
	registerCharacterTools(r, b)
	registerEmotionTools(r, b)
	registerThemeTools(r, b)
	registerDreamTools(r, b)
	registerGeneralTools(r, b)
}
