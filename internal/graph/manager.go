package graph

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/nightjar-app/nightjar/internal/llm"
)

// Manager hands out one Service per user, each rooted in its own working
// directory under baseDir.
type Manager struct {
	baseDir  string
	model    llm.LLM
	embedder Embedder
	profile  Profile

	mu       sync.Mutex
	services map[int64]*Service
}

func NewManager(baseDir string, model llm.LLM, embedder Embedder, profile Profile) *Manager {
	return &Manager{
		baseDir:  baseDir,
		model:    model,
		embedder: embedder,
		profile:  profile,
		services: make(map[int64]*Service),
	}
}

func (m *Manager) ForUser(userID int64) *Service {
	m.mu.Lock()
	defer m.mu.Unlock()
	if svc, ok := m.services[userID]; ok {
		return svc
	}
	dir := filepath.Join(m.baseDir, fmt.Sprintf("user_%d", userID))
	svc := newService(userID, dir, m.model, m.embedder, m.profile)
	m.services[userID] = svc
	return svc
}
