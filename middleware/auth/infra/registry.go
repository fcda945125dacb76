package infra

import (
	"sync"
	"time"

	"sentinela-gateway/middleware/auth/domain"
)

// MemoryRegistry é a implementação em memória do registry de sessões.
//
// O ponteiro inserido nunca é mutado depois do Insert; o lock garante que um
// Lookup concorrente vê o registro inteiro ou nada.
type MemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]*domain.Session)}
}

func (m *MemoryRegistry) Insert(s *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

func (m *MemoryRegistry) Lookup(id string) (*domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *MemoryRegistry) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Sweep remove as sessões criadas antes de cutoff e retorna os ids removidos.
func (m *MemoryRegistry) Sweep(cutoff time.Time) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (m *MemoryRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
