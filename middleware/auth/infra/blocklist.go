package infra

import "sync"

// MemoryBlocklist é o conjunto de IPs banidos, apenas-acréscimo durante a
// vida do processo. Não há expiração nem desbanimento neste desenho.
type MemoryBlocklist struct {
	mu  sync.RWMutex
	ips map[string]struct{}
}

func NewMemoryBlocklist() *MemoryBlocklist {
	return &MemoryBlocklist{ips: make(map[string]struct{})}
}

// Add é idempotente e seguro para chamadas concorrentes.
func (b *MemoryBlocklist) Add(ip string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ips[ip] = struct{}{}
}

func (b *MemoryBlocklist) Contains(ip string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.ips[ip]
	return ok
}

func (b *MemoryBlocklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ips)
}
