package infra

import (
	"sync"
	"time"

	"sentinela-gateway/middleware/ratelimit/domain"
)

// WindowStore é uma implementação de infra baseada em janela fixa com
// bloqueio estendido: cada chave tem um orçamento de pontos por janela e,
// ao estourar o orçamento, fica bloqueada por blockFor (que pode ser maior
// que a própria janela).
//
// Um tier é um WindowStore: global (por IP), auth (por IP, mais rígido) e
// por-sessão (uma entrada por sessão ativa).
type WindowStore struct {
	mu           sync.Mutex
	entries      map[string]*windowEntry
	budget       int
	window       time.Duration
	blockFor     time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type windowEntry struct {
	points       int
	windowStart  time.Time
	blockedUntil time.Time
	lastSeen     time.Time
}

type WindowOption func(*WindowStore)

// WithBlockFor define por quanto tempo a chave fica bloqueada após estourar
// o orçamento. Zero bloqueia apenas até o fim da janela corrente.
func WithBlockFor(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.blockFor = d }
}

func WithIdleTTL(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

// WithClock troca a fonte de tempo (testes).
func WithClock(now func() time.Time) WindowOption {
	return func(s *WindowStore) { s.now = now }
}

func NewWindowStore(budget int, window time.Duration, opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		entries:      make(map[string]*windowEntry),
		budget:       budget,
		window:       window,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WindowStore) Budget() int                  { return s.budget }
func (s *WindowStore) Window() time.Duration        { return s.window }
func (s *WindowStore) CleanupEvery() time.Duration  { return s.cleanupEvery }

// Consume implementa domain.Consumer.
//
// Atômico por chave: chamadas concorrentes nunca admitem, juntas, mais que o
// orçamento antes do bloqueio. Durante o bloqueio nada é incrementado.
func (s *WindowStore) Consume(key domain.Key) domain.Decision {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent := s.get(string(key), now)
	ent.lastSeen = now

	if !ent.blockedUntil.IsZero() {
		if now.Before(ent.blockedUntil) {
			return domain.Decision{RetryAfter: ent.blockedUntil.Sub(now)}
		}
		// bloqueio expirou: janela nova
		ent.blockedUntil = time.Time{}
		ent.points = 0
		ent.windowStart = now
	}

	if now.Sub(ent.windowStart) >= s.window {
		ent.points = 0
		ent.windowStart = now
	}

	if ent.points >= s.budget {
		until := ent.windowStart.Add(s.window)
		if s.blockFor > 0 {
			until = now.Add(s.blockFor)
		}
		ent.blockedUntil = until
		return domain.Decision{RetryAfter: until.Sub(now)}
	}

	ent.points++
	return domain.Decision{Allowed: true}
}

// Touch garante a existência da entrada sem consumir pontos.
func (s *WindowStore) Touch(key domain.Key) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(string(key), now).lastSeen = now
}

// Remove descarta a entrada da chave (ex.: sessão ceifada).
func (s *WindowStore) Remove(key domain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, string(key))
}

func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// get assume s.mu já adquirido.
func (s *WindowStore) get(key string, now time.Time) *windowEntry {
	if ent, ok := s.entries[key]; ok {
		return ent
	}
	ent := &windowEntry{windowStart: now}
	s.entries[key] = ent
	return ent
}

// Cleanup remove entradas ociosas que não estejam bloqueadas.
func (s *WindowStore) Cleanup() {
	now := s.now()
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) && now.After(ent.blockedUntil) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *WindowStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
