package infra

import (
	"sync"
	"testing"
	"time"

	"sentinela-gateway/middleware/ratelimit/domain"
)

func fixedClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestWindowStore_AllowsBudgetThenBlocks(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewWindowStore(3, time.Minute, WithClock(fixedClock(&now)))

	for i := 0; i < 3; i++ {
		if dec := s.Consume(domain.Key("k")); !dec.Allowed {
			t.Fatalf("expected consume %d to be allowed", i+1)
		}
	}

	dec := s.Consume(domain.Key("k"))
	if dec.Allowed {
		t.Fatalf("expected consume beyond budget to be blocked")
	}
	if dec.RetryAfter <= 0 {
		t.Fatalf("expected RetryAfter > 0, got %s", dec.RetryAfter)
	}
}

func TestWindowStore_WindowResetRestoresBudget(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewWindowStore(1, time.Minute, WithClock(fixedClock(&now)))

	if dec := s.Consume(domain.Key("k")); !dec.Allowed {
		t.Fatalf("expected first consume allowed")
	}

	now = now.Add(61 * time.Second)
	if dec := s.Consume(domain.Key("k")); !dec.Allowed {
		t.Fatalf("expected consume after window reset to be allowed")
	}
}

func TestWindowStore_BlockForOutlastsWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewWindowStore(1, time.Minute, WithBlockFor(5*time.Minute), WithClock(fixedClock(&now)))

	s.Consume(domain.Key("k"))
	dec := s.Consume(domain.Key("k"))
	if dec.Allowed {
		t.Fatalf("expected block")
	}
	if dec.RetryAfter != 5*time.Minute {
		t.Fatalf("expected RetryAfter=5m, got %s", dec.RetryAfter)
	}

	// janela já virou, mas o bloqueio estendido segue valendo
	now = now.Add(2 * time.Minute)
	if dec := s.Consume(domain.Key("k")); dec.Allowed {
		t.Fatalf("expected key to still be blocked after window elapsed")
	}

	now = now.Add(4 * time.Minute)
	if dec := s.Consume(domain.Key("k")); !dec.Allowed {
		t.Fatalf("expected consume after block expiry to be allowed")
	}
}

func TestWindowStore_BlockedConsumeDoesNotAccumulate(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewWindowStore(1, time.Minute, WithBlockFor(time.Minute), WithClock(fixedClock(&now)))

	s.Consume(domain.Key("k"))
	for i := 0; i < 10; i++ {
		s.Consume(domain.Key("k"))
	}

	// bloqueio não foi estendido pelas tentativas durante o bloqueio
	now = now.Add(61 * time.Second)
	if dec := s.Consume(domain.Key("k")); !dec.Allowed {
		t.Fatalf("expected consume after original block expiry to be allowed")
	}
}

func TestWindowStore_KeysAreIndependent(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewWindowStore(1, time.Minute, WithClock(fixedClock(&now)))

	s.Consume(domain.Key("a"))
	if dec := s.Consume(domain.Key("a")); dec.Allowed {
		t.Fatalf("expected key a to be blocked")
	}
	if dec := s.Consume(domain.Key("b")); !dec.Allowed {
		t.Fatalf("expected key b to have its own budget")
	}
}

func TestWindowStore_TouchCreatesWithoutConsuming(t *testing.T) {
	s := NewWindowStore(1, time.Minute)

	s.Touch(domain.Key("k"))
	if got := s.Len(); got != 1 {
		t.Fatalf("expected 1 entry after Touch, got %d", got)
	}
	if dec := s.Consume(domain.Key("k")); !dec.Allowed {
		t.Fatalf("expected full budget after Touch")
	}
}

func TestWindowStore_RemoveDiscardsState(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewWindowStore(1, time.Minute, WithClock(fixedClock(&now)))

	s.Consume(domain.Key("k"))
	s.Consume(domain.Key("k")) // bloqueia
	s.Remove(domain.Key("k"))

	if dec := s.Consume(domain.Key("k")); !dec.Allowed {
		t.Fatalf("expected fresh budget after Remove")
	}
}

func TestWindowStore_CleanupRemovesIdleEntries(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewWindowStore(1, time.Minute, WithIdleTTL(time.Minute), WithCleanupEvery(0), WithClock(fixedClock(&now)))

	s.Touch(domain.Key("idle"))
	now = now.Add(2 * time.Minute)
	s.Touch(domain.Key("fresh"))

	s.Cleanup()

	if got := s.Len(); got != 1 {
		t.Fatalf("expected only the fresh entry to survive, got %d entries", got)
	}
}

func TestWindowStore_CleanupKeepsBlockedEntries(t *testing.T) {
	now := time.Unix(1000, 0)
	s := NewWindowStore(1, time.Minute, WithBlockFor(time.Hour), WithIdleTTL(time.Minute), WithCleanupEvery(0), WithClock(fixedClock(&now)))

	s.Consume(domain.Key("k"))
	s.Consume(domain.Key("k")) // bloqueia por 1h

	now = now.Add(10 * time.Minute)
	s.Cleanup()

	if dec := s.Consume(domain.Key("k")); dec.Allowed {
		t.Fatalf("expected blocked entry to survive cleanup")
	}
}

func TestWindowStore_ConcurrentConsumeNeverExceedsBudget(t *testing.T) {
	const budget = 50
	s := NewWindowStore(budget, time.Minute, WithBlockFor(time.Minute))

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if s.Consume(domain.Key("k")).Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if allowed != budget {
		t.Fatalf("expected exactly %d allowed under concurrency, got %d", budget, allowed)
	}
}
