package application

import (
	"testing"
	"time"

	"sentinela-gateway/middleware/ratelimit/domain"
)

type fakeConsumer struct {
	dec domain.Decision
}

func (f fakeConsumer) Consume(domain.Key) domain.Decision { return f.dec }

func TestService_Decide_AllowsWhenNoLimiter(t *testing.T) {
	svc := Service{}
	dec := svc.Decide("k")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_AllowsWhenLimiterAllows(t *testing.T) {
	svc := Service{Limiter: fakeConsumer{dec: domain.Decision{Allowed: true}}, RetryAfter: 5 * time.Second}
	dec := svc.Decide("k")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
}

func TestService_Decide_KeepsLimiterRetryAfter(t *testing.T) {
	svc := Service{Limiter: fakeConsumer{dec: domain.Decision{RetryAfter: 300 * time.Second}}, RetryAfter: 1 * time.Second}
	dec := svc.Decide("k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != 300*time.Second {
		t.Fatalf("expected limiter RetryAfter to win, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_BlocksWithRetryAfterDefault(t *testing.T) {
	svc := Service{Limiter: fakeConsumer{dec: domain.Decision{}}}
	dec := svc.Decide("k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != 1*time.Second {
		t.Fatalf("expected default RetryAfter=1s, got %s", dec.RetryAfter)
	}
}

func TestService_Decide_BlocksWithConfiguredRetryAfter(t *testing.T) {
	svc := Service{Limiter: fakeConsumer{dec: domain.Decision{}}, RetryAfter: 2500 * time.Millisecond}
	dec := svc.Decide("k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.RetryAfter != 2500*time.Millisecond {
		t.Fatalf("expected RetryAfter=2.5s, got %s", dec.RetryAfter)
	}
}
