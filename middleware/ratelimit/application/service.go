package application

import (
	"time"

	"sentinela-gateway/middleware/ratelimit/domain"
)

// Service concentra a regra de aplicação do rate limit.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Limiter domain.Consumer
	// RetryAfter é usado quando o limiter não informa um valor melhor.
	RetryAfter time.Duration
}

func (s Service) Decide(key domain.Key) domain.Decision {
	if s.Limiter == nil {
		return domain.Decision{Allowed: true}
	}
	if s.RetryAfter <= 0 {
		s.RetryAfter = 1 * time.Second
	}

	dec := s.Limiter.Consume(key)
	if dec.Allowed {
		return domain.Decision{Allowed: true}
	}
	if dec.RetryAfter <= 0 {
		dec.RetryAfter = s.RetryAfter
	}
	return dec
}
