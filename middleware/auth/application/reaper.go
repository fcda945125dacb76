package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sentinela-gateway/middleware/auth/domain"
	ratedomain "sentinela-gateway/middleware/ratelimit/domain"
)

// Reaper remove periodicamente as sessões cuja idade passou do TTL, junto com
// o limiter por-sessão de cada uma.
//
// A varredura não segura o caminho das requisições: uma sessão ceifada
// milissegundos antes de um lookup concorrente aparece apenas como
// InvalidSession, o que é aceitável.
type Reaper struct {
	Registry    domain.Registry
	SessionTier ratedomain.Store
	TTL         time.Duration
	Every       time.Duration
	Log         *zap.SugaredLogger

	// Now permite travar o relógio em testes. nil usa time.Now.
	Now func() time.Time
}

// Sweep executa uma varredura e retorna quantas sessões foram removidas.
func (r Reaper) Sweep() int {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	removed := r.Registry.Sweep(now.Add(-r.TTL))
	for _, id := range removed {
		if r.SessionTier != nil {
			r.SessionTier.Remove(ratedomain.Key(id))
		}
	}

	if len(removed) > 0 && r.Log != nil {
		r.Log.Infow("sessões expiradas removidas", "count", len(removed))
	}
	return len(removed)
}

// Start dispara a goroutine da varredura. Pare cancelando o contexto.
func (r Reaper) Start(ctx context.Context) {
	if r.Every <= 0 {
		return
	}

	t := time.NewTicker(r.Every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.Sweep()
			}
		}
	}()
}
