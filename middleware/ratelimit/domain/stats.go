package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão tomada por um dos estágios de proteção
// (rate limit, gate de autenticação).
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings genéricas.
// Outcome identifica o motivo quando negado (ex.: "RateLimited", "Forbidden");
// vazio quando permitido.
//
// Observação: cuidado com cardinalidade (ex.: salvar Key/Path sem controle pode
// explodir o número de séries/chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	Key     Key
	Allowed bool
	Outcome string

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de decisão.
//
// Implementações podem armazenar em Redis, memória, etc.
// Os adapters devem tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
