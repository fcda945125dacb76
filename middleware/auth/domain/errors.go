package domain

import (
	"errors"
	"time"
)

// Kind é a taxonomia fechada de falhas do pipeline. A tradução para status
// HTTP acontece apenas nos adapters; aqui existe só o motivo.
type Kind int

const (
	KindInternal Kind = iota
	KindRateLimited
	KindInvalidReferrer
	KindUnauthenticated
	KindInvalidToken
	KindInvalidSession
	KindForbidden
	KindSecurityViolation
	KindInvalidSignature
	KindInvalidService
	KindServiceError
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "RateLimited"
	case KindInvalidReferrer:
		return "InvalidReferrer"
	case KindUnauthenticated:
		return "Unauthenticated"
	case KindInvalidToken:
		return "InvalidToken"
	case KindInvalidSession:
		return "InvalidSession"
	case KindForbidden:
		return "Forbidden"
	case KindSecurityViolation:
		return "SecurityViolation"
	case KindInvalidSignature:
		return "InvalidSignature"
	case KindInvalidService:
		return "InvalidService"
	case KindServiceError:
		return "ServiceError"
	default:
		return "Internal"
	}
}

// Err é a falha terminal de um estágio do pipeline.
type Err struct {
	Kind       Kind
	RetryAfter time.Duration
}

func (e *Err) Error() string { return e.Kind.String() }

func E(k Kind) *Err { return &Err{Kind: k} }

// RateLimited carrega a dica de retry para o adapter.
func RateLimited(retryAfter time.Duration) *Err {
	return &Err{Kind: KindRateLimited, RetryAfter: retryAfter}
}

// KindOf extrai o Kind de um erro qualquer. Erros não classificados viram
// Internal, sem vazar detalhe para a borda.
func KindOf(err error) Kind {
	var e *Err
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// RetryAfterOf extrai a dica de retry, se houver.
func RetryAfterOf(err error) time.Duration {
	var e *Err
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}
