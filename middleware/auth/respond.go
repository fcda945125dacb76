package auth

import (
	"net/http"
	"strconv"

	"sentinela-gateway/middleware/auth/domain"
)

// statusOf é a tradução explícita e única da taxonomia para status HTTP.
func statusOf(k domain.Kind) int {
	switch k {
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInvalidReferrer, domain.KindForbidden,
		domain.KindSecurityViolation, domain.KindInvalidSignature:
		return http.StatusForbidden
	case domain.KindUnauthenticated, domain.KindInvalidToken, domain.KindInvalidSession:
		return http.StatusUnauthorized
	case domain.KindInvalidService:
		return http.StatusBadRequest
	case domain.KindServiceError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError escreve o corpo JSON mínimo da falha. Nenhum detalhe interno
// (mensagem do erro original, stack) aparece na resposta; só o motivo.
func RespondError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	if ra := domain.RetryAfterOf(err); ra > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(ra.Seconds())))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusOf(kind))
	_, _ = w.Write([]byte(`{"error":"` + kind.String() + `"}`))
}
