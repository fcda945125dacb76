package proxy

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sentinela-gateway/middleware/auth"
	"sentinela-gateway/middleware/auth/domain"
)

// Handler resolve {service} da rota e delega para a operação correspondente
// do backend. Serviço desconhecido responde InvalidService (400).
func Handler(b Backend, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := chi.URLParam(r, "service")

		var params json.RawMessage
		if r.Body != nil {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				auth.RespondError(w, err)
				return
			}
			params = body
		}

		var out json.RawMessage
		var err error
		switch service {
		case "weather":
			out, err = b.Weather(r.Context(), params)
		case "direction":
			out, err = b.Direction(r.Context(), params)
		case "search":
			out, err = b.Search(r.Context(), params)
		default:
			auth.RespondError(w, domain.E(domain.KindInvalidService))
			return
		}

		if err != nil {
			auth.RespondError(w, err)
			return
		}

		if log != nil {
			sid, _ := auth.SessionIDFrom(r.Context())
			log.Infow("proxy atendido", "service", service, "session", sid)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(out)
	}
}
