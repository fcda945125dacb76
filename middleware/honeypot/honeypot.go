// Package honeypot implementa as rotas-isca do gateway: caminhos sem tráfego
// legítimo cujo acesso indica varredura. Quem chega é banido na hora, mas
// recebe uma resposta de sucesso genérica, indistinguível de um endpoint
// real, para não denunciar a armadilha.
//
// Roda fora do gate de autenticação e não exige credencial.
package honeypot

import (
	"net/http"

	"go.uber.org/zap"

	"sentinela-gateway/middleware/auth/domain"
	"sentinela-gateway/middleware/ratelimit"
)

type Options struct {
	Blocklist domain.Blocklist

	// KeyFn extrai o IP do chamador; nil usa o padrão (XFF/RemoteAddr).
	KeyFn              ratelimit.KeyFunc
	TrustXForwardedFor bool

	Log *zap.SugaredLogger
}

// Handler atende qualquer método no caminho-isca.
func Handler(opts Options) http.HandlerFunc {
	keyFn := opts.KeyFn
	if keyFn == nil {
		keyFn = ratelimit.DefaultKeyFunc("", opts.TrustXForwardedFor)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ip := keyFn(r)
		opts.Blocklist.Add(ip)

		if opts.Log != nil {
			opts.Log.Warnw("acesso a honeypot",
				"ip", ip,
				"method", r.Method,
				"path", r.URL.Path,
				"user_agent", r.UserAgent())
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"success","data":{}}`))
	}
}
