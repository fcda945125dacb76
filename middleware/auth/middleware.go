package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"sentinela-gateway/middleware/auth/application"
	"sentinela-gateway/middleware/auth/domain"
	"sentinela-gateway/middleware/ratelimit"
	ratedomain "sentinela-gateway/middleware/ratelimit/domain"
)

const (
	AuthHeader      = "Authorization"
	SignatureHeader = "X-Request-Signature"
	TimestampHeader = "X-Timestamp"

	DefaultCookieName = "session_token"

	bearerPrefix = "Bearer "
)

type Options struct {
	Issuer application.Issuer
	Gate   application.Gate

	// KeyFn extrai o IP do cliente; nil usa o padrão (XFF/RemoteAddr).
	KeyFn              ratelimit.KeyFunc
	TrustXForwardedFor bool

	CookieName string
	CookiePath string
	// CookieTTL deve ser o TTL da sessão: cookie e credencial morrem juntos.
	CookieTTL time.Duration

	Stats ratedomain.StatsStore
	Log   *zap.SugaredLogger
}

func (o Options) keyFn() ratelimit.KeyFunc {
	if o.KeyFn != nil {
		return o.KeyFn
	}
	return ratelimit.DefaultKeyFunc("", o.TrustXForwardedFor)
}

func (o Options) cookieName() string {
	if o.CookieName != "" {
		return o.CookieName
	}
	return DefaultCookieName
}

func (o Options) cookiePath() string {
	if o.CookiePath != "" {
		return o.CookiePath
	}
	return "/"
}

// SessionHandler emite a credencial (POST /api/auth/session): responde
// {"token": ...} e grava o cookie de sessão com a mesma vida útil.
func SessionHandler(opts Options) http.HandlerFunc {
	keyFn := opts.keyFn()

	return func(w http.ResponseWriter, r *http.Request) {
		ip := keyFn(r)

		sess, err := opts.Issuer.Issue(application.IssueRequest{
			Referrer:  r.Referer(),
			ClientIP:  ip,
			UserAgent: r.UserAgent(),
		})
		if err != nil {
			if opts.Log != nil {
				opts.Log.Warnw("emissão de sessão negada",
					"ip", ip, "reason", domain.KindOf(err).String())
			}
			RespondError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     opts.cookieName(),
			Value:    sess.Token,
			Path:     opts.cookiePath(),
			MaxAge:   int(opts.CookieTTL.Seconds()),
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": sess.Token})
	}
}

// Middleware aplica o gate a toda rota protegida. Em caso de sucesso o id da
// sessão vai para o contexto (SessionIDFrom).
func Middleware(opts Options) func(next http.Handler) http.Handler {
	keyFn := opts.keyFn()
	cookieName := opts.cookieName()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := keyFn(r)
			sig := r.Header.Get(SignatureHeader)

			// o corpo cru só é necessário quando a requisição vem assinada
			var body []byte
			if sig != "" && r.Body != nil {
				b, err := io.ReadAll(r.Body)
				if err != nil {
					RespondError(w, err)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(b))
				body = b
			}

			sid, err := opts.Gate.Admit(application.Request{
				ClientIP:  ip,
				Token:     extractToken(r, cookieName),
				Path:      r.URL.Path,
				Body:      body,
				Timestamp: r.Header.Get(TimestampHeader),
				Signature: sig,
			})

			if opts.Stats != nil {
				ev := ratedomain.StatsEvent{
					Key:     ratedomain.Key(ip),
					Allowed: err == nil,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				}
				if err != nil {
					ev.Outcome = domain.KindOf(err).String()
				}
				_ = opts.Stats.Record(r.Context(), ev)
			}

			if err != nil {
				kind := domain.KindOf(err)
				if kind == domain.KindSecurityViolation && opts.Log != nil {
					opts.Log.Warnw("fingerprint divergente, IP banido",
						"ip", ip, "path", r.URL.Path)
				}
				RespondError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sid)))
		})
	}
}

// extractToken prefere o bearer do Authorization e cai para o cookie.
func extractToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get(AuthHeader); strings.HasPrefix(h, bearerPrefix) {
		if tok := strings.TrimSpace(h[len(bearerPrefix):]); tok != "" {
			return tok
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

type sessionIDKey struct{}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFrom devolve o id da sessão admitida pelo gate, se houver.
func SessionIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(string)
	return id, ok
}

// Recoverer converte panics em Internal (500) genérico, sem vazar detalhe.
func Recoverer(log *zap.SugaredLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if log != nil {
						log.Errorw("panic no handler", "path", r.URL.Path, "panic", rec)
					}
					RespondError(w, domain.E(domain.KindInternal))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
