package ratelimit

import (
	"net/http"
	"time"

	"sentinela-gateway/middleware/ratelimit/application"
	"sentinela-gateway/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

// ConcurrencyMiddleware limita quantas requisições atravessam o proxy ao
// mesmo tempo. Rejeições respondem 503 com o mesmo formato JSON dos demais erros.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(opts.RejectStatus)
				_, _ = w.Write([]byte(`{"error":"ServiceError"}`))
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
