// Package proxy encaminha as chamadas admitidas pelo gate para as APIs pagas
// de terceiros (clima, direções, busca). Cada serviço tem um wrapper HTTP
// fininho e um token-bucket de saída protegendo a cota contratada.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"sentinela-gateway/middleware/auth/domain"
)

// Backend expõe uma operação por serviço suportado. Recebe os parâmetros já
// validados e devolve o JSON do provedor ou ServiceError.
type Backend interface {
	Weather(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
	Direction(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
	Search(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
}

// Upstream descreve um provedor pago.
type Upstream struct {
	URL    string
	APIKey string
	// RPS/Burst limitam as chamadas de saída para não estourar a cota.
	// RPS <= 0 desliga o throttle.
	RPS   float64
	Burst int
}

type upstreamState struct {
	url    string
	apiKey string
	lim    *rate.Limiter
}

// HTTPBackend é a implementação concreta sobre net/http.
type HTTPBackend struct {
	client    *http.Client
	log       *zap.SugaredLogger
	upstreams map[string]upstreamState
}

func NewHTTPBackend(client *http.Client, log *zap.SugaredLogger, upstreams map[string]Upstream) *HTTPBackend {
	if client == nil {
		client = http.DefaultClient
	}

	states := make(map[string]upstreamState, len(upstreams))
	for name, up := range upstreams {
		st := upstreamState{url: up.URL, apiKey: up.APIKey}
		if up.RPS > 0 {
			burst := up.Burst
			if burst <= 0 {
				burst = 1
			}
			st.lim = rate.NewLimiter(rate.Limit(up.RPS), burst)
		}
		states[name] = st
	}

	return &HTTPBackend{client: client, log: log, upstreams: states}
}

func (b *HTTPBackend) Weather(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	return b.call(ctx, "weather", params)
}

func (b *HTTPBackend) Direction(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	return b.call(ctx, "direction", params)
}

func (b *HTTPBackend) Search(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	return b.call(ctx, "search", params)
}

func (b *HTTPBackend) call(ctx context.Context, service string, params json.RawMessage) (json.RawMessage, error) {
	up, ok := b.upstreams[service]
	if !ok || up.url == "" {
		return nil, domain.E(domain.KindServiceError)
	}

	if up.lim != nil && !up.lim.Allow() {
		if b.log != nil {
			b.log.Warnw("throttle de saída estourado", "service", service)
		}
		return nil, domain.E(domain.KindServiceError)
	}

	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, up.url, bytes.NewReader(params))
	if err != nil {
		return nil, domain.E(domain.KindServiceError)
	}
	req.Header.Set("Content-Type", "application/json")
	if up.apiKey != "" {
		req.Header.Set("X-Api-Key", up.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if b.log != nil {
			b.log.Warnw("falha na chamada ao provedor", "service", service, "error", err)
		}
		return nil, domain.E(domain.KindServiceError)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if b.log != nil {
			b.log.Warnw("provedor respondeu erro", "service", service, "status", resp.StatusCode)
		}
		return nil, domain.E(domain.KindServiceError)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.E(domain.KindServiceError)
	}
	return json.RawMessage(data), nil
}
