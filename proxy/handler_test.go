package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinela-gateway/middleware/auth/domain"
)

type fakeBackend struct {
	lastService string
	lastParams  json.RawMessage
	out         json.RawMessage
	err         error
}

func (f *fakeBackend) Weather(_ context.Context, p json.RawMessage) (json.RawMessage, error) {
	f.lastService, f.lastParams = "weather", p
	return f.out, f.err
}

func (f *fakeBackend) Direction(_ context.Context, p json.RawMessage) (json.RawMessage, error) {
	f.lastService, f.lastParams = "direction", p
	return f.out, f.err
}

func (f *fakeBackend) Search(_ context.Context, p json.RawMessage) (json.RawMessage, error) {
	f.lastService, f.lastParams = "search", p
	return f.out, f.err
}

func newProxyRouter(b Backend) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/proxy/{service}", Handler(b, nil))
	return r
}

func TestHandler_DelegatesToService(t *testing.T) {
	for _, service := range []string{"weather", "direction", "search"} {
		fb := &fakeBackend{out: json.RawMessage(`{"ok":true}`)}
		h := newProxyRouter(fb)

		r := httptest.NewRequest(http.MethodPost, "http://gw/api/proxy/"+service, strings.NewReader(`{"p":1}`))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code, "service %s", service)
		assert.Equal(t, service, fb.lastService)
		assert.JSONEq(t, `{"p":1}`, string(fb.lastParams))
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	}
}

func TestHandler_UnknownServiceIs400(t *testing.T) {
	fb := &fakeBackend{}
	h := newProxyRouter(fb)

	r := httptest.NewRequest(http.MethodPost, "http://gw/api/proxy/criptomoedas", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"InvalidService"}`, w.Body.String())
	assert.Empty(t, fb.lastService)
}

func TestHandler_BackendErrorIs502(t *testing.T) {
	fb := &fakeBackend{err: domain.E(domain.KindServiceError)}
	h := newProxyRouter(fb)

	r := httptest.NewRequest(http.MethodPost, "http://gw/api/proxy/weather", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"ServiceError"}`, w.Body.String())
}
