package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubDomains struct{}

func (stubDomains) List(context.Context) ([]model.Domain, error) {
	return []model.Domain{{ID: "dom-1", Name: "example.com"}}, nil
}

func (stubDomains) GetByID(_ context.Context, id string) (*model.Domain, error) {
	return nil, model.ErrNotFound
}

func (stubDomains) IncrementBanCount(context.Context, string) (int, error) { return 1, nil }

func (stubDomains) Delete(context.Context, string, bool) error { return nil }

func newTestServer(token string, db Pinger) *Server {
	return NewServer(zerolog.Nop(), Deps{Domains: stubDomains{}, DB: db}, token)
}

func TestHealthz(t *testing.T) {
	s := newTestServer("", stubPinger{})
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer("", stubPinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"core_db":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	newTestServer("", stubPinger{err: errors.New("connection refused")}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"core_db":"connection refused"}`, rec.Body.String())
}

func TestAPIRequiresToken(t *testing.T) {
	s := newTestServer("s3cret", stubPinger{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/domains", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/domains", nil)
	r.Header.Set("Authorization", "Bearer s3cret")
	s.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "example.com")
}

func TestHealthEndpointsSkipAuth(t *testing.T) {
	s := newTestServer("s3cret", stubPinger{})
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouteParams(t *testing.T) {
	s := newTestServer("", stubPinger{})
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/domains/dom-9", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestSiteRouter(t *testing.T) {
	var seen []string
	site := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
	})
	h := NewSiteRouter(zerolog.Nop(), site)

	for _, path := range []string{"/", "/pricing", "/_sites/shop/about"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code, path)
	}
	assert.Equal(t, []string{"/", "/pricing", "/_sites/shop/about"}, seen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
