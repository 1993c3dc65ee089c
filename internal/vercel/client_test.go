package vercel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	opts = append([]Option{WithRetries(2, time.Millisecond), WithTimeout(2 * time.Second)}, opts...)
	return NewClient(srv.URL, "test-token", opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func vercelError(code, msg string) map[string]any {
	return map[string]any{"error": map[string]string{"code": code, "message": msg}}
}

// ---------- CreateProject ----------

func TestClient_CreateProject_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v10/projects", r.URL.Path)
		assert.Equal(t, "team_1", r.URL.Query().Get("teamId"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var body createProjectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "example-com", body.Name)
		assert.Equal(t, "nextjs", body.Framework)
		writeJSON(w, http.StatusOK, Project{ID: "prj_1", Name: body.Name})
	}))
	defer srv.Close()

	p, err := newTestClient(srv, WithTeam("team_1")).CreateProject(context.Background(), "example-com", "nextjs")
	require.NoError(t, err)
	assert.Equal(t, "prj_1", p.ID)
}

func TestClient_CreateProject_ConflictReturnsExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusConflict, vercelError("conflict", "Project already exists"))
			return
		}
		assert.Equal(t, "/v9/projects/example-com", r.URL.Path)
		writeJSON(w, http.StatusOK, Project{ID: "prj_existing", Name: "example-com"})
	}))
	defer srv.Close()

	p, err := newTestClient(srv).CreateProject(context.Background(), "example-com", "nextjs")
	require.NoError(t, err)
	assert.Equal(t, "prj_existing", p.ID)
}

func TestClient_CreateProject_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, vercelError("forbidden", "Not authorized"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateProject(context.Background(), "example-com", "nextjs")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(1), calls.Load())
}

// ---------- AddDomain ----------

func TestClient_AddDomain_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/projects/prj_1/domains", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "landing.example.com", body["name"])
		writeJSON(w, http.StatusOK, projectDomain{Name: "landing.example.com", ProjectID: "prj_1", Verified: true})
	}))
	defer srv.Close()

	res, err := newTestClient(srv).AddDomain(context.Background(), "Landing.Example.com", "prj_1")
	require.NoError(t, err)
	assert.False(t, res.AlreadyExists)
	assert.True(t, res.Verified)
}

func TestClient_AddDomain_AlreadyOnSameProject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusConflict, vercelError("domain_already_in_use", "in use"))
			return
		}
		assert.Equal(t, "/v9/projects/prj_1/domains/example.com", r.URL.Path)
		writeJSON(w, http.StatusOK, projectDomain{Name: "example.com", ProjectID: "prj_1"})
	}))
	defer srv.Close()

	res, err := newTestClient(srv).AddDomain(context.Background(), "example.com", "prj_1")
	require.NoError(t, err)
	assert.True(t, res.AlreadyExists)
}

func TestClient_AddDomain_OtherProjectConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusBadRequest, vercelError("domain_already_in_use", "in use by another project"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).AddDomain(context.Background(), "example.com", "prj_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDomainConflict)
	assert.ErrorIs(t, err, model.ErrConflict)
	assert.False(t, errors.Is(err, model.ErrProviderUnavailable))
}

func TestClient_AddDomain_ServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).AddDomain(context.Background(), "example.com", "prj_1")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrProviderUnavailable)
	assert.Equal(t, int32(3), calls.Load())
}

// ---------- RemoveDomain ----------

func TestClient_RemoveDomain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v6/domains/example.com", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"uid": "dom_1"})
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(srv).RemoveDomain(context.Background(), "example.com"))
}

func TestClient_RemoveDomain_MissingIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, vercelError("not_found", "Domain not found"))
	}))
	defer srv.Close()

	assert.NoError(t, newTestClient(srv).RemoveDomain(context.Background(), "example.com"))
}

// ---------- CheckDomainStatus ----------

func TestClient_CheckDomainStatus(t *testing.T) {
	tests := []struct {
		name          string
		exists        bool
		misconfigured bool
		want          DomainStatus
	}{
		{"absent", false, false, DomainStatus{}},
		{"misconfigured", true, true, DomainStatus{Exists: true}},
		{"configured", true, false, DomainStatus{Exists: true, Configured: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/v5/domains/example.com":
					if !tt.exists {
						w.WriteHeader(http.StatusNotFound)
						return
					}
					writeJSON(w, http.StatusOK, map[string]any{"domain": map[string]string{"name": "example.com"}})
				case "/v6/domains/example.com/config":
					writeJSON(w, http.StatusOK, domainConfig{Misconfigured: tt.misconfigured})
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
				}
			}))
			defer srv.Close()

			st, err := newTestClient(srv).CheckDomainStatus(context.Background(), "example.com", "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, *st)
		})
	}
}

func TestClient_CheckDomainStatus_ScopedToProject(t *testing.T) {
	tests := []struct {
		name      string
		onProject string
		exists    bool
		want      DomainStatus
	}{
		{"on project", "prj_1", true, DomainStatus{Exists: true, Configured: true, OnProject: true, ProjectID: "prj_1"}},
		{"on other project", "", true, DomainStatus{Exists: true, Configured: true}},
		{"absent", "", false, DomainStatus{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var accountLookups atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/v9/projects/prj_1/domains/example.com":
					if tt.onProject == "" {
						writeJSON(w, http.StatusNotFound, vercelError("not_found", "domain not found"))
						return
					}
					writeJSON(w, http.StatusOK, projectDomain{Name: "example.com", ProjectID: tt.onProject, Verified: true})
				case "/v5/domains/example.com":
					accountLookups.Add(1)
					if !tt.exists {
						w.WriteHeader(http.StatusNotFound)
						return
					}
					writeJSON(w, http.StatusOK, map[string]any{"domain": map[string]string{"name": "example.com"}})
				case "/v6/domains/example.com/config":
					writeJSON(w, http.StatusOK, domainConfig{})
				default:
					t.Errorf("unexpected path %s", r.URL.Path)
				}
			}))
			defer srv.Close()

			st, err := newTestClient(srv).CheckDomainStatus(context.Background(), "Example.com", "prj_1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, *st)
			if tt.onProject != "" {
				assert.Zero(t, accountLookups.Load())
			}
		})
	}
}
