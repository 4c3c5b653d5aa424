// Copyright (c) 2025 Pocketctl
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketctl/cli/internal/auth"
	perrors "pocketctl/cli/internal/errors"
	"pocketctl/cli/internal/token/tokentest"
)

// fakePocketBase is a minimal stand-in for the backend's auth endpoints.
type fakePocketBase struct {
	mu        sync.Mutex
	requests  []*http.Request
	bodies    []map[string]any
	issued    int
	password  string
	refreshOK bool
}

func (f *fakePocketBase) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	record := map[string]any{"id": "u1", "email": "a@b.com", "collectionName": "users", "name": "Ann"}

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		f.record(t, r)
		writeJSON(w, http.StatusOK, map[string]any{"code": 200, "message": "API is healthy."})
	})
	mux.HandleFunc("POST /api/collections/users/records", func(w http.ResponseWriter, r *http.Request) {
		body := f.record(t, r)
		if body["password"] != body["passwordConfirm"] {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"code": 400, "message": "Failed to create record.",
				"data": map[string]any{"passwordConfirm": map[string]any{"code": "validation_values_mismatch", "message": "Values don't match."}},
			})
			return
		}
		if body["email"] == "taken@b.com" {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"code": 400, "message": "Failed to create record.",
				"data": map[string]any{"email": map[string]any{"code": "validation_not_unique", "message": "Value must be unique."}},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "u2", "email": body["email"], "collectionName": "users"})
	})
	mux.HandleFunc("POST /api/collections/users/auth-with-password", func(w http.ResponseWriter, r *http.Request) {
		body := f.record(t, r)
		if body["password"] != f.password {
			writeJSON(w, http.StatusBadRequest, map[string]any{"code": 400, "message": "Failed to authenticate."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": f.issue(), "record": record})
	})
	mux.HandleFunc("POST /api/collections/users/auth-refresh", func(w http.ResponseWriter, r *http.Request) {
		f.record(t, r)
		if !f.refreshOK || r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "The request requires valid record authorization token."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": f.issue(), "record": record})
	})
	mux.HandleFunc("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	return mux
}

func (f *fakePocketBase) record(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if r.Body != nil && r.ContentLength != 0 {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, body)
	return body
}

func (f *fakePocketBase) snapshot() ([]*http.Request, []map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...), append([]map[string]any(nil), f.bodies...)
}

func (f *fakePocketBase) issue() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued++
	return tokentest.Mint("u1", time.Now().Add(time.Duration(f.issued)*time.Hour))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakePocketBase) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	api := New(srv.URL+"/", WithHTTPClient(srv.Client()), WithUserAgent("pocketctl-test"))
	return NewClient(api, auth.NewStore(), "users"), srv
}

func TestHTTP_Health(t *testing.T) {
	f := &fakePocketBase{}
	c, _ := newTestClient(t, f)

	status, err := c.API().Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, status.Code)

	requests, _ := f.snapshot()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, "pocketctl-test", req.Header.Get("User-Agent"))
	assert.NotEmpty(t, req.Header.Get("X-Request-Id"))
}

func TestClient_CreateAccount(t *testing.T) {
	f := &fakePocketBase{}
	c, _ := newTestClient(t, f)

	rec, err := c.CreateAccount(context.Background(), "new@b.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "u2", rec.ID)
	assert.Equal(t, "new@b.com", rec.Email)

	_, bodies := f.snapshot()
	require.Len(t, bodies, 1)
	assert.Equal(t, map[string]any{"email": "new@b.com", "password": "pw123456", "passwordConfirm": "pw123456"}, bodies[0])
	assert.Empty(t, c.AuthStore().Token(), "registration does not authenticate")
}

func TestClient_CreateAccountValidationError(t *testing.T) {
	f := &fakePocketBase{}
	c, _ := newTestClient(t, f)

	_, err := c.CreateAccount(context.Background(), "taken@b.com", "pw123456")
	require.Error(t, err)

	var e *perrors.E
	require.ErrorAs(t, err, &e)
	assert.Equal(t, perrors.KindValidation, e.Kind)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Failed to create record.", e.Message)
	assert.Contains(t, e.Data, "email")
}

func TestClient_AuthWithPasswordSavesToStore(t *testing.T) {
	f := &fakePocketBase{password: "pw"}
	c, _ := newTestClient(t, f)

	var seen []string
	c.AuthStore().OnChange(func(tok string, rec *auth.Record) { seen = append(seen, tok) })

	res, err := c.AuthWithPassword(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, res.Token, c.AuthStore().Token())
	assert.Equal(t, "a@b.com", c.AuthStore().Record().Email)
	assert.Equal(t, "Ann", c.AuthStore().Record().Extra["name"])
	assert.Equal(t, []string{res.Token}, seen)
	assert.True(t, c.AuthStore().IsValid())

	_, bodies := f.snapshot()
	assert.Equal(t, map[string]any{"identity": "a@b.com", "password": "pw"}, bodies[0])
}

func TestClient_AuthWithPasswordBadCredentials(t *testing.T) {
	f := &fakePocketBase{password: "pw"}
	c, _ := newTestClient(t, f)

	_, err := c.AuthWithPassword(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, perrors.KindUnauthorized, perrors.KindOf(err), "bad credentials are reported as unauthorized")
	assert.Empty(t, c.AuthStore().Token())
}

func TestClient_AuthRefresh(t *testing.T) {
	f := &fakePocketBase{password: "pw", refreshOK: true}
	c, _ := newTestClient(t, f)

	first, err := c.AuthWithPassword(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	second, err := c.AuthRefresh(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, second.Token, c.AuthStore().Token())

	requests, _ := f.snapshot()
	last := requests[len(requests)-1]
	assert.Equal(t, "Bearer "+first.Token, last.Header.Get("Authorization"))
}

func TestClient_AuthRefreshUnauthorizedKeepsState(t *testing.T) {
	f := &fakePocketBase{password: "pw", refreshOK: false}
	c, _ := newTestClient(t, f)

	first, err := c.AuthWithPassword(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	_, err = c.AuthRefresh(context.Background())
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.KindUnauthorized))
	assert.Equal(t, first.Token, c.AuthStore().Token())
}

// interruptingAPI calls during before each refresh request is sent.
type interruptingAPI struct {
	API
	during func()
}

func (a interruptingAPI) AuthRefresh(ctx context.Context, collection, token string) (*AuthResponse, error) {
	a.during()
	return a.API.AuthRefresh(ctx, collection, token)
}

func TestClient_AuthRefreshDroppedWhenStoreChanged(t *testing.T) {
	f := &fakePocketBase{password: "pw", refreshOK: true}
	plain, _ := newTestClient(t, f)
	store := plain.AuthStore()
	c := NewClient(interruptingAPI{API: plain.API(), during: store.Clear}, store, "users")

	_, err := c.AuthWithPassword(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)

	res, err := c.AuthRefresh(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrSessionChanged)
	assert.Empty(t, store.Token(), "a refresh finishing after logout does not restore the session")
}

func TestClient_Logout(t *testing.T) {
	f := &fakePocketBase{password: "pw"}
	c, _ := newTestClient(t, f)

	_, err := c.AuthWithPassword(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	c.Logout()
	assert.Empty(t, c.AuthStore().Token())
	assert.Nil(t, c.AuthStore().Record())
}

func TestHTTP_NonJSONErrorBody(t *testing.T) {
	f := &fakePocketBase{}
	_, srv := newTestClient(t, f)
	h := New(srv.URL, WithHTTPClient(srv.Client()))

	err := h.doJSON(context.Background(), http.MethodGet, "/api/broken", "", nil, nil)
	require.Error(t, err)
	var e *perrors.E
	require.ErrorAs(t, err, &e)
	assert.Equal(t, perrors.KindServer, e.Kind)
	assert.Equal(t, "upstream exploded", e.Message)
}

func TestHTTP_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(addr, WithTimeout(time.Second)).Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, perrors.KindNetwork, perrors.KindOf(err))
}

func TestParseAuthResponse(t *testing.T) {
	tests := []struct {
		name      string
		raw       map[string]any
		wantToken string
		wantID    string
		wantErr   bool
	}{
		{
			name:      "pocketbase shape",
			raw:       map[string]any{"token": "T1", "record": map[string]any{"id": "u1"}},
			wantToken: "T1",
			wantID:    "u1",
		},
		{
			name:      "access_token and user",
			raw:       map[string]any{"access_token": "T2", "user": map[string]any{"id": "u2"}},
			wantToken: "T2",
			wantID:    "u2",
		},
		{
			name:      "bearer prefix stripped",
			raw:       map[string]any{"token": "Bearer T3"},
			wantToken: "T3",
		},
		{
			name:    "missing token",
			raw:     map[string]any{"record": map[string]any{"id": "u1"}},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseAuthResponse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, res.Token)
			if tt.wantID != "" {
				require.NotNil(t, res.Record)
				assert.Equal(t, tt.wantID, res.Record.ID)
			}
		})
	}
}
