package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(base, token string) *client {
	return &client{base: base, token: token, http: &http.Client{Timeout: 5 * time.Second}}
}

func TestClientAttachesBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := testClient(srv.URL, "tok-123").get(context.Background(), "/auth/me", &out)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", got)
	assert.True(t, out.OK)
}

func TestClientSurfacesErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not_found","message":"role does not exist"}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL, "").get(context.Background(), "/roles/r9/menus", nil)
	require.Error(t, err)
	assert.EqualError(t, err, "not_found: role does not exist")
}

func TestClientUnauthorizedHintsLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	err := testClient(srv.URL, "stale").get(context.Background(), "/auth/me", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adminctl login")
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t,
		[]string{"m1", "m2", "m3"},
		splitIDs([]string{"m1, m2", "", " m3 "}))
	assert.Nil(t, splitIDs(nil))
}
