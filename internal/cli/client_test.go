package cli_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frahmantamala/study-tracker/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@example.com", body["email"])
		assert.Equal(t, "secret123", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok","expires_at":"2026-01-02T00:00:00Z","user":{"id":7,"email":"a@example.com","name":"Ana","is_admin":true}}`))
	}))
	defer srv.Close()

	resp, err := cli.NewClient(srv.URL+"/", time.Second).Login(context.Background(), "a@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, int64(7), resp.User.ID)
	assert.True(t, resp.User.IsAdmin)
}

func TestClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Account pending approval","code":"ACCOUNT_PENDING"}`))
	}))
	defer srv.Close()

	_, err := cli.NewClient(srv.URL, time.Second).Login(context.Background(), "a@example.com", "pw")

	var apiErr *cli.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "ACCOUNT_PENDING", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "Account pending approval")
}

func TestClient_StatusAndLogoutSendToken(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/v1/user/status":
			_, _ = w.Write([]byte(`{"status":"pending"}`))
		case "/api/v1/logout":
			assert.Equal(t, http.MethodPost, r.Method)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"message":"logged out"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := cli.NewClient(srv.URL, time.Second)

	status, err := client.Status(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "pending", status)

	require.NoError(t, client.Logout(context.Background(), "tok"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
