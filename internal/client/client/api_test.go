package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL)
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]string{"status": "2fa_required", "tempToken": "tt"})
	})

	temp, err := c.Login(context.Background(), "alice@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tt", temp)
}

func TestLogin_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		msg    string
		want   error
	}{
		{"bad credentials", http.StatusUnauthorized, "Invalid credentials", ErrUnauthorized},
		{"unconfirmed", http.StatusForbidden, "Please confirm your email before logging in.", ErrEmailNotConfirmed},
		{"bad input", http.StatusBadRequest, "Invalid input", ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"error": tt.msg})
			})

			_, err := c.Login(context.Background(), "a@b.c", "pw")
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestVerifyTOTP_SendsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer temp-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"token": "session",
			"user":  map[string]any{"id": "u-1"},
		})
	})

	session, err := c.VerifyTOTP(context.Background(), "temp-token", "123456")
	require.NoError(t, err)
	assert.Equal(t, "session", session.Token)
	assert.Equal(t, "u-1", session.User["id"])
}

func TestRegister_Conflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Email already registered"})
	})

	err := c.Register(context.Background(), RegisterRequest{Email: "a@b.c"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestFetchKey_NullKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/keys/ghost", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"publicKey": nil})
	})

	key, err := c.FetchKey(context.Background(), "s", "ghost")
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestPublishKey_NoContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.PublishKey(context.Background(), "s", "pk"))
}

func TestDo_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewAPIClient(srv.URL)

	err := c.SendSMS(context.Background(), "t")
	assert.ErrorIs(t, err, ErrUnavailable)
}
