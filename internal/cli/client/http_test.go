package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_SendsIdentityHeaders(t *testing.T) {
	var got *http.Request
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer srv.Close()

	api := NewAPIClientWithConfig(srv.URL, "user-1")
	resp, err := api.Post(context.Background(), "/recommendations", map[string]any{"zone": "6"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"ok":true}`, string(resp.Data))
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/recommendations", got.URL.Path)
	assert.Equal(t, "user-1", got.Header.Get("X-User-ID"))
	assert.NotEmpty(t, got.Header.Get("X-Session-ID"))
	assert.JSONEq(t, `{"zone":"6"}`, string(body))
}

func TestAPIClient_SessionIsStablePerClient(t *testing.T) {
	var sessions []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessions = append(sessions, r.Header.Get("X-Session-ID"))
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	api := NewAPIClientWithConfig(srv.URL, "")
	_, err := api.Get(context.Background(), "/plants", nil)
	require.NoError(t, err)
	_, err = api.Get(context.Background(), "/plants", url.Values{"limit": {"5"}})
	require.NoError(t, err)

	require.Len(t, sessions, 2)
	assert.Equal(t, sessions[0], sessions[1])
	assert.NotEqual(t, sessions[0], NewAPIClientWithConfig(srv.URL, "").sessionID)
}

func TestAPIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "error envelope", status: http.StatusBadRequest, body: `{"error":"invalid request: rating must be at most 5"}`, message: "invalid request: rating must be at most 5"},
		{name: "feedback result", status: http.StatusNotFound, body: `{"success":false,"error":"recommendation request not found"}`, message: "recommendation request not found"},
		{name: "non-json body", status: http.StatusBadGateway, body: `upstream down`, message: "upstream down"},
		{name: "empty body", status: http.StatusInternalServerError, body: ``, message: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewAPIClientWithConfig(srv.URL, "").Get(context.Background(), "/x", nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestAPIClient_NoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := NewAPIClientWithConfig(srv.URL, "").Delete(context.Background(), "/plants/lav")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}
