package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJson(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/status", r.URL.Path)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":"ok"}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, nil)

	var result struct {
		Value string `json:"value"`
	}
	err := c.GetJson(context.Background(), "/status", "access-token", &result)
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Value)
}

func TestPostJson(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer access-token", r.Header.Get("Authorization"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "value", body["field"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accepted":true}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, nil)

	var result struct {
		Accepted bool `json:"accepted"`
	}
	err := c.PostJson(context.Background(), "/submit", "access-token", map[string]string{"field": "value"}, &result)
	require.NoError(t, err)
	assert.True(t, result.Accepted)
}

func TestPostJsonNoAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, nil)
	err := c.PostJsonNoAuth(context.Background(), "/auth/challenge", map[string]string{}, &struct{}{})
	assert.NoError(t, err)
}

func TestGetJson_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"exception":{"exceptionDetailList":[{"exceptionCode":21119}]}}`))
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, nil)
	err := c.GetJson(context.Background(), "/status", "access-token", &struct{}{})
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "21119")
	assert.NotNil(t, reqErr.Detail("exception"))
	assert.Nil(t, reqErr.Detail("missing"))
}

func TestGetBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/part_1.zip.aes", r.URL.Path)
		_, _ = w.Write([]byte{0x01, 0x02, 0x03})
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, nil)
	body, err := c.GetBytes(context.Background(), srv.URL+"/storage/part_1.zip.aes")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, body)
}

func TestGetBytes_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewWithBaseURL(srv.URL, nil)
	_, err := c.GetBytes(context.Background(), srv.URL+"/storage/expired")
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
}
