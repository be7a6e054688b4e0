package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostChatCompletion(t *testing.T) {
	var gotPath, gotAuth, gotContentType string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	payload := map[string]any{"model": "gpt-4o-mini"}
	raw, status, err := PostChatCompletion(context.Background(), srv.Client(), srv.URL+"/", "sk-test", payload, nil)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "gpt-4o-mini", gotPayload["model"])
	assert.JSONEq(t, `{"choices":[]}`, string(raw))
}

func TestPostChatCompletionNon2xxReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	raw, status, err := PostChatCompletion(context.Background(), srv.Client(), srv.URL, "sk-test", map[string]any{}, nil)
	require.Error(t, err)

	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, string(raw), "rate limited")
}

func TestPostChatCompletionSkipsAuthWithoutKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, _, err := PostChatCompletion(context.Background(), srv.Client(), srv.URL, "", map[string]any{}, nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestPostChatCompletionEncodeError(t *testing.T) {
	_, _, err := PostChatCompletion(context.Background(), nil, "http://localhost:0", "k", map[string]any{"bad": func() {}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode chat payload")
}
