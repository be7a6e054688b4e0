package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PostChatCompletion posts a chat-completions payload to an
// OpenAI-compatible endpoint. The request shaping — base-URL join, bearer
// auth, content type — lives here so every provider client speaks the same
// dialect. On a non-2xx status the body is still returned so callers can
// surface the provider's error message.
func PostChatCompletion(ctx context.Context, client *http.Client, baseURL, apiKey string, payload any, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}

	callID := uuid.New().String()
	start := time.Now()
	endpoint := strings.TrimRight(baseURL, "/") + "/chat/completions"

	encoded, err := json.Marshal(payload)
	if err != nil {
		logger.Error("llm.http.encode_error", "call_id", callID, "error", err)
		return nil, 0, fmt.Errorf("encode chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		logger.Error("llm.http.build_request_error", "call_id", callID, "endpoint", endpoint, "error", err)
		return nil, 0, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	logger.Info("llm.http.request",
		"call_id", callID,
		"endpoint", endpoint,
		"payload_bytes", len(encoded),
	)

	resp, err := client.Do(req)
	if err != nil {
		logger.Error("llm.http.send_error",
			"call_id", callID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, 0, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("llm.http.body_close_error", "call_id", callID, "error", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read chat response: %w", err)
	}

	logger.Info("llm.http.response",
		"call_id", callID,
		"status", resp.StatusCode,
		"response_bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("chat completion returned status %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
