package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nadzzz/codeswitch/internal/config"
	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
)

func testConfig(url string) config.BackendConfig {
	return config.BackendConfig{
		Provider:       "anthropic",
		Timeout:        30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 2 * time.Second,
		Anthropic: config.AnthropicConfig{
			APIKey:    "sk-ant-test",
			URL:       url,
			Model:     "claude-test",
			MaxTokens: 4000,
			Version:   "2023-06-01",
		},
	}
}

type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func okBody(text string) string {
	b, _ := json.Marshal(map[string]any{
		"content": []map[string]string{{"type": "text", "text": text}},
	})
	return string(b)
}

func TestTranslateSendsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "sk-ant-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req messagesRequest
		require.NoError(t, json.Unmarshal(raw, &req))
		assert.Equal(t, "claude-test", req.Model)
		assert.Equal(t, 4000, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "Translate the following JAVA code to C")

		_, _ = io.WriteString(w, okBody("```c\nint main() { return 0; }\n```"))
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), zaptest.NewLogger(t).Sugar())
	got, err := c.Translate(context.Background(), "class A {}", language.Java, language.C)
	require.NoError(t, err)
	assert.Equal(t, "int main() { return 0; }", got)
}

func TestTranslateUsesMockWhenUnconfigured(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	tests := []struct {
		name   string
		mutate func(*config.BackendConfig)
		status string
	}{
		{"mock mode", func(c *config.BackendConfig) { c.MockMode = true }, "Mock mode enabled"},
		{"empty key", func(c *config.BackendConfig) { c.Anthropic.APIKey = "" }, "Anthropic API key not configured"},
		{"blank key", func(c *config.BackendConfig) { c.Anthropic.APIKey = "  " }, "Anthropic API key not configured"},
		{"placeholder underscore", func(c *config.BackendConfig) { c.Anthropic.APIKey = "your_anthropic_api_key_here" }, "Anthropic API key not configured"},
		{"placeholder dash", func(c *config.BackendConfig) { c.Anthropic.APIKey = "your-anthropic-api-key-here" }, "Anthropic API key not configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(srv.URL)
			tt.mutate(&cfg)
			c := New(cfg, zaptest.NewLogger(t).Sugar())

			assert.False(t, c.Available())
			assert.Equal(t, tt.status, c.Status())

			got, err := c.Translate(context.Background(), `System.out.println("Hi");`, language.Java, language.C)
			require.NoError(t, err)
			assert.Contains(t, got, `printf("Hi\n");`)
		})
	}
	assert.Zero(t, hits.Load())
}

func TestTranslateRetriesRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
			return
		}
		_, _ = io.WriteString(w, okBody("int x;"))
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	c := New(testConfig(srv.URL), zaptest.NewLogger(t).Sugar(), WithSleeper(sleeper.sleep))

	got, err := c.Translate(context.Background(), "int x;", language.C, language.Java)
	require.NoError(t, err)
	assert.Equal(t, "int x;", got)
	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, sleeper.delays)
}

func TestTranslateRecoversAfterThreeRateLimits(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
			return
		}
		_, _ = io.WriteString(w, okBody("public class A {}"))
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	c := New(testConfig(srv.URL), zaptest.NewLogger(t).Sugar(), WithSleeper(sleeper.sleep))

	got, err := c.Translate(context.Background(), "int x;", language.C, language.Java)
	require.NoError(t, err)
	assert.Equal(t, "public class A {}", got)
	assert.Equal(t, int32(4), hits.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, sleeper.delays)
}

func TestTranslateRateLimitExhausted(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
	}))
	defer srv.Close()

	sleeper := &recordingSleeper{}
	c := New(testConfig(srv.URL), zaptest.NewLogger(t).Sugar(), WithSleeper(sleeper.sleep))

	_, err := c.Translate(context.Background(), "int x;", language.C, language.Java)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBackendRateLimited))
	assert.Contains(t, err.Error(), "Anthropic API rate limit exceeded (429 Too Many Requests).")
	assert.Contains(t, err.Error(), "Error Type: rate_limit_error Details: slow down.")
	assert.Equal(t, int32(4), hits.Load())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}, sleeper.delays)
}

func TestTranslateBackoffBoundedByDeadline(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 3 * time.Second
	sleeper := &recordingSleeper{}
	c := New(cfg, zaptest.NewLogger(t).Sugar(), WithSleeper(sleeper.sleep))

	_, err := c.Translate(context.Background(), "int x;", language.C, language.Java)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBackendRateLimited))
	assert.Equal(t, []time.Duration{2 * time.Second}, sleeper.delays)
	assert.Equal(t, int32(2), hits.Load())
}

func TestTranslateDoesNotRetryOtherErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
		want   string
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`,
			kind:   errors.ErrBackendAuth,
			want:   "Anthropic API authentication failed. Invalid API key. Error Type: authentication_error Details: invalid x-api-key. Solutions: 1. Check your API key in .env file",
		},
		{
			name:   "server error",
			status: http.StatusServiceUnavailable,
			body:   `{"error":{"type":"overloaded_error","message":"Overloaded"}}`,
			kind:   errors.ErrBackendUnavailable,
			want:   "Anthropic API server error. The service is temporarily unavailable.",
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   `{"error":{"type":"invalid_request_error","message":"max_tokens too large"}}`,
			kind:   errors.ErrBackendGeneric,
			want:   "Anthropic API error: max_tokens too large Error Type: invalid_request_error",
		},
		{
			name:   "unparseable server error",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			kind:   errors.ErrBackendUnavailable,
			want:   "Anthropic API server error. The service is temporarily unavailable. Solutions: 1. Try again in a few minutes",
		},
		{
			name:   "unparseable unauthorized",
			status: http.StatusUnauthorized,
			body:   `Unauthorized`,
			kind:   errors.ErrBackendAuth,
			want:   "Anthropic API authentication failed. Invalid API key. Solutions: 1. Check your API key in .env file",
		},
		{
			name:   "unparseable other status",
			status: http.StatusTeapot,
			body:   ``,
			kind:   errors.ErrBackendGeneric,
			want:   "Anthropic API error (status 418 I'm a teapot). Solutions: 1. Check your Anthropic API key",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			sleeper := &recordingSleeper{}
			c := New(testConfig(srv.URL), zaptest.NewLogger(t).Sugar(), WithSleeper(sleeper.sleep))

			_, err := c.Translate(context.Background(), "int x;", language.C, language.Java)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind))
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, int32(1), hits.Load())
			assert.Empty(t, sleeper.delays)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestTranslateInvalidResponseFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"content":[]}`)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), zaptest.NewLogger(t).Sugar())
	_, err := c.Translate(context.Background(), "int x;", language.C, language.Java)
	require.Error(t, err)
	assert.Equal(t, "Failed to translate code using Anthropic Claude: Failed to parse Anthropic response: Invalid response format from Anthropic API", err.Error())
	assert.True(t, errors.Is(err, errors.ErrBackendGeneric))
}

func TestTranslateTimeoutNotRetried(t *testing.T) {
	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.Timeout = 100 * time.Millisecond
	sleeper := &recordingSleeper{}
	c := New(cfg, zaptest.NewLogger(t).Sugar(), WithSleeper(sleeper.sleep))

	_, err := c.Translate(context.Background(), "int x;", language.C, language.Java)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to translate code using Anthropic Claude")
	assert.Equal(t, int32(1), hits.Load())
	assert.Empty(t, sleeper.delays)
}
