// Package ollama implements the Translator interface using a self-hosted model.
//
// It speaks Ollama's /api/generate and any OpenAI-compatible
// /v1/chat/completions endpoint (vLLM, llama.cpp server). Unlike the
// Anthropic backend there is no mock fallback: an unreachable endpoint is an
// error.
package ollama

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/config"
	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/translator"
)

// Translator uses a local LLM endpoint for code translation.
type Translator struct {
	endpoint string
	model    string
	timeout  time.Duration
	http     *resty.Client
	log      *zap.SugaredLogger
}

// New creates a new local translator from config.
func New(cfg config.BackendConfig, log *zap.SugaredLogger) *Translator {
	model := cfg.Ollama.Model
	if model == "" {
		model = "codellama"
	}
	return &Translator{
		endpoint: cfg.Ollama.Endpoint,
		model:    model,
		timeout:  cfg.Timeout,
		http:     resty.New(),
		log:      log.With(logger.FieldBackend, "ollama"),
	}
}

// Name returns the backend identifier.
func (t *Translator) Name() string { return "ollama" }

// Available reports whether an endpoint is configured.
func (t *Translator) Available() bool { return t.endpoint != "" }

// Status describes the backend configuration.
func (t *Translator) Status() string {
	if t.endpoint == "" {
		return "Ollama endpoint not configured"
	}
	return "Ollama configured (" + t.model + ")"
}

// Model returns the configured model name.
func (t *Translator) Model() string { return t.model }

// Translate sends the translation prompt to the local LLM endpoint.
func (t *Translator) Translate(ctx context.Context, code string, from, to language.Language) (string, error) {
	if t.endpoint == "" {
		return "", errors.Mark(errors.New("ollama endpoint not configured"), errors.ErrBackendUnavailable)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	prompt := translator.BuildPrompt(code, from, to)

	// Default to the OpenAI-compatible chat format; Ollama's native endpoint
	// takes a flat prompt.
	var body map[string]any
	if strings.HasSuffix(t.endpoint, "/api/generate") {
		body = map[string]any{
			"model":  t.model,
			"prompt": prompt,
			"stream": false,
		}
	} else {
		body = map[string]any{
			"model": t.model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"temperature": 0.2,
			"stream":      false,
		}
	}

	resp, err := t.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(t.endpoint)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, "local LLM request"), errors.ErrBackendUnavailable)
	}
	if resp.IsError() {
		kind := errors.ErrBackendGeneric
		if resp.StatusCode() >= 500 {
			kind = errors.ErrBackendUnavailable
		}
		return "", errors.Mark(errors.Newf("local LLM failed (status %d): %.2048s", resp.StatusCode(), resp.String()), kind)
	}

	content := extractContent(resp.Body())
	if strings.TrimSpace(content) == "" {
		return "", errors.Mark(errors.New("empty response from local LLM"), errors.ErrBackendGeneric)
	}

	t.log.Debugw("local translation complete",
		logger.FieldModel, t.model,
		logger.FieldSize, len(content))
	return translator.CleanCode(content), nil
}

func extractContent(data []byte) string {
	// OpenAI-compatible: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Ollama: {"response": "..."}
	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil && ollamaResp.Response != "" {
		return ollamaResp.Response
	}

	return ""
}
