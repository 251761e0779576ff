// Package anthropic implements the Translator interface using Anthropic's Messages API.
//
// When mock mode is on or no usable API key is configured, translations come
// from the mock package instead and no request is made. Real requests are
// retried only on HTTP 429, with exponential backoff inside a fixed overall
// deadline.
package anthropic

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nadzzz/codeswitch/internal/config"
	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/translator"
	"github.com/nadzzz/codeswitch/internal/translator/mock"
)

const failurePrefix = "Failed to translate code using Anthropic Claude"

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Option customises a Client.
type Option func(*Client)

// WithSleeper replaces the backoff wait, so tests can record delays without waiting.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithHTTPClient replaces the underlying resty client.
func WithHTTPClient(rc *resty.Client) Option {
	return func(c *Client) { c.http = rc }
}

// Client translates code with Claude, falling back to mock output when unconfigured.
type Client struct {
	cfg            config.AnthropicConfig
	mockMode       bool
	timeout        time.Duration
	maxRetries     int
	initialBackoff time.Duration

	http    *resty.Client
	limiter *rate.Limiter // nil when unthrottled
	sleep   Sleeper
	log     *zap.SugaredLogger
}

// New creates a new Anthropic translator from config.
func New(cfg config.BackendConfig, log *zap.SugaredLogger, opts ...Option) *Client {
	c := &Client{
		cfg:            cfg.Anthropic,
		mockMode:       cfg.MockMode,
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		http:           resty.New(),
		sleep:          sleepContext,
		log:            log.With(logger.FieldBackend, "anthropic"),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "anthropic" }

// Available reports whether requests go to the real API.
func (c *Client) Available() bool {
	return !c.mockMode && c.cfg.KeyConfigured()
}

// Status describes the backend configuration.
func (c *Client) Status() string {
	switch {
	case c.mockMode:
		return "Mock mode enabled"
	case !c.cfg.KeyConfigured():
		return "Anthropic API key not configured"
	default:
		return "Anthropic API configured"
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Translate implements translator.Translator.
func (c *Client) Translate(ctx context.Context, code string, from, to language.Language) (string, error) {
	if !c.Available() {
		c.log.Infow("using mock translation", logger.FieldStatus, c.Status())
		return mock.Generate(code, from, to), nil
	}

	body := messagesRequest{
		Model:     c.cfg.Model,
		MaxTokens: c.cfg.MaxTokens,
		Messages:  []chatMessage{{Role: "user", Content: translator.BuildPrompt(code, from, to)}},
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	deadline, _ := ctx.Deadline()

	backoff := c.initialBackoff
	for attempt := 0; ; attempt++ {
		text, err := c.send(ctx, body)
		if err == nil {
			return text, nil
		}
		if !errors.IsRetryable(err) || attempt >= c.maxRetries {
			return "", err
		}
		if time.Until(deadline) < backoff {
			c.log.Warnw("backoff would exceed deadline, giving up",
				logger.FieldAttempt, attempt+1,
				logger.FieldBackoff, backoff)
			return "", err
		}

		c.log.Warnw("rate limited, backing off",
			logger.FieldAttempt, attempt+1,
			logger.FieldBackoff, backoff)
		if serr := c.sleep(ctx, backoff); serr != nil {
			return "", errors.Mark(errors.Wrap(serr, failurePrefix), errors.ErrBackendGeneric)
		}
		backoff *= 2
	}
}

// send performs one request and classifies its outcome.
func (c *Client) send(ctx context.Context, body messagesRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", errors.Mark(errors.Wrap(err, failurePrefix), errors.ErrBackendGeneric)
		}
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", c.cfg.APIKey).
		SetHeader("anthropic-version", c.cfg.Version).
		SetBody(body).
		Post(c.cfg.URL)
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, failurePrefix), errors.ErrBackendGeneric)
	}

	c.log.Debugw("anthropic response",
		logger.FieldStatus, resp.StatusCode(),
		logger.FieldModel, c.cfg.Model,
		logger.FieldDurationMS, time.Since(start).Milliseconds())

	if resp.IsError() {
		return "", classify(resp.StatusCode(), resp.Body())
	}

	text, err := extractText(resp.Body())
	if err != nil {
		return "", errors.Mark(errors.Wrap(err, failurePrefix), errors.ErrBackendGeneric)
	}
	return translator.CleanCode(text), nil
}

func extractText(body []byte) (string, error) {
	var parsed struct {
		Content []struct {
			Type string  `json:"type"`
			Text *string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Wrap(err, "Failed to parse Anthropic response")
	}
	if len(parsed.Content) == 0 || parsed.Content[0].Text == nil {
		return "", errors.Wrap(errors.New("Invalid response format from Anthropic API"), "Failed to parse Anthropic response")
	}
	return *parsed.Content[0].Text, nil
}
