package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "codeswitch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg, err := Load(writeConfig(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.HealthPort)
	assert.Equal(t, 8080, cfg.Transports.HTTP.Port)
	assert.Equal(t, 10, cfg.Transports.HTTP.MaxUploadMB)
	assert.Equal(t, "anthropic", cfg.Backend.Provider)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 3, cfg.Backend.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Backend.InitialBackoff)
	assert.Equal(t, "https://api.anthropic.com/v1/messages", cfg.Backend.Anthropic.URL)
	assert.Equal(t, 4000, cfg.Backend.Anthropic.MaxTokens)
	assert.Equal(t, "2023-06-01", cfg.Backend.Anthropic.Version)
	assert.Equal(t, 15*time.Second, cfg.Validation.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Empty(t, cfg.Backend.Anthropic.APIKey)
	assert.NotEmpty(t, cfg.File)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
backend:
  mock_mode: true
  timeout: 5s
  anthropic:
    api_key: sk-ant-test
validation:
  c:
    compiler: "clang -std=c11"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Backend.MockMode)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "sk-ant-test", cfg.Backend.Anthropic.APIKey)

	argv, err := cfg.Validation.C.Argv()
	require.NoError(t, err)
	assert.Equal(t, []string{"clang", "-std=c11"}, argv)
}

func TestLoadResolvesEnvReference(t *testing.T) {
	t.Setenv("MY_KEY", "sk-from-env")
	cfg, err := Load(writeConfig(t, "backend:\n  anthropic:\n    api_key: ${MY_KEY}\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Backend.Anthropic.APIKey)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CODESWITCH_BACKEND_PROVIDER", "ollama")
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Backend.Provider)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"provider", "backend:\n  provider: openai\n"},
		{"timeout", "backend:\n  timeout: 0s\n"},
		{"retries", "backend:\n  max_retries: -1\n"},
		{"compiler quoting", "validation:\n  c:\n    compiler: \"gcc 'unterminated\"\n"},
		{"empty compiler", "validation:\n  java:\n    compiler: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestKeyConfigured(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"your_anthropic_api_key_here", false},
		{"your-anthropic-api-key-here", false},
		{"sk-ant-real", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnthropicConfig{APIKey: tt.key}.KeyConfigured(), "key %q", tt.key)
	}
}

func TestRedacted(t *testing.T) {
	cfg := Config{}
	cfg.Backend.Anthropic.APIKey = "sk-ant-api03-secret"

	red := cfg.Redacted()
	assert.Equal(t, "sk-a********", red.Backend.Anthropic.APIKey)
	assert.Equal(t, "sk-ant-api03-secret", cfg.Backend.Anthropic.APIKey)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "javac -proc:none", cfg.Validation.Java.Compiler)
}

func TestLoadSampleConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-sample")
	cfg, err := Load(filepath.Join("..", "..", "configs", "codeswitch.yaml"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Transports.HTTP.Port, cfg.Transports.HTTP.Port)
	assert.Equal(t, want.Backend.Timeout, cfg.Backend.Timeout)
	assert.Equal(t, want.Validation.Java.Compiler, cfg.Validation.Java.Compiler)
	assert.Equal(t, want.OCR.Timeout, cfg.OCR.Timeout)
	assert.Equal(t, "sk-ant-sample", cfg.Backend.Anthropic.APIKey)
}
