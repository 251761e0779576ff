// Package config handles loading and validating the codeswitch configuration.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/viper"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/logger"
)

// Placeholder API keys shipped in sample configs. A key equal to one of these
// is treated as absent.
var placeholderKeys = []string{
	"your_anthropic_api_key_here",
	"your-anthropic-api-key-here",
}

// Config is the root configuration for the codeswitch service.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	Transports TransportsConfig `mapstructure:"transports" yaml:"transports"`
	Backend    BackendConfig    `mapstructure:"backend" yaml:"backend"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
	OCR        OCRConfig        `mapstructure:"ocr" yaml:"ocr"`
	Logging    logger.Config    `mapstructure:"logging" yaml:"logging"`

	// File is the config file that was read, empty when running on
	// defaults and environment variables only.
	File string `mapstructure:"-" yaml:"-"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port" yaml:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	HTTP HTTPConfig `mapstructure:"http" yaml:"http"`
	GRPC GRPCConfig `mapstructure:"grpc" yaml:"grpc"`
}

// HTTPConfig configures the REST/WebSocket transport.
type HTTPConfig struct {
	Enabled        bool     `mapstructure:"enabled" yaml:"enabled"`
	Port           int      `mapstructure:"port" yaml:"port"`
	MaxUploadMB    int      `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"` // WebSocket origins; empty allows all
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port"`
}

// BackendConfig selects and configures the translation backend.
type BackendConfig struct {
	Provider          string          `mapstructure:"provider" yaml:"provider"` // "anthropic" or "ollama"
	MockMode          bool            `mapstructure:"mock_mode" yaml:"mock_mode"`
	Timeout           time.Duration   `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries        int             `mapstructure:"max_retries" yaml:"max_retries"`
	InitialBackoff    time.Duration   `mapstructure:"initial_backoff" yaml:"initial_backoff"`
	RequestsPerMinute int             `mapstructure:"requests_per_minute" yaml:"requests_per_minute"` // 0 disables client-side throttling
	Anthropic         AnthropicConfig `mapstructure:"anthropic" yaml:"anthropic"`
	Ollama            OllamaConfig    `mapstructure:"ollama" yaml:"ollama"`
}

// AnthropicConfig holds Anthropic Messages API settings.
type AnthropicConfig struct {
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`
	URL       string `mapstructure:"url" yaml:"url"`
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	Version   string `mapstructure:"version" yaml:"version"`
}

// KeyConfigured reports whether a usable API key is present.
func (a AnthropicConfig) KeyConfigured() bool {
	key := strings.TrimSpace(a.APIKey)
	if key == "" {
		return false
	}
	for _, p := range placeholderKeys {
		if key == p {
			return false
		}
	}
	return true
}

// OllamaConfig holds self-hosted LLM settings.
type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"` // e.g. http://localhost:11434/api/generate
	Model    string `mapstructure:"model" yaml:"model"`
}

// CacheConfig configures the optional SQLite translation cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ValidationConfig configures the syntax validators.
type ValidationConfig struct {
	Timeout time.Duration  `mapstructure:"timeout" yaml:"timeout"`
	Java    CompilerConfig `mapstructure:"java" yaml:"java"`
	C       CompilerConfig `mapstructure:"c" yaml:"c"`
}

// CompilerConfig names the compiler command line, e.g. "gcc -std=c11".
type CompilerConfig struct {
	Compiler string `mapstructure:"compiler" yaml:"compiler"`
}

// Argv splits the compiler command with shell quoting rules.
func (c CompilerConfig) Argv() ([]string, error) {
	return splitCommand(c.Compiler)
}

// OCRConfig configures the tesseract text extractor.
type OCRConfig struct {
	Enabled        bool          `mapstructure:"enabled" yaml:"enabled"`
	Command        string        `mapstructure:"command" yaml:"command"`
	Language       string        `mapstructure:"language" yaml:"language"`
	TessdataPrefix string        `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Argv splits the OCR command with shell quoting rules.
func (o OCRConfig) Argv() ([]string, error) {
	return splitCommand(o.Command)
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./codeswitch.yaml, ./configs/codeswitch.yaml, /etc/codeswitch/codeswitch.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("codeswitch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/codeswitch")
	}

	// Environment variables: CODESWITCH_BACKEND_MOCK_MODE, CODESWITCH_BACKEND_ANTHROPIC_API_KEY, etc.
	v.SetEnvPrefix("CODESWITCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars and defaults are sufficient)
	var used string
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}
	cfg.File = used

	// Resolve env var references in sensitive fields (e.g., "${ANTHROPIC_API_KEY}")
	cfg.Backend.Anthropic.APIKey = resolveEnvRef(cfg.Backend.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are static; a decode failure here is a programming error.
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	cfg.Backend.Anthropic.APIKey = resolveEnvRef(cfg.Backend.Anthropic.APIKey)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.http.max_upload_mb", 10)
	v.SetDefault("transports.http.allowed_origins", []string{})
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("backend.provider", "anthropic")
	v.SetDefault("backend.mock_mode", false)
	v.SetDefault("backend.timeout", 30*time.Second)
	v.SetDefault("backend.max_retries", 3)
	v.SetDefault("backend.initial_backoff", 2*time.Second)
	v.SetDefault("backend.requests_per_minute", 0)
	v.SetDefault("backend.anthropic.api_key", "${ANTHROPIC_API_KEY}")
	v.SetDefault("backend.anthropic.url", "https://api.anthropic.com/v1/messages")
	v.SetDefault("backend.anthropic.model", "claude-3-5-sonnet-20241022")
	v.SetDefault("backend.anthropic.max_tokens", 4000)
	v.SetDefault("backend.anthropic.version", "2023-06-01")
	v.SetDefault("backend.ollama.endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("backend.ollama.model", "codellama")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", "data/codeswitch.db")
	v.SetDefault("validation.timeout", 15*time.Second)
	v.SetDefault("validation.java.compiler", "javac -proc:none")
	v.SetDefault("validation.c.compiler", "gcc")
	v.SetDefault("ocr.enabled", true)
	v.SetDefault("ocr.command", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.tessdata_prefix", "")
	v.SetDefault("ocr.timeout", 60*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch c.Backend.Provider {
	case "anthropic", "ollama":
	default:
		return errors.Newf("backend.provider must be \"anthropic\" or \"ollama\", got %q", c.Backend.Provider)
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend.timeout must be positive")
	}
	if c.Backend.MaxRetries < 0 {
		return errors.New("backend.max_retries must not be negative")
	}
	if c.Backend.InitialBackoff <= 0 {
		return errors.New("backend.initial_backoff must be positive")
	}
	if c.Validation.Timeout <= 0 {
		return errors.New("validation.timeout must be positive")
	}
	if c.Transports.HTTP.MaxUploadMB <= 0 {
		return errors.New("transports.http.max_upload_mb must be positive")
	}
	if _, err := c.Validation.Java.Argv(); err != nil {
		return errors.Wrap(err, "validation.java.compiler")
	}
	if _, err := c.Validation.C.Argv(); err != nil {
		return errors.Wrap(err, "validation.c.compiler")
	}
	if c.OCR.Enabled {
		if _, err := c.OCR.Argv(); err != nil {
			return errors.Wrap(err, "ocr.command")
		}
		if c.OCR.Timeout <= 0 {
			return errors.New("ocr.timeout must be positive")
		}
	}
	return nil
}

// Redacted returns a copy safe to print: the API key is masked.
func (c Config) Redacted() Config {
	if c.Backend.Anthropic.APIKey != "" {
		key := c.Backend.Anthropic.APIKey
		if len(key) > 8 && c.Backend.Anthropic.KeyConfigured() {
			c.Backend.Anthropic.APIKey = key[:4] + strings.Repeat("*", 8)
		} else if c.Backend.Anthropic.KeyConfigured() {
			c.Backend.Anthropic.APIKey = strings.Repeat("*", 8)
		}
	}
	return c
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

func splitCommand(cmd string) ([]string, error) {
	argv, err := shellquote.Split(cmd)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing command %q", cmd)
	}
	if len(argv) == 0 {
		return nil, errors.New("command is empty")
	}
	return argv, nil
}
