// Package commands implements the codeswitch subcommands.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/cache"
	"github.com/nadzzz/codeswitch/internal/config"
	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/ocr"
	"github.com/nadzzz/codeswitch/internal/ocr/tesseract"
	"github.com/nadzzz/codeswitch/internal/pipeline"
	"github.com/nadzzz/codeswitch/internal/toolchain"
	"github.com/nadzzz/codeswitch/internal/translator"
	"github.com/nadzzz/codeswitch/internal/translator/anthropic"
	"github.com/nadzzz/codeswitch/internal/translator/ollama"
	"github.com/nadzzz/codeswitch/internal/validator"
	"github.com/nadzzz/codeswitch/internal/validator/gcc"
	"github.com/nadzzz/codeswitch/internal/validator/heuristic"
	"github.com/nadzzz/codeswitch/internal/validator/javac"
)

// ConfigFile is bound to the root --config flag.
var ConfigFile string

// Version is set by main from build-time ldflags.
var Version = "dev"

// app holds the components built from configuration.
type app struct {
	cfg      *config.Config
	log      *zap.SugaredLogger
	pipeline *pipeline.Pipeline
	ocr      ocr.Extractor // nil if disabled
	cache    *cache.Store  // nil if disabled
}

// loadConfig reads configuration, letting --log-level override the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(ConfigFile)
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "loading configuration"),
			"pass --config or set CODESWITCH_* environment variables")
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	return cfg, nil
}

// newApp wires the pipeline. Interactive commands pass console=true so log
// lines go to stderr and stay out of piped output.
func newApp(cmd *cobra.Command, console bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if console {
		cfg.Logging.Format = "console"
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl == "" {
			cfg.Logging.Level = "warn"
		}
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}
	probe := toolchain.NewProbe()

	validators, err := buildValidators(cfg, probe, log)
	if err != nil {
		return nil, err
	}

	tr, err := a.buildTranslator()
	if err != nil {
		return nil, err
	}

	if cfg.OCR.Enabled {
		argv, err := cfg.OCR.Argv()
		if err != nil {
			return nil, err
		}
		a.ocr = tesseract.New(argv, cfg.OCR.Language, cfg.OCR.TessdataPrefix, cfg.OCR.Timeout, probe, log)
	}

	a.pipeline = pipeline.New(tr, validators, a.ocr, log)
	return a, nil
}

func buildValidators(cfg *config.Config, probe *toolchain.Probe, log *zap.SugaredLogger) (*validator.Set, error) {
	javaArgv, err := cfg.Validation.Java.Argv()
	if err != nil {
		return nil, err
	}
	cArgv, err := cfg.Validation.C.Argv()
	if err != nil {
		return nil, err
	}
	timeout := cfg.Validation.Timeout

	return validator.NewSet(log, map[language.Language]validator.Validator{
		language.Java: heuristic.NewFallback(javac.New(javaArgv, probe, timeout, log), language.Java, log),
		language.C:    heuristic.NewFallback(gcc.New(cArgv, probe, timeout, log), language.C, log),
	}), nil
}

func (a *app) buildTranslator() (translator.Translator, error) {
	var tr translator.Translator
	switch a.cfg.Backend.Provider {
	case "ollama":
		tr = ollama.New(a.cfg.Backend, a.log)
	default:
		tr = anthropic.New(a.cfg.Backend, a.log)
	}
	a.log.Infow("translation backend ready",
		logger.FieldBackend, tr.Name(),
		logger.FieldStatus, tr.Status())

	if !a.cfg.Cache.Enabled {
		return tr, nil
	}
	store, err := cache.Open(a.cfg.Cache.Path)
	if err != nil {
		return nil, errors.Wrap(err, "opening translation cache")
	}
	a.cache = store
	return cache.Wrap(tr, store, a.log), nil
}

// Close releases resources held by the app.
func (a *app) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warnw("closing cache", logger.FieldError, err)
		}
	}
	_ = a.log.Sync()
}
