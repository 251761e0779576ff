// Package tesseract implements ocr.Extractor by running the tesseract CLI.
//
// The image is piped on stdin and the recognised text read from stdout.
// Recognition is tuned for source code: a single uniform text block
// (--psm 6), the LSTM engine (--oem 1), and a character whitelist limited to
// what appears in Java and C programs.
package tesseract

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/ocr"
	"github.com/nadzzz/codeswitch/internal/toolchain"
)

const whitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789" +
	"(){}[]<>;,.:!@#$%^&*-+=|\\/?\"' \t\n"

// Engine runs tesseract as a subprocess.
type Engine struct {
	argv           []string
	lang           string
	tessdataPrefix string
	timeout        time.Duration
	probe          *toolchain.Probe
	log            *zap.SugaredLogger

	mu    sync.Mutex
	ready bool // language data confirmed present
}

// New returns an engine invoking argv (usually ["tesseract"]).
func New(argv []string, lang, tessdataPrefix string, timeout time.Duration, probe *toolchain.Probe, log *zap.SugaredLogger) *Engine {
	if lang == "" {
		lang = "eng"
	}
	return &Engine{
		argv:           argv,
		lang:           lang,
		tessdataPrefix: tessdataPrefix,
		timeout:        timeout,
		probe:          probe,
		log:            log.With(logger.FieldComponent, "ocr"),
	}
}

// Available reports whether tesseract and its language data are installed.
func (e *Engine) Available(ctx context.Context) bool {
	return e.check(ctx) == nil
}

// Status describes the engine state.
func (e *Engine) Status(ctx context.Context) string {
	if err := e.check(ctx); err != nil {
		return "Tesseract OCR is not available: " + err.Error()
	}
	return "Tesseract OCR is properly configured and available"
}

// check verifies the binary and language data. Success is remembered;
// failures are re-checked on the next call so a later install is picked up.
func (e *Engine) check(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		return nil
	}

	if _, err := e.probe.Resolve(e.argv[0]); err != nil {
		return err
	}

	res, err := toolchain.Run(ctx, toolchain.Command{
		Argv:        append(append([]string{}, e.argv...), "--list-langs"),
		Env:         e.env(),
		Timeout:     e.timeout,
		MergeStderr: true,
	})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return errors.Newf("tesseract --list-langs exited with status %d", res.ExitCode)
	}
	if !hasLanguage(string(res.Output), e.lang) {
		return errors.Newf("language data %q not installed (check TESSDATA_PREFIX)", e.lang)
	}

	e.ready = true
	return nil
}

// hasLanguage scans --list-langs output, which is a header line followed by one code per line.
func hasLanguage(output, lang string) bool {
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == lang {
			return true
		}
	}
	return false
}

func (e *Engine) env() []string {
	if e.tessdataPrefix == "" {
		return nil
	}
	return []string{"TESSDATA_PREFIX=" + e.tessdataPrefix}
}

// ExtractText implements ocr.Extractor.
func (e *Engine) ExtractText(ctx context.Context, image []byte, contentType string) ocr.Result {
	if err := e.check(ctx); err != nil {
		return ocr.Failed("Tesseract OCR is not properly configured: " + err.Error())
	}
	if len(image) == 0 {
		return ocr.Failed("No image data provided")
	}
	if !ocr.IsImage(contentType) {
		return ocr.Failed("File must be an image")
	}

	args := append(append([]string{}, e.argv...),
		"stdin", "stdout",
		"-l", e.lang,
		"--psm", "6",
		"--oem", "1",
		"--dpi", "300",
		"-c", "tessedit_char_whitelist="+whitelist,
	)

	start := time.Now()
	res, err := toolchain.Run(ctx, toolchain.Command{
		Argv:    args,
		Env:     e.env(),
		Stdin:   image,
		Timeout: e.timeout,
	})
	if err != nil {
		return ocr.Failed("OCR processing failed: " + err.Error() + ". Please check Tesseract installation and configuration.")
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(string(res.Stderr))
		if msg == "" {
			msg = "tesseract exited with status " + strconv.Itoa(res.ExitCode)
		}
		return ocr.Failed("OCR processing failed: " + msg + ". Please check Tesseract installation and configuration.")
	}

	text := ocr.CleanText(string(res.Output))
	e.log.Debugw("ocr complete",
		logger.FieldSize, len(image),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return ocr.Result{Text: text, Success: true, Confidence: ocr.Confidence(text)}
}
