package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/language"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/translator"
)

type modeler interface {
	Model() string
}

// Translator wraps a backend with the cache. Only results from a real
// backend are stored; mock output is never cached. Cache failures are
// logged and fall through to the backend.
type Translator struct {
	inner translator.Translator
	store *Store
	log   *zap.SugaredLogger
}

// Wrap returns inner decorated with store.
func Wrap(inner translator.Translator, store *Store, log *zap.SugaredLogger) *Translator {
	return &Translator{inner: inner, store: store, log: log.With(logger.FieldComponent, "cache")}
}

func (t *Translator) Name() string    { return t.inner.Name() }
func (t *Translator) Available() bool { return t.inner.Available() }
func (t *Translator) Status() string  { return t.inner.Status() }

// Translate implements translator.Translator.
func (t *Translator) Translate(ctx context.Context, code string, from, to language.Language) (string, error) {
	if !t.inner.Available() {
		return t.inner.Translate(ctx, code, from, to)
	}

	model := ""
	if m, ok := t.inner.(modeler); ok {
		model = m.Model()
	}
	key := Key(code, from, to, t.inner.Name(), model)

	if e, err := t.store.Get(ctx, key); err != nil {
		t.log.Warnw("cache lookup failed", logger.FieldError, err)
	} else if e != nil {
		t.log.Debugw("cache hit", logger.FieldBackend, e.Backend, "hits", e.Hits)
		return e.TranslatedCode, nil
	}

	out, err := t.inner.Translate(ctx, code, from, to)
	if err != nil {
		return "", err
	}

	if err := t.store.Put(ctx, Entry{
		Key:            key,
		SourceLanguage: from,
		TargetLanguage: to,
		Backend:        t.inner.Name(),
		Model:          model,
		TranslatedCode: out,
	}); err != nil {
		t.log.Warnw("cache store failed", logger.FieldError, err)
	}
	return out, nil
}
