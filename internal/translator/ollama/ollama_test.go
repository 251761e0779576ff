package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nadzzz/codeswitch/internal/config"
	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
)

func newTranslator(t *testing.T, endpoint string) *Translator {
	return New(config.BackendConfig{
		Timeout: 5 * time.Second,
		Ollama:  config.OllamaConfig{Endpoint: endpoint, Model: "codellama"},
	}, zaptest.NewLogger(t).Sugar())
}

func TestTranslateGenerateEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "codellama", body["model"])
		assert.Equal(t, false, body["stream"])
		assert.Contains(t, body["prompt"], "Translate the following C code to JAVA")

		_, _ = io.WriteString(w, `{"response":"`+"```java\\nclass A {}\\n```"+`","done":true}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := newTranslator(t, srv.URL+"/api/generate").Translate(context.Background(), "int x;", language.C, language.Java)
	require.NoError(t, err)
	assert.Equal(t, "class A {}", got)
}

func TestTranslateChatEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "messages")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"int main() { return 0; }"}}]}`)
	}))
	defer srv.Close()

	got, err := newTranslator(t, srv.URL+"/v1/chat/completions").Translate(context.Background(), "class A {}", language.Java, language.C)
	require.NoError(t, err)
	assert.Equal(t, "int main() { return 0; }", got)
}

func TestTranslateErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "model not loaded")
	}))
	defer srv.Close()

	_, err := newTranslator(t, srv.URL+"/api/generate").Translate(context.Background(), "int x;", language.C, language.Java)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBackendUnavailable))
	assert.Contains(t, err.Error(), "status 500")

	_, err = newTranslator(t, "").Translate(context.Background(), "int x;", language.C, language.Java)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBackendUnavailable))
}

func TestStatus(t *testing.T) {
	tr := newTranslator(t, "http://localhost:11434/api/generate")
	assert.True(t, tr.Available())
	assert.Equal(t, "Ollama configured (codellama)", tr.Status())
	assert.Equal(t, "ollama", tr.Name())
	assert.False(t, newTranslator(t, "").Available())
}
