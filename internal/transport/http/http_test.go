package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nadzzz/codeswitch/internal/config"
	"github.com/nadzzz/codeswitch/internal/message"
	"github.com/nadzzz/codeswitch/internal/transport"
)

var _ transport.Transport = (*Transport)(nil)

type fakeService struct {
	status     message.ServiceStatus
	result     *message.TranslationResult
	panicMsg   string
	calls      atomic.Int32
	imageCalls atomic.Int32
	lastReq    message.TranslationRequest
	lastImage  message.ImageTranslationRequest
}

func (f *fakeService) Translate(_ context.Context, req message.TranslationRequest) *message.TranslationResult {
	f.calls.Add(1)
	f.lastReq = req
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.result
}

func (f *fakeService) TranslateImage(_ context.Context, req message.ImageTranslationRequest) *message.TranslationResult {
	f.imageCalls.Add(1)
	f.lastImage = req
	return f.result
}

func (f *fakeService) Validate(context.Context, string, string) (message.ValidationOutcome, error) {
	return message.Valid("ok"), nil
}

func (f *fakeService) Status(context.Context) message.ServiceStatus { return f.status }

func newServer(t *testing.T, svc *fakeService, cfg config.HTTPConfig) *httptest.Server {
	t.Helper()
	tr := New(cfg, zaptest.NewLogger(t).Sugar())
	srv := httptest.NewServer(tr.Handler(svc))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestTranslateText(t *testing.T) {
	ok := &message.TranslationResult{Success: true, Message: "Translation completed successfully", TranslatedCode: "int main() {}"}
	failed := &message.TranslationResult{Success: false, Message: "Translation failed: boom"}

	tests := []struct {
		name       string
		body       map[string]any
		result     *message.TranslationResult
		wantStatus int
		wantMsg    string
		wantCalls  int32
	}{
		{
			name:       "success",
			body:       map[string]any{"sourceCode": "class A {}", "sourceLanguage": "java", "targetLanguage": "c"},
			result:     ok,
			wantStatus: http.StatusOK,
			wantMsg:    "Translation completed successfully",
			wantCalls:  1,
		},
		{
			name:       "pipeline failure is 400",
			body:       map[string]any{"sourceCode": "class A {}", "sourceLanguage": "java", "targetLanguage": "c"},
			result:     failed,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Translation failed: boom",
			wantCalls:  1,
		},
		{
			name:       "invalid language",
			body:       map[string]any{"sourceCode": "x", "sourceLanguage": "rust", "targetLanguage": "c"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid language. Supported languages: java, c",
		},
		{
			name:       "blank source",
			body:       map[string]any{"sourceCode": "   ", "sourceLanguage": "java", "targetLanguage": "c"},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Source code cannot be empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{result: tt.result}
			srv := newServer(t, svc, config.HTTPConfig{})

			resp, out := postJSON(t, srv.URL+"/translate/text", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, out["message"])
			assert.Equal(t, tt.wantCalls, svc.calls.Load())
		})
	}
}

func TestTranslateTextDefaultsValidateSyntax(t *testing.T) {
	svc := &fakeService{result: &message.TranslationResult{Success: true}}
	srv := newServer(t, svc, config.HTTPConfig{})

	postJSON(t, srv.URL+"/translate/text", map[string]any{"sourceCode": "int x;", "sourceLanguage": "C", "targetLanguage": "java"})
	assert.True(t, svc.lastReq.ValidateSyntax)

	postJSON(t, srv.URL+"/translate/text", map[string]any{"sourceCode": "int x;", "sourceLanguage": "c", "targetLanguage": "java", "validateSyntax": false})
	assert.False(t, svc.lastReq.ValidateSyntax)
}

func TestTranslateTextPanicIs500(t *testing.T) {
	svc := &fakeService{panicMsg: "kaboom"}
	srv := newServer(t, svc, config.HTTPConfig{})

	resp, out := postJSON(t, srv.URL+"/translate/text", map[string]any{"sourceCode": "int x;", "sourceLanguage": "c", "targetLanguage": "java"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error: kaboom", out["message"])
}

func multipartBody(t *testing.T, fields map[string]string, image []byte, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="code.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestTranslateImage(t *testing.T) {
	langs := map[string]string{"sourceLanguage": "java", "targetLanguage": "c"}
	available := message.ServiceStatus{OCRAvailable: true, OCR: "Tesseract OCR is properly configured and available"}

	tests := []struct {
		name        string
		status      message.ServiceStatus
		fields      map[string]string
		image       []byte
		contentType string
		wantStatus  int
		wantMsg     string
	}{
		{
			name:        "ocr unavailable",
			status:      message.ServiceStatus{OCR: "Tesseract OCR is not available: not found"},
			fields:      langs,
			image:       []byte("png"),
			contentType: "image/png",
			wantStatus:  http.StatusServiceUnavailable,
			wantMsg:     "OCR service is not available. Tesseract OCR is not available: not found",
		},
		{
			name:       "missing file",
			status:     available,
			fields:     langs,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "No image file provided",
		},
		{
			name:        "bad language",
			status:      available,
			fields:      map[string]string{"sourceLanguage": "go", "targetLanguage": "c"},
			image:       []byte("png"),
			contentType: "image/png",
			wantStatus:  http.StatusBadRequest,
			wantMsg:     "Invalid language. Supported languages: java, c",
		},
		{
			name:        "not an image",
			status:      available,
			fields:      langs,
			image:       []byte("%PDF"),
			contentType: "application/pdf",
			wantStatus:  http.StatusBadRequest,
			wantMsg:     "File must be an image",
		},
		{
			name:        "success",
			status:      available,
			fields:      langs,
			image:       []byte("png"),
			contentType: "image/png",
			wantStatus:  http.StatusOK,
			wantMsg:     "Translation completed successfully (OCR confidence: 90.0%)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{
				status: tt.status,
				result: &message.TranslationResult{Success: true, Message: "Translation completed successfully (OCR confidence: 90.0%)"},
			}
			srv := newServer(t, svc, config.HTTPConfig{})

			body, ct := multipartBody(t, tt.fields, tt.image, tt.contentType)
			resp, err := http.Post(srv.URL+"/translate/image", ct, body)
			require.NoError(t, err)
			defer resp.Body.Close()

			var out map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, out["message"])
		})
	}
}

func TestTranslateImageForwardsUpload(t *testing.T) {
	svc := &fakeService{
		status: message.ServiceStatus{OCRAvailable: true},
		result: &message.TranslationResult{Success: true},
	}
	srv := newServer(t, svc, config.HTTPConfig{})

	body, ct := multipartBody(t, map[string]string{"sourceLanguage": "c", "targetLanguage": "java", "validateSyntax": "false"}, []byte("JPEGDATA"), "image/jpeg")
	resp, err := http.Post(srv.URL+"/translate/image", ct, body)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, int32(1), svc.imageCalls.Load())
	assert.Equal(t, []byte("JPEGDATA"), svc.lastImage.Image)
	assert.Equal(t, "image/jpeg", svc.lastImage.ContentType)
	assert.False(t, svc.lastImage.ValidateSyntax)
}

func TestTranslateImageTooLarge(t *testing.T) {
	svc := &fakeService{status: message.ServiceStatus{OCRAvailable: true}}
	h := New(config.HTTPConfig{MaxUploadMB: 1}, zaptest.NewLogger(t).Sugar()).Handler(svc)

	body, ct := multipartBody(t, map[string]string{"sourceLanguage": "java", "targetLanguage": "c"}, bytes.Repeat([]byte{0xff}, 2<<20), "image/png")
	req := httptest.NewRequest(http.MethodPost, "/translate/image", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "File size exceeds the maximum allowed limit of 1MB", out.Message)
	assert.Zero(t, svc.imageCalls.Load())
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	svc := &fakeService{status: message.ServiceStatus{Backend: "Mock mode enabled", OCR: "Tesseract OCR is not available: missing"}}
	srv := newServer(t, svc, config.HTTPConfig{})

	var out healthResponse
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/translate/health", &out))
	assert.Equal(t, "Code Translation API", out.Service)
	assert.Equal(t, "DEGRADED", out.Status)
	assert.Equal(t, "Text translation available, OCR unavailable", out.Message)
	assert.Equal(t, "Mock mode enabled", out.Services["anthropic"])
	assert.Equal(t, "Unavailable - Tesseract OCR is not available: missing", out.Services["ocr"])

	svc.status.OCRAvailable = true
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/translate/health", &out))
	assert.Equal(t, "UP", out.Status)
	assert.Equal(t, "Available", out.Services["ocr"])
}

func TestOCRStatus(t *testing.T) {
	svc := &fakeService{status: message.ServiceStatus{OCR: "down"}}
	srv := newServer(t, svc, config.HTTPConfig{})

	var out ocrStatusResponse
	assert.Equal(t, http.StatusServiceUnavailable, getJSON(t, srv.URL+"/translate/ocr/status", &out))
	assert.False(t, out.Available)
	assert.Equal(t, "down", out.Status)

	svc.status = message.ServiceStatus{OCRAvailable: true, OCR: "up"}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/translate/ocr/status", &out))
	assert.True(t, out.Available)
}

func TestLanguages(t *testing.T) {
	svc := &fakeService{status: message.ServiceStatus{BackendAvailable: false, OCRAvailable: true}}
	srv := newServer(t, svc, config.HTTPConfig{})

	var out struct {
		Supported    []string        `json:"supported"`
		Translations []string        `json:"translations"`
		Capabilities map[string]bool `json:"capabilities"`
	}
	assert.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/translate/languages", &out))
	assert.Equal(t, []string{"java", "c"}, out.Supported)
	assert.Equal(t, []string{"java-to-c", "c-to-java"}, out.Translations)
	assert.Equal(t, map[string]bool{
		"text_translation":  false,
		"image_translation": true,
		"syntax_validation": true,
		"mock_mode":         true,
	}, out.Capabilities)
}

func TestCORS(t *testing.T) {
	srv := newServer(t, &fakeService{}, config.HTTPConfig{AllowedOrigins: []string{"https://app.example"}})

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/translate/text", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebSocket(t *testing.T) {
	svc := &fakeService{result: &message.TranslationResult{Success: true, TranslatedCode: "int main() {}"}}
	srv := newServer(t, svc, config.HTTPConfig{})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/translate/ws"
	dialer := websocket.Dialer{}
	conn, _, err := dialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{"sourceCode": "class A {}", "sourceLanguage": "java", "targetLanguage": "c"}))
	var res message.TranslationResult
	require.NoError(t, conn.ReadJSON(&res))
	assert.True(t, res.Success)
	assert.Equal(t, "int main() {}", res.TranslatedCode)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	res = message.TranslationResult{}
	require.NoError(t, conn.ReadJSON(&res))
	assert.False(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Message, "Invalid request: "))

	require.NoError(t, conn.WriteJSON(map[string]any{"sourceCode": "", "sourceLanguage": "java", "targetLanguage": "c"}))
	res = message.TranslationResult{}
	require.NoError(t, conn.ReadJSON(&res))
	assert.Equal(t, "Source code cannot be empty", res.Message)

	assert.Equal(t, int32(1), svc.calls.Load())
}

func TestListenStopsOnCancel(t *testing.T) {
	tr := New(config.HTTPConfig{Port: 0}, zaptest.NewLogger(t).Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Listen(ctx, &fakeService{}) }()
	cancel()
	assert.NoError(t, <-done)
}

func TestCloseStopsServe(t *testing.T) {
	lis, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	tr := New(config.HTTPConfig{}, zaptest.NewLogger(t).Sugar())
	done := make(chan error, 1)
	go func() { done <- tr.Serve(context.Background(), lis, &fakeService{}) }()

	url := "http://" + lis.Addr().String() + "/translate/languages"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, tr.Close())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}

func TestCloseBeforeListen(t *testing.T) {
	tr := New(config.HTTPConfig{}, zaptest.NewLogger(t).Sugar())
	assert.NoError(t, tr.Close())
}
