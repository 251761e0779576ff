// Package http implements the HTTP/WebSocket transport for codeswitch.
//
// This transport exposes the REST API under /translate, a WebSocket endpoint
// for interactive clients that translate many snippets over one connection,
// and the Swagger UI.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/nadzzz/codeswitch/internal/config"
	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/language"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/message"
	"github.com/nadzzz/codeswitch/internal/ocr"
	"github.com/nadzzz/codeswitch/internal/transport"
)

const (
	serviceName        = "Code Translation API"
	msgInvalidLanguage = "Invalid language. Supported languages: java, c"
)

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	cfg      config.HTTPConfig
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	server *http.Server
}

// New creates a new HTTP transport.
func New(cfg config.HTTPConfig, log *zap.SugaredLogger) *Transport {
	t := &Transport{
		cfg: cfg,
		log: log.With(logger.FieldTransport, "http"),
	}
	t.upgrader = websocket.Upgrader{CheckOrigin: t.checkOrigin}
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and serves requests from svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.cfg.Port))
	if err != nil {
		return errors.Wrap(err, "http listen")
	}
	return t.Serve(ctx, lis, svc)
}

// Serve runs the API on lis until ctx is cancelled or Close is called.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, svc transport.Service) error {
	srv := &http.Server{
		Handler:           t.Handler(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	t.mu.Lock()
	t.server = srv
	t.mu.Unlock()

	t.log.Infow("http transport listening", logger.FieldPort, lis.Addr().String())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			t.log.Info("http transport shutting down")
			_ = t.Close()
		case <-stop:
		}
	}()

	if err := srv.Serve(lis); err != http.ErrServerClosed {
		return errors.Wrap(err, "http serve")
	}
	return nil
}

// Close gracefully shuts down the server, waiting up to five seconds for
// in-flight requests. It is a no-op before Listen.
func (t *Transport) Close() error {
	t.mu.Lock()
	srv := t.server
	t.mu.Unlock()
	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http shutdown")
	}
	return nil
}

// Handler returns the routed API. Listen serves it; tests mount it on httptest.
func (t *Transport) Handler(svc transport.Service) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /translate/text", func(w http.ResponseWriter, r *http.Request) {
		t.handleTranslateText(w, r, svc)
	})
	mux.HandleFunc("POST /translate/image", func(w http.ResponseWriter, r *http.Request) {
		t.handleTranslateImage(w, r, svc)
	})
	mux.HandleFunc("GET /translate/health", func(w http.ResponseWriter, r *http.Request) {
		t.handleHealth(w, r, svc)
	})
	mux.HandleFunc("GET /translate/ocr/status", func(w http.ResponseWriter, r *http.Request) {
		t.handleOCRStatus(w, r, svc)
	})
	mux.HandleFunc("GET /translate/languages", func(w http.ResponseWriter, r *http.Request) {
		t.handleLanguages(w, r, svc)
	})

	// GET /translate/ws: one TranslationRequest per text frame.
	mux.HandleFunc("GET /translate/ws", func(w http.ResponseWriter, r *http.Request) {
		t.handleWebSocket(w, r, svc)
	})

	// Swagger UI serving the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return t.cors(mux)
}

// errorBody is returned for requests rejected before reaching the pipeline.
type errorBody struct {
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path,omitempty"`
}

// handleTranslateText processes a POST /translate/text request.
//
// @Summary     Translate source code
// @Description Translates Java to C or C to Java. When validateSyntax is true (the default) the
// @Description source is checked before translation and the output after; a translation whose
// @Description output fails validation is still reported as successful.
// @Tags        translate
// @Accept      json
// @Produce     json
// @Param       request  body      message.TranslationRequest  true  "Translation request"
// @Success     200  {object}  message.TranslationResult  "Translation succeeded"
// @Failure     400  {object}  message.TranslationResult  "Invalid language, same language, source syntax error or backend failure"
// @Failure     500  {object}  message.TranslationResult  "Internal server error"
// @Router      /translate/text [post]
func (t *Transport) handleTranslateText(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	var req message.TranslationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Validation Failed", "Invalid request body: "+err.Error())
		return
	}
	if msg := validateRequest(req); msg != "" {
		writeError(w, r, http.StatusBadRequest, "Validation Failed", msg)
		return
	}

	if !validLanguages(req.SourceLanguage, req.TargetLanguage) {
		writeJSON(w, http.StatusBadRequest, &message.TranslationResult{
			OriginalCode:   req.SourceCode,
			SourceLanguage: req.SourceLanguage,
			TargetLanguage: req.TargetLanguage,
			Message:        msgInvalidLanguage,
		})
		return
	}

	res := t.guard(req.SourceCode, req.SourceLanguage, req.TargetLanguage, func() *message.TranslationResult {
		return svc.Translate(r.Context(), req)
	})
	writeResult(w, res)
}

// validateRequest mirrors the field constraints on TranslationRequest.
func validateRequest(req message.TranslationRequest) string {
	var msgs []string
	if strings.TrimSpace(req.SourceCode) == "" {
		msgs = append(msgs, "Source code cannot be empty")
	}
	if req.SourceLanguage == "" {
		msgs = append(msgs, "Source language is required")
	}
	if req.TargetLanguage == "" {
		msgs = append(msgs, "Target language is required")
	}
	return strings.Join(msgs, ", ")
}

// handleTranslateImage processes a POST /translate/image request.
//
// @Summary     Translate source code from an image
// @Description Runs OCR over the uploaded image, then translates the extracted code. The success
// @Description message carries the OCR confidence.
// @Tags        translate
// @Accept      multipart/form-data
// @Produce     json
// @Param       image           formData  file    true   "Image of source code"
// @Param       sourceLanguage  formData  string  true   "java or c"
// @Param       targetLanguage  formData  string  true   "java or c"
// @Param       validateSyntax  formData  bool    false  "Validate source and output (default true)"
// @Success     200  {object}  message.TranslationResult  "Translation succeeded"
// @Failure     400  {object}  message.TranslationResult  "Missing image, invalid language, non-image upload or translation failure"
// @Failure     413  {object}  errorBody                  "Upload too large"
// @Failure     503  {object}  message.TranslationResult  "OCR unavailable"
// @Router      /translate/image [post]
func (t *Transport) handleTranslateImage(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	limit := t.maxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, r, http.StatusRequestEntityTooLarge, "File Too Large",
				fmt.Sprintf("File size exceeds the maximum allowed limit of %dMB", t.uploadMB()))
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			writeError(w, r, http.StatusBadRequest, "Invalid Argument", "Invalid multipart request: "+err.Error())
			return
		}
	}

	from := r.FormValue("sourceLanguage")
	to := r.FormValue("targetLanguage")
	fail := func(status int, msg string) {
		writeJSON(w, status, &message.TranslationResult{SourceLanguage: from, TargetLanguage: to, Message: msg})
	}

	if st := svc.Status(r.Context()); !st.OCRAvailable {
		fail(http.StatusServiceUnavailable, "OCR service is not available. "+st.OCR)
		return
	}

	image, contentType, err := readImage(r)
	if err != nil {
		t.log.Warnw("reading upload failed", logger.FieldError, err)
	}
	if len(image) == 0 {
		fail(http.StatusBadRequest, "No image file provided")
		return
	}
	if !validLanguages(from, to) {
		fail(http.StatusBadRequest, msgInvalidLanguage)
		return
	}
	if !ocr.IsImage(contentType) {
		fail(http.StatusBadRequest, "File must be an image")
		return
	}

	validate := true
	if v := r.FormValue("validateSyntax"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			validate = b
		}
	}

	res := t.guard("", from, to, func() *message.TranslationResult {
		return svc.TranslateImage(r.Context(), message.ImageTranslationRequest{
			Image:          image,
			ContentType:    contentType,
			SourceLanguage: from,
			TargetLanguage: to,
			ValidateSyntax: validate,
		})
	})
	writeResult(w, res)
}

func readImage(r *http.Request) ([]byte, string, error) {
	if r.MultipartForm == nil {
		return nil, "", nil
	}
	f, hdr, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, hdr.Header.Get("Content-Type"), nil
}

// healthResponse is the body of GET /translate/health.
type healthResponse struct {
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Status    string            `json:"status" example:"UP"`
	Message   string            `json:"message"`
}

// handleHealth reports backend and OCR state. Text translation works without
// OCR, so the status code is always 200.
//
// @Summary     Service health
// @Tags        status
// @Produce     json
// @Success     200  {object}  healthResponse
// @Router      /translate/health [get]
func (t *Transport) handleHealth(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	st := svc.Status(r.Context())

	resp := healthResponse{
		Service:   serviceName,
		Timestamp: now(),
		Services:  map[string]string{"anthropic": st.Backend},
		Status:    "UP",
		Message:   "All services operational",
	}
	if st.OCRAvailable {
		resp.Services["ocr"] = "Available"
	} else {
		resp.Services["ocr"] = "Unavailable - " + st.OCR
		resp.Status = "DEGRADED"
		resp.Message = "Text translation available, OCR unavailable"
	}
	writeJSON(w, http.StatusOK, resp)
}

type ocrStatusResponse struct {
	Available bool   `json:"available"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// handleOCRStatus processes GET /translate/ocr/status.
//
// @Summary     OCR engine status
// @Tags        status
// @Produce     json
// @Success     200  {object}  ocrStatusResponse
// @Failure     503  {object}  ocrStatusResponse
// @Router      /translate/ocr/status [get]
func (t *Transport) handleOCRStatus(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	st := svc.Status(r.Context())
	code := http.StatusOK
	if !st.OCRAvailable {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, ocrStatusResponse{Available: st.OCRAvailable, Status: st.OCR, Timestamp: now()})
}

type languagesResponse struct {
	Supported    []language.Language `json:"supported"`
	Translations []string            `json:"translations"`
	Capabilities map[string]bool     `json:"capabilities"`
}

// handleLanguages processes GET /translate/languages.
//
// @Summary     Supported languages and capabilities
// @Tags        status
// @Produce     json
// @Success     200  {object}  languagesResponse
// @Router      /translate/languages [get]
func (t *Transport) handleLanguages(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	st := svc.Status(r.Context())
	writeJSON(w, http.StatusOK, languagesResponse{
		Supported:    language.Supported(),
		Translations: language.Pairs(),
		Capabilities: map[string]bool{
			"text_translation":  st.BackendAvailable,
			"image_translation": st.OCRAvailable,
			"syntax_validation": true,
			"mock_mode":         !st.BackendAvailable,
		},
	})
}

// handleWebSocket serves GET /translate/ws. Each text frame is decoded as a
// TranslationRequest and answered with one TranslationResult frame.
func (t *Transport) handleWebSocket(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.log.Warnw("websocket upgrade failed", logger.FieldError, err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(t.maxUploadBytes())

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.log.Debugw("websocket closed", logger.FieldError, err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		var req message.TranslationRequest
		var res *message.TranslationResult
		if err := json.Unmarshal(data, &req); err != nil {
			res = &message.TranslationResult{Message: "Invalid request: " + err.Error()}
		} else if msg := validateRequest(req); msg != "" {
			res = &message.TranslationResult{SourceLanguage: req.SourceLanguage, TargetLanguage: req.TargetLanguage, Message: msg}
		} else {
			res = t.guard(req.SourceCode, req.SourceLanguage, req.TargetLanguage, func() *message.TranslationResult {
				return svc.Translate(r.Context(), req)
			})
		}

		if err := conn.WriteJSON(res); err != nil {
			t.log.Warnw("websocket write failed", logger.FieldError, err)
			return
		}
	}
}

// guard converts a panic escaping the service into an internal-error result.
func (t *Transport) guard(code, from, to string, fn func() *message.TranslationResult) (res *message.TranslationResult) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Errorw("request panicked", logger.FieldError, r)
			res = &message.TranslationResult{
				OriginalCode:   code,
				SourceLanguage: from,
				TargetLanguage: to,
				Message:        fmt.Sprintf("Internal server error: %v", r),
			}
		}
	}()
	return fn()
}

// cors allows the configured origins, or any origin when none are configured.
func (t *Transport) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && t.originAllowed(origin) {
			if len(t.cfg.AllowedOrigins) == 0 {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Max-Age", "3600")
		}
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *Transport) originAllowed(origin string) bool {
	return len(t.cfg.AllowedOrigins) == 0 || slices.Contains(t.cfg.AllowedOrigins, origin)
}

func (t *Transport) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || t.originAllowed(origin)
}

func (t *Transport) uploadMB() int {
	if t.cfg.MaxUploadMB <= 0 {
		return 10
	}
	return t.cfg.MaxUploadMB
}

func (t *Transport) maxUploadBytes() int64 {
	return int64(t.uploadMB()) << 20
}

func validLanguages(from, to string) bool {
	_, errFrom := language.Parse(from)
	_, errTo := language.Parse(to)
	return errFrom == nil && errTo == nil
}

// writeResult maps a pipeline result onto a status code: 200 on success,
// 500 for a recovered panic, 400 otherwise.
func writeResult(w http.ResponseWriter, res *message.TranslationResult) {
	switch {
	case res.Success:
		writeJSON(w, http.StatusOK, res)
	case strings.HasPrefix(res.Message, "Internal server error: "):
		writeJSON(w, http.StatusInternalServerError, res)
	default:
		writeJSON(w, http.StatusBadRequest, res)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, kind, msg string) {
	writeJSON(w, status, errorBody{
		Timestamp: now(),
		Status:    status,
		Error:     kind,
		Message:   msg,
		Path:      r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
