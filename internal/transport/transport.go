// Package transport defines the interface for pluggable request transports.
//
// Each transport (HTTP/WebSocket, gRPC) implements this interface and serves
// requests against a Service. The pipeline doesn't care how requests
// arrive; it only works with the Service contract.
package transport

import (
	"context"

	"github.com/nadzzz/codeswitch/internal/message"
)

// Service is what transports expose. *pipeline.Pipeline implements it.
type Service interface {
	// Translate and TranslateImage never fail; errors are reported in the result.
	Translate(ctx context.Context, req message.TranslationRequest) *message.TranslationResult
	TranslateImage(ctx context.Context, req message.ImageTranslationRequest) *message.TranslationResult

	// Validate returns an error only for an unsupported language.
	Validate(ctx context.Context, code, lang string) (message.ValidationOutcome, error)

	// Status reports backend and OCR health.
	Status(ctx context.Context) message.ServiceStatus
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting requests and serves them from svc.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
