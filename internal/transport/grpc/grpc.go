// Package grpc implements the gRPC transport for codeswitch.
//
// The service codeswitch.v1.Translator has two unary methods, Translate and
// Validate. Messages are the JSON forms of the message package types, carried
// with the "json" content-subtype (application/grpc+json), so no generated
// stubs are needed on either side. The standard grpc.health.v1 service is
// registered alongside.
package grpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/message"
	"github.com/nadzzz/codeswitch/internal/transport"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "codeswitch.v1.Translator"

// jsonCodec marshals messages as JSON. It is selected per call by the
// "json" content-subtype; protobuf remains the default for other services.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// ValidateRequest is the input of Validate.
type ValidateRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// translatorServer is the handler type named in the service descriptor.
type translatorServer interface {
	Translate(ctx context.Context, req *message.TranslationRequest) (*message.TranslationResult, error)
	Validate(ctx context.Context, req *ValidateRequest) (*message.ValidationOutcome, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*translatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Translate", Handler: translateHandler},
		{MethodName: "Validate", Handler: validateHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func translateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.TranslationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(translatorServer).Translate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Translate"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(translatorServer).Translate(ctx, req.(*message.TranslationRequest))
	})
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ValidateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(translatorServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Validate"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(translatorServer).Validate(ctx, req.(*ValidateRequest))
	})
}

// server adapts a transport.Service to translatorServer.
type server struct {
	svc transport.Service
	log *zap.SugaredLogger
}

func (s *server) Translate(ctx context.Context, req *message.TranslationRequest) (*message.TranslationResult, error) {
	return s.svc.Translate(ctx, *req), nil
}

func (s *server) Validate(ctx context.Context, req *ValidateRequest) (*message.ValidationOutcome, error) {
	out, err := s.svc.Validate(ctx, req.Code, req.Language)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &out, nil
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port int
	log  *zap.SugaredLogger

	mu     sync.Mutex
	server *grpc.Server
	health *health.Server
}

// New creates a new gRPC transport on the given port.
func New(port int, log *zap.SugaredLogger) *Transport {
	return &Transport{port: port, log: log.With(logger.FieldTransport, "grpc")}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server on the configured port.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return errors.Wrap(err, "grpc listen")
	}
	return t.Serve(ctx, lis, svc)
}

// Serve runs the server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, svc transport.Service) error {
	srv := grpc.NewServer()
	srv.RegisterService(&serviceDesc, &server{svc: svc, log: t.log})

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	t.mu.Lock()
	t.server, t.health = srv, hs
	t.mu.Unlock()

	t.log.Infow("grpc transport listening", logger.FieldPort, lis.Addr().String())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			t.log.Info("grpc transport shutting down")
			_ = t.Close()
		case <-stop:
		}
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return errors.Wrap(err, "grpc serve")
	}
	return nil
}

// Close marks the service not serving and gracefully stops the server.
// It is a no-op before Listen.
func (t *Transport) Close() error {
	t.mu.Lock()
	srv, hs := t.server, t.health
	t.mu.Unlock()
	if srv == nil {
		return nil
	}
	hs.Shutdown()
	srv.GracefulStop()
	return nil
}

// Client calls a codeswitch gRPC server.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to addr using opts (typically transport credentials).
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(grpc.CallContentSubtype(jsonCodec{}.Name())))
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", addr)
	}
	return &Client{conn: conn}, nil
}

// Translate calls codeswitch.v1.Translator/Translate.
func (c *Client) Translate(ctx context.Context, req message.TranslationRequest) (*message.TranslationResult, error) {
	out := new(message.TranslationResult)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/Translate", &req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate calls codeswitch.v1.Translator/Validate.
func (c *Client) Validate(ctx context.Context, code, lang string) (*message.ValidationOutcome, error) {
	out := new(message.ValidationOutcome)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/Validate", &ValidateRequest{Code: code, Language: lang}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Conn exposes the underlying connection, e.g. for health checks.
func (c *Client) Conn() *grpc.ClientConn { return c.conn }

// Close releases the connection.
func (c *Client) Close() error { return c.conn.Close() }
