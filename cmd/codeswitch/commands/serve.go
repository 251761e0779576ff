package commands

import (
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/codeswitch/internal/errors"
	"github.com/nadzzz/codeswitch/internal/health"
	"github.com/nadzzz/codeswitch/internal/logger"
	"github.com/nadzzz/codeswitch/internal/transport"
	grpctransport "github.com/nadzzz/codeswitch/internal/transport/grpc"
	httptransport "github.com/nadzzz/codeswitch/internal/transport/http"
)

// ServeCmd runs the translation service.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the translation API",
	Long: `Start the enabled transports (HTTP/WebSocket, gRPC) and the health server.

Examples:
  codeswitch serve
  codeswitch serve --config configs/codeswitch.yaml
  CODESWITCH_BACKEND_MOCK_MODE=true codeswitch serve`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, log := a.cfg, a.log
	log.Infow("codeswitch starting", "version", Version, "config", cfg.File)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize enabled transports.
	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP, log))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, log))
	}
	if len(transports) == 0 {
		return errors.WithHint(errors.New("no transports enabled"),
			"enable transports.http or transports.grpc in the config")
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, log)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			log.Errorw("health server failed", logger.FieldError, err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	errs := make(chan error, len(transports))
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			log.Infow("starting transport", logger.FieldTransport, t.Name())
			if err := t.Listen(ctx, a.pipeline); err != nil {
				log.Errorw("transport failed", logger.FieldTransport, t.Name(), logger.FieldError, err)
				errs <- err
				cancel()
			}
		}(t)
	}

	healthServer.SetReady(true)
	st := a.pipeline.Status(ctx)
	log.Infow("codeswitch ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort,
		"backend", st.Backend,
		"ocr", st.OCR)

	// Block until shutdown signal.
	<-ctx.Done()
	healthServer.SetReady(false)
	log.Info("shutdown signal received, draining...")

	for _, t := range transports {
		if err := t.Close(); err != nil {
			log.Errorw("transport close error", logger.FieldTransport, t.Name(), logger.FieldError, err)
		}
	}

	wg.Wait()
	close(errs)
	log.Info("codeswitch stopped")

	if err, ok := <-errs; ok {
		return err
	}
	return nil
}

