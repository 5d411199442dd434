// Command server runs the invoicing backend-for-frontend: invoice totals,
// contact duplicate detection, and the PEPPOL registration and send
// workflows, all proxied against the upstream business API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"fakturo/internal/contact"
	contactHandler "fakturo/internal/contact/handler"
	invoiceHandler "fakturo/internal/invoice/handler"
	jwttoken "fakturo/internal/jwt_token"
	"fakturo/internal/peppol/registration"
	registrationHandler "fakturo/internal/peppol/registration/handler"
	"fakturo/internal/peppol/sending"
	sendingHandler "fakturo/internal/peppol/sending/handler"
	"fakturo/internal/platform/config"
	"fakturo/internal/platform/httpserver"
	"fakturo/internal/platform/logger"
	"fakturo/internal/platform/metrics"
	platformredis "fakturo/internal/platform/redis"
	httptransport "fakturo/internal/transport/http"
	"fakturo/internal/upstream"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Absent .env is fine; real deployments configure through the
	// environment directly.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("contact search cache enabled")
	}

	m := metrics.New()

	apiClient, err := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamToken, upstream.WithLogger(log))
	if err != nil {
		return err
	}
	searcher := upstream.NewContactSearcher(apiClient, redisClient)

	detector, err := contact.NewDetector(searcher, contact.WithLogger(log), contact.WithMetrics(m))
	if err != nil {
		return err
	}
	registrationService, err := registration.New(
		upstream.NewRegistrationClient(apiClient),
		registration.WithLogger(log),
		registration.WithMetrics(m),
	)
	if err != nil {
		return err
	}
	sendWorkflow, err := sending.New(
		upstream.NewTransmissionClient(apiClient),
		sending.WithLogger(log),
		sending.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "fakturo", "fakturo-app")

	deps := httptransport.Deps{
		Logger:       log,
		Metrics:      m,
		JWTValidator: jwttoken.NewValidatorAdapter(jwtService),
		Features: []httptransport.FeatureHandler{
			invoiceHandler.New(log),
			contactHandler.New(detector, searcher, log, m),
			registrationHandler.New(registrationService, log, m),
			sendingHandler.New(sendWorkflow, log, m),
		},
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}
	router := httptransport.NewRouter(deps)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
