package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/99minutos/auth-service/internal/api"
	"github.com/99minutos/auth-service/internal/core/service"
	"github.com/99minutos/auth-service/internal/infrastructure/crypto"
	"github.com/99minutos/auth-service/internal/infrastructure/queue"
	"github.com/99minutos/auth-service/internal/infrastructure/token"
	"github.com/99minutos/auth-service/internal/pkg/config"
	"github.com/99minutos/auth-service/pkg/logger"
)

const defaultShutdownTimeout = 15 * time.Second

type serveConfig struct {
	shutdownTimeout time.Duration
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Connects to the configured store, ensures its indexes or schema,
starts the audit dispatcher and serves the HTTP API until interrupted.
Role seed data must already exist; see "authd seed".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.shutdownTimeout, "shutdown-timeout", defaultShutdownTimeout, "grace period for in-flight requests on shutdown")

	return cmd
}

func runServe(ctx context.Context, sc *serveConfig) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "auth-service",
		Version: version,
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
		return err
	}
	defer st.Close()

	if err := attachRoleCache(ctx, cfg, st, log); err != nil {
		log.Error().Err(err).Msg("failed to connect role cache")
		return err
	}

	issuer, err := token.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}

	// Audit workers outlive the HTTP server so in-flight events are flushed.
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, st.events, logger.Component("audit"))
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	svc := service.NewAuthService(
		st.users,
		st.roles,
		crypto.NewBcryptHasher(cfg.Bcrypt.Cost),
		issuer,
		dispatcher,
		logger.Component("auth"),
	)

	e := api.NewRouter(api.Dependencies{
		AuthService:   svc,
		TokenVerifier: issuer,
		Readiness:     st.probes,
		Logger:        logger.Component("http"),
	})

	e.Server.ReadHeaderTimeout = 5 * time.Second

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.StoreDriver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Error().Err(err).Msg("http server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}
