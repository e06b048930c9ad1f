package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-ops/config"
	"github.com/jwalitptl/clinic-ops/internal/email"
	"github.com/jwalitptl/clinic-ops/internal/handler"
	appointmentHandler "github.com/jwalitptl/clinic-ops/internal/handler/appointment"
	authHandler "github.com/jwalitptl/clinic-ops/internal/handler/auth"
	dashboardHandler "github.com/jwalitptl/clinic-ops/internal/handler/dashboard"
	doctorHandler "github.com/jwalitptl/clinic-ops/internal/handler/doctor"
	labtestHandler "github.com/jwalitptl/clinic-ops/internal/handler/labtest"
	prescriptionHandler "github.com/jwalitptl/clinic-ops/internal/handler/prescription"
	tokenHandler "github.com/jwalitptl/clinic-ops/internal/handler/token"
	userHandler "github.com/jwalitptl/clinic-ops/internal/handler/user"
	"github.com/jwalitptl/clinic-ops/internal/middleware"
	"github.com/jwalitptl/clinic-ops/internal/repository/memory"
	"github.com/jwalitptl/clinic-ops/internal/router"
	"github.com/jwalitptl/clinic-ops/internal/service/access"
	appointmentService "github.com/jwalitptl/clinic-ops/internal/service/appointment"
	dashboardService "github.com/jwalitptl/clinic-ops/internal/service/dashboard"
	doctorService "github.com/jwalitptl/clinic-ops/internal/service/doctor"
	labtestService "github.com/jwalitptl/clinic-ops/internal/service/labtest"
	"github.com/jwalitptl/clinic-ops/internal/service/notification"
	prescriptionService "github.com/jwalitptl/clinic-ops/internal/service/prescription"
	tokenService "github.com/jwalitptl/clinic-ops/internal/service/token"
	userService "github.com/jwalitptl/clinic-ops/internal/service/user"
	"github.com/jwalitptl/clinic-ops/internal/service/workflow"
	"github.com/jwalitptl/clinic-ops/pkg/auth"
	"github.com/jwalitptl/clinic-ops/pkg/event"
	"github.com/jwalitptl/clinic-ops/pkg/logger"
	"github.com/jwalitptl/clinic-ops/pkg/messaging"
	"github.com/jwalitptl/clinic-ops/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-ops/pkg/metrics"
	"github.com/jwalitptl/clinic-ops/pkg/security"
)

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configFile)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	logger.Setup(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(cfg.Monitoring.Namespace, reg)

	// Storage
	store := memory.New(memory.WithMetrics(m))
	filter := access.NewFilter(store, cfg.Cache.ToAccessConfig())

	// Events
	broker, err := newBroker(ctx, cfg)
	if err != nil {
		return err
	}
	defer broker.Close()
	events := event.NewPublisher(broker, m)

	policy, err := workflow.ParsePolicy(cfg.Workflow.TransitionPolicy)
	if err != nil {
		return err
	}

	// Services
	userSvc := userService.NewService(store, security.NewBcryptHasher(cfg.Security.BcryptCost))
	doctorSvc := doctorService.NewService(store, filter)
	appointmentSvc := appointmentService.NewService(store, filter, policy, events)
	prescriptionSvc := prescriptionService.NewService(store, filter)
	labtestSvc := labtestService.NewService(store, filter, policy, events, m)
	tokenSvc := tokenService.NewService(store, events, m)
	dashboardSvc := dashboardService.NewService(store)

	if cfg.Seed.Enabled {
		if _, err := userSvc.Seed(ctx, cfg.Seed.Password); err != nil {
			return err
		}
	}

	// Notifications
	var mailer email.Service
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPService(cfg.SMTP.ToEmailConfig())
	} else {
		mailer = email.NewLogService(log.Logger)
	}
	listener := notification.NewListener(broker, userSvc, mailer)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("notification listener stopped")
		}
	}()

	// HTTP
	if err := middleware.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL())

	routerCfg := router.RouterConfig{
		Mode:           cfg.Server.Mode,
		AllowedOrigins: cfg.Security.AllowedOrigins,
	}
	if cfg.RateLimit.Enabled {
		routerCfg.RateLimit = &middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
	}
	if cfg.Monitoring.PrometheusEnabled {
		routerCfg.MetricsPath = cfg.Monitoring.MetricsPath
	}

	var deps []handler.Dependency
	if p, ok := broker.(messaging.Pinger); ok {
		deps = append(deps, handler.Dependency{Name: "broker", Check: p})
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		handler.NewHandler(reg, deps...),
		m,
		routerCfg,
		authHandler.NewHandler(userSvc, jwtSvc, cfg.TokenTTL()),
		userHandler.NewHandler(userSvc),
		doctorHandler.NewHandler(doctorSvc),
		appointmentHandler.NewHandler(appointmentSvc),
		prescriptionHandler.NewHandler(prescriptionSvc, doctorSvc),
		labtestHandler.NewHandler(labtestSvc, doctorSvc),
		tokenHandler.NewHandler(tokenSvc),
		dashboardHandler.NewHandler(dashboardSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("transition_policy", policy.Name()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	wg.Wait()

	log.Info().Msg("server exited properly")
	return nil
}

// newBroker connects to Redis when a URL is configured and falls back to the
// in-process broker otherwise.
func newBroker(ctx context.Context, cfg *config.Config) (messaging.Broker, error) {
	if cfg.Redis.URL == "" {
		log.Info().Msg("redis url not set, using in-process broker")
		return messaging.NewMemoryBroker(), nil
	}
	broker, err := redis.NewRedisBroker(ctx, cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return broker, nil
}
