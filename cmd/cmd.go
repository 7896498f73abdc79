package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pulse-backend/internal/auth"
	"pulse-backend/internal/config"
	"pulse-backend/internal/handlers"
	"pulse-backend/internal/metrics"
	"pulse-backend/internal/middleware"
	"pulse-backend/internal/push"
	"pulse-backend/internal/repository"
	"pulse-backend/internal/services"
	"pulse-backend/internal/storage"
	"pulse-backend/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultConfigPath = "config.yaml"

// Run starts the API server and blocks until SIGINT or SIGTERM
func Run() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	configPath := os.Getenv("PULSE_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.Log)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Tracing)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}

	db, err := connectDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	if err := repository.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object store")
	}

	pusher, err := push.New(cfg.Push)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push client")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(reg); err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register HTTP metrics")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	contactRepo := repository.NewContactRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	safetyRepo := repository.NewSafetyRepository(db)

	// Services
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL)
	wsHub := services.NewWSHub(roomRepo)
	notifier := services.NewHubNotifier(wsHub, userRepo, pusher)

	photoService := services.NewPhotoService(
		photoRepo,
		safetyRepo,
		store,
		notifier,
		cfg.Moderation.MaxPhotosPerUser,
		cfg.Storage.ViewURLTTL,
	)
	userService := services.NewUserService(userRepo, contactRepo, photoService, jwtManager, cfg.Moderation)
	roomService := services.NewRoomService(roomRepo, notifier)
	teamService := services.NewTeamService(teamRepo)
	contactService := services.NewContactService(userRepo, contactRepo, notifier)
	safetyService := services.NewSafetyService(
		userRepo,
		photoRepo,
		contactRepo,
		safetyRepo,
		notifier,
		cfg.Moderation.AutoSuspendReports,
	)

	router := handlers.NewRouter(handlers.Deps{
		Users:    userService,
		Photos:   photoService,
		Rooms:    roomService,
		Teams:    teamService,
		Contacts: contactService,
		Safety:   safetyService,
		Hub:      wsHub,
		DB:       db,
		Logger:   log.Logger,
		Metrics:  promMiddleware,
		Gatherer: reg,
		Timeout:  cfg.Server.WriteTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      otelhttp.NewHandler(router, cfg.Tracing.ServiceName),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("storage", cfg.Storage.Driver).
			Bool("push", cfg.Push.Enabled).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// hijacked websocket connections are not closed by Shutdown
	wsHub.Close()

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush traces")
	}

	log.Info().Msg("Server exited")
}

// connectDB opens the pool and checks it is reachable
func connectDB(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// setupLogger configures zerolog logger
func setupLogger(cfg config.LogConfig) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	switch cfg.Level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
