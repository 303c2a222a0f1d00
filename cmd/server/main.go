package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/recon2root/eventsite/internal/config"
	"github.com/recon2root/eventsite/internal/database"
	"github.com/recon2root/eventsite/internal/handler"
	"github.com/recon2root/eventsite/internal/jobs"
	"github.com/recon2root/eventsite/internal/middleware"
	"github.com/recon2root/eventsite/internal/redis"
	"github.com/recon2root/eventsite/internal/repository"
	"github.com/recon2root/eventsite/internal/service"
	"github.com/recon2root/eventsite/internal/storage"
)

const (
	certificateDir = "certificates"
	photoDir       = "photos"
	videoDir       = "videos"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	setLogLevel(cfg.LogLevel)

	if err := cfg.Validate(cfg.IsProduction()); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	log.Info().Str("driver", db.DriverName()).Msg("database connected")

	certStore := mustStore(cfg.UploadDir, certificateDir)
	photoStore := mustStore(cfg.UploadDir, photoDir)
	videoStore := mustStore(cfg.UploadDir, videoDir)

	var (
		apiLimiter    middleware.Limiter
		loginFailures middleware.FailureStore
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")

		shared := service.NewRateLimiter(redisClient.Client)
		apiLimiter = shared
		loginFailures = shared
	} else {
		apiLimiter = middleware.NewMemoryRateLimiter()
		loginFailures = middleware.NewMemoryFailureStore()
	}

	adminRepo := repository.NewAdminRepository(db.DB)
	certRepo := repository.NewCertificateRepository(db.DB)
	winnerRepo := repository.NewWinnerRepository(db.DB)
	contentRepo := repository.NewContentRepository(db.DB)
	photoRepo := repository.NewPhotoRepository(db.DB)
	videoRepo := repository.NewVideoRepository(db.DB)
	organizerRepo := repository.NewOrganizerRepository(db.DB)

	authService := service.NewAuthService(adminRepo, cfg.SessionSecret, cfg.SessionTTL, config.PasswordHashCost)
	certService := service.NewCertificateService(db, certRepo, certStore)
	winnerService := service.NewWinnerService(db, winnerRepo)
	contentService := service.NewContentService(db, contentRepo)
	photoService := service.NewPhotoService(db, photoRepo, photoStore)
	videoService := service.NewVideoService(videoRepo, videoStore)
	organizerService := service.NewOrganizerService(db, organizerRepo, photoStore)

	isProduction := cfg.IsProduction()
	sessionMiddleware := middleware.NewAdminSessionMiddleware(authService)
	loginLimiter := middleware.NewLoginRateLimiter(loginFailures, cfg.LoginMaxFailures, cfg.LoginWindow)
	apiRateLimit := middleware.NewIPRateLimitMiddleware(apiLimiter, cfg.APIRatePerMinute, time.Minute, "api")
	jsonBodyLimit := middleware.NewBodyLimitMiddleware(config.DefaultJSONBodySize)
	securityHeaders := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(authService, loginLimiter.Handler, isProduction)
	certHandler := handler.NewCertificateHandler(
		certService, certStore, sessionMiddleware.Handler,
		cfg.CertMaxFiles, cfg.CertMaxFileSize, cfg.CertificateBodyLimit(),
	)
	winnerHandler := handler.NewWinnerHandler(winnerService, sessionMiddleware.Handler)
	contentHandler := handler.NewContentHandler(contentService, sessionMiddleware.Handler)
	photoHandler := handler.NewPhotoHandler(
		photoService, photoStore, sessionMiddleware.Handler,
		cfg.PhotoMaxFiles, cfg.PhotoMaxFileSize, cfg.PhotoBodyLimit(),
	)
	videoHandler := handler.NewVideoHandler(
		videoService, videoStore, sessionMiddleware.Handler,
		cfg.VideoMaxFileSize, cfg.VideoBodyLimit(),
	)
	organizerHandler := handler.NewOrganizerHandler(
		organizerService, photoStore, sessionMiddleware.Handler,
		cfg.PhotoMaxFileSize, cfg.PhotoMaxFileSize+config.ManifestMaxSize,
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.TrustedProxy)
	}
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(securityHeaders.Handler)

	r.Get("/health", handler.NewHealthHandler(db).ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiRateLimit.Handler)

		r.Mount("/certificates", certHandler.Routes())
		r.Mount("/photos", photoHandler.Routes())
		r.Mount("/videos", videoHandler.Routes())
		r.Mount("/organizers", organizerHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(jsonBodyLimit.Handler)
			r.Mount("/auth", authHandler.Routes())
			r.Mount("/winners", winnerHandler.Routes())
			r.Mount("/content", contentHandler.Routes())
		})

		r.NotFound(handler.APINotFound)
	})

	r.Handle("/uploads/*", http.StripPrefix("/uploads", handler.UploadsHandler(cfg.UploadDir)))
	r.NotFound(handler.NewSPAHandler(cfg.PublicDir).ServeHTTP)

	sweepJob := jobs.NewOrphanSweepJob(config.OrphanSweepInterval, config.OrphanGracePeriod,
		jobs.SweepTarget{Name: certificateDir, Files: certStore, Ledgers: []jobs.FilenameLister{certRepo}},
		jobs.SweepTarget{Name: photoDir, Files: photoStore, Ledgers: []jobs.FilenameLister{photoRepo, organizerRepo}},
		jobs.SweepTarget{Name: videoDir, Files: videoStore, Ledgers: []jobs.FilenameLister{videoRepo}},
	)
	sweepJob.Start()
	defer sweepJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.AppEnv).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func mustStore(uploadDir, sub string) *storage.LocalStore {
	store, err := storage.NewLocalStore(filepath.Join(uploadDir, sub))
	if err != nil {
		log.Fatal().Err(err).Str("dir", sub).Msg("failed to prepare upload directory")
	}
	return store
}

func setLogLevel(level string) {
	switch level {
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
