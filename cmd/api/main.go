package main

import (
	"context"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gaadibazaar/gaadibazaar-api/internal/config"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/admin"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/auth"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/listing"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/payment"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/realtime"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/unlock"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/user"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/database"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/jwt"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/logger"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/razorpay"
	pkgresponse "github.com/gaadibazaar/gaadibazaar-api/internal/pkg/response"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("Failed to init logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting GaadiBazaar API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if cfg.AutoMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// Redis backs refresh rotation, webhook replay and socket fan-out.
	// Every one of them degrades to single-instance behaviour without it.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, continuing without it")
			redisClient = nil
		}
	}
	defer database.CloseRedis(redisClient)

	statements, err := storage.New(storage.Config{
		Driver:      cfg.StorageDriver,
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3Bucket:    cfg.S3Bucket,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		LocalDir:    cfg.LocalStorageDir,
		LocalURL:    cfg.LocalStorageURL,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to create statement storage")
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	txOpts := database.TxOptions{LockTimeout: cfg.LedgerLockWait}

	// ---------- WebSocket hub ----------
	hub := realtime.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db, txOpts)
	listingRepo := listing.NewRepository(db)
	unlockRepo := unlock.NewRepository(db, txOpts)
	paymentRepo := payment.NewRepository(db, txOpts)
	adminRepo := admin.NewRepository(db)

	// ---------- Services ----------
	walletService := wallet.NewService(walletRepo)
	walletService.SetNotifier(realtime.NewBalanceNotifier(hub))
	walletService.SetStatementStorage(statements)
	walletService.SetRetryPolicy(wallet.RetryPolicy{
		Attempts:        cfg.LedgerRetryMax,
		InitialInterval: cfg.LedgerRetryWait,
	})

	if !cfg.RazorpayConfigured() {
		log.Warn().Msg("Razorpay credentials missing, token purchases are disabled")
	}
	razorpayClient := razorpay.NewClient(razorpay.Config{
		BaseURL:   cfg.RazorpayBaseURL,
		KeyID:     cfg.RazorpayKeyID,
		KeySecret: cfg.RazorpayKeySecret,
		Timeout:   cfg.RazorpayTimeout,
	})

	listingService := listing.NewService(listingRepo)
	unlockService := unlock.NewService(unlockRepo, listingService, walletService)
	paymentService := payment.NewService(paymentRepo, razorpayClient, walletService, redisClient, payment.Config{
		UnitPrice:       cfg.TokenUnitPrice,
		Currency:        cfg.TokenCurrency,
		MaxTokens:       int64(cfg.MaxTokensPerOrder),
		KeySecret:       cfg.RazorpayKeySecret,
		WebhookSecret:   cfg.RazorpayWebhookSecret,
		ProviderTimeout: cfg.RazorpayTimeout,
		ReplayTTL:       cfg.WebhookReplayTTL,
	})
	authService := auth.NewService(userRepo, database.NewTransactor(db, txOpts), walletService, jwtService, redisClient, cfg.SignupBonusTokens)
	adminService := admin.NewService(adminRepo, walletService, userRepo)

	// ---------- Handlers ----------
	listingHandler := listing.NewHandler(listingService)
	listingHandler.SetUnlockChecker(unlockService)
	h := handlers{
		auth:     auth.NewHandler(authService),
		listing:  listingHandler,
		unlock:   unlock.NewHandler(unlockService),
		wallet:   wallet.NewHandler(walletService),
		payment:  payment.NewHandler(paymentService),
		admin:    admin.NewHandler(adminService, listingHandler),
		realtime: realtime.NewHandler(hub, cfg.AllowedOrigins),
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, jwtService, h),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

type handlers struct {
	auth     *auth.Handler
	listing  *listing.Handler
	unlock   *unlock.Handler
	wallet   *wallet.Handler
	payment  *payment.Handler
	admin    *admin.Handler
	realtime *realtime.Handler
}

func newRouter(cfg *config.Config, jwtService *jwt.Service, h handlers) chi.Router {
	authMiddleware := middleware.Auth(jwtService)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint. Browsers cannot set headers on the upgrade request.
	r.With(middleware.QueryToken, authMiddleware).Get("/ws", h.realtime.WebSocket)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	if cfg.IsDevelopment() {
		r.Handle("/debug/vars", expvar.Handler())
	}

	// Provider callbacks carry their own signature, not a bearer token.
	r.Post("/webhooks/razorpay", h.payment.Webhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", h.auth.Routes(authMiddleware))

		listingRouter := h.listing.Routes(authMiddleware, middleware.OptionalAuth(jwtService))
		listingRouter.With(authMiddleware).Post("/{id}/unlock", h.unlock.Unlock)
		r.Mount("/listings", listingRouter)

		r.With(authMiddleware).Get("/unlocks", h.unlock.List)
		r.Mount("/wallet", h.wallet.Routes(authMiddleware))
		r.Mount("/payments", h.payment.Routes(authMiddleware))
	})

	r.Mount("/api/admin", h.admin.Routes(authMiddleware))

	return r
}
