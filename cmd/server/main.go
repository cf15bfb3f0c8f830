package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HammerMeetNail/watchtogether/internal/config"
	"github.com/HammerMeetNail/watchtogether/internal/database"
	"github.com/HammerMeetNail/watchtogether/internal/handlers"
	"github.com/HammerMeetNail/watchtogether/internal/logging"
	"github.com/HammerMeetNail/watchtogether/internal/middleware"
	"github.com/HammerMeetNail/watchtogether/internal/services"
	"github.com/HammerMeetNail/watchtogether/migrations"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", logging.Fields{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := logging.ParseLevel(cfg.Server.LogLevel)
	logger.SetLevel(level)
	logging.SetDefaultLevel(level)

	logger.Info("Starting watchtogether server...", logging.Fields{
		"env": cfg.Server.Environment,
	})

	ctx := context.Background()

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", logging.Fields{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(ctx, cfg.Database.DSN(), database.PoolOptions{})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	logger.Info("Running database migrations...")
	migrator, err := database.NewEmbeddedMigrator(cfg.Database.DSN(), migrations.FS)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	// Connect to Redis
	var (
		redisClient *redis.Client
		redisHealth handlers.HealthChecker
	)
	if cfg.Redis.Enabled {
		logger.Info("Connecting to Redis", logging.Fields{
			"addr": cfg.Redis.Addr(),
		})
		redisDB, err := database.NewRedisDB(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer func() { _ = redisDB.Close() }()
		redisClient = redisDB.Client
		redisHealth = redisDB
		logger.Info("Connected to Redis")
	} else {
		logger.Warn("Redis disabled; token cache and shared rate limiting are off")
	}

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)

	identityService := services.NewIdentityService(dbAdapter, cfg.Auth.BcryptCost)
	authService := services.NewAuthService(dbAdapter, redisClient)
	profileFetcher := services.NewSocialProfileFetcher(cfg.OAuth.GoogleClientID, cfg.OAuth.FacebookClientID)
	friendService := services.NewFriendService(dbAdapter)
	invitationService := services.NewInvitationService(dbAdapter)
	mediaService := services.NewMediaService(dbAdapter)
	socialService := services.NewSocialService(dbAdapter)
	platformService := services.NewPlatformService(dbAdapter)

	janitor := services.NewSessionJanitor(authService, cfg.Auth.SessionCleanup)
	if err := janitor.Start(); err != nil {
		return fmt.Errorf("starting session cleanup: %w", err)
	}
	defer janitor.Stop()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisHealth)
	authHandler := handlers.NewAuthHandler(identityService, authService, profileFetcher, cfg.Auth.TokenTTL)
	friendHandler := handlers.NewFriendHandler(friendService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)
	mediaHandler := handlers.NewMediaHandler(mediaService)
	socialHandler := handlers.NewSocialHandler(socialService)
	platformHandler := handlers.NewPlatformHandler(platformService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService, identityService)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	requestLogger := middleware.NewRequestLogger(logger)
	metrics := middleware.NewMetrics()
	clientIP, err := middleware.NewClientIPResolver(cfg.RateLimit.TrustedProxies)
	if err != nil {
		return fmt.Errorf("parsing trusted proxies: %w", err)
	}
	apiLimiter := middleware.NewRateLimiter(redisClient, cfg.RateLimit.APIRequests, cfg.RateLimit.APIWindow,
		"ratelimit:api:", clientIP.UserOrIPKey, true)
	authLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow,
		cfg.RateLimit.AuthBurst, 10*time.Minute, clientIP.ClientIP)

	public := func(h http.HandlerFunc) http.Handler {
		return apiLimiter.Middleware(h)
	}
	credentials := func(h http.HandlerFunc) http.Handler {
		return authLimiter.Middleware(apiLimiter.Middleware(h))
	}
	private := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.RequireAuth(apiLimiter.Middleware(h))
	}

	// Set up router
	mux := http.NewServeMux()

	// Health and metrics endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)
	mux.Handle("GET /metrics", metrics.Handler())

	// Auth endpoints
	mux.Handle("POST /api/auth/register", credentials(authHandler.Register))
	mux.Handle("POST /api/auth/login", credentials(authHandler.Login))
	mux.Handle("POST /api/auth/{provider}/token", credentials(authHandler.SocialToken))
	mux.Handle("GET /api/auth/providers", public(authHandler.Providers))
	mux.Handle("POST /api/auth/logout", private(authHandler.Logout))
	mux.Handle("POST /api/auth/logout-all", private(authHandler.LogoutAll))
	mux.Handle("POST /api/auth/refresh", private(authHandler.Refresh))
	mux.Handle("GET /api/auth/me", private(authHandler.Me))
	mux.Handle("POST /api/auth/{provider}/link", private(authHandler.LinkProvider))
	mux.Handle("DELETE /api/auth/social", private(authHandler.UnlinkProvider))

	// Media ledger
	mux.Handle("PUT /api/user/media", private(mediaHandler.Upsert))
	mux.Handle("GET /api/user/media/{status}", private(mediaHandler.ByStatus))
	mux.Handle("GET /api/user/media/{type}/{tmdbId}", private(mediaHandler.ByTmdbID))
	mux.Handle("GET /api/user/media-stats", private(mediaHandler.Stats))

	// Platforms
	mux.Handle("GET /api/platforms", public(platformHandler.List))
	mux.Handle("POST /api/user/platforms/{platformId}/subscribe", private(platformHandler.Subscribe))
	mux.Handle("DELETE /api/user/platforms/{platformId}/unsubscribe", private(platformHandler.Unsubscribe))
	mux.Handle("GET /api/user/platforms/subscribed", private(platformHandler.Subscribed))

	// Friendships
	mux.Handle("POST /api/user/friend-request", private(friendHandler.SendRequest))
	mux.Handle("PATCH /api/user/friend-request/{friendshipId}/respond", private(friendHandler.Respond))
	mux.Handle("GET /api/user/friend-requests", private(friendHandler.PendingRequests))
	mux.Handle("GET /api/user/friend-requests/sent", private(friendHandler.SentRequests))
	mux.Handle("POST /api/user/block", private(friendHandler.Block))

	// Watch invitations
	mux.Handle("POST /api/user/watch-invitation", private(invitationHandler.Send))
	mux.Handle("PATCH /api/user/watch-invitation/{invitationId}/respond", private(invitationHandler.Respond))
	mux.Handle("GET /api/user/watch-invitations/received", private(invitationHandler.Received))
	mux.Handle("GET /api/user/watch-invitations/received/{status}", private(invitationHandler.Received))
	mux.Handle("GET /api/user/watch-invitations/sent", private(invitationHandler.Sent))
	mux.Handle("GET /api/user/watch-invitations/sent/{status}", private(invitationHandler.Sent))

	// Social aggregations
	mux.Handle("GET /api/user/profile", private(socialHandler.Profile))
	mux.Handle("GET /api/user/friends", private(socialHandler.Friends))
	mux.Handle("GET /api/user/social", private(socialHandler.SharedActivity))
	mux.Handle("GET /api/user/friends/recommendations", private(socialHandler.Recommendations))
	mux.Handle("GET /api/user/friends/want-to-see", private(socialHandler.WantToSee))

	// Apply global middleware (order matters - outermost first)
	var handler http.Handler = mux
	handler = metrics.Apply(handler)
	handler = authMiddleware.Authenticate(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", logging.Fields{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", logging.Fields{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
