package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"noteshelf/config"
	"noteshelf/export"
	"noteshelf/handler"
	"noteshelf/middleware"
	"noteshelf/repository"
	"noteshelf/services"
	"noteshelf/storage"
	"noteshelf/usecase"
	"noteshelf/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type App struct {
	cfg    *config.Config
	logger *zap.Logger

	users repository.UserRepository
	notes repository.NoteRepository
	blobs storage.BlobStore

	tokens    *services.TokenService
	blacklist services.TokenBlacklist

	auth     *usecase.AuthService
	profiles *usecase.ProfileService
	notesSvc *usecase.NotesService

	limiter *middleware.IPRateLimiter
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{cfg: cfg, logger: logger}

	if err := app.openStores(ctx); err != nil {
		app.Close()
		return nil, err
	}

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("blob storage: %w", err)
	}
	app.blobs = blobs

	mailer, err := services.NewMailer(cfg.Mail, logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("mailer: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set; authenticated routes will answer 500")
	}
	app.tokens = services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)

	app.auth = usecase.NewAuthService(app.users, app.tokens, mailer, usecase.AuthSettings{
		OTPTTL:     cfg.Auth.OTPTTL,
		ResetTTL:   cfg.Auth.ResetTTL,
		AppBaseURL: cfg.AppBaseURL,
	}, logger)
	app.profiles = usecase.NewProfileService(app.users, app.notes, app.blobs, logger)
	app.notesSvc = usecase.NewNotesService(app.notes, app.blobs, logger)

	app.connectRedis(ctx)

	if cfg.RateLimit > 0 {
		app.limiter = middleware.NewIPRateLimiter(cfg.RateLimit, logger)
	}
	return app, nil
}

func (a *App) openStores(ctx context.Context) error {
	if a.cfg.Database.Driver == config.DriverMongo {
		client, err := utils.ConnectMongo(ctx, a.cfg.Database)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })

		db := client.Database(a.cfg.Database.MongoDatabase)
		if err := repository.SetupIndexes(ctx, db); err != nil {
			return err
		}
		a.users = repository.NewMongoUserRepo(db)
		a.notes = repository.NewMongoNotesRepo(db)
		return nil
	}

	db, err := repository.OpenGorm(ctx, a.cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}
	a.users = repository.NewUserRepo(db)
	a.notes = repository.NewNotesRepo(db)
	return nil
}

// connectRedis enables token revocation and OTP attempt limits. A Redis
// outage at startup leaves both disabled.
func (a *App) connectRedis(ctx context.Context) {
	if a.cfg.Redis.URL == "" {
		return
	}
	client, err := services.NewRedisClient(ctx, a.cfg.Redis.URL)
	if err != nil {
		a.logger.Warn("redis unavailable; logout revocation and OTP limits disabled", zap.Error(err))
		return
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	a.blacklist = services.NewRedisTokenBlacklist(client)
	a.auth.Blacklist = a.blacklist
	a.auth.Limiter = services.NewRedisAttemptLimiter(client, "otp", a.cfg.Auth.OTPMaxAttempts, a.cfg.Auth.OTPTTL)
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) Run(ctx context.Context) error {
	gin.SetMode(a.cfg.GinMode)
	utils.InitValidator()
	utils.RegisterSystemMetrics()

	if a.limiter != nil {
		go a.limiter.CleanupVisitors(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           setupRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.logger.Info("server shutdown complete")
	return nil
}

func setupRouter(a *App) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	// X-Forwarded-For is only honoured from configured proxies
	if err := router.SetTrustedProxies(a.cfg.TrustedProxies); err != nil {
		a.logger.Warn("invalid TRUSTED_PROXIES, forwarded headers ignored", zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}

	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.RecoveryMiddleware(a.logger))
	router.Use(middleware.RequestLogger(a.logger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(a.cfg.CORSOrigins))

	health := handler.NewHealthHandler(a.users, a.logger)
	router.GET("/healthz", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/uploads/:name", middleware.CacheControl("public, max-age=31536000, immutable"), func(c *gin.Context) {
		handler.ServeUploadHandler(c, a.blobs)
	})

	requireAuth := middleware.AuthMiddleware(a.tokens, a.blacklist)
	limitUpload := middleware.RequestSizeLimiter(a.cfg.MaxUploadBytes)

	api := router.Group("/api")

	auth := api.Group("/auth")
	auth.Use(middleware.CacheControl("no-store"))
	{
		public := auth.Group("")
		if a.limiter != nil {
			public.Use(a.limiter.Handler())
		}
		public.POST("/register", func(c *gin.Context) {
			handler.RegisterHandler(c, a.auth)
		})
		public.POST("/login", func(c *gin.Context) {
			handler.LoginHandler(c, a.auth)
		})
		public.POST("/verify-otp", func(c *gin.Context) {
			handler.VerifyOTPHandler(c, a.auth)
		})
		public.POST("/forgot-password", func(c *gin.Context) {
			handler.ForgotPasswordHandler(c, a.auth)
		})
		public.POST("/reset-password/:token", func(c *gin.Context) {
			handler.ResetPasswordHandler(c, a.auth)
		})

		protected := auth.Group("", requireAuth)
		protected.GET("/profile", func(c *gin.Context) {
			handler.GetProfileHandler(c, a.auth)
		})
		protected.PUT("/toggle-2fa", func(c *gin.Context) {
			handler.Toggle2FAHandler(c, a.auth)
		})
		protected.PUT("/update-profile", limitUpload, func(c *gin.Context) {
			handler.UpdateProfileHandler(c, a.profiles)
		})
		protected.DELETE("/delete-account", func(c *gin.Context) {
			handler.DeleteAccountHandler(c, a.profiles)
		})
		protected.POST("/logout", func(c *gin.Context) {
			handler.LogoutHandler(c, a.auth)
		})
	}

	notes := api.Group("/notes")
	{
		// public share links
		notes.GET("/share/public/:id", func(c *gin.Context) {
			handler.GetPublicNoteHandler(c, a.notesSvc)
		})
		notes.GET("/download-pdf-public/:id", func(c *gin.Context) {
			handler.DownloadPublicNoteHandler(c, a.notesSvc, export.FormatPDF)
		})

		owned := notes.Group("", requireAuth)
		owned.POST("", limitUpload, func(c *gin.Context) {
			handler.CreateNoteHandler(c, a.notesSvc)
		})
		owned.GET("", func(c *gin.Context) {
			handler.GetNotesHandler(c, a.notesSvc)
		})
		owned.GET("/stats", func(c *gin.Context) {
			handler.GetNoteStatsHandler(c, a.notesSvc)
		})
		owned.PUT("/:id", limitUpload, func(c *gin.Context) {
			handler.UpdateNoteHandler(c, a.notesSvc)
		})
		owned.DELETE("/:id", func(c *gin.Context) {
			handler.DeleteNoteHandler(c, a.notesSvc)
		})
		owned.GET("/download-pdf/:id", func(c *gin.Context) {
			handler.DownloadNoteHandler(c, a.notesSvc, export.FormatPDF)
		})
		owned.GET("/download-txt/:id", func(c *gin.Context) {
			handler.DownloadNoteHandler(c, a.notesSvc, export.FormatText)
		})
		owned.GET("/download-word/:id", func(c *gin.Context) {
			handler.DownloadNoteHandler(c, a.notesSvc, export.FormatDOCX)
		})
	}

	return router
}
