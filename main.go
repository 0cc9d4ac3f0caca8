package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafedir/auth"
	"cafedir/config"
	"cafedir/controller"
	"cafedir/database"
	"cafedir/logger"
	"cafedir/route"
	"cafedir/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLog := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		appLog.Info().Msg("Running in debug mode")
	}

	db, err := database.Open(cfg.DatabaseURL, logger.Gorm(appLog, !cfg.Release()))
	if err != nil {
		appLog.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)
	appLog.Info().Msg("Database connected and migrated")

	var denylist utils.Denylist
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisList, err := utils.NewRedisDenylist(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			appLog.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisList.Close()
		denylist = redisList
		appLog.Info().Msg("Session denylist backed by Redis")
	}
	sessions := utils.NewManager(utils.ManagerConfig{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}, denylist)

	users := database.NewUserStore(db)
	accounts, err := auth.NewAuthenticator(users, auth.NewHasher(cfg.BcryptCost))
	if err != nil {
		appLog.Fatal().Err(err).Msg("Failed to set up password hashing")
	}

	ctl := controller.New(controller.Deps{
		Cafes:    database.NewCafeStore(db),
		Accounts: accounts,
		Sessions: sessions,
		Ping:     func(ctx context.Context) error { return database.Ping(ctx, db) },
		Logger:   appLog,
	})

	router, err := route.NewRouter(route.Options{
		Controller:     ctl,
		Sessions:       sessions,
		Users:          users,
		Logger:         appLog,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		appLog.Fatal().Err(err).Msg("Failed to set up routes")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		appLog.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	appLog.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
