package main // Entry point package

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/siri-restaurant/internal/config"
	"github.com/iliyamo/siri-restaurant/internal/database"
	"github.com/iliyamo/siri-restaurant/internal/handler"
	"github.com/iliyamo/siri-restaurant/internal/logger"
	"github.com/iliyamo/siri-restaurant/internal/metrics"
	"github.com/iliyamo/siri-restaurant/internal/middleware"
	"github.com/iliyamo/siri-restaurant/internal/notify"
	"github.com/iliyamo/siri-restaurant/internal/queue"
	"github.com/iliyamo/siri-restaurant/internal/repository"
	"github.com/iliyamo/siri-restaurant/internal/router"
	"github.com/iliyamo/siri-restaurant/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server.fail", "err", err)
		os.Exit(1)
	}
}

// run is kept separate from main so defers execute before exit.
func run() error {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		log.Info("db.migrated")
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis.unavailable", "err", err)
	} else {
		defer func() { _ = rdb.Close() }()
	}
	cacheCfg := config.LoadCacheConfig()

	mailCfg := config.LoadMailConfig()
	dispatcher := notify.NewDispatcher(
		newTransport(mailCfg, log),
		notify.Address{Name: mailCfg.FromName, Email: mailCfg.FromAddress},
		mailCfg.Inbox,
		notify.Restaurant{
			Name:    mailCfg.RestaurantName,
			Address: mailCfg.RestaurantAddress,
			Phone:   mailCfg.RestaurantPhone,
			Email:   mailCfg.RestaurantEmail,
		},
	)
	log.Info("mail.transport", "transport", mailCfg.Transport)

	deps := service.ReservationDeps{
		Store:    repository.NewReservationRepo(db),
		Notifier: dispatcher,
		Metrics:  m,
		Logger:   log,
	}
	qCfg := config.LoadQueueConfig()
	if qCfg.Enabled {
		deps.Events = queue.NewPublisher(qCfg.URL, qCfg.Queue, log)
		consumer := queue.NewConsumer(qCfg.URL, qCfg.Queue, qCfg.LogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("queue.consumer.stopped", "err", err)
			}
		}()
	}
	reservations := service.NewReservationService(deps)

	sessions := repository.NewSessionRepo(db)
	auth := service.NewAuthService(service.AuthConfig{
		Secret:      cfg.SessionSecret,
		TTL:         time.Duration(cfg.SessionTTLHours) * time.Hour,
		BcryptCost:  cfg.BcryptCost,
		AllowSignup: cfg.AllowSignup,
	}, repository.NewUserRepo(db), sessions, log)
	if created, err := auth.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return err
	} else if created {
		log.Info("auth.admin.created", "email", cfg.AdminEmail)
	}
	go sweepSessions(ctx, sessions, log)

	cms := handler.NewCMSHandler(repository.NewDishRepo(db), repository.NewContentRepo(db), repository.NewPageContentRepo(db))
	cms.Log = log
	if rdb != nil {
		cms.Invalidate = func(ctx context.Context) error {
			return middleware.InvalidateCache(ctx, rdb, cacheCfg.Prefix)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		echomw.Recover(),
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: func() string { return ulid.Make().String() }}),
		middleware.RequestLog(log, m),
		echomw.BodyLimit("1M"),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
			AllowCredentials: false,
		}),
	)

	opts := router.Options{
		Auth:       auth,
		CookieName: cfg.SessionCookie,
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		Cache:      middleware.NewRedisCache(cacheCfg, rdb),
		Logger:     log,
	}
	router.RegisterRoutes(e, db, m.Handler())
	router.RegisterAuth(e, handler.NewAuthHandler(auth, cfg.SessionCookie, cfg.Env == "prod"), opts)
	router.RegisterReservations(e, handler.NewReservationHandler(reservations), opts)
	router.RegisterCMS(e, cms, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second, // status updates send mail inline
		IdleTimeout:       60 * time.Second,
	}
	log.Info("server.start", "addr", srv.Addr, "env", cfg.Env, "queue", qCfg.Enabled, "redis", rdb != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("server.stop", "reason", "signal")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server.stopped")
	return nil
}

// newTransport picks the mail transport named by MAIL_TRANSPORT.
func newTransport(c config.MailConfig, log *slog.Logger) notify.Transport {
	switch c.Transport {
	case "smtp":
		return notify.NewSMTPTransport(notify.SMTPConfig{
			Host: c.Host, Port: c.Port, Secure: c.Secure,
			User: c.User, Password: c.Password,
		})
	case "mailjet":
		return notify.NewMailjetTransport(c.MailjetAPIKey, c.MailjetSecretKey)
	default:
		return notify.NewLogTransport(log)
	}
}

// sweepSessions deletes expired session rows every hour until ctx ends.
func sweepSessions(ctx context.Context, s *repository.SessionRepo, log *slog.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		n, err := s.DeleteExpired(ctx, time.Now().UTC())
		if err != nil && ctx.Err() == nil {
			log.Warn("auth.session.sweep_failed", "err", err)
		} else if n > 0 {
			log.Info("auth.session.swept", "deleted", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
