package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"github.com/pliva-retreat/booking-api/internal/cache"
	"github.com/pliva-retreat/booking-api/internal/config"
	"github.com/pliva-retreat/booking-api/internal/database"
	"github.com/pliva-retreat/booking-api/internal/handler"
	"github.com/pliva-retreat/booking-api/internal/logger"
	"github.com/pliva-retreat/booking-api/internal/middleware"
	"github.com/pliva-retreat/booking-api/internal/queue"
	"github.com/pliva-retreat/booking-api/internal/repository"
	"github.com/pliva-retreat/booking-api/internal/reservation"
	"github.com/pliva-retreat/booking-api/internal/router"
	"github.com/pliva-retreat/booking-api/internal/service"
)

const shutdownTimeout = 10 * time.Second

// stores groups the persistence ports of one backend.
type stores struct {
	users     service.UserStore
	tokens    service.TokenStore
	offerings service.OfferingStore
	bookings  reservation.Store
	diag      handler.StoreDiagnostics
	close     func()
}

func main() {
	_ = godotenv.Load() // a missing .env is fine; real env vars still apply

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, flush := logger.New(config.LoadLogConfig())
	defer flush()
	defer logger.RedirectStdLog(zl)()

	if err := run(cfg, zl); err != nil {
		zl.Error("server stopped", zap.Error(err))
		flush()
		os.Exit(1)
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb == nil {
		zl.Warn("redis disabled or unreachable; caching off, rate limits per process")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	cacheCfg := config.LoadCacheConfig()
	catalog := service.NewCatalog(st.offerings, cache.New(rdb, cacheCfg.Prefix), cacheCfg.CatalogTTL, zl)
	if _, err := catalog.Bootstrap(ctx, service.DefaultOfferings()); err != nil {
		return err
	}

	var pub service.Publisher = service.NopPublisher{}
	if ev := config.LoadEventsConfig(); ev.Enabled {
		pub = service.NewAMQPPublisher(ev.URL, ev.Queue, zl)
		out := logger.NewRotatingFile(ev.LogFile, 10, 3, 30, false)
		defer func() { _ = out.Close() }()
		consumer := queue.NewConsumer(ev.URL, ev.Queue, out, zl)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("booking consumer stopped", zap.Error(err))
			}
		}()
	}

	engine := reservation.NewEngine(st.bookings, reservation.WithLogger(zl))
	auth := service.NewAuthService(st.users, st.tokens, service.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
		BcryptCost: cfg.BcryptCost,
	}, zl)
	bookings := service.NewBookings(engine, pub, zl)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(
		middleware.RequestID(),
		middleware.AccessLog(zl),
		middleware.Metrics(),
		echomw.Recover(),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: cfg.CORSOrigins,
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID},
		}),
		middleware.OptionalJWT(cfg.JWTSecret),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, zl),
	)

	bh := handler.NewBookingHandler(bookings, cfg.RequestTimeout, zl)
	router.RegisterRoutes(e, handler.NewHealthHandler(st.diag, rdb, cfg.RequestTimeout, zl))
	router.RegisterAuth(e, handler.NewAuthHandler(auth, cfg.RequestTimeout, zl), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewOfferingHandler(catalog, cfg.RequestTimeout, zl), bh,
		middleware.NewRedisCache(cacheCfg, rdb, zl))
	router.RegisterBookings(e, bh, cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// openStores selects the persistence backend.  MySQL is migrated on start.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		m := repository.NewMemoryStore()
		return stores{users: m, tokens: m, offerings: m, bookings: m, diag: m, close: func() {}}, nil
	}

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		return stores{}, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, err
	}
	return mysqlStores(db), nil
}

func mysqlStores(db *sql.DB) stores {
	return stores{
		users:     repository.NewUserRepo(db),
		tokens:    repository.NewTokenRepo(db),
		offerings: repository.NewOfferingRepo(db),
		bookings:  repository.NewBookingRepo(db),
		diag:      repository.NewDiagnosticsRepo(db),
		close:     func() { _ = db.Close() },
	}
}
