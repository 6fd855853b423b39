package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-seat-booking/internal/booking"
	"github.com/iliyamo/cinema-seat-booking/internal/catalog"
	"github.com/iliyamo/cinema-seat-booking/internal/config"
	"github.com/iliyamo/cinema-seat-booking/internal/database"
	"github.com/iliyamo/cinema-seat-booking/internal/handler"
	"github.com/iliyamo/cinema-seat-booking/internal/logging"
	"github.com/iliyamo/cinema-seat-booking/internal/middleware"
	"github.com/iliyamo/cinema-seat-booking/internal/queue"
	"github.com/iliyamo/cinema-seat-booking/internal/repository"
	"github.com/iliyamo/cinema-seat-booking/internal/router"
	"github.com/iliyamo/cinema-seat-booking/internal/service"
	"github.com/iliyamo/cinema-seat-booking/internal/ui"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional unless it is the storage backend
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logrus.WithField("addr", cfg.Redis.Addr).Warn("redis unavailable; cache and rate limit disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	kv, closeKV, err := openKV(ctx, cfg, rdb)
	if err != nil {
		logrus.WithError(err).WithField("backend", cfg.StorageBackend).Fatal("storage init failed")
	}
	defer closeKV()

	cat := catalog.New(catalog.NewSource(cfg.ShowsSource, cfg.FetchTimeout), cfg.MaxShows)

	opts := []booking.Option{booking.WithKeys(booking.Keys{Occupied: cfg.OccupiedKey, Bookings: cfg.BookingsKey})}
	if cfg.QueueEnabled {
		opts = append(opts, booking.WithNotifier(service.NewPublisher(cfg.RabbitURL)))
	}
	store := booking.NewStore(kv, opts...)
	store.Load(ctx)

	sessions := ui.NewSessions(cat, store, cfg.SessionIdleTTL)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger())

	router.RegisterRoutes(e)
	router.RegisterShows(e, handler.NewShowHandler(cat, store), cfg.Cache, rdb)
	router.RegisterBookings(e, handler.NewBookingHandler(cat, store), cfg.RateLimit, rdb)
	router.RegisterSessions(e, handler.NewSessionHandler(sessions), cfg.RateLimit, rdb)

	// after RegisterShows so the refresh hook also drops listings cached by
	// a previous process
	if err := cat.Refresh(ctx); err != nil {
		logrus.WithError(err).WithField("source", cfg.ShowsSource).Warn("initial show load failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "backend": cfg.StorageBackend}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})
	if cfg.QueueEnabled {
		g.Go(func() error {
			return queue.StartBookingConsumer(gctx, cfg.RabbitURL, cfg.BookingLogDir)
		})
	}

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
	logrus.Info("server stopped")
}

// openKV builds the storage backend named by cfg.StorageBackend.  The
// returned func releases it.
func openKV(ctx context.Context, cfg config.Config, rdb *redis.Client) (repository.KV, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendRedis:
		if rdb == nil {
			return nil, nil, repository.ErrUnavailable
		}
		return repository.NewRedisKV(rdb, cfg.StorageKeyPrefix), func() {}, nil
	case config.BackendMySQL:
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, err
		}
		kv := repository.NewMySQLKV(db)
		if err := kv.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return kv, func() { _ = db.Close() }, nil
	default:
		return repository.NewMemoryKV(), func() {}, nil
	}
}
