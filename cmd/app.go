package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/court-booking/internal/application/usecases"
	"github.com/example/court-booking/internal/config"
	"github.com/example/court-booking/internal/db"
	"github.com/example/court-booking/internal/domain/booking"
	"github.com/example/court-booking/internal/infrastructure/crypto"
	"github.com/example/court-booking/internal/infrastructure/memory"
	"github.com/example/court-booking/internal/infrastructure/mq"
	"github.com/example/court-booking/internal/infrastructure/postgres"
	"github.com/example/court-booking/internal/infrastructure/redis"
	"github.com/example/court-booking/internal/infrastructure/remote"
	"github.com/example/court-booking/internal/infrastructure/telegram"
	"github.com/example/court-booking/internal/logging"
	"github.com/example/court-booking/internal/migrate"
	"github.com/example/court-booking/internal/store"
)

// app is the wired object graph shared by the server and booking commands.
type app struct {
	cfg config.Config
	log zerolog.Logger

	svc      booking.StorageService
	bookings *postgres.BookingService // nil unless BOOKING_BACKEND=postgres
	store    *store.Store
	drafts   usecases.DraftStore
	guard    *usecases.Guard
	notify   usecases.Notifiers

	closers []func()
}

func newApp(ctx context.Context, migrateUp bool) (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:   cfg,
		log:   logging.New(cfg.LogLevel, cfg.LogPretty),
		guard: usecases.NewGuard(),
	}
	if err := a.wireService(ctx, migrateUp); err != nil {
		a.Close()
		return nil, err
	}

	var local store.LocalStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		local = redis.NewLocalStore(rdb, cfg.LocalKey)
		a.drafts = redis.NewDraftStore(rdb, cfg.DraftTTL)
	} else {
		a.log.Warn().Msg("REDIS_ADDR not set, local bookings and drafts are kept in memory")
		local = &store.MemoryLocal{}
		a.drafts = usecases.NewMemoryDrafts()
	}

	a.store = store.New(a.svc, local, a.log)
	if err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.store.Refresh(ctx); err != nil {
		// the scheduler retries; start with the local partition only
		a.log.Warn().Err(err).Msg("initial refresh failed")
	}

	a.wireNotifiers()
	return a, nil
}

func (a *app) wireService(ctx context.Context, migrateUp bool) error {
	switch a.cfg.Backend {
	case config.BackendPostgres:
		d, err := db.Open(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, d.Close)
		if err := d.Ping(ctx); err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		if migrateUp {
			if err := migrate.Up(ctx, d, a.log); err != nil {
				return err
			}
		}
		sealer, err := crypto.New(a.cfg.ReceiptEncKey)
		if err != nil {
			return err
		}
		a.bookings = &postgres.BookingService{
			DB:      d,
			Users:   postgres.NewUserRepo(d),
			Sealer:  sealer,
			BaseURL: a.cfg.BaseURL,
			Log:     a.log,
		}
		a.svc = a.bookings
	case config.BackendRemote:
		a.svc = remote.New(remote.Options{
			BaseURL: a.cfg.RemoteURL,
			APIKey:  a.cfg.RemoteAPIKey,
			Timeout: a.cfg.RemoteTimeout,
			Retries: a.cfg.RemoteRetries,
			Log:     a.log,
		})
	case config.BackendMemory:
		a.log.Warn().Msg("memory backend: dev accounts admin/password123 and user/user123 are enabled")
		a.svc = memory.NewSeeded()
	}
	return nil
}

func (a *app) wireNotifiers() {
	if a.cfg.TelegramToken != "" {
		tg, err := telegram.New(a.cfg.TelegramToken, a.cfg.TelegramChatID)
		if err != nil {
			a.log.Warn().Err(err).Msg("telegram notifier disabled")
		} else {
			a.notify = append(a.notify, tg)
		}
	}
	if a.cfg.RabbitURL != "" {
		pub, err := mq.NewPublisher(a.cfg.RabbitURL, a.cfg.BookingExchange)
		if err != nil {
			a.log.Warn().Err(err).Msg("booking events disabled")
		} else {
			a.notify = append(a.notify, pub)
			a.closers = append(a.closers, func() { _ = pub.Close() })
		}
	}
}

func (a *app) submit() usecases.SubmitBooking {
	return usecases.SubmitBooking{Service: a.svc, Store: a.store, Guard: a.guard, Notify: a.notify, Log: a.log}
}

func (a *app) adminBook() usecases.AdminBook {
	return usecases.AdminBook{Store: a.store, Guard: a.guard, Notify: a.notify, Log: a.log}
}

func (a *app) cancel() usecases.CancelBooking {
	return usecases.CancelBooking{Store: a.store, Guard: a.guard, Notify: a.notify, Log: a.log}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
