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

	"github.com/iliyamo/talent-marketplace/internal/config"
	"github.com/iliyamo/talent-marketplace/internal/database"
	"github.com/iliyamo/talent-marketplace/internal/handler"
	"github.com/iliyamo/talent-marketplace/internal/identity"
	"github.com/iliyamo/talent-marketplace/internal/logger"
	"github.com/iliyamo/talent-marketplace/internal/memstore"
	"github.com/iliyamo/talent-marketplace/internal/queue"
	"github.com/iliyamo/talent-marketplace/internal/repository"
	"github.com/iliyamo/talent-marketplace/internal/router"
	"github.com/iliyamo/talent-marketplace/internal/service"
)

// stores are the persistence dependencies of the handlers.
type stores struct {
	users    identity.UserStore
	tokens   identity.TokenStore
	profiles handler.ProfileReader
	bookings handler.BookingStore
	messages handler.MessageStore
	lookup   handler.UserLookup
	close    func()
}

func openStores(cfg config.Config) (stores, error) {
	log := logger.WithComponent("server")
	if cfg.StoreDriver == config.StoreMemory {
		mem := memstore.New()
		if path := os.Getenv("PROFILES_SEED_FILE"); path != "" {
			f, err := os.Open(path)
			if err != nil {
				return stores{}, err
			}
			n, err := mem.Profiles().LoadProfiles(f)
			_ = f.Close()
			if err != nil {
				return stores{}, err
			}
			log.WithField("profiles", n).Info("seeded in-memory profiles")
		}
		return stores{
			users:    mem.Users(),
			tokens:   mem.Tokens(),
			profiles: mem.Profiles(),
			bookings: mem.Bookings(),
			messages: mem.Messages(),
			lookup:   mem.Users(),
			close:    func() {},
		}, nil
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return stores{}, err
	}
	users := repository.NewUserRepo(db)
	return stores{
		users:    users,
		tokens:   repository.NewTokenRepo(db),
		profiles: repository.NewProfileRepo(db),
		bookings: repository.NewBookingRepo(db),
		messages: repository.NewMessageRepo(db),
		lookup:   users,
		close:    func() { _ = db.Close() },
	}, nil
}

// bookingEvents returns the booking.paid publisher, or nil when
// publishing is disabled.
func bookingEvents(qcfg config.QueueConfig) handler.BookingEvents {
	if !qcfg.Publish {
		return nil
	}
	return service.NewBookingPublisher(qcfg)
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel)
	log := logger.WithComponent("server")

	st, err := openStores(cfg)
	if err != nil {
		log.WithError(err).Fatal("open store failed")
	}
	defer st.close()

	issuer := identity.NewIssuer(identity.Settings{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	}, st.users, st.tokens)

	qcfg := config.LoadQueueConfig()
	rdb := config.NewRedisClient() // nil when Redis is unreachable; the limiter is then a no-op
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}
	limiter := echoLimiter(rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(issuer, cfg.JWTSecret), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewTalentHandler(st.profiles))
	router.RegisterMarketplace(e,
		handler.NewBookingHandler(st.profiles, st.bookings, bookingEvents(qcfg)),
		handler.NewMessageHandler(st.messages, st.lookup),
		cfg.JWTSecret, limiter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if qcfg.Consume {
		go func() {
			if err := queue.StartBookingConsumer(ctx, qcfg); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("booking consumer stopped")
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.WithField("env", cfg.Env).WithField("store", cfg.StoreDriver).Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
	log.Info("server stopped")
}
