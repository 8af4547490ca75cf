package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4" // Echo web framework
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-engine/internal/config" // Internal config loader
	"github.com/iliyamo/cinema-booking-engine/internal/database"
	"github.com/iliyamo/cinema-booking-engine/internal/handler"
	"github.com/iliyamo/cinema-booking-engine/internal/logger"
	"github.com/iliyamo/cinema-booking-engine/internal/middleware"
	"github.com/iliyamo/cinema-booking-engine/internal/notify"
	"github.com/iliyamo/cinema-booking-engine/internal/queue"
	"github.com/iliyamo/cinema-booking-engine/internal/repository"
	"github.com/iliyamo/cinema-booking-engine/internal/router" // Internal router setup
	"github.com/iliyamo/cinema-booking-engine/internal/service"
	"github.com/iliyamo/cinema-booking-engine/internal/worker"
)

func main() {
	_ = godotenv.Load() // .env is optional; real environment wins

	cfg, cfgErr := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()
	if cfgErr != nil {
		log.Fatal("invalid configuration", zap.Error(cfgErr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Storage ----
	var (
		store *repository.Store
		db    *sql.DB
	)
	switch cfg.Storage {
	case config.StorageMemory:
		store = repository.NewMemoryStore().Store()
		log.Warn("using in-memory storage; data is lost on restart")
	default:
		db, err = database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			log.Fatal("database connect failed", zap.Error(err))
		}
		defer db.Close()
		if cfg.Migrate {
			if err := database.Migrate(ctx, db); err != nil {
				log.Fatal("database migrate failed", zap.Error(err))
			}
		}
		store = repository.NewMySQLStore(db)
	}

	// ---- Redis (optional) ----
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis unavailable; rate limiting and plan cache disabled", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	// ---- Notifications ----
	notifier, consumer := buildNotifier(cfg, log)
	if consumer != nil {
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	}

	// ---- Services ----
	decider, err := service.NewDecider(cfg.PaymentForcedOutcome)
	if err != nil {
		log.Fatal("invalid PAYMENT_FORCED_OUTCOME", zap.Error(err))
	}
	opts := []service.Option{service.WithLogger(log)}
	tickets := service.NewTicketService(store, opts...)
	scheduler := service.NewSchedulerService(store, tickets, opts...)
	plans := service.NewSeatPlanService(store, opts...)
	catalog := service.NewCatalogService(store, opts...)
	purchases := service.NewPurchaseService(store, opts...)
	settlement := service.NewSettlementService(store, decider, notifier, opts...)

	// ---- Sweeper ----
	sweepCfg := config.LoadSweeperConfig()
	sweeper := worker.NewSweeper(tickets, worker.SweeperConfig{Interval: sweepCfg.Interval}, log.Named("sweeper"))
	if sweepCfg.Enabled {
		if err := sweeper.Start(ctx); err != nil {
			log.Fatal("sweeper start failed", zap.Error(err))
		}
	}

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log.Named("http")))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	planCache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)
	var pinger handler.Pinger
	if db != nil {
		pinger = db
	}
	router.RegisterRoutes(e, pinger)
	router.RegisterPublic(e, handler.NewPublicHandler(plans, scheduler, tickets, log), planCache.Middleware())
	router.RegisterAdmin(e, handler.NewAdminHandler(catalog, plans, scheduler, planCache, log), cfg.JWTSecret)
	router.RegisterCustomer(e, handler.NewCustomerHandler(tickets, purchases, settlement, log), cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("storage", cfg.Storage))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	sweeper.Stop()
	settlement.Wait()
}

// buildNotifier selects the notification backend.  In amqp mode the
// process also runs the consumer that delivers queued messages by SMTP.
func buildNotifier(cfg config.Config, log *zap.Logger) (service.Notifier, *queue.Consumer) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		mailer, err := notify.NewMailer(config.LoadSMTPConfig())
		if err != nil {
			log.Fatal("smtp init failed", zap.Error(err))
		}
		return mailer, nil
	case config.NotifierAMQP:
		amqpCfg := config.LoadAMQPConfig()
		pub := notify.NewPublisher(amqpCfg.URL, amqpCfg.Queue, log.Named("publisher"))
		if !amqpCfg.StartConsumer {
			return pub, nil
		}
		mailer, err := notify.NewMailer(config.LoadSMTPConfig())
		if err != nil {
			log.Fatal("smtp init failed", zap.Error(err))
		}
		return pub, &queue.Consumer{URL: amqpCfg.URL, Queue: amqpCfg.Queue, Sender: mailer, Log: log.Named("consumer")}
	default:
		return notify.LogNotifier{Log: log.Named("notify")}, nil
	}
}
