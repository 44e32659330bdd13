package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	certificateHandler "certserve/internal/certificate/handler"
	certificateService "certserve/internal/certificate/service"
	certificateStore "certserve/internal/certificate/store"
	"certserve/internal/events"
	"certserve/internal/platform/config"
	"certserve/internal/platform/httpserver"
	"certserve/internal/platform/kafka"
	"certserve/internal/platform/logger"
	"certserve/internal/platform/metrics"
	"certserve/internal/platform/middleware"
	"certserve/internal/platform/redis"
	"certserve/internal/render"
	templateHandler "certserve/internal/template/handler"
	templateService "certserve/internal/template/service"
	templateStore "certserve/internal/template/store"
	httptransport "certserve/internal/transport/http"
)

// main wires dependencies and runs the HTTP server next to the event consumer.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tplStore templateStore.Store = templateStore.NewInMemory()
	var certStore certificateStore.Store = certificateStore.NewInMemory()
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error("postgres connect failed", "error", err.Error())
			os.Exit(1)
		}
		defer pool.Close()
		tplStore = templateStore.NewPostgres(pool)
		certStore = certificateStore.NewPostgres(pool)
	} else {
		log.Warn("no postgres URL configured, using in-memory stores")
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err.Error())
		os.Exit(1)
	}
	var tplCache *templateStore.DefaultCache
	if redisClient != nil {
		defer redisClient.Close()
		tplCache = templateStore.NewDefaultCache(redisClient, log)
	}

	m := metrics.New()
	templates := templateService.New(tplStore, tplCache, cfg.FontDir, log)
	renderer := render.New(cfg.FontDir, log)

	kafkaCfg := kafka.Config{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		ClientID: cfg.KafkaClientID,
	}
	var notifier *events.Notifier
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(kafkaCfg)
		if err != nil {
			log.Error("kafka producer setup failed", "error", err.Error())
			os.Exit(1)
		}
		defer producer.Close()
		notifier = events.NewNotifier(producer, m, log)
	} else {
		log.Warn("no kafka brokers configured, event pipeline disabled")
	}

	// A nil *Notifier would hide behind the service's interface field, so only
	// pass it when notifications are actually wired.
	var notifierIface certificateService.Notifier
	var replayer certificateHandler.Replayer
	if notifier != nil {
		notifierIface = notifier
		replayer = notifier
	}
	certificates := certificateService.New(certStore, templates, renderer, notifierIface, m, log, cfg.UploadDir)

	jwtValidator := middleware.NewHS256Validator(cfg.JWTSigningKey)
	verboseErrs := cfg.Environment != "production"
	router := httptransport.NewRouter(log,
		templateHandler.New(templates, log, jwtValidator, verboseErrs),
		certificateHandler.New(certificates, replayer, log, jwtValidator, verboseErrs),
	)
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting certserve", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		consumer, err := kafka.NewConsumer(kafkaCfg,
			[]string{events.TopicCourseCompleted},
			events.NewCompletionHandler(certificates, m, log),
			log,
		)
		if err != nil {
			log.Error("kafka consumer setup failed", "error", err.Error())
			os.Exit(1)
		}
		defer consumer.Close()
		group.Go(func() error {
			log.Info("starting course-completed consumer", "group", cfg.KafkaGroupID)
			if err := consumer.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("shutdown with error", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
