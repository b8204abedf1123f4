package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-registration/internal/config"
	"github.com/iliyamo/event-registration/internal/database"
	"github.com/iliyamo/event-registration/internal/handler"
	appmw "github.com/iliyamo/event-registration/internal/middleware"
	"github.com/iliyamo/event-registration/internal/notify"
	"github.com/iliyamo/event-registration/internal/queue"
	"github.com/iliyamo/event-registration/internal/repository"
	"github.com/iliyamo/event-registration/internal/router"
	"github.com/iliyamo/event-registration/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("database: %v", err)
	}

	// Repositories and the transactional admission store.
	eventRepo := repository.NewEventRepo(db)
	regRepo := repository.NewRegistrationRepo(db)
	outboxRepo := repository.NewOutboxRepo(db)
	store := repository.NewAdmissionStore(db, eventRepo, regRepo, outboxRepo)

	admission := service.NewAdmissionService(store)

	// Ticket delivery pipeline: outbox -> broker -> SMTP.
	publisher := queue.NewPublisher(cfg.BrokerURL)
	dispatcher := service.NewDispatcher(outboxRepo, publisher, cfg.OutboxInterval)
	go dispatcher.Run(context.Background())

	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	go func() {
		if err := queue.StartTicketConsumer(cfg.BrokerURL, mailer); err != nil {
			log.Printf("ticket-consumer: %v", err)
		}
	}()

	// Redis-backed middleware; both degrade to passthroughs when Redis
	// is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}
	cache := appmw.NewResponseCache(config.LoadCacheConfig(), rdb)
	limiter := appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterEvents(e, handler.NewEventHandler(eventRepo), cache)
	router.RegisterRegistrations(e, handler.NewRegistrationHandler(admission, eventRepo, regRepo, outboxRepo), limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
