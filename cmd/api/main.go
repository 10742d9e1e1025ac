package main

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/algovyborg/lesson-payments/internal/entity"
	"github.com/algovyborg/lesson-payments/internal/infra/database"
	"github.com/algovyborg/lesson-payments/internal/infra/http/handlers"
	"github.com/algovyborg/lesson-payments/internal/infra/http/middleware"
	"github.com/algovyborg/lesson-payments/internal/infra/integration/amocrm"
	"github.com/algovyborg/lesson-payments/internal/infra/mail"
	"github.com/algovyborg/lesson-payments/internal/infra/poller"
	"github.com/algovyborg/lesson-payments/internal/infra/queue"
	"github.com/algovyborg/lesson-payments/internal/usecase"
)

func main() {
	godotenv.Load()

	// Missing CRM credentials or database are fatal configuration errors.
	crmToken := mustEnv("CRM_TOKEN")
	crmSubdomain := mustEnv("CRM_SUBDOMAIN")

	db, err := database.NewDBConnection(mustEnv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("❌ database: %v", err)
	}
	defer db.Close()

	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "user"),
		envOr("RABBITMQ_PASS", "password"),
		envOr("RABBITMQ_HOST", "localhost"),
		envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Fatalf("❌ rabbitmq: %v", err)
	}
	defer rabbitMQ.Conn.Close()
	defer rabbitMQ.Ch.Close()

	// 1. Repositories
	studentRepo := database.NewStudentRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	unprocessedRepo := database.NewUnprocessedPaymentRepository(db)

	// 2. Gateways and adapters
	crm := amocrm.NewClient(crmSubdomain, crmToken)
	producer := queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	smtpPort, _ := strconv.Atoi(envOr("SMTP_PORT", "587"))
	emailLogger := mail.NewEmailLogger(
		os.Getenv("SMTP_HOST"), smtpPort, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"),
	)

	// 3. UseCases
	catalog := entity.DefaultProductCatalog()
	resolver := usecase.NewResolveLeadProductsUseCase(crm)
	matcher := usecase.NewStudentMatcher(studentRepo)
	recorder := usecase.NewRecordPaymentUseCase(paymentRepo)
	processUC := usecase.NewProcessEventUseCase(crm, resolver, matcher, recorder, catalog, unprocessedRepo, emailLogger)

	// 4. Worker (consumes webhook leads)
	worker := queue.NewWorker(rabbitMQ.Ch, processUC)
	go worker.Start(queue.QueueName)

	// 5. Poller (cron-driven event feed reconciliation)
	sinceDefault, _ := strconv.ParseInt(envOr("POLLER_SINCE", "0"), 10, 64)
	state, err := poller.NewStateStorage(envOr("POLLER_STATE_FILE", "poller-state.json"), poller.State{
		LastProcessedCreatedAt: sinceDefault,
		CronExpression:         envOr("POLLER_CRON", "*/10 * * * *"),
	})
	if err != nil {
		log.Fatalf("❌ poller state: %v", err)
	}

	pollr := poller.New(state, crm, processUC, emailLogger)
	if envOr("POLLER_AUTOSTART", "true") == "true" {
		if err := pollr.Start(); err != nil {
			log.Fatalf("❌ poller: %v", err)
		}
	}

	// 6. Handlers
	webhookHandler := handlers.NewWebhookHandler(producer)
	pollerHandler := handlers.NewPollerHandler(pollr)
	unprocessedHandler := handlers.NewUnprocessedHandler(unprocessedRepo)
	healthHandler := handlers.NewHealthHandler(db, rabbitMQ.Conn)

	// 7. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	r.Post("/incoming-webhook", webhookHandler.Handle)

	r.Route("/poller", func(r chi.Router) {
		r.Post("/start", pollerHandler.HandleStart)
		r.Post("/stop", pollerHandler.HandleStop)
		r.Post("/trigger", pollerHandler.HandleTrigger)
		r.Get("/status", pollerHandler.HandleStatus)
	})

	r.Get("/payments/unprocessed", unprocessedHandler.HandleList)
	r.Post("/payments/unprocessed/{id}/resolve", unprocessedHandler.HandleResolve)

	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	port := ":" + envOr("PORT", "8080")
	log.Printf("🔥 lesson-payments listening on %s", port)
	http.ListenAndServe(port, r)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("❌ missing required env %s", key)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
