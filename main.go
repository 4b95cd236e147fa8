package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/auth"
	"messenger-service/internal/config"
	"messenger-service/internal/db"
	"messenger-service/internal/gateway"
	"messenger-service/internal/handlers"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/presence"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/repositories"
	"messenger-service/internal/telemetry"
)

func main() {
	cfg := config.Load()

	shutdownTracing, err := telemetry.SetupTracing(context.Background(), cfg.OTLPEndpoint, "messenger-service", cfg.Environment)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))

	audit := telemetry.NewAuditEmitter(publisher, "audit.messenger", "messenger-service", cfg.Environment)

	authority := auth.NewJWTAuthority(cfg.JWTSecret, cfg.JWTTTL)
	userRepo := repositories.NewUserRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	registry := presence.NewRegistry()
	gw := gateway.New(registry, userRepo, messageRepo, authority)

	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, audit)
	userHandler := handlers.NewUserHandler(userRepo)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("messenger-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(authority)

	router.GET("/messages/thread/me", authMiddleware, messageHandler.ListThreads)
	router.GET("/messages/thread/:user_id/me", authMiddleware, messageHandler.GetThreadMessages)
	router.POST("/messages/thread/mark-as-read", authMiddleware, messageHandler.MarkThreadRead)

	router.GET("/users/me", authMiddleware, userHandler.Me)
	router.GET("/users/me/contacts", authMiddleware, userHandler.Contacts)

	router.GET("/ws", gw.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterDebugRoutes(router, registry, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
