package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classpulse-backend/internal/config"
	"classpulse-backend/internal/database"
	"classpulse-backend/internal/handlers"
	"classpulse-backend/internal/middleware"
	"classpulse-backend/internal/monitor"
	"classpulse-backend/internal/repository"
	"classpulse-backend/internal/router"
	"classpulse-backend/internal/services"
	"classpulse-backend/internal/websocket"
	"classpulse-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting ClassPulse Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	classroomRepo := repository.NewClassroomRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	logRepo := repository.NewBehaviorLogRepo(pool)
	alertRepo := repository.NewAlertRepo(pool)

	// ──── Initialize Monitoring Core ────
	rules := monitor.NewRuleSet(
		monitor.SleepingRule{Threshold: cfg.SleepingAlertRatio, MinDetected: cfg.SleepingAlertMinSize},
		monitor.PhoneRule{Threshold: cfg.PhoneAlertRatio},
	)
	cooldown := monitor.NewCooldownTracker(alertRepo, cfg.AlertCooldown)
	events := services.NewRedisEventPublisher(redisClients.Queue)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClients.Queue, jwtAuth)
	sessionService := services.NewSessionService(sessionRepo)
	monitoringService := services.NewMonitoringService(
		sessionRepo, logRepo, alertRepo,
		rules, cooldown, events,
		cfg.RecentLogWindow,
	)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	classroomHandler := handlers.NewClassroomHandler(classroomRepo)
	sessionHandler := handlers.NewSessionHandler(sessionService, monitoringService)

	// ──── Step 5: Start Event Fan-Out Workers ────
	workerPool := worker.NewPool(redisClients.Queue, cfg.EventWorkers)
	workerPool.Start()
	log.Printf("✓ Event fan-out workers started (%d goroutines)", cfg.EventWorkers)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		classroomHandler,
		sessionHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ ClassPulse Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
