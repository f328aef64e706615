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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/collabboard/board-api/internal/config"
	"github.com/collabboard/board-api/internal/handler"
	"github.com/collabboard/board-api/internal/middleware"
	"github.com/collabboard/board-api/internal/realtime"
	"github.com/collabboard/board-api/internal/repo"
	"github.com/collabboard/board-api/internal/service"
	"github.com/collabboard/board-api/pkg/auth"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to Database.")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal("Failed to ping the Database.")
	}
	logger.Info("Successfully connected to the Database!")

	taskRepo := repo.NewTaskRepo(pool)
	logRepo := repo.NewLogRepo(pool)
	userRepo := repo.NewUserRepo(pool)

	hub := realtime.NewHub(logger)
	defer hub.Close()

	selector := service.NewSelector(userRepo, taskRepo)
	audit := service.NewAuditRecorder(logRepo, userRepo, hub, logger)
	taskService := service.NewTaskService(taskRepo, selector, audit, hub, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, tokens)

	taskHandler := handler.NewTaskHandler(taskService, logger)
	logHandler := handler.NewLogHandler(audit, logger)
	authHandler := handler.NewAuthHandler(authService, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin, "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(middleware.RequireAuth(tokens)).Get("/users", authHandler.Users)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.Create)
			r.Get("/", taskHandler.List)
			r.Get("/{id}", taskHandler.Get)
			r.Put("/{id}", taskHandler.Update)
			r.Put("/{id}/smart-assign", taskHandler.SmartAssign)
			r.Delete("/{id}", taskHandler.Delete)
		})

		r.Get("/logs", logHandler.Recent)
	})

	r.With(middleware.RequireAuth(tokens)).Get("/ws", hub.ServeWS)

	srv := http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: it would sever long-lived websocket connections.
	}

	go func() {
		logger.Info("Server started at ", zap.String("port", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: ", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error: ", zap.Error(err))
	}
	logger.Info("Server stopped succsessfully!")
}
