package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/sujalbistaa/mysite/internal/accounts"
	"github.com/sujalbistaa/mysite/internal/blog"
	"github.com/sujalbistaa/mysite/internal/cache"
	"github.com/sujalbistaa/mysite/internal/config"
	"github.com/sujalbistaa/mysite/internal/db"
	routes "github.com/sujalbistaa/mysite/internal/http"
	"github.com/sujalbistaa/mysite/internal/logging"
	"github.com/sujalbistaa/mysite/internal/polls"
	"github.com/sujalbistaa/mysite/internal/ws"
)

func main() {
	// Must come first: everything below reads the environment.
	cfg := config.Load()

	logFile := logging.Setup(cfg.LogFile)
	defer logFile.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 1. Database
	database, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.Migrate(database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// 2. Services
	users := accounts.NewService(database)
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if _, err := users.EnsureModerator(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			log.Fatalf("Failed to create moderator %q: %v", cfg.AdminUsername, err)
		}
		log.Printf("Moderator account %q is ready", cfg.AdminUsername)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	store := cache.New(ctx, cfg.RedisAddr)
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	env := &routes.Env{
		Blog:          blog.NewService(database, store),
		Polls:         polls.NewService(database, hub),
		Accounts:      users,
		Hub:           hub,
		Now:           time.Now,
		PollsPageSize: cfg.PollsPageSize,
	}

	// 3. Router
	router := gin.New()
	if err := routes.SetupRoutes(ctx, router, env, cfg.CORSOrigin); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	// 4. Server with graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	// Stops the hub and the rate limiter sweeper.
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
