package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/homestack/pantry/internal/adapter/events"
	"github.com/homestack/pantry/internal/adapter/handler"
	"github.com/homestack/pantry/internal/adapter/storage"
	"github.com/homestack/pantry/internal/adapter/todo"
	"github.com/homestack/pantry/internal/core/service"
	"github.com/homestack/pantry/internal/port"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpAddr := envOr("HTTP_ADDR", ":8080")
	redisAddr := envOr("REDIS_ADDR", "localhost:6379")

	// Redis backs the external to-do list and, optionally, the event sink.
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	log.Println("connected to redis")

	repo, dbClose := newStateRepository(ctx)
	if dbClose != nil {
		defer dbClose()
	}

	var sink port.EventSink = events.NewLogSink()
	if envOr("EVENT_SINK", "log") == "redis" {
		sink = events.NewRedisSink(rdb, "pantry")
	}

	inventory := service.NewInventoryService(repo, sink)
	if err := inventory.Load(ctx); err != nil {
		log.Fatalf("failed to load inventory state: %v", err)
	}
	todoSync := service.NewTodoSyncer(todo.NewRedisAdapter(rdb))

	mux := http.NewServeMux()
	handler.NewHTTPHandler(inventory, todoSync).Register(mux)

	httpServer := &http.Server{
		Addr:    httpAddr,
		Handler: mux,
	}

	go func() {
		log.Printf("HTTP server listening on %s", httpAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Println("HTTP server stopped")

	rdb.Close()
	log.Println("connections closed")
}

func newStateRepository(ctx context.Context) (port.StateRepository, func()) {
	switch backend := envOr("STATE_BACKEND", "file"); backend {
	case "file":
		path := envOr("STATE_PATH", "data/pantry.json")
		log.Printf("using file state at %s", path)
		return storage.NewFileAdapter(path), nil

	case "mysql":
		dsn := envOr("MYSQL_DSN", "root:root@tcp(localhost:3306)/pantry?parseTime=true")
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("failed to ping mysql: %v", err)
		}
		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare mysql schema: %v", err)
		}
		log.Println("connected to mysql")
		return adapter, func() { db.Close() }

	default:
		log.Fatalf("unknown STATE_BACKEND %q", backend)
		return nil, nil
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
