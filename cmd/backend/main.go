package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"careers-backend/internal/db"
	"careers-backend/internal/server"
)

func main() {
	loadDotenv()

	if err := server.ValidateStartupConfig(); err != nil {
		server.Error("invalid configuration", nil, err)
		os.Exit(1)
	}

	addr := getenvDefault("CAREERS_ADDR", ":5000")

	auth := server.AuthConfig{
		JWTSecret: os.Getenv("CAREERS_JWT_SECRET"),
		TokenTTL:  24 * time.Hour,
	}

	// Database
	dbConn, err := server.OpenDB(os.Getenv("DATABASE_URL"))
	if err != nil {
		server.Error("database connection failed", nil, err)
		os.Exit(1)
	}
	defer func() { _ = dbConn.Close() }()

	// Run migrations
	server.Info("running migrations", nil)
	if err := db.RunMigrations(dbConn); err != nil {
		server.Error("migration failed", nil, err)
		os.Exit(1)
	}
	server.Info("migrations complete", nil)

	store, err := newFileStore()
	if err != nil {
		server.Error("storage init failed", nil, err)
		os.Exit(1)
	}

	srv := server.New(server.Config{
		Addr:  addr,
		DB:    dbConn,
		Auth:  auth,
		Store: store,
	})

	// Start the HTTP server in a background goroutine so we can listen for
	// OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		server.Info("starting server", map[string]any{"addr": addr})
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Block until either a shutdown signal is received or the server errors.
	select {
	case sig := <-sigCh:
		server.Info("shutting down", map[string]any{"signal": sig.String()})
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			server.Error("shutdown error", nil, err)
			os.Exit(1)
		}
		server.Info("shutdown complete", nil)
	case err := <-errCh:
		if err != nil {
			server.Error("server error", nil, err)
			os.Exit(1)
		}
	}
}

// newFileStore picks the CV content backend: the S3-compatible store when
// configured, the local uploads directory otherwise.
func newFileStore() (server.FileStore, error) {
	if server.ObjectStorageConfigured() {
		return server.NewMinioStore(
			os.Getenv("CAREERS_S3_ENDPOINT"),
			os.Getenv("CAREERS_S3_ACCESS_KEY"),
			os.Getenv("CAREERS_S3_SECRET_KEY"),
			os.Getenv("CAREERS_S3_BUCKET"),
		)
	}
	return server.NewDiskStore(getenvDefault("CAREERS_UPLOAD_DIR", "uploads"))
}

// loadDotenv loads the first .env file found near the working directory.
func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Overload(p)
			server.Info("loaded env file", map[string]any{"file": p})
			return
		}
	}
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
