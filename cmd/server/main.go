// Package main is the entry point for the Takeoff API server.
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

	"github.com/Babaeti777/takeoff-api/internal/config"
	"github.com/Babaeti777/takeoff-api/internal/middleware"
	"github.com/Babaeti777/takeoff-api/internal/router"
	"github.com/Babaeti777/takeoff-api/internal/takeoff"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("🚀 Takeoff API %s starting...", Version)

	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	log.Printf("📋 Config loaded: port=%s, session_ttl=%s, gin_mode=%s", cfg.Port, cfg.SessionTTL, cfg.GinMode)

	os.Setenv("GIN_MODE", cfg.GinMode)

	// Step 2: Create the Session Store
	store := takeoff.NewStore(cfg.SessionTTL)
	defer store.Shutdown()
	log.Printf("✅ Session store ready (idle TTL %s)", cfg.SessionTTL)

	// Step 3: Hash the Admin Key
	// The plaintext key never leaves this function; handlers only ever see
	// the bcrypt hash.
	var adminKeyHash []byte
	if cfg.AdminKey != "" {
		adminKeyHash, err = middleware.HashAdminKey(cfg.AdminKey)
		if err != nil {
			log.Fatalf("❌ Failed to hash admin key: %v", err)
		}
		log.Println("✅ Admin key configured (session administration protected)")
	} else {
		log.Println("⚠️  No admin key set (session administration is open — set ADMIN_KEY in production)")
	}

	// Step 4: Setup HTTP Router
	r := router.Setup(store, cfg.JWTSecret, adminKeyHash, cfg.DefaultUnit, cfg.MaxUploadMB*1024*1024, cfg.RateLimit, cfg.AllowedOrigins, Version)

	// Step 5: Start the HTTP Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Printf("📖 Health check: http://localhost:%s/api/v1/health", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	// Step 6: Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("🛑 Received signal %v, shutting down gracefully...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server stopped. Goodbye!")
}
