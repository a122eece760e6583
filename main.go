package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"back_scan/internal/config"
	"back_scan/internal/database"
	"back_scan/internal/handlers"
	"back_scan/internal/history"
	"back_scan/internal/kvstore"
	"back_scan/internal/pagestore"
	"back_scan/internal/render"
	"back_scan/internal/services"
	"back_scan/internal/validation"
)

func main() {
	log.Println("DEBUG: Starting scan backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("ERROR: Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	log.Println("DEBUG: Initializing database...")
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	defer database.Close(db)
	log.Println("DEBUG: Database initialized successfully")

	// History persistence
	persister, closePersister, err := kvstore.Open(ctx, cfg.History, db)
	if err != nil {
		log.Fatalf("ERROR: Failed to open history backend: %v", err)
	}
	defer closePersister()
	syncer := history.NewSyncer(persister)
	histories, err := history.NewRegistry(persister, syncer, cfg.History.CacheSize)
	if err != nil {
		log.Fatalf("ERROR: Failed to create history registry: %v", err)
	}

	// Rendering
	presets := render.DefaultPresets()
	if cfg.Render.PresetsFile != "" {
		if presets, err = render.LoadPresets(cfg.Render.PresetsFile); err != nil {
			log.Fatalf("ERROR: Failed to load style presets: %v", err)
		}
	}
	barcodes, err := render.NewBarcodeClient(cfg.Render, nil, presets)
	if err != nil {
		log.Printf("WARNING: Barcode rendering disabled: %v", err)
		barcodes = nil
	}
	renderer := render.New(render.NewQRRenderer(presets), barcodes)

	// Page images
	pages, err := pagestore.Open(ctx, cfg.Pages)
	if err != nil {
		log.Fatalf("ERROR: Failed to open page store: %v", err)
	}

	validator, err := validation.New()
	if err != nil {
		log.Fatalf("ERROR: Failed to compile form rules: %v", err)
	}

	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	hub := services.NewScanHub()

	router := handlers.Router{
		Users:     handlers.NewUserHandler(authService),
		Codes:     handlers.NewCodeHandler(services.NewGenerationService(validator), renderer, histories),
		Scans:     handlers.NewScanHandler(services.NewScanService(hub), hub, histories, cfg.AllowedOrigins),
		History:   handlers.NewHistoryHandler(histories),
		Documents: handlers.NewDocumentHandler(services.NewDocumentService(db, pages)),
		Health:    handlers.NewHealthHandler(db),
		Auth:      handlers.AuthMiddleware(authService),
	}

	limiter := handlers.NewRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	handler := handlers.CORSMiddleware(cfg.AllowedOrigins)(limiter.Middleware(router.Handler()))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("🚀 Scan backend started on %s", cfg.Port)
	log.Println("📡 Available endpoints:")
	log.Println("   🔐 AUTH:")
	log.Println("      POST   /api/auth/register          - User registration")
	log.Println("      POST   /api/auth/login             - User login")
	log.Println("      GET    /api/auth/profile           - Get user profile")
	log.Println("   🔳 CODES:")
	log.Println("      POST   /api/codes/validate         - Validate form fields")
	log.Println("      POST   /api/codes/generate         - Generate a code")
	log.Println("      POST   /api/codes/render           - Render a code image")
	log.Println("   📷 SCANS:")
	log.Println("      POST   /api/scans                  - Submit a decoded scan")
	log.Println("      GET    /api/scans/stream           - Scan websocket")
	log.Println("      DELETE /api/scans/current          - Dismiss current scan")
	log.Println("   🕘 HISTORY:")
	log.Println("      GET    /api/history                - List history")
	log.Println("      DELETE /api/history                - Clear history")
	log.Println("      GET    /api/history/current        - Current selection")
	log.Println("   📄 DOCUMENTS:")
	log.Println("      GET    /api/folders, /api/documents - List folders and documents")

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Printf("ERROR: Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("DEBUG: Shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARNING: Server shutdown: %v", err)
	}
	if err := syncer.Flush(shutdownCtx); err != nil {
		log.Printf("ERROR: Failed to flush history: %v", err)
	}
	syncer.Close()
}
