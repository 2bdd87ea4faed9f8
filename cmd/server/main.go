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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/attendsync/server/internal/config"
	"github.com/attendsync/server/internal/device"
	_ "github.com/attendsync/server/internal/device/zk"
	"github.com/attendsync/server/internal/handlers"
	custommw "github.com/attendsync/server/internal/middleware"
	"github.com/attendsync/server/internal/observability"
	"github.com/attendsync/server/internal/repository"
	"github.com/attendsync/server/internal/services"
)

const serviceVersion = "1.0.0"

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize telemetry
	ctx := context.Background()
	telemetry, err := observability.Initialize(ctx, observability.NewConfig("attendsync-server", serviceVersion))
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}

	// The vendor terminal client is linked in by build; a missing
	// registration is a configuration error, not a runtime nil check.
	dialer, err := device.Open(cfg.Device.Driver)
	if err != nil {
		log.Fatalf("Failed to resolve device driver: %v", err)
	}

	// Initialize database
	var db *sql.DB
	if cfg.UsePostgres() {
		log.Println("Using PostgreSQL database")
		db, err = repository.NewPostgresDB(cfg.DatabaseURL)
	} else {
		log.Println("Using SQLite database")
		db, err = repository.NewSQLiteDB(cfg.DatabasePath)
	}
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	deviceRepo := repository.NewDeviceRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	eventRepo := repository.NewAttendanceEventRepository(db)
	sessionRepo := repository.NewAttendanceSessionRepository(db)

	// Initialize services
	normalizer, err := services.NewTimeNormalizer(cfg.Sync.Timezone)
	if err != nil {
		log.Fatalf("Failed to initialize time normalizer: %v", err)
	}
	reconciler := services.NewReconcileService(sessionRepo, services.ReconcilePolicy{
		CheckOut: services.CheckOutStrategy(cfg.Sync.CheckOutPolicy),
	})
	syncService, err := services.NewSyncService(deviceRepo, employeeRepo, eventRepo, reconciler, normalizer, dialer, cfg.Sync.SortLog)
	if err != nil {
		log.Fatalf("Failed to initialize sync service: %v", err)
	}

	wsHub := services.NewWebSocketHub()
	go wsHub.Run()
	syncService.SetWebSocketHub(wsHub)

	scheduler := services.NewSyncSchedulerService(syncService, cfg.Sync.IntervalMinutes)
	scheduler.SetWebSocketHub(wsHub)
	if cfg.Sync.AutoStart {
		scheduler.Start()
	}

	// Initialize handlers
	deviceHandler := handlers.NewDeviceHandler(deviceRepo)
	syncHandler := handlers.NewSyncHandler(syncService, scheduler)
	attendanceHandler := handlers.NewAttendanceHandler(employeeRepo, eventRepo, sessionRepo)
	healthHandler := handlers.NewHealthHandler()
	wsHandler := handlers.NewWebSocketHandler(wsHub)

	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize HTTP metrics: %v", err)
	}

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.TracingMiddleware("attendsync-server"))
	r.Use(observability.MetricsMiddleware(httpMetrics))
	r.Use(custommw.APIKeyAuth(cfg.Security.APIKey, cfg.Security.APIKeyHash, cfg.Security.APIKeyHeader))

	// Routes
	r.Get("/health", healthHandler.HealthCheck)
	r.Get("/api/health", healthHandler.HealthCheck)
	r.Get("/api/ws", wsHandler.HandleConnection)

	r.Route("/api/devices", func(r chi.Router) {
		r.Post("/", deviceHandler.RegisterDevice)
		r.Get("/", deviceHandler.ListDevices)
		r.Get("/{id}", deviceHandler.GetDevice)
		r.Put("/{id}", deviceHandler.UpdateDevice)
		r.Delete("/{id}", deviceHandler.DeleteDevice)
		r.Post("/{id}/sync", syncHandler.SyncOne)
		r.Post("/{id}/test-connection", syncHandler.TestConnection)
		r.Post("/{id}/clear-attendance", syncHandler.ClearAttendance)
		r.Post("/{id}/restart", syncHandler.RestartDevice)
	})

	r.Post("/api/sync", syncHandler.SyncAll)

	r.Route("/api/employees", func(r chi.Router) {
		r.Get("/", attendanceHandler.ListEmployees)
		r.Get("/{id}/sessions", attendanceHandler.ListSessions)
		r.Get("/{id}/events", attendanceHandler.ListEvents)
	})

	r.Route("/api/scheduler", func(r chi.Router) {
		r.Get("/status", syncHandler.SchedulerStatus)
		r.Post("/start", syncHandler.StartScheduler)
		r.Post("/stop", syncHandler.StopScheduler)
		r.Post("/run", syncHandler.RunSchedulerNow)
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("AttendSync Server starting on %s", cfg.ServerAddress)
		log.Printf("Device driver: %s", cfg.Device.Driver)
		log.Printf("Sync timezone: %s", cfg.Sync.Timezone)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		log.Printf("Telemetry shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
