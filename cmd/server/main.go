package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"go-inventory-ledger/internal/ai"
	"go-inventory-ledger/internal/auth"
	"go-inventory-ledger/internal/cache"
	"go-inventory-ledger/internal/config"
	"go-inventory-ledger/internal/database"
	"go-inventory-ledger/internal/export"
	"go-inventory-ledger/internal/handlers"
	"go-inventory-ledger/internal/jobs"
	"go-inventory-ledger/internal/ledger"
	"go-inventory-ledger/internal/logging"
	"go-inventory-ledger/internal/models"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logging.Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Fatal("Invalid log settings")
	}
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logging.Logger()

	// 1. Database + accounts
	db, err := database.Connect(ctx, cfg.DatabaseDSN, cfg.DBLogLevel)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	users := database.NewUsers(db)
	if err := users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return err
	}

	// 2. The ledger, loaded from the store
	inventory, err := ledger.New(ctx, database.NewStore(db), auth.ContextIdentity)
	if err != nil {
		return err
	}
	err = inventory.OnActivity(func(a models.Activity) {
		log.WithFields(logrus.Fields{"type": a.Type, "product_id": a.ProductID}).Info(a.Message)
	})
	if err != nil {
		return err
	}

	// 3. Optional collaborators: catalog cache and the assistant
	var catalog cache.Catalog = cache.Nop{}
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, product listing cache disabled")
		} else {
			defer rc.Close()
			catalog = rc
		}
	}

	var assistant handlers.Assistant
	if cfg.GeminiAPIKey != "" {
		assistant = ai.NewAgent(cfg.GeminiAPIKey, cfg.GeminiModel, inventory, database.NewReporter(db))
	} else {
		log.Info("GEMINI_API_KEY not set, assistant disabled")
	}

	// 4. Periodic low stock sweep
	scheduler := jobs.NewScheduler(time.Local)
	if err := scheduler.AddLowStockSweep(cfg.LowStockSchedule, inventory); err != nil {
		return err
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	// 5. HTTP
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	h, err := handlers.New(handlers.Deps{
		Ledger:    inventory,
		Accounts:  users,
		Tokens:    tokens,
		Cache:     catalog,
		Assistant: assistant,
		Company:   export.Company{Name: cfg.CompanyName, Address: cfg.CompanyAddress},
		Ping:      sqlDB.PingContext,
	})
	if err != nil {
		return err
	}

	if cfg.AllowRegistration {
		log.Warn("Registration route is OPEN. Disable this in production!")
	} else {
		log.Info("Registration route is disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, handlers.RouterOptions{CORSOrigins: cfg.CORSOrigins, AllowRegistration: cfg.AllowRegistration}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("base_url", cfg.BaseURL).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
