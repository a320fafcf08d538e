// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/giftlist-backend/internal/config"
	"github.com/your-org/giftlist-backend/internal/domain/wishlist"
	"github.com/your-org/giftlist-backend/internal/infrastructure/database/memory"
	"github.com/your-org/giftlist-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/giftlist-backend/internal/infrastructure/database/redis"
	"github.com/your-org/giftlist-backend/internal/infrastructure/metrics"
	"github.com/your-org/giftlist-backend/internal/infrastructure/notify"
	"github.com/your-org/giftlist-backend/internal/interfaces/http"
	"github.com/your-org/giftlist-backend/internal/interfaces/http/middleware"
	"github.com/your-org/giftlist-backend/internal/pkg/auth"
	"github.com/your-org/giftlist-backend/internal/pkg/email"
	"github.com/your-org/giftlist-backend/internal/pkg/logger"
)

// demoOwnerID owns the wishlist seeded in development
const demoOwnerID = 1

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	logg.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"storage":     cfg.Storage.Driver,
	}).Infof("Starting %s", cfg.App.Name)

	checks := map[string]http.HealthCheck{}

	store, closeStore := openStore(cfg, logg, checks)
	defer closeStore()

	m := metrics.New()
	notifiers := notify.Multi{notify.NewLogNotifier(logg)}

	var rateCounter middleware.RateCounter
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewConnection(cfg, logg)
		if err != nil {
			logg.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redisClient.Close()

		checks["redis"] = redisClient.Health
		rateCounter = redisClient
		notifiers = append(notifiers, notify.NewRedisPublisher(redisClient, cfg.Redis.ActivityTopic))
	} else {
		logg.Warn("Redis disabled: rate limiting off, activity delivered to the log only")
	}

	if cfg.Email.Enabled {
		mailer := email.NewEmailService(cfg.Email, cfg.App.Name, logg)
		notifiers = append(notifiers, notify.NewInvitationMailer(mailer, store, cfg.Sharing.BaseURL))
		logg.WithField("provider", cfg.Email.Provider).Info("Invitation emails enabled")
	}

	services := wishlist.NewServices(store,
		wishlist.WithLogger(logg),
		wishlist.WithNotifier(m.Notifier(notifiers)),
		wishlist.WithPasswordHasher(auth.NewPasswordManager(cfg.Security.BcryptCost)),
		wishlist.WithInvitationTTL(cfg.Sharing.InvitationTTL),
		wishlist.WithShareBaseURL(cfg.Sharing.BaseURL),
		wishlist.WithShareCodeLength(cfg.Sharing.ShareCodeLength),
	)

	server := http.NewServer(cfg, logg, http.Dependencies{
		Services:    services,
		Validator:   auth.NewJWTManager(cfg),
		Metrics:     m,
		RateCounter: rateCounter,
		Checks:      checks,
	})

	logg.Info("All systems operational")

	go func() {
		if err := server.Start(); err != nil {
			logg.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		logg.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	logg.Info("Server shutdown completed")
}

// openStore returns the configured wishlist store and its cleanup function
func openStore(cfg *config.Config, logg *logrus.Logger, checks map[string]http.HealthCheck) (wishlist.Store, func()) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		logg.Warn("Using in-memory storage; data is lost on restart")
		return memory.NewStore(), func() {}
	}

	db, err := postgres.NewConnection(cfg, logg)
	if err != nil {
		logg.WithError(err).Fatal("Failed to connect to database")
	}
	checks["database"] = db.Health

	if cfg.Database.AutoMigrate {
		migration := postgres.NewMigration(db.GetDB(), logg)
		if err := migration.RunAutoMigrations(); err != nil {
			logg.WithError(err).Fatal("Database migration failed")
		}
		if err := migration.CreateIndexes(); err != nil {
			logg.WithError(err).Warn("Index creation failed")
		}
		if cfg.IsDevelopment() {
			if err := migration.SeedDemoData(demoOwnerID); err != nil {
				logg.WithError(err).Warn("Data seeding failed")
			}
		}
	}

	return postgres.NewWishlistStore(db.GetDB()), func() {
		if err := db.Close(); err != nil {
			logg.WithError(err).Error("Failed to close database")
		}
	}
}
