package cmd

import (
	"context"
	"fmt"
	"time"

	"ryabank/config"
	"ryabank/database"
	"ryabank/events"
	"ryabank/infrastructure"
	"ryabank/jobs"
	"ryabank/models"
	"ryabank/repository"
	"ryabank/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the economy engine
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting ryabank economy engine...")

	log.Info("Running database migrations...")
	if err := database.MigrateUp(cfg.ConnectionURL()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.ConnectionURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()

	var natsClient *infrastructure.NATSClient
	if cfg.NATSEnabled {
		natsClient, err = connectEventForwarding(ctx, cfg.NATSURL, eventBus)
		if err != nil {
			return err
		}
		defer natsClient.Close()
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	engine := service.NewEngine(uowFactory, settingsFromConfig(cfg))

	log.Info("Bootstrapping pools...")
	if err := engine.Ledger().Bootstrap(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap pools: %w", err)
	}

	scheduler, err := jobs.NewScheduler(engine.Ledger(), cfg.PoolAuditCron)
	if err != nil {
		return err
	}
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	// Audit once at startup so a broken chain shows up immediately
	scheduler.RunPoolAudit(ctx)

	log.Infof("Economy engine is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down economy engine...")
	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		log.Info("Shutdown completed")
	case <-time.After(10 * time.Second):
		log.Warn("Shutdown timeout exceeded")
	}

	return nil
}

func connectEventForwarding(ctx context.Context, url string, bus *events.Bus) (*infrastructure.NATSClient, error) {
	log.WithField("url", url).Info("Connecting event forwarding to NATS...")

	client := infrastructure.NewNATSClient(url)
	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	mapper := infrastructure.NewEventSubjectMapper()
	if err := infrastructure.EnsureEconomyStream(client, mapper); err != nil {
		client.Close()
		return nil, err
	}

	infrastructure.NewNATSEventForwarder(client, mapper).Attach(bus)
	return client, nil
}

func configureLogging(cfg *config.Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("logLevel", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func settingsFromConfig(cfg *config.Config) service.Settings {
	return service.Settings{
		SeedPoolHard:               cfg.SeedPoolHard,
		SeedPoolSoft:               cfg.SeedPoolSoft,
		InitialSoftSupply:          cfg.InitialSoftSupply,
		TotalHardSupply:            cfg.TotalHardSupply,
		MinTradeHard:               cfg.MinTradeHard,
		EnergyRegenMinutes:         cfg.EnergyRegenMinutes,
		EnergyRegenPerInterval:     cfg.EnergyRegenPerInterval,
		EnergyDefaultMax:           cfg.EnergyDefaultMax,
		StartingSoftBalance:        cfg.StartingSoftBalance,
		BurnSmoothing:              cfg.BurnSmoothing,
		ExternalUnitHardEquivalent: cfg.ExternalUnitHardEquivalent,
		StrictPools:                cfg.PoolStrictMode,
		MaxTxRetries:               cfg.MaxTxRetries,
		RetryBackoff:               cfg.TxRetryBackoff,
		Catalog:                    models.DefaultUpgradeCatalog(),
	}
}
