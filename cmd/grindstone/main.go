package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindworks/grindstone/internal/config"
	"github.com/grindworks/grindstone/internal/database"
	"github.com/grindworks/grindstone/internal/enemies"
	"github.com/grindworks/grindstone/internal/items"
	"github.com/grindworks/grindstone/internal/logger"
	"github.com/grindworks/grindstone/internal/server"
	"github.com/grindworks/grindstone/internal/tiers"
)

func main() {
	configFile := flag.String("config", "data/server.yaml", "Path to server config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	tiersFile := flag.String("tiers", "data/tiers.yaml", "Path to tier tables YAML file")
	weaponsFile := flag.String("weapons", "data/weapons.yaml", "Path to weapon catalog YAML file")
	areasFile := flag.String("areas", "data/areas.yaml", "Path to areas YAML file")
	shopFile := flag.String("shop", "data/shop.yaml", "Path to shop items YAML file")
	addr := flag.String("addr", "", "Listen address override, e.g. :8080")
	flag.Parse()

	// Initialize logger first (before any logging)
	logConfig, _ := logger.LoadConfig(*loggingConfig)
	logger.Initialize(logConfig)

	logger.Info("Starting Grindstone server")

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		logger.Warning("Server config not fully loaded, using defaults", "path", *configFile, "error", err)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	tables, err := tiers.LoadTablesFromYAML(*tiersFile)
	if err != nil {
		log.Fatalf("Failed to load tier tables: %v", err)
	}
	catalog, err := items.LoadCatalogFromYAML(*weaponsFile)
	if err != nil {
		log.Fatalf("Failed to load weapon catalog: %v", err)
	}
	areas, err := enemies.LoadAreasFromYAML(*areasFile)
	if err != nil {
		log.Fatalf("Failed to load areas: %v", err)
	}
	logger.Info("Game content loaded",
		"item_tiers", tables.ItemRarity.Len(),
		"mold_tiers", tables.Mold.Len(),
		"enemy_tiers", tables.EnemyRarity.Len(),
		"areas", len(areas))

	var db *database.Database
	switch cfg.Database.Driver {
	case "postgres":
		db, err = database.OpenPostgres(cfg.Database.DSN)
	default:
		db, err = database.Open(cfg.Database.Path)
	}
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("Database ready", "driver", cfg.Database.Driver)

	if err := seedShop(db, *shopFile); err != nil {
		logger.Warning("Shop not seeded", "path", *shopFile, "error", err)
	}

	if purged, err := db.PurgeExpiredSessions(); err == nil && purged > 0 {
		logger.Info("Purged expired auth sessions", "count", purged)
	}

	registry := server.NewSessionRegistry(db, tables, catalog, areas, cfg.Game)
	go registry.Run()

	srv := server.NewServer(cfg, db, registry)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	registry.Stop()
	registry.SaveAll()
	logger.Info("Server stopped")
}
