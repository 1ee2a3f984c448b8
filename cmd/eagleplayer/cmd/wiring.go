package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/KaIKuxy/eagle-library-player/internal/core/api"
	"github.com/KaIKuxy/eagle-library-player/internal/core/config"
	"github.com/KaIKuxy/eagle-library-player/internal/core/db"
	"github.com/KaIKuxy/eagle-library-player/internal/library"
	"github.com/KaIKuxy/eagle-library-player/internal/rules"
)

// app holds the dependencies shared by commands that talk to the library.
type app struct {
	cfg      *config.Config
	database *sqlx.DB
	engine   *rules.Engine
	service  *api.FilterService
}

// loadConfig reads the config file and applies the --db-url override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		cfg.Database.URL = dbURL
	}
	return cfg, nil
}

func newEngine(cfg config.EngineConfig) (*rules.Engine, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return rules.NewEngine(
		rules.WithLocation(loc),
		rules.WithWorkers(cfg.Workers),
		rules.WithColorCacheSize(cfg.ColorCacheSize),
	)
}

// openDatabase opens the store and refuses to continue with pending migrations.
func openDatabase(url string) (*sqlx.DB, error) {
	database, err := db.Open(url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	statuses, err := db.MigrateStatus(database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to check migrations: %w", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			database.Close()
			return nil, fmt.Errorf("migration %s not applied - run 'eagleplayer migrate' first", s.ID)
		}
	}
	return database, nil
}

func newApp(cfg *config.Config) (*app, error) {
	database, err := openDatabase(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}

	engine, err := newEngine(cfg.Engine)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	client := library.NewClient(cfg.Library, logger)
	service, err := api.NewFilterService(client, db.NewStore(queries), engine, logger)
	if err != nil {
		engine.Close()
		database.Close()
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	return &app{cfg: cfg, database: database, engine: engine, service: service}, nil
}

func (a *app) Close() {
	a.engine.Close()
	a.database.Close()
}
