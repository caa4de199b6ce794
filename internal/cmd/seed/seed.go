// Package seed parses seeding flags and applies demo fixtures to the
// configured databases.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"

	cachesqlite "github.com/ebriony/castlight/internal/cache/sqlite"
	"github.com/ebriony/castlight/internal/event/service"
	"github.com/ebriony/castlight/internal/platform/config"
	"github.com/ebriony/castlight/internal/seed"
	"github.com/ebriony/castlight/internal/snapshot"
	storagesqlite "github.com/ebriony/castlight/internal/storage/sqlite"
	"github.com/ebriony/castlight/internal/telemetry"
)

// Config holds seed command configuration.
type Config struct {
	EntityDBPath string `env:"CASTLIGHT_ENTITY_DB" envDefault:"castlight.db"`
	CacheDBPath  string `env:"CASTLIGHT_CACHE_DB" envDefault:"castlight-cache.db"`
	Scenario     string
	List         bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.EntityDBPath, "entity-db", cfg.EntityDBPath, "Path to the entity SQLite database")
	fs.StringVar(&cfg.CacheDBPath, "cache-db", cfg.CacheDBPath, "Path to the snapshot cache SQLite database")
	fs.StringVar(&cfg.Scenario, "scenario", "", "Apply a single scenario (default: all)")
	fs.BoolVar(&cfg.List, "list", false, "List available scenarios")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if cfg.List {
		for _, scenario := range seed.Scenarios() {
			fmt.Fprintf(out, "%s\t%s\n", scenario.Name, scenario.Description)
		}
		return nil
	}

	entityStore, err := storagesqlite.Open(cfg.EntityDBPath)
	if err != nil {
		return fmt.Errorf("open entity store: %w", err)
	}
	defer func() {
		if err := entityStore.Close(); err != nil {
			log.Printf("close entity store: %v", err)
		}
	}()

	cacheStore, err := cachesqlite.Open(cfg.CacheDBPath)
	if err != nil {
		return fmt.Errorf("open cache store: %w", err)
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			log.Printf("close cache store: %v", err)
		}
	}()

	emitter := telemetry.NewEmitter(telemetry.LogSink{})
	snapCache := snapshot.NewCache(cacheStore, 0, emitter)
	builder := snapshot.NewBuilder(entityStore, snapCache)
	patcher := snapshot.NewPatcher(entityStore, snapCache, builder)
	dispatcher := snapshot.NewDispatcher(entityStore, snapCache, patcher, nil, emitter)
	svc := service.New(entityStore, dispatcher)

	return seed.Apply(ctx, svc, entityStore, cfg.Scenario, out)
}
