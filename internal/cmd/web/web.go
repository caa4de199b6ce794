// Package web parses snapshot API flags and launches the service.
package web

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	cachesqlite "github.com/ebriony/castlight/internal/cache/sqlite"
	"github.com/ebriony/castlight/internal/event/service"
	"github.com/ebriony/castlight/internal/media"
	"github.com/ebriony/castlight/internal/platform/config"
	"github.com/ebriony/castlight/internal/platform/otel"
	webservice "github.com/ebriony/castlight/internal/services/web"
	"github.com/ebriony/castlight/internal/snapshot"
	storagesqlite "github.com/ebriony/castlight/internal/storage/sqlite"
	"github.com/ebriony/castlight/internal/telemetry"
)

// Config holds web command configuration.
type Config struct {
	HTTPAddr     string        `env:"CASTLIGHT_WEB_ADDR" envDefault:":8080"`
	EntityDBPath string        `env:"CASTLIGHT_ENTITY_DB" envDefault:"castlight.db"`
	CacheDBPath  string        `env:"CASTLIGHT_CACHE_DB" envDefault:"castlight-cache.db"`
	MediaDir     string        `env:"CASTLIGHT_MEDIA_DIR"`
	SnapshotTTL  time.Duration `env:"CASTLIGHT_SNAPSHOT_TTL" envDefault:"24h"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "The HTTP listen address")
	fs.StringVar(&cfg.EntityDBPath, "entity-db", cfg.EntityDBPath, "Path to the entity SQLite database")
	fs.StringVar(&cfg.CacheDBPath, "cache-db", cfg.CacheDBPath, "Path to the snapshot cache SQLite database")
	fs.StringVar(&cfg.MediaDir, "media-dir", cfg.MediaDir, "Root directory of exported run media")
	fs.DurationVar(&cfg.SnapshotTTL, "snapshot-ttl", cfg.SnapshotTTL, "Upper bound on snapshot lifetime")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the snapshot API service.
func Run(ctx context.Context, cfg Config) error {
	shutdownTracing, err := otel.Setup(ctx, "castlight-web")
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("shutdown tracing: %v", err)
		}
	}()

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
	snapCache := snapshot.NewCache(cacheStore, cfg.SnapshotTTL, emitter)
	builder := snapshot.NewBuilder(entityStore, snapCache)

	patcher := snapshot.NewPatcher(entityStore, snapCache, builder)
	var exports media.Store
	if cfg.MediaDir != "" {
		exports = media.NewDir(cfg.MediaDir)
	}
	dispatcher := snapshot.NewDispatcher(entityStore, snapCache, patcher, exports, emitter)
	svc := service.New(entityStore, dispatcher)

	server, err := webservice.NewServer(webservice.Config{HTTPAddr: cfg.HTTPAddr}, entityStore, builder, svc)
	if err != nil {
		return fmt.Errorf("create web server: %w", err)
	}
	return server.Start(ctx)
}
