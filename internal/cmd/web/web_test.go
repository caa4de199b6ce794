package web

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.EntityDBPath != "castlight.db" {
		t.Fatalf("EntityDBPath = %q, want %q", cfg.EntityDBPath, "castlight.db")
	}
	if cfg.CacheDBPath != "castlight-cache.db" {
		t.Fatalf("CacheDBPath = %q, want %q", cfg.CacheDBPath, "castlight-cache.db")
	}
	if cfg.MediaDir != "" {
		t.Fatalf("MediaDir = %q, want empty", cfg.MediaDir)
	}
	if cfg.SnapshotTTL != 24*time.Hour {
		t.Fatalf("SnapshotTTL = %v, want %v", cfg.SnapshotTTL, 24*time.Hour)
	}
}

func TestParseConfigOverrideAddr(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-addr", "127.0.0.1:9002"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9002" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "127.0.0.1:9002")
	}
}

func TestParseConfigOverrideSnapshotTTL(t *testing.T) {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-snapshot-ttl", "90m"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.SnapshotTTL != 90*time.Minute {
		t.Fatalf("SnapshotTTL = %v, want %v", cfg.SnapshotTTL, 90*time.Minute)
	}
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("CASTLIGHT_ENTITY_DB", "/tmp/entities.db")

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.EntityDBPath != "/tmp/entities.db" {
		t.Fatalf("EntityDBPath = %q, want %q", cfg.EntityDBPath, "/tmp/entities.db")
	}
}
