package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Parser.TopK != 50 {
		t.Errorf("Parser.TopK = %d, want 50", cfg.Parser.TopK)
	}
	if cfg.Parser.MinCommandLength != 2 || cfg.Parser.MaxCommandLength != 10 {
		t.Errorf("parser length bounds = (%d, %d), want (2, 10)",
			cfg.Parser.MinCommandLength, cfg.Parser.MaxCommandLength)
	}
	if cfg.Grammar.MaxPipelineDepth != 3 {
		t.Errorf("Grammar.MaxPipelineDepth = %d, want 3", cfg.Grammar.MaxPipelineDepth)
	}
	if cfg.Redis.CacheTTL != 5*time.Minute {
		t.Errorf("Redis.CacheTTL = %v, want 5m", cfg.Redis.CacheTTL)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
parser:
  minCommandLength: 1
  maxCommandLength: 6
  redundantWordPenalty: -0.25
  topK: 10
grammar:
  syntaxPath: /etc/nlcmd/grammar.json
  maxPipelineDepth: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Parser.RedundantWordPenalty != -0.25 {
		t.Errorf("RedundantWordPenalty = %g, want -0.25", cfg.Parser.RedundantWordPenalty)
	}
	if cfg.Parser.TopK != 10 {
		t.Errorf("Parser.TopK = %d, want 10", cfg.Parser.TopK)
	}
	// Untouched sections keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want default 5432", cfg.Postgres.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NC_SERVER_PORT", "7070")
	t.Setenv("NC_POSTGRES_HOST", "db.internal")
	t.Setenv("NC_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("NC_PARSER_TOP_K", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Postgres.Host = %q", cfg.Postgres.Host)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Parser.TopK != 5 {
		t.Errorf("Parser.TopK = %d, want 5", cfg.Parser.TopK)
	}
}

func TestLoadRejectsInvalidParserConfig(t *testing.T) {
	cases := map[string]string{
		"negative min":    "parser:\n  minCommandLength: -1\n",
		"max below min":   "parser:\n  minCommandLength: 5\n  maxCommandLength: 3\n",
		"non-positive topK": "parser:\n  topK: 0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5433, User: "u", Password: "pw",
		Database: "nlcmd", SSLMode: "require",
	}
	dsn := p.DSN()
	for _, part := range []string{"host=db", "port=5433", "user=u", "password=pw", "dbname=nlcmd", "sslmode=require"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q missing %q", dsn, part)
		}
	}
}
