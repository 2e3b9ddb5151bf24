// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// every subsystem (Server, Postgres, Redis, Kafka, Parser, Grammar, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Redis       RedisConfig       `yaml:"redis"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Parser      ParserConfig      `yaml:"parser"`
	Grammar     GrammarConfig     `yaml:"grammar"`
	PhraseTable PhraseTableConfig `yaml:"phraseTable"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings for the translator service.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// PostgresConfig holds connection parameters for the rewrite store.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds connection and caching parameters for the
// translation-result cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// KafkaConfig holds Kafka broker and topic settings for analytics events.
type KafkaConfig struct {
	Brokers       []string    `yaml:"brokers"`
	ConsumerGroup string      `yaml:"consumerGroup"`
	Topics        KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	TranslateEvents string `yaml:"translateEvents"`
}

// ParserConfig controls the command enumerator: legal command-length range,
// ranking penalties, and result count.
//
// UngroundedTokenPenalty is accepted and carried on the parser but is not
// part of the scoring path; only RedundantWordPenalty is applied during
// ranking. Wiring it in would change ranking outcomes for existing grammars.
type ParserConfig struct {
	MinCommandLength       int     `yaml:"minCommandLength"`
	MaxCommandLength       int     `yaml:"maxCommandLength"`
	RedundantWordPenalty   float64 `yaml:"redundantWordPenalty"`
	UngroundedTokenPenalty float64 `yaml:"ungroundedTokenPenalty"`
	TopK                   int     `yaml:"topK"`
}

// GrammarConfig locates the declarative command-grammar description.
type GrammarConfig struct {
	SyntaxPath       string `yaml:"syntaxPath"`
	MaxPipelineDepth int    `yaml:"maxPipelineDepth"`
}

// PhraseTableConfig locates the gzip-compressed phrase-alignment table.
type PhraseTableConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Parser.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (p ParserConfig) validate() error {
	if p.MinCommandLength < 0 {
		return fmt.Errorf("parser.minCommandLength must be >= 0, got %d", p.MinCommandLength)
	}
	if p.MaxCommandLength < p.MinCommandLength {
		return fmt.Errorf("parser.maxCommandLength (%d) must be >= minCommandLength (%d)",
			p.MaxCommandLength, p.MinCommandLength)
	}
	if p.TopK < 1 {
		return fmt.Errorf("parser.topK must be >= 1, got %d", p.TopK)
	}
	return nil
}

// defaultConfig returns a Config with defaults suitable for local
// development.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "nlcmd",
			User:            "nlcmd",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			ConsumerGroup: "nlcmd-translator",
			Topics: KafkaTopics{
				TranslateEvents: "translate-events",
			},
		},
		Parser: ParserConfig{
			MinCommandLength:       2,
			MaxCommandLength:       10,
			RedundantWordPenalty:   0.0,
			UngroundedTokenPenalty: -1e-5,
			TopK:                   50,
		},
		Grammar: GrammarConfig{
			SyntaxPath:       "data/primitive_cmds_grammar.json",
			MaxPipelineDepth: 3,
		},
		PhraseTable: PhraseTableConfig{
			Path: "data/phrase-table.gz",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// applyEnvOverrides reads NC_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NC_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("NC_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("NC_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("NC_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("NC_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("NC_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("NC_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("NC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("NC_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("NC_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("NC_GRAMMAR_SYNTAX_PATH"); v != "" {
		cfg.Grammar.SyntaxPath = v
	}
	if v := os.Getenv("NC_PHRASE_TABLE_PATH"); v != "" {
		cfg.PhraseTable.Path = v
	}
	if v := os.Getenv("NC_PARSER_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Parser.TopK = k
		}
	}
	if v := os.Getenv("NC_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NC_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
