package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration.
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Social      SocialConfig      `yaml:"social"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Patterns    PatternConfig     `yaml:"patterns"`
	Profiles    ProfilesConfig    `yaml:"profiles"`
	Storage     StorageConfig     `yaml:"storage"`
	NATS        NATSConfig        `yaml:"nats"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// LLMConfig configures the synthesis service.
type LLMConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Enabled reports whether a synthesis service is configured.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// SearchConfig selects the default search provider.
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Topic    string        `yaml:"topic"`
	Tavily   TavilyConfig  `yaml:"tavily"`
	SearXNG  SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig configures the Tavily client.
type TavilyConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// SearXNGConfig configures the SearXNG client.
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// ExtractionConfig selects the full-text extraction backend.
// An empty ServiceURL uses in-process readability extraction.
type ExtractionConfig struct {
	ServiceURL string `yaml:"service_url"`
	UserAgent  string `yaml:"user_agent"`
}

// SocialConfig configures social mention sources.
type SocialConfig struct {
	APIKey string `yaml:"api_key"`
}

// ConcurrencyConfig is the outbound rate limit for the LLM and search providers.
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// PipelineConfig holds the run options. Durations are milliseconds.
type PipelineConfig struct {
	SourceTimeoutMs       int `yaml:"source_timeout_ms"`
	SourceConcurrency     int `yaml:"source_concurrency"`
	FetchLimit            int `yaml:"fetch_limit"`
	QueryCap              int `yaml:"query_cap"`
	EnrichmentConcurrency int `yaml:"enrichment_concurrency"`
	EnrichmentBudget      int `yaml:"enrichment_budget"`
	EnrichmentTimeoutMs   int `yaml:"enrichment_timeout_ms"`
	ExtractionConcurrency int `yaml:"extraction_concurrency"`
	ChunkCharLimit        int `yaml:"chunk_char_limit"`
	OverallDeadlineMs     int `yaml:"overall_deadline_ms"`
	RelevanceTopK         int `yaml:"relevance_top_k"`
}

// ProfilesConfig points at the organization profile provider.
type ProfilesConfig struct {
	Dir         string `yaml:"dir"`
	ProviderURL string `yaml:"provider_url"`
}

// StorageConfig selects the brief store.
type StorageConfig struct {
	Driver   string      `yaml:"driver"` // postgres, redis or memory
	Postgres DBConfig    `yaml:"postgres"`
	Redis    RedisConfig `yaml:"redis"`
}

// DBConfig configures the Postgres connection.
type DBConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// ConnString returns DSN or a keyword connection string built from the parts.
func (c DBConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// RedisConfig configures the Redis brief store.
type RedisConfig struct {
	URL        string `yaml:"url"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// NATSConfig configures signal publishing. Empty URL disables it.
type NATSConfig struct {
	URL                string `yaml:"url"`
	OpportunitySubject string `yaml:"opportunity_subject"`
	AlertSubject       string `yaml:"alert_subject"`
}

// ScheduleConfig drives periodic runs.
type ScheduleConfig struct {
	Cron          string   `yaml:"cron"`
	Organizations []string `yaml:"organizations"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Environment overrides, applied after the YAML file.
const (
	EnvLLMAPIKey    = "INTEL_RADAR_LLM_API_KEY"
	EnvTavilyAPIKey = "INTEL_RADAR_TAVILY_API_KEY"
	EnvDatabaseDSN  = "INTEL_RADAR_DATABASE_DSN"
	EnvRedisURL     = "INTEL_RADAR_REDIS_URL"
	EnvNATSURL      = "INTEL_RADAR_NATS_URL"
	EnvLogLevel     = "INTEL_RADAR_LOG_LEVEL"
	EnvHTTPAddr     = "INTEL_RADAR_HTTP_ADDR"
	EnvDeadlineMs   = "INTEL_RADAR_OVERALL_DEADLINE_MS"
)

// LoadConfig reads path, loads .env when present and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML and fills defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Scoring.fill()
	cfg.Patterns.fill()
	return cfg, nil
}

// Default returns a config usable without a file.
func Default() *Config {
	return &Config{
		Search:   SearchConfig{Provider: "tavily", Topic: "news"},
		Scoring:  DefaultScoring(),
		Patterns: DefaultPatterns(),
		Storage:  StorageConfig{Driver: "memory"},
		NATS: NATSConfig{
			OpportunitySubject: "intel.opportunities",
			AlertSubject:       "intel.alerts",
		},
		Server: ServerConfig{Addr: ":8000"},
		Log:    LogConfig{Level: "info"},
	}
}

// ApplyEnv overrides secrets and endpoints from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		EnvLLMAPIKey:    &c.LLM.APIKey,
		EnvTavilyAPIKey: &c.Search.Tavily.APIKey,
		EnvDatabaseDSN:  &c.Storage.Postgres.DSN,
		EnvRedisURL:     &c.Storage.Redis.URL,
		EnvNATSURL:      &c.NATS.URL,
		EnvLogLevel:     &c.Log.Level,
		EnvHTTPAddr:     &c.Server.Addr,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvDeadlineMs); ok && v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDeadlineMs, err)
		}
		c.Pipeline.OverallDeadlineMs = ms
	}
	return nil
}
