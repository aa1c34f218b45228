package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Retrieve RetrieveConfig `yaml:"retrieve"`
	Export   ExportConfig   `yaml:"export"`
	Database DatabaseConfig `yaml:"database"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// FetchConfig holds WordReference client settings.
type FetchConfig struct {
	BaseURL             string        `yaml:"base_url"          env:"FETCH_BASE_URL"          env-default:"https://www.wordreference.com"`
	UserAgent           string        `yaml:"user_agent"        env:"FETCH_USER_AGENT"        env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/56.0.2924.87 Safari/537.36"`
	Timeout             time.Duration `yaml:"timeout"           env:"FETCH_TIMEOUT"           env-default:"30s"`
	MaxPages            int           `yaml:"max_pages"         env:"FETCH_MAX_PAGES"         env-default:"1"`
	ChallengeMarkersRaw string        `yaml:"challenge_markers" env:"FETCH_CHALLENGE_MARKERS" env-default:"captcha,cf-challenge,challenge-form,are you a robot"`
	ProxiesRaw          string        `yaml:"proxies"           env:"FETCH_PROXIES"`
	ProxyListPath       string        `yaml:"proxy_list_path"   env:"FETCH_PROXY_LIST_PATH"`

	// RequestsPerMinute throttles outgoing requests; 0 means unlimited.
	RequestsPerMinute int `yaml:"requests_per_minute" env:"FETCH_REQUESTS_PER_MINUTE"`

	// ChallengeMarkers is parsed from ChallengeMarkersRaw during validation.
	ChallengeMarkers []string `yaml:"-" env:"-"`
	// Proxies is parsed from ProxiesRaw during validation.
	Proxies []string `yaml:"-" env:"-"`
}

// RetrieveConfig holds chunked retrieval settings.
// MaxChallengeRetries <= 0 disables the retry budget (unbounded requeue).
type RetrieveConfig struct {
	ChunkSize           int           `yaml:"chunk_size"            env:"RETRIEVE_CHUNK_SIZE"            env-default:"30"`
	MaxChallengeRetries int           `yaml:"max_challenge_retries" env:"RETRIEVE_MAX_CHALLENGE_RETRIES" env-default:"20"`
	RequeueDelay        time.Duration `yaml:"requeue_delay"         env:"RETRIEVE_REQUEUE_DELAY"         env-default:"5s"`
}

// ExportConfig holds dictionary export settings.
type ExportConfig struct {
	Output          string `yaml:"output"           env:"EXPORT_OUTPUT"           env-default:"wrdict"`
	Header          string `yaml:"header"           env:"EXPORT_HEADER"           env-default:"term,altterm,pronunciation,definition,pos,examples,audio"`
	NoHeader        bool   `yaml:"no_header"        env:"EXPORT_NO_HEADER"`
	ExcludeExamples bool   `yaml:"exclude_examples" env:"EXPORT_EXCLUDE_EXAMPLES"`
}

// HeaderLine returns the header.csv content, or "" when disabled.
func (c ExportConfig) HeaderLine() string {
	if c.NoHeader {
		return ""
	}
	return c.Header
}

// DatabaseConfig holds PostgreSQL settings for the optional result cache.
// An empty DSN disables the cache.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	BatchSize       int           `yaml:"batch_size"         env:"DATABASE_BATCH_SIZE"         env-default:"200"`
}

// Enabled reports whether the result cache is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.DSN != ""
}
