package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Café Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site        SiteConfig      `yaml:"site"`
	CatalogFile string          `yaml:"catalog_file" env:"CAFECORE_CATALOG_FILE"` // Path to the seat/zone catalog
	Database    DatabaseConfig  `yaml:"database"`
	MQTT        MQTTConfig      `yaml:"mqtt"`
	Redis       RedisConfig     `yaml:"redis"`
	API         APIConfig       `yaml:"api"`
	WebSocket   WebSocketConfig `yaml:"websocket"`
	InfluxDB    InfluxDBConfig  `yaml:"influxdb"`
	Logging     LoggingConfig   `yaml:"logging"`
	Security    SecurityConfig  `yaml:"security"`
	Presence    PresenceConfig  `yaml:"presence"`
	Proximity   ProximityConfig `yaml:"proximity"`
	Scoring     ScoringConfig   `yaml:"scoring"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path" env:"CAFECORE_DATABASE_PATH"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled" env:"CAFECORE_MQTT_ENABLED"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host" env:"CAFECORE_MQTT_HOST"`
	Port     int    `yaml:"port" env:"CAFECORE_MQTT_PORT"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username" env:"CAFECORE_MQTT_USERNAME"`
	Password string `yaml:"password" env:"CAFECORE_MQTT_PASSWORD"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// RedisConfig contains settings for the Redis pub/sub presence transport.
// When enabled, presence events published on Channel are fed into the
// same ingest path as MQTT events.
type RedisConfig struct {
	Enabled     bool          `yaml:"enabled" env:"CAFECORE_REDIS_ENABLED"`
	Addr        string        `yaml:"addr" env:"CAFECORE_REDIS_ADDR"`
	Password    string        `yaml:"password" env:"CAFECORE_REDIS_PASSWORD"`
	DB          int           `yaml:"db"`
	Channel     string        `yaml:"channel"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host" env:"CAFECORE_API_HOST"`
	Port     int              `yaml:"port" env:"CAFECORE_API_PORT"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`

	// PanelDir serves the counter display from disk instead of the
	// embedded copy. Empty uses the embedded board.
	PanelDir string `yaml:"panel_dir"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled" env:"CAFECORE_INFLUXDB_ENABLED"`
	URL           string `yaml:"url" env:"CAFECORE_INFLUXDB_URL"`
	Token         string `yaml:"token" env:"CAFECORE_INFLUXDB_TOKEN"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"CAFECORE_LOG_LEVEL"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret" env:"CAFECORE_JWT_SECRET"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// PresenceConfig controls the presence store and its liveness sweep.
type PresenceConfig struct {
	// HeartbeatTimeout is how long a presence may go without a heartbeat
	// (or move) before the sweep treats it as disconnected.
	// Default: 30s
	HeartbeatTimeout time.Duration `yaml:"heartbeat_timeout"`

	// SweepInterval is how often stale presences are purged.
	// Default: 5s
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// QueueSize is the buffer of the mutation queue.
	// Default: 256
	QueueSize int `yaml:"queue_size"`
}

// ProximityConfig controls spatial audio and the nearby-users list.
type ProximityConfig struct {
	MaxAudioRadius float64 `yaml:"max_audio_radius"` // Default: 10 units
	NearbyCap      int     `yaml:"nearby_cap"`       // Default: 5 entries
}

// ScoringConfig holds the seat recommendation weights and heuristics.
type ScoringConfig struct {
	SocialWeight   float64 `yaml:"social_weight"`
	NoiseWeight    float64 `yaml:"noise_weight"`
	ActivityWeight float64 `yaml:"activity_weight"`
	ComfortWeight  float64 `yaml:"comfort_weight"`

	// OccupancyPerUser converts a zone's occupant count into a 0..100
	// crowd level. Product-tuned heuristic.
	OccupancyPerUser float64 `yaml:"occupancy_per_user"`

	ActivityMismatchScore     float64 `yaml:"activity_mismatch_score"`
	BaseComfort               float64 `yaml:"base_comfort"`
	WorkStyleBonus            float64 `yaml:"work_style_bonus"`
	CollaborativeMinOccupants int     `yaml:"collaborative_min_occupants"`
	FocusedMaxOccupants       int     `yaml:"focused_max_occupants"`
	ReasonThreshold           int     `yaml:"reason_threshold"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: CAFECORE_SECTION_KEY
// For example: CAFECORE_DATABASE_PATH, CAFECORE_API_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "cafe-001",
			Name:     "Café",
			Timezone: "UTC",
		},
		CatalogFile: "configs/catalog.yaml",
		Database: DatabaseConfig{
			Path:        "./data/cafecore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "cafecore",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			Channel:     "cafecore.presence",
			DialTimeout: 5 * time.Second,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
		Presence: PresenceConfig{
			HeartbeatTimeout: 30 * time.Second,
			SweepInterval:    5 * time.Second,
			QueueSize:        256,
		},
		Proximity: ProximityConfig{
			MaxAudioRadius: 10,
			NearbyCap:      5,
		},
		Scoring: DefaultScoring(),
	}
}

// DefaultScoring returns the reference recommendation weights.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		SocialWeight:              0.35,
		NoiseWeight:               0.25,
		ActivityWeight:            0.20,
		ComfortWeight:             0.20,
		OccupancyPerUser:          25,
		ActivityMismatchScore:     50,
		BaseComfort:               75,
		WorkStyleBonus:            15,
		CollaborativeMinOccupants: 2,
		FocusedMaxOccupants:       2,
		ReasonThreshold:           70,
	}
}

// applyEnvOverrides overwrites fields tagged `env:"CAFECORE_..."` whose
// variable is set. Unset variables leave the YAML value in place.
func applyEnvOverrides(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parsing environment overrides: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.CatalogFile == "" {
		errs = append(errs, "catalog_file is required")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required when redis is enabled")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		errs = append(errs, "security.jwt.secret is required (set CAFECORE_JWT_SECRET environment variable)")
	} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	errs = append(errs, c.Presence.validate()...)
	errs = append(errs, c.Proximity.validate()...)
	errs = append(errs, c.Scoring.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (p PresenceConfig) validate() []string {
	var errs []string
	if p.HeartbeatTimeout <= 0 {
		errs = append(errs, "presence.heartbeat_timeout must be positive")
	}
	if p.SweepInterval <= 0 {
		errs = append(errs, "presence.sweep_interval must be positive")
	}
	if p.QueueSize < 0 {
		errs = append(errs, "presence.queue_size cannot be negative")
	}
	return errs
}

func (p ProximityConfig) validate() []string {
	var errs []string
	if p.MaxAudioRadius <= 0 {
		errs = append(errs, "proximity.max_audio_radius must be positive")
	}
	if p.NearbyCap < 0 {
		errs = append(errs, "proximity.nearby_cap cannot be negative")
	}
	return errs
}

func (s ScoringConfig) validate() []string {
	var errs []string
	weights := []struct {
		name  string
		value float64
	}{
		{"social_weight", s.SocialWeight},
		{"noise_weight", s.NoiseWeight},
		{"activity_weight", s.ActivityWeight},
		{"comfort_weight", s.ComfortWeight},
	}
	for _, w := range weights {
		if w.value < 0 || w.value > 1 {
			errs = append(errs, "scoring."+w.name+" must be between 0 and 1")
		}
	}
	if s.OccupancyPerUser < 0 {
		errs = append(errs, "scoring.occupancy_per_user cannot be negative")
	}
	if s.ActivityMismatchScore < 0 || s.ActivityMismatchScore > 100 {
		errs = append(errs, "scoring.activity_mismatch_score must be between 0 and 100")
	}
	if s.BaseComfort < 0 || s.BaseComfort > 100 {
		errs = append(errs, "scoring.base_comfort must be between 0 and 100")
	}
	if s.ReasonThreshold < 0 || s.ReasonThreshold > 100 {
		errs = append(errs, "scoring.reason_threshold must be between 0 and 100")
	}
	return errs
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
