package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Session     SessionConfig     `mapstructure:"session"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Analysis    AnalysisConfig    `mapstructure:"analysis"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Records     RecordsConfig     `mapstructure:"records"`
	Security    SecurityConfig    `mapstructure:"security"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SessionConfig selects where per-client session state lives.
// Store is "redis" or "memory".
type SessionConfig struct {
	Store         string        `mapstructure:"store"`
	TTL           time.Duration `mapstructure:"ttl"`
	EncryptionKey string        `mapstructure:"encryption_key"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	FingerprintKey string        `mapstructure:"fingerprint_key"`
}

// CredentialsConfig selects the client credential backend.
// Driver is one of static, postgres, mysql, sqlite, mongo.
type CredentialsConfig struct {
	Driver   string       `mapstructure:"driver"`
	SeedFile string       `mapstructure:"seed_file"`
	Table    string       `mapstructure:"table"`
	MySQL    MySQLConfig  `mapstructure:"mysql"`
	SQLite   SQLiteConfig `mapstructure:"sqlite"`
	Mongo    MongoConfig  `mapstructure:"mongo"`
}

type MySQLConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	TLS      bool   `mapstructure:"tls"`
}

func (c MySQLConfig) DSN() string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		c.User, c.Password, c.Host, c.Port, c.Database)
	if c.TLS {
		dsn += "&tls=true"
	}
	return dsn
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type MongoConfig struct {
	URI        string        `mapstructure:"uri"`
	Database   string        `mapstructure:"database"`
	Collection string        `mapstructure:"collection"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LLMConfig struct {
	DefaultProvider string          `mapstructure:"default_provider"`
	Gemini          GeminiConfig    `mapstructure:"gemini"`
	Vertex          VertexConfig    `mapstructure:"vertex"`
	OpenAI          OpenAIConfig    `mapstructure:"openai"`
	Anthropic       AnthropicConfig `mapstructure:"anthropic"`
	Ollama          OllamaConfig    `mapstructure:"ollama"`
	DeepSeek        DeepSeekConfig  `mapstructure:"deepseek"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type VertexConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Location  string `mapstructure:"location"`
	Model     string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type OllamaConfig struct {
	Host         string `mapstructure:"host"`
	DefaultModel string `mapstructure:"default_model"`
}

type DeepSeekConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// AnalysisConfig tunes the section fan-out. A zero CallTimeout disables the
// per-call deadline.
type AnalysisConfig struct {
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// StorageConfig selects the document store. Driver is "local" or "gcs".
type StorageConfig struct {
	Driver          string `mapstructure:"driver"`
	LocalDir        string `mapstructure:"local_dir"`
	GCSBucket       string `mapstructure:"gcs_bucket"`
	MandateKey      string `mapstructure:"mandate_key"`
	MandateFilename string `mapstructure:"mandate_filename"`
	MaxUploadSize   int64  `mapstructure:"max_upload_size"`
	ValidatePDF     bool   `mapstructure:"validate_pdf"`
}

// RecordsConfig selects where completed onboardings are recorded.
// Driver is one of log, postgres, firestore.
type RecordsConfig struct {
	Driver     string `mapstructure:"driver"`
	ProjectID  string `mapstructure:"project_id"`
	Collection string `mapstructure:"collection"`
}

type SecurityConfig struct {
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
	LoginRateLimit RateLimitConfig `mapstructure:"login_rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// SetConfigFile bypasses the search path, so a missing file surfaces
		// as a PathError rather than ConfigFileNotFoundError.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the driver selections and the settings they require.
func (c *Config) Validate() error {
	switch c.Session.Store {
	case "redis", "memory":
	default:
		return fmt.Errorf("session.store must be redis or memory, got %q", c.Session.Store)
	}

	switch c.Credentials.Driver {
	case "static", "postgres", "mysql", "sqlite", "mongo":
	default:
		return fmt.Errorf("unsupported credentials.driver %q", c.Credentials.Driver)
	}

	switch c.Storage.Driver {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir cannot be empty")
		}
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("storage.gcs_bucket cannot be empty")
		}
	default:
		return fmt.Errorf("unsupported storage.driver %q", c.Storage.Driver)
	}

	switch c.Records.Driver {
	case "log", "postgres":
	case "firestore":
		if c.Records.ProjectID == "" {
			return fmt.Errorf("records.project_id is required for firestore")
		}
	default:
		return fmt.Errorf("unsupported records.driver %q", c.Records.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret cannot be empty")
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("storage.max_upload_size must be > 0")
	}

	return nil
}

// IsDevelopment reports whether the process runs outside production.
func (c *Config) IsDevelopment() bool {
	return os.Getenv("ENV") != "production"
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.middleware_timeout", "120s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "portal")
	v.SetDefault("database.database", "portal")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)

	// Redis
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Session
	v.SetDefault("session.store", "redis")
	v.SetDefault("session.ttl", "8h")

	// Auth
	v.SetDefault("auth.access_token_ttl", "8h")

	// Credentials
	v.SetDefault("credentials.driver", "static")
	v.SetDefault("credentials.table", "clients")
	v.SetDefault("credentials.mysql.host", "localhost")
	v.SetDefault("credentials.mysql.port", 3306)
	v.SetDefault("credentials.mysql.database", "portal")
	v.SetDefault("credentials.sqlite.path", "./data/clients.db")
	v.SetDefault("credentials.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("credentials.mongo.database", "portal")
	v.SetDefault("credentials.mongo.collection", "clients")
	v.SetDefault("credentials.mongo.timeout", "10s")

	// LLM
	v.SetDefault("llm.default_provider", "gemini")
	v.SetDefault("llm.gemini.model", "gemini-1.5-flash")
	v.SetDefault("llm.vertex.location", "us-central1")
	v.SetDefault("llm.vertex.model", "gemini-1.5-pro")
	v.SetDefault("llm.ollama.default_model", "llama3")

	// Analysis
	v.SetDefault("analysis.call_timeout", "90s")

	// Storage
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./data/documents")
	v.SetDefault("storage.mandate_key", "mandate/AM LAW INC FICA FEE MANDATE 2025.pdf")
	v.SetDefault("storage.mandate_filename", "AM_LAW_INC_FICA_FEE_MANDATE_2025.pdf")
	v.SetDefault("storage.max_upload_size", 10<<20)
	v.SetDefault("storage.validate_pdf", true)

	// Records
	v.SetDefault("records.driver", "log")
	v.SetDefault("records.collection", "onboarding_records")

	// Security
	v.SetDefault("security.rate_limit.requests_per_minute", 30)
	v.SetDefault("security.rate_limit.burst", 5)
	v.SetDefault("security.login_rate_limit.requests_per_minute", 10)
	v.SetDefault("security.login_rate_limit.burst", 5)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")
}

func bindEnvVars(v *viper.Viper) {
	// Database
	v.BindEnv("database.password", "POSTGRES_PASSWORD")
	v.BindEnv("database.host", "POSTGRES_HOST")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.host", "REDIS_HOST")

	// Session
	v.BindEnv("session.store", "SESSION_STORE")
	v.BindEnv("session.encryption_key", "SESSION_ENCRYPTION_KEY")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.fingerprint_key", "FINGERPRINT_KEY")

	// Credentials
	v.BindEnv("credentials.driver", "CREDENTIALS_DRIVER")
	v.BindEnv("credentials.mysql.password", "MYSQL_PASSWORD")
	v.BindEnv("credentials.mongo.uri", "MONGO_URI")

	// LLM API Keys
	v.BindEnv("llm.default_provider", "LLM_PROVIDER")
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.vertex.project_id", "GOOGLE_CLOUD_PROJECT")
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.deepseek.api_key", "DEEPSEEK_API_KEY")
	v.BindEnv("llm.ollama.host", "OLLAMA_HOST")

	// Storage
	v.BindEnv("storage.driver", "STORAGE_DRIVER")
	v.BindEnv("storage.gcs_bucket", "DOCUMENTS_BUCKET")

	// Records
	v.BindEnv("records.driver", "RECORDS_DRIVER")
	v.BindEnv("records.project_id", "GOOGLE_CLOUD_PROJECT")
}
