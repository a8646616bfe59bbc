package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned by Validate when no analyzer credential is configured.
var ErrMissingAPIKey = errors.New("LEAFDOC_ANALYZER_API_KEY is not set")

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	CORS     CORSConfig
	Analyzer AnalyzerConfig
	Upload   UploadConfig
	Storage  StorageConfig
	Session  SessionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in the production environment.
func (s *ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Verbose reports whether debug output (route table, gin debug warnings) is wanted.
func (l *LogConfig) Verbose() bool {
	return strings.EqualFold(strings.TrimSpace(l.Level), "debug")
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AnalyzerConfig holds settings for the vision model provider.
type AnalyzerConfig struct {
	Provider    string `mapstructure:"provider"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	Endpoint    string `mapstructure:"endpoint"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// Timeout returns the per-request timeout, defaulting to two minutes.
func (a *AnalyzerConfig) Timeout() time.Duration {
	if a.TimeoutSecs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(a.TimeoutSecs) * time.Second
}

// UploadConfig holds limits for uploaded images.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB * 1024 * 1024
}

// StorageConfig holds preview storage settings.
// Provider is one of "memory", "s3" or "minio".
type StorageConfig struct {
	Provider  string `mapstructure:"provider"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// SessionConfig holds session lifetime settings.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
}

// Validate reports configuration that makes analysis impossible.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Analyzer.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Load reads configuration from environment variables with the LEAFDOC_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LEAFDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.environment", "development")

	v.SetDefault("log.level", "debug")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Analyzer defaults
	v.SetDefault("analyzer.provider", "gemini")
	v.SetDefault("analyzer.api_key", "")
	v.SetDefault("analyzer.model", "")
	v.SetDefault("analyzer.endpoint", "")
	v.SetDefault("analyzer.timeout_secs", 120)

	v.SetDefault("upload.max_file_size_mb", 10)

	// Storage defaults
	v.SetDefault("storage.provider", "memory")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "leafdoc-previews")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.use_ssl", true)

	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.sweep_interval", "1m")
	v.SetDefault("session.cookie_secure", false)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "LEAFDOC_SERVER_PORT",
		"server.read_timeout":     "LEAFDOC_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "LEAFDOC_SERVER_WRITE_TIMEOUT",
		"server.environment":      "LEAFDOC_SERVER_ENVIRONMENT",
		"log.level":               "LEAFDOC_LOG_LEVEL",
		"cors.allowed_origins":    "LEAFDOC_CORS_ALLOWED_ORIGINS",
		"analyzer.provider":       "LEAFDOC_ANALYZER_PROVIDER",
		"analyzer.api_key":        "LEAFDOC_ANALYZER_API_KEY",
		"analyzer.model":          "LEAFDOC_ANALYZER_MODEL",
		"analyzer.endpoint":       "LEAFDOC_ANALYZER_ENDPOINT",
		"analyzer.timeout_secs":   "LEAFDOC_ANALYZER_TIMEOUT_SECS",
		"upload.max_file_size_mb": "LEAFDOC_UPLOAD_MAX_FILE_SIZE_MB",
		"storage.provider":        "LEAFDOC_STORAGE_PROVIDER",
		"storage.region":          "LEAFDOC_STORAGE_REGION",
		"storage.bucket":          "LEAFDOC_STORAGE_BUCKET",
		"storage.endpoint":        "LEAFDOC_STORAGE_ENDPOINT",
		"storage.access_key":      "LEAFDOC_STORAGE_ACCESS_KEY",
		"storage.secret_key":      "LEAFDOC_STORAGE_SECRET_KEY",
		"storage.use_ssl":         "LEAFDOC_STORAGE_USE_SSL",
		"session.ttl":             "LEAFDOC_SESSION_TTL",
		"session.sweep_interval":  "LEAFDOC_SESSION_SWEEP_INTERVAL",
		"session.cookie_secure":   "LEAFDOC_SESSION_COOKIE_SECURE",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if LEAFDOC_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LEAFDOC_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Analyzer = AnalyzerConfig{
		Provider:    v.GetString("analyzer.provider"),
		APIKey:      v.GetString("analyzer.api_key"),
		Model:       v.GetString("analyzer.model"),
		Endpoint:    v.GetString("analyzer.endpoint"),
		TimeoutSecs: v.GetInt("analyzer.timeout_secs"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Storage = StorageConfig{
		Provider:  v.GetString("storage.provider"),
		Region:    v.GetString("storage.region"),
		Bucket:    v.GetString("storage.bucket"),
		Endpoint:  v.GetString("storage.endpoint"),
		AccessKey: v.GetString("storage.access_key"),
		SecretKey: v.GetString("storage.secret_key"),
		UseSSL:    v.GetBool("storage.use_ssl"),
	}
	cfg.Session = SessionConfig{
		TTL:           v.GetDuration("session.ttl"),
		SweepInterval: v.GetDuration("session.sweep_interval"),
		CookieSecure:  v.GetBool("session.cookie_secure"),
	}

	return cfg, nil
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
