package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides, e.g. EVERYTOOLS_APP_PORT
const EnvPrefix = "EVERYTOOLS"

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	RequestLog RequestLogConfig
	Tools      ToolsConfig
	Scraper    ScraperConfig
	Web        WebConfig
	Swagger    SwaggerConfig
	Metrics    MetricsConfig
	Telemetry  TelemetryConfig
	Profiling  ProfilingConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Host string
	Port string
}

// IsProduction reports whether the app runs in production
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// Addr returns the listen address
func (a AppConfig) Addr() string {
	return a.Host + ":" + a.Port
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	AutoMigrate     bool
	MigrationsPath  string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig holds the admin API credentials and JWT settings
type AuthConfig struct {
	JWTSecret         string
	JWTIssuer         string
	TokenExpiration   time.Duration
	AdminUsername     string
	AdminPasswordHash string // bcrypt hash; the admin API is disabled when empty
}

// AdminEnabled reports whether admin endpoints are served
func (a AuthConfig) AdminEnabled() bool {
	return a.AdminUsername != "" && a.AdminPasswordHash != ""
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	ShutdownTimeout  time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	Compression      bool
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// CacheConfig configures the response cache
type CacheConfig struct {
	Enabled    bool
	Backend    string // redis, memory
	KeyPrefix  string
	MaxEntries int
}

// RateLimitConfig configures per-endpoint rate limiting
type RateLimitConfig struct {
	Enabled   bool
	Backend   string // redis, memory
	KeyPrefix string
}

// RequestLogConfig configures request auditing
type RequestLogConfig struct {
	Enabled bool
}

// ToolsConfig holds external binaries and upstream service settings
type ToolsConfig struct {
	FFprobePath      string
	YtDlpPath        string
	CommandTimeout   time.Duration
	UpstreamTimeout  time.Duration
	UpstreamRPS      float64
	UpstreamBurst    int
	TranslateURL     string
	TranslateAPIKey  string
	IPAPIURL         string
	GitHubAPIURL     string
	GitHubToken      string
	FastDLURL        string
	TikTokOEmbedURL  string
	SaveTikURL       string
	UserAgents       []string
	BreakerThreshold float64
}

// ScraperConfig configures the headless browser scraper
type ScraperConfig struct {
	ChromePath  string
	Headless    bool
	GoogleURL   string
	PageTimeout time.Duration
}

// WebConfig holds static asset and template locations; empty uses the embedded assets
type WebConfig struct {
	StaticFolder   string
	TemplateFolder string
	DocsURL        string
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool
	LogsEnabled       bool
	MetricsInterval   time.Duration
}

// ProfilingConfig configures continuous profiling with Pyroscope
type ProfilingConfig struct {
	Enabled       bool
	ServerAddress string
	AuthToken     string
}

// Options controls where Load looks for configuration files
type Options struct {
	ConfigPaths []string // directories searched for config.yaml
	EnvFile     string   // dotenv file; defaults to .env, or .dev.env in development
}

// legacyEnv maps config keys to the unprefixed variable names accepted in .env files
var legacyEnv = map[string]string{
	"redis.host":        "REDIS_HOST",
	"redis.port":        "REDIS_PORT",
	"redis.username":    "REDIS_USERNAME",
	"redis.password":    "REDIS_PASSWORD",
	"redis.db":          "REDIS_DB",
	"database.user":     "POSTGRESQL_USERNAME",
	"database.password": "POSTGRESQL_PASSWORD",
	"database.dbname":   "POSTGRESQL_DB_NAME",
	"database.host":     "POSTGRESQL_HOST",
	"database.port":     "POSTGRESQL_PORT",
	"database.sslmode":  "POSTGRESQL_SSL_MODE",
}

// Load loads configuration from config.yaml, a dotenv file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with EVERYTOOLS_ prefix (e.g., EVERYTOOLS_DATABASE_PASSWORD)
// 2. Unprefixed variables such as POSTGRESQL_HOST, including those from .env
// 3. config.yaml
// 4. Built-in defaults
func Load() (*Config, error) {
	return LoadWithOptions(Options{})
}

// LoadWithOptions is Load with explicit search paths
func LoadWithOptions(opts Options) (*Config, error) {
	if len(opts.ConfigPaths) == 0 {
		opts.ConfigPaths = []string{".", "./config", "/app"}
	}

	if err := loadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range opts.ConfigPaths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Host: v.GetString("app.host"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("database.enabled"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
			MigrationsPath:  v.GetString("database.migrations_path"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Username: v.GetString("redis.username"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Auth: AuthConfig{
			JWTSecret:         v.GetString("auth.jwt_secret"),
			JWTIssuer:         v.GetString("auth.jwt_issuer"),
			TokenExpiration:   v.GetDuration("auth.token_expiration"),
			AdminUsername:     v.GetString("auth.admin_username"),
			AdminPasswordHash: v.GetString("auth.admin_password_hash"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:  v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			Compression:      v.GetBool("http.compression"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Cache: CacheConfig{
			Enabled:    v.GetBool("cache.enabled"),
			Backend:    v.GetString("cache.backend"),
			KeyPrefix:  v.GetString("cache.key_prefix"),
			MaxEntries: v.GetInt("cache.max_entries"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   v.GetBool("ratelimit.enabled"),
			Backend:   v.GetString("ratelimit.backend"),
			KeyPrefix: v.GetString("ratelimit.key_prefix"),
		},
		RequestLog: RequestLogConfig{
			Enabled: v.GetBool("request_log.enabled"),
		},
		Tools: ToolsConfig{
			FFprobePath:      v.GetString("tools.ffprobe_path"),
			YtDlpPath:        v.GetString("tools.ytdlp_path"),
			CommandTimeout:   v.GetDuration("tools.command_timeout"),
			UpstreamTimeout:  v.GetDuration("tools.upstream_timeout"),
			UpstreamRPS:      v.GetFloat64("tools.upstream_rps"),
			UpstreamBurst:    v.GetInt("tools.upstream_burst"),
			TranslateURL:     v.GetString("tools.translate_url"),
			TranslateAPIKey:  v.GetString("tools.translate_api_key"),
			IPAPIURL:         v.GetString("tools.ipapi_url"),
			GitHubAPIURL:     v.GetString("tools.github_api_url"),
			GitHubToken:      v.GetString("tools.github_token"),
			FastDLURL:        v.GetString("tools.fastdl_url"),
			TikTokOEmbedURL:  v.GetString("tools.tiktok_oembed_url"),
			SaveTikURL:       v.GetString("tools.savetik_url"),
			UserAgents:       v.GetStringSlice("tools.user_agents"),
			BreakerThreshold: v.GetFloat64("tools.breaker_failure_ratio"),
		},
		Scraper: ScraperConfig{
			ChromePath:  v.GetString("scraper.chrome_path"),
			Headless:    v.GetBool("scraper.headless"),
			GoogleURL:   v.GetString("scraper.google_url"),
			PageTimeout: v.GetDuration("scraper.page_timeout"),
		},
		Web: WebConfig{
			StaticFolder:   v.GetString("web.static_folder"),
			TemplateFolder: v.GetString("web.template_folder"),
			DocsURL:        v.GetString("web.docs_url"),
		},
		Swagger: SwaggerConfig{
			Enabled:    v.GetBool("swagger.enabled"),
			AllowedIPs: v.GetStringSlice("swagger.allowed_ips"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
			Path:    v.GetString("metrics.path"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
		},
		Profiling: ProfilingConfig{
			Enabled:       v.GetBool("profiling.enabled"),
			ServerAddress: v.GetString("profiling.server_address"),
			AuthToken:     v.GetString("profiling.auth_token"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv exports the entries of a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
		if env := os.Getenv(EnvPrefix + "_APP_ENV"); env == "" || env == "development" {
			if _, err := os.Stat(".dev.env"); err == nil {
				path = ".dev.env"
			}
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	ev := viper.New()
	ev.SetConfigFile(path)
	ev.SetConfigType("env")
	if err := ev.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading env file %s: %w", path, err)
	}

	for _, key := range ev.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, ev.GetString(key)); err != nil {
			return fmt.Errorf("export %s: %w", name, err)
		}
	}
	return nil
}

// setDefaults registers defaults for boolean switches, which cannot be told apart from false later
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.enabled", true)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("http.compression", true)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("request_log.enabled", true)
	v.SetDefault("scraper.headless", true)
	v.SetDefault("swagger.enabled", true)
	v.SetDefault("metrics.enabled", true)
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "everytoolsapi"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Host == "" {
		cfg.App.Host = "0.0.0.0"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "13579"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "everytoolsapi"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.MigrationsPath == "" {
		cfg.Database.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Auth.JWTIssuer == "" {
		cfg.Auth.JWTIssuer = "everytoolsapi"
	}
	if cfg.Auth.TokenExpiration == 0 {
		cfg.Auth.TokenExpiration = time.Hour
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 120 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "redis"
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "everytoolsapi:cache:"
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 10000
	}
	if cfg.RateLimit.Backend == "" {
		cfg.RateLimit.Backend = "redis"
	}
	if cfg.RateLimit.KeyPrefix == "" {
		cfg.RateLimit.KeyPrefix = "everytoolsapi:ratelimit:"
	}
	if cfg.Tools.FFprobePath == "" {
		cfg.Tools.FFprobePath = "ffprobe"
	}
	if cfg.Tools.YtDlpPath == "" {
		cfg.Tools.YtDlpPath = "yt-dlp"
	}
	if cfg.Tools.CommandTimeout == 0 {
		cfg.Tools.CommandTimeout = 60 * time.Second
	}
	if cfg.Tools.UpstreamTimeout == 0 {
		cfg.Tools.UpstreamTimeout = 10 * time.Second
	}
	if cfg.Tools.UpstreamRPS == 0 {
		cfg.Tools.UpstreamRPS = 5
	}
	if cfg.Tools.UpstreamBurst == 0 {
		cfg.Tools.UpstreamBurst = 10
	}
	if cfg.Tools.TranslateURL == "" {
		cfg.Tools.TranslateURL = "https://libretranslate.com/translate"
	}
	if cfg.Tools.IPAPIURL == "" {
		cfg.Tools.IPAPIURL = "http://ip-api.com/json/"
	}
	if cfg.Tools.GitHubAPIURL == "" {
		cfg.Tools.GitHubAPIURL = "https://api.github.com"
	}
	if cfg.Tools.FastDLURL == "" {
		cfg.Tools.FastDLURL = "https://fastdl.app/api/convert"
	}
	if cfg.Tools.TikTokOEmbedURL == "" {
		cfg.Tools.TikTokOEmbedURL = "https://www.tiktok.com/oembed"
	}
	if cfg.Tools.SaveTikURL == "" {
		cfg.Tools.SaveTikURL = "https://savetik.co/api/ajaxSearch"
	}
	if cfg.Tools.BreakerThreshold == 0 {
		cfg.Tools.BreakerThreshold = 0.6
	}
	if cfg.Scraper.GoogleURL == "" {
		cfg.Scraper.GoogleURL = "https://www.google.com/search"
	}
	if cfg.Scraper.PageTimeout == 0 {
		cfg.Scraper.PageTimeout = 30 * time.Second
	}
	if cfg.Web.DocsURL == "" {
		cfg.Web.DocsURL = "https://everytoolsapi.docs.apiary.io"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Profiling.ServerAddress == "" {
		cfg.Profiling.ServerAddress = "http://localhost:4040"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	for name, backend := range map[string]string{"cache.backend": c.Cache.Backend, "ratelimit.backend": c.RateLimit.Backend} {
		if backend != "redis" && backend != "memory" {
			return fmt.Errorf("%s must be 'redis' or 'memory', got %q", name, backend)
		}
	}
	if (c.Cache.Backend == "redis" && c.Cache.Enabled || c.RateLimit.Backend == "redis" && c.RateLimit.Enabled) && !c.Redis.Enabled {
		return fmt.Errorf("redis.enabled must be true when the cache or rate limiter uses the redis backend")
	}
	if c.RequestLog.Enabled && !c.Database.Enabled {
		return fmt.Errorf("database.enabled must be true when request_log.enabled is true")
	}

	if c.Auth.AdminEnabled() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters when the admin API is enabled")
	}

	if c.App.IsProduction() {
		if c.Database.Enabled && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.Enabled && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	if c.Tools.BreakerThreshold <= 0 || c.Tools.BreakerThreshold > 1 {
		return fmt.Errorf("tools.breaker_failure_ratio must be in (0, 1], got %f", c.Tools.BreakerThreshold)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
