package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Completion CompletionConfig
	Perplexity PerplexityConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	Generation GenerationConfig
	Reddit     RedditConfig
	Twitter    TwitterConfig
	RateLimit  RateLimitConfig
	S3         S3Settings
	CORS       CORSConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host string
	Port string
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
	// MigrationsDir holds the postgres *.sql migrations
	MigrationsDir string
}

// DSN builds the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL builds the postgres connection URL used by the migration runner
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	URL string
}

// Enabled reports whether a redis server is configured
func (r RedisConfig) Enabled() bool { return r.URL != "" }

type JWTConfig struct {
	Secret string
}

// CompletionConfig selects the provider for each completion task
type CompletionConfig struct {
	Provider        string
	KeywordProvider string
	PlanProvider    string
	Timeout         time.Duration
}

type PerplexityConfig struct {
	APIKey string
	APIURL string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GeminiConfig struct {
	APIKey    string
	Model     string
	PlanModel string
}

type GenerationConfig struct {
	TargetCount    int
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxJitter time.Duration
	MaxKeywords    int
	Research       bool
	CacheTTL       time.Duration
	TopicsFile     string
}

type RedditConfig struct {
	Enabled       bool
	BaseURL       string
	UserAgent     string
	RequestDelay  time.Duration
	MaxPosts      int
	MaxSubreddits int
}

type TwitterConfig struct {
	Enabled     bool
	BearerToken string
	BaseURL     string
	MaxPosts    int
}

type RateLimitConfig struct {
	GenerationLimit int
	Window          time.Duration
}

// S3Settings configures plan export
type S3Settings struct {
	Enabled    bool
	Bucket     string
	Region     string
	Endpoint   string
	PresignTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level string
}

// secretKeys maps Docker secret file names to configuration keys
var secretKeys = map[string]string{
	"db_user":              "database.user",
	"db_password":          "database.password",
	"jwt_secret":           "jwt.secret",
	"redis_url":            "redis.url",
	"perplexity_api_key":   "perplexity.api_key",
	"openai_api_key":       "openai.api_key",
	"gemini_api_key":       "gemini.api_key",
	"twitter_bearer_token": "twitter.bearer_token",
}

// LoadConfig reads configuration from defaults, an optional config.yaml,
// environment variables and Docker secrets, in increasing priority, and
// validates it for the current environment.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v, err := newViper()
	if err != nil {
		return nil, err
	}

	switch env {
	case CI:
		loadCIOverrides(v)
	case Development, Production:
		if err := loadSecrets(v, secretsDir()); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	case Test:
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg := fromViper(v)
	cfg.Environment = env

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "ideaforge")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.sqlite_path", "ideaforge.db")
	v.SetDefault("database.migrations_dir", "migrations")

	v.SetDefault("redis.url", "")
	v.SetDefault("jwt.secret", "")

	v.SetDefault("completion.provider", "perplexity")
	v.SetDefault("completion.keyword_provider", "gemini")
	v.SetDefault("completion.plan_provider", "gemini")
	v.SetDefault("completion.timeout", 60*time.Second)

	v.SetDefault("perplexity.api_key", "")
	v.SetDefault("perplexity.api_url", "https://api.perplexity.ai/chat/completions")
	v.SetDefault("perplexity.model", "sonar")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.plan_model", "gemini-1.5-pro-latest")

	v.SetDefault("generation.target_count", 3)
	v.SetDefault("generation.retry_attempts", 3)
	v.SetDefault("generation.retry_base_delay", time.Second)
	v.SetDefault("generation.retry_max_jitter", time.Second)
	v.SetDefault("generation.max_keywords", 5)
	v.SetDefault("generation.research", true)
	v.SetDefault("generation.cache_ttl", time.Hour)
	v.SetDefault("generation.topics_file", "")

	v.SetDefault("reddit.enabled", false)
	v.SetDefault("reddit.base_url", "https://www.reddit.com")
	v.SetDefault("reddit.user_agent", "linux:ideaforge-research-bot:v1.0.0")
	v.SetDefault("reddit.request_delay", time.Second)
	v.SetDefault("reddit.max_posts", 20)
	v.SetDefault("reddit.max_subreddits", 4)

	v.SetDefault("twitter.enabled", false)
	v.SetDefault("twitter.bearer_token", "")
	v.SetDefault("twitter.base_url", "https://api.twitter.com")
	v.SetDefault("twitter.max_posts", 15)

	v.SetDefault("ratelimit.generation_limit", 10)
	v.SetDefault("ratelimit.window", time.Hour)

	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.bucket", "ideaforge-plans")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_ttl", 24*time.Hour)

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("log.level", "info")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Server = ServerConfig{Host: v.GetString("server.host"), Port: v.GetString("server.port")}
	cfg.Database = DatabaseConfig{
		Driver:        strings.ToLower(v.GetString("database.driver")),
		Host:          v.GetString("database.host"),
		Port:          v.GetString("database.port"),
		User:          v.GetString("database.user"),
		Password:      v.GetString("database.password"),
		Name:          v.GetString("database.name"),
		SSLMode:       v.GetString("database.ssl_mode"),
		SQLitePath:    v.GetString("database.sqlite_path"),
		MigrationsDir: v.GetString("database.migrations_dir"),
	}
	cfg.Redis = RedisConfig{URL: v.GetString("redis.url")}
	cfg.JWT = JWTConfig{Secret: v.GetString("jwt.secret")}

	cfg.Completion = CompletionConfig{
		Provider:        strings.ToLower(v.GetString("completion.provider")),
		KeywordProvider: strings.ToLower(v.GetString("completion.keyword_provider")),
		PlanProvider:    strings.ToLower(v.GetString("completion.plan_provider")),
		Timeout:         v.GetDuration("completion.timeout"),
	}
	cfg.Perplexity = PerplexityConfig{
		APIKey: v.GetString("perplexity.api_key"),
		APIURL: v.GetString("perplexity.api_url"),
		Model:  v.GetString("perplexity.model"),
	}
	cfg.OpenAI = OpenAIConfig{
		APIKey:  v.GetString("openai.api_key"),
		BaseURL: v.GetString("openai.base_url"),
		Model:   v.GetString("openai.model"),
	}
	cfg.Gemini = GeminiConfig{
		APIKey:    v.GetString("gemini.api_key"),
		Model:     v.GetString("gemini.model"),
		PlanModel: v.GetString("gemini.plan_model"),
	}

	cfg.Generation = GenerationConfig{
		TargetCount:    v.GetInt("generation.target_count"),
		RetryAttempts:  v.GetInt("generation.retry_attempts"),
		RetryBaseDelay: v.GetDuration("generation.retry_base_delay"),
		RetryMaxJitter: v.GetDuration("generation.retry_max_jitter"),
		MaxKeywords:    v.GetInt("generation.max_keywords"),
		Research:       v.GetBool("generation.research"),
		CacheTTL:       v.GetDuration("generation.cache_ttl"),
		TopicsFile:     v.GetString("generation.topics_file"),
	}
	cfg.Reddit = RedditConfig{
		Enabled:       v.GetBool("reddit.enabled"),
		BaseURL:       v.GetString("reddit.base_url"),
		UserAgent:     v.GetString("reddit.user_agent"),
		RequestDelay:  v.GetDuration("reddit.request_delay"),
		MaxPosts:      v.GetInt("reddit.max_posts"),
		MaxSubreddits: v.GetInt("reddit.max_subreddits"),
	}
	cfg.Twitter = TwitterConfig{
		Enabled:     v.GetBool("twitter.enabled"),
		BearerToken: v.GetString("twitter.bearer_token"),
		BaseURL:     v.GetString("twitter.base_url"),
		MaxPosts:    v.GetInt("twitter.max_posts"),
	}
	cfg.RateLimit = RateLimitConfig{
		GenerationLimit: v.GetInt("ratelimit.generation_limit"),
		Window:          v.GetDuration("ratelimit.window"),
	}
	cfg.S3 = S3Settings{
		Enabled:    v.GetBool("s3.enabled"),
		Bucket:     v.GetString("s3.bucket"),
		Region:     v.GetString("s3.region"),
		Endpoint:   v.GetString("s3.endpoint"),
		PresignTTL: v.GetDuration("s3.presign_ttl"),
	}
	cfg.CORS = CORSConfig{AllowedOrigins: splitCSV(v.GetString("cors.allowed_origins"))}
	cfg.Log = LogConfig{Level: v.GetString("log.level")}

	return cfg
}

// loadCIOverrides maps the CI secret variables onto their configuration keys
func loadCIOverrides(v *viper.Viper) {
	if pw := os.Getenv("TEST_DB_PASSWORD"); pw != "" {
		v.Set("database.password", pw)
	}
	if secret := os.Getenv("TEST_JWT_SECRET"); secret != "" {
		v.Set("jwt.secret", secret)
	}
	if url := os.Getenv("TEST_REDIS_URL"); url != "" {
		v.Set("redis.url", url)
	}
}

// loadSecrets overrides configuration with any Docker secrets present in dir
func loadSecrets(v *viper.Viper, dir string) error {
	for name, key := range secretKeys {
		value, err := readSecretFile(dir, name)
		if err != nil {
			return err
		}
		if value != "" {
			v.Set(key, value)
		}
	}
	return nil
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecretFile reads a Docker secret. A missing file is not an error.
func readSecretFile(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read secret %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
