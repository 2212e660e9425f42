package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var knownProviders = map[string]bool{
	"perplexity": true,
	"openai":     true,
	"deepseek":   true,
	"gemini":     true,
}

// ValidateConfig checks cfg against the requirements of its environment and
// returns every problem found, joined.
func ValidateConfig(cfg *Config) error {
	env := cfg.Environment
	if env == "" {
		env = GetEnvironment()
	}
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Server.Port == "" {
		add("server.port", "is required")
	}
	if cfg.JWT.Secret == "" && !env.IsTest() {
		add("jwt.secret", "is required in %s", env)
	}

	switch cfg.Database.Driver {
	case "postgres":
		for field, value := range map[string]string{
			"database.host": cfg.Database.Host,
			"database.port": cfg.Database.Port,
			"database.user": cfg.Database.User,
			"database.name": cfg.Database.Name,
		} {
			if value == "" {
				add(field, "is required for postgres")
			}
		}
		if cfg.Database.Password == "" && (env.IsProduction() || env == CI) {
			add("database.password", "is required in %s", env)
		}
	case "sqlite":
		if cfg.Database.SQLitePath == "" {
			add("database.sqlite_path", "is required for sqlite")
		}
	default:
		add("database.driver", "unsupported driver %q", cfg.Database.Driver)
	}

	keyOptional := env.IsDevelopment() || env.IsTest()
	for field, provider := range map[string]string{
		"completion.provider":         cfg.Completion.Provider,
		"completion.keyword_provider": cfg.Completion.KeywordProvider,
		"completion.plan_provider":    cfg.Completion.PlanProvider,
	} {
		if !knownProviders[provider] {
			add(field, "unknown provider %q", provider)
			continue
		}
		if !keyOptional && cfg.APIKey(provider) == "" {
			add(field, "%s api key is required in %s", provider, env)
		}
	}
	if cfg.Completion.Timeout <= 0 {
		add("completion.timeout", "must be positive")
	}

	g := cfg.Generation
	if g.TargetCount < 1 || g.TargetCount > 10 {
		add("generation.target_count", "must be between 1 and 10, got %d", g.TargetCount)
	}
	if g.RetryAttempts < 1 {
		add("generation.retry_attempts", "must be at least 1")
	}
	if g.RetryBaseDelay < 0 || g.RetryMaxJitter < 0 {
		add("generation.retry_base_delay", "backoff durations must not be negative")
	}
	if g.MaxKeywords < 1 {
		add("generation.max_keywords", "must be at least 1")
	}

	if cfg.RateLimit.GenerationLimit < 1 || cfg.RateLimit.Window <= 0 {
		add("ratelimit", "generation_limit and window must be positive")
	}
	if cfg.S3.Enabled {
		if cfg.S3.Bucket == "" {
			add("s3.bucket", "is required when s3 is enabled")
		}
		if cfg.S3.Region == "" {
			add("s3.region", "is required when s3 is enabled")
		}
	}

	return errors.Join(errs...)
}

// APIKey returns the configured credential for a completion provider
func (c *Config) APIKey(provider string) string {
	switch provider {
	case "perplexity":
		return c.Perplexity.APIKey
	case "openai", "deepseek":
		return c.OpenAI.APIKey
	case "gemini":
		return c.Gemini.APIKey
	default:
		return ""
	}
}
