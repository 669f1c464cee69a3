package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration required by the API process and the CLI.
// All values come from env (optionally seeded from .env files, see LoadEnvFiles).
// No business logic should depend on raw environment variables.
type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Auth   AuthConfig
	Retell RetellConfig
	LLM    LLMConfig

	// OutboundTimeout bounds every call to the voice provider and the text generator.
	OutboundTimeout time.Duration
}

type AppConfig struct {
	Env      string
	Port     int
	LogLevel string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int

	// AgentCacheTTL is how long agent configurations stay cached.
	AgentCacheTTL time.Duration
}

type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration
}

type RetellConfig struct {
	APIKey     string
	AgentID    string
	FromNumber string
	BaseURL    string
}

type LLMConfig struct {
	// Provider selects the text generation backend: openai or anthropic.
	Provider string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
}

const (
	LLMProviderOpenAI    = "openai"
	LLMProviderAnthropic = "anthropic"

	defaultRetellBaseURL   = "https://api.retellai.com"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultAnthropicModel  = "claude-3-5-haiku-latest"
	defaultOutboundTimeout = 20 * time.Second
	defaultAgentCacheTTL   = 10 * time.Minute
	defaultAccessTokenTTL  = 12 * time.Hour
)

// LoadEnvFiles loads the given dotenv files if they exist.
// Variables already present in the environment are never overridden.
func LoadEnvFiles(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func Load() (Config, error) {
	if err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	c.App.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	c.App.Port, parseErrs = collectInt(parseErrs, "APP_PORT")

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port, parseErrs = collectInt(parseErrs, "DB_PORT")
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	c.Redis.Port, parseErrs = collectInt(parseErrs, "REDIS_PORT")
	c.Redis.AgentCacheTTL, parseErrs = collectDuration(parseErrs, "AGENT_CACHE_TTL")

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	c.Auth.AccessTokenTTL, parseErrs = collectDuration(parseErrs, "JWT_ACCESS_TTL")

	c.Retell.APIKey = os.Getenv("RETELL_API_KEY")
	c.Retell.AgentID = strings.TrimSpace(os.Getenv("RETELL_AGENT_ID"))
	c.Retell.FromNumber = strings.TrimSpace(os.Getenv("RETELL_FROM_NUMBER"))
	c.Retell.BaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("RETELL_BASE_URL")), "/")

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	c.LLM.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.LLM.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	c.LLM.OpenAIBaseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	c.LLM.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	c.LLM.AnthropicModel = strings.TrimSpace(os.Getenv("ANTHROPIC_MODEL"))
	c.LLM.AnthropicBaseURL = strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL"))

	c.OutboundTimeout, parseErrs = collectDuration(parseErrs, "OUTBOUND_TIMEOUT")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadDB reads only the database settings. The operator CLI uses it so that
// migrations do not require provider credentials.
func LoadDB() (Config, error) {
	if err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return Config{}, fmt.Errorf("load env files: %w", err)
	}

	c := Config{}
	var errs []error
	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	c.DB.Port, errs = collectInt(errs, "DB_PORT")
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))
	if c.DB.SSLMode == "" && !c.IsProduction() {
		c.DB.SSLMode = "disable"
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		errs = append(errs, errors.New("DB_SSLMODE is required in production"))
	} else if !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}
	if err := joinErrors(errs); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadAuth reads only the token signing settings.
func LoadAuth() (AuthConfig, error) {
	if err := LoadEnvFiles(".env", ".env.local"); err != nil {
		return AuthConfig{}, fmt.Errorf("load env files: %w", err)
	}

	a := AuthConfig{
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   strings.TrimSpace(os.Getenv("JWT_ISSUER")),
		JWTAudience: strings.TrimSpace(os.Getenv("JWT_AUDIENCE")),
	}
	var errs []error
	a.AccessTokenTTL, errs = collectDuration(errs, "JWT_ACCESS_TTL")
	if a.AccessTokenTTL <= 0 {
		a.AccessTokenTTL = defaultAccessTokenTTL
	}
	if a.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if err := joinErrors(errs); err != nil {
		return AuthConfig{}, err
	}
	return a, nil
}

// applyDefaults fills optional values. Production-only requirements are enforced in Validate.
func (c *Config) applyDefaults() {
	if c.DB.SSLMode == "" && !c.IsProduction() {
		c.DB.SSLMode = "disable"
	}
	if c.Redis.AgentCacheTTL <= 0 {
		c.Redis.AgentCacheTTL = defaultAgentCacheTTL
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = defaultAccessTokenTTL
	}
	if c.Retell.BaseURL == "" {
		c.Retell.BaseURL = defaultRetellBaseURL
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = LLMProviderOpenAI
	}
	if c.LLM.OpenAIModel == "" {
		c.LLM.OpenAIModel = defaultOpenAIModel
	}
	if c.LLM.AnthropicModel == "" {
		c.LLM.AnthropicModel = defaultAnthropicModel
	}
	if c.OutboundTimeout == 0 {
		c.OutboundTimeout = defaultOutboundTimeout
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.LogLevel != "" && !isValidLogLevel(c.App.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.App.LogLevel))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.DB.SSLMode == "" {
		errs = append(errs, errors.New("DB_SSLMODE is required in production"))
	} else if !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() && c.Auth.JWTIssuer == "" {
		errs = append(errs, errors.New("JWT_ISSUER is required in production"))
	}

	if c.Retell.APIKey == "" {
		errs = append(errs, errors.New("RETELL_API_KEY is required"))
	}
	if c.Retell.AgentID == "" {
		errs = append(errs, errors.New("RETELL_AGENT_ID is required"))
	}
	if c.Retell.FromNumber == "" {
		errs = append(errs, errors.New("RETELL_FROM_NUMBER is required"))
	}

	switch c.LLM.Provider {
	case LLMProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required when LLM_PROVIDER=openai"))
		}
	case LLMProviderAnthropic:
		if c.LLM.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic"))
		}
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be one of openai, anthropic, got %q", c.LLM.Provider))
	}

	if c.OutboundTimeout < time.Second || c.OutboundTimeout > time.Minute {
		errs = append(errs, fmt.Errorf("OUTBOUND_TIMEOUT must be between 1s and 60s, got %s", c.OutboundTimeout))
	}

	return joinErrors(errs)
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

func (c Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func collectInt(errs []error, key string) (int, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, append(errs, fmt.Errorf("%s is required", key))
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be an integer, got %q", key, v))
	}
	return n, errs
}

// collectDuration parses an optional duration; empty means "use the default".
func collectDuration(errs []error, key string) (time.Duration, []error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, errs
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, append(errs, fmt.Errorf("%s must be a duration, got %q", key, v))
	}
	return d, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch v {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
