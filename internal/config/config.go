package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App     AppConfig
	Storage StorageConfig
	DB      DBConfig
	Redis   RedisConfig
	Auth    AuthConfig
	CRM     CRMConfig
}

type AppConfig struct {
	Env  string
	Port int
}

// StorageConfig selects where key/value slots (calendar events) are kept.
// Accepts: memory, redis, postgres
type StorageConfig struct {
	Backend string
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
	Host      string
	Port      int
	KeyPrefix string
}

type AuthConfig struct {
	JWTSecret       string
	JWTIssuer       string
	JWTAudience     string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Demo login account. Defaults are applied outside production only.
	DemoEmail    string
	DemoPassword string
	DemoRole     string
}

// CRMConfig tunes the in-memory domain store and the campaign wizard.
type CRMConfig struct {
	// ActivityLogCap bounds the activity log; 0 keeps every entry.
	ActivityLogCap int
	LaunchDelay    time.Duration
	SeedMockData   bool
}

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND")))

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := optionalInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := optionalInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}
	c.Redis.KeyPrefix = strings.TrimSpace(os.Getenv("REDIS_KEY_PREFIX"))

	c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	c.Auth.JWTAudience = strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))
	// Duration env vars are optional; defaults applied in Validate() based on env.
	c.Auth.AccessTokenTTL = mustDuration("JWT_ACCESS_TTL")
	c.Auth.RefreshTokenTTL = mustDuration("JWT_REFRESH_TTL")
	c.Auth.DemoEmail = strings.TrimSpace(os.Getenv("DEMO_USER_EMAIL"))
	c.Auth.DemoPassword = os.Getenv("DEMO_USER_PASSWORD")
	c.Auth.DemoRole = strings.ToLower(strings.TrimSpace(os.Getenv("DEMO_USER_ROLE")))

	{
		n, err := optionalInt("ACTIVITY_LOG_CAP")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.CRM.ActivityLogCap = n
		if strings.TrimSpace(os.Getenv("ACTIVITY_LOG_CAP")) == "" {
			c.CRM.ActivityLogCap = -1
		}
	}
	c.CRM.LaunchDelay = mustDuration("WIZARD_LAUNCH_DELAY")
	{
		b, err := optionalBool("SEED_MOCK_DATA", true)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.CRM.SeedMockData = b
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the config and fills defaults in place.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Host == "" {
			errs = append(errs, errors.New("REDIS_HOST is required when STORAGE_BACKEND=redis"))
		}
		if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
			errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
		}
	case BackendPostgres:
		errs = append(errs, c.validateDB()...)
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be one of memory, redis, postgres, got %q", c.Storage.Backend))
	}

	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.IsProduction() {
		if c.Auth.JWTIssuer == "" {
			errs = append(errs, errors.New("JWT_ISSUER is required in production"))
		}
		if c.Auth.JWTAudience == "" {
			errs = append(errs, errors.New("JWT_AUDIENCE is required in production"))
		}
	}

	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RefreshTokenTTL <= 0 {
		c.Auth.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
		errs = append(errs, errors.New("JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL"))
	}
	errs = append(errs, c.validateDemoUser()...)

	if c.CRM.ActivityLogCap < 0 {
		c.CRM.ActivityLogCap = 500
	}
	if c.CRM.LaunchDelay <= 0 {
		c.CRM.LaunchDelay = time.Second
	}

	return joinErrors(errs)
}

func (c *Config) validateDB() []error {
	var errs []error
	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required when STORAGE_BACKEND=postgres"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required when STORAGE_BACKEND=postgres"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required when STORAGE_BACKEND=postgres"))
	}
	if c.DB.SSLMode == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}
	return errs
}

func (c *Config) validateDemoUser() []error {
	var errs []error
	if !c.IsProduction() {
		if c.Auth.DemoEmail == "" {
			c.Auth.DemoEmail = "demo@salescrm.io"
		}
		if c.Auth.DemoPassword == "" {
			c.Auth.DemoPassword = "demo1234"
		}
	}
	if c.Auth.DemoRole == "" {
		c.Auth.DemoRole = "admin"
	}
	if c.Auth.DemoEmail == "" {
		errs = append(errs, errors.New("DEMO_USER_EMAIL is required in production"))
	}
	if len(c.Auth.DemoPassword) < 6 {
		errs = append(errs, errors.New("DEMO_USER_PASSWORD must be at least 6 characters"))
	}
	switch c.Auth.DemoRole {
	case "admin", "member", "viewer":
	default:
		errs = append(errs, fmt.Errorf("DEMO_USER_ROLE must be one of admin, member, viewer, got %q", c.Auth.DemoRole))
	}
	return errs
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

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalInt(key string) (int, error) {
	if strings.TrimSpace(os.Getenv(key)) == "" {
		return 0, nil
	}
	return mustInt(key)
}

func optionalBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
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
