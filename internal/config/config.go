package config // package config loads application configuration from a YAML file and environment variables

import (
	"fmt"     // fmt wraps errors with the offending key
	"os"      // os provides access to environment variables and the config file
	"strconv" // strconv converts strings to other types
	"strings" // strings joins the list of missing keys

	"github.com/joho/godotenv" // godotenv loads a local .env file into the environment
	"gopkg.in/yaml.v3"         // yaml decodes the optional config file
)

// LogConfig controls the zap logger built at startup.  When File is set the
// output is also written to a rotating file.
type LogConfig struct {
	Level      string `yaml:"level"`        // debug, info, warn or error
	Format     string `yaml:"format"`       // json or console
	File       string `yaml:"file"`         // optional path of the rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`  // rotate after this many megabytes
	MaxBackups int    `yaml:"max_backups"`  // number of rotated files to keep
	MaxAgeDays int    `yaml:"max_age_days"` // days to keep rotated files
}

// Config holds all runtime configuration values.  Values come from the
// defaults below, then the YAML file, then environment variables, so the
// environment always wins.
type Config struct {
	Env          string    `yaml:"env"`            // application environment (e.g. "dev", "prod")
	Port         string    `yaml:"port"`           // HTTP port to listen on
	DBUser       string    `yaml:"db_user"`        // database username
	DBPass       string    `yaml:"db_pass"`        // database password (optional)
	DBHost       string    `yaml:"db_host"`        // database host address
	DBPort       string    `yaml:"db_port"`        // database port number
	DBName       string    `yaml:"db_name"`        // database name
	JWTSecret    string    `yaml:"jwt_secret"`     // secret used to sign JWTs
	AccessTTLMin int       `yaml:"access_ttl_min"` // access token time-to-live in minutes
	BcryptCost   int       `yaml:"bcrypt_cost"`    // bcrypt cost for password hashing
	FrontendURL  string    `yaml:"frontend_url"`   // allowed CORS origin
	AMQPURL      string    `yaml:"amqp_url"`       // broker URL; empty disables event publishing
	Log          LogConfig `yaml:"log"`
}

// Default returns the configuration used before any file or environment
// variable is applied.
func Default() Config {
	return Config{
		Env:          "dev",
		Port:         "5000",
		DBPort:       "3306",
		AccessTTLMin: 7 * 24 * 60,
		BcryptCost:   10,
		FrontendURL:  "http://localhost:3000",
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// Load reads .env (if present), the YAML file at path (or CONFIG_FILE when
// path is empty) and environment overrides.  Missing required values are
// reported together in a single error.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // a missing .env is not an error

	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DSNParams returns the database connection parameters in the order
// database.Open expects them.
func (c Config) DSNParams() (user, pass, host, port, name string) {
	return c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName
}

func applyEnv(cfg *Config) error {
	overrideStr(&cfg.Env, "APP_ENV")
	overrideStr(&cfg.Port, "APP_PORT")
	overrideStr(&cfg.DBUser, "DB_USER")
	overrideStr(&cfg.DBPass, "DB_PASS")
	overrideStr(&cfg.DBHost, "DB_HOST")
	overrideStr(&cfg.DBPort, "DB_PORT")
	overrideStr(&cfg.DBName, "DB_NAME")
	overrideStr(&cfg.JWTSecret, "JWT_SECRET")
	overrideStr(&cfg.FrontendURL, "FRONTEND_URL")
	overrideStr(&cfg.AMQPURL, "AMQP_URL")
	overrideStr(&cfg.Log.Level, "LOG_LEVEL")
	overrideStr(&cfg.Log.Format, "LOG_FORMAT")
	overrideStr(&cfg.Log.File, "LOG_FILE")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.AccessTTLMin, "ACCESS_TOKEN_TTL_MIN"},
		{&cfg.BcryptCost, "BCRYPT_COST"},
		{&cfg.Log.MaxSizeMB, "LOG_MAX_SIZE_MB"},
		{&cfg.Log.MaxBackups, "LOG_MAX_BACKUPS"},
		{&cfg.Log.MaxAgeDays, "LOG_MAX_AGE_DAYS"},
	}
	for _, it := range ints {
		if err := overrideInt(it.dst, it.key); err != nil {
			return err
		}
	}
	return nil
}

// validate reports every required value that is still empty.
func (c Config) validate() error {
	required := []struct {
		key, val string
	}{
		{"DB_USER", c.DBUser},
		{"DB_HOST", c.DBHost},
		{"DB_PORT", c.DBPort},
		{"DB_NAME", c.DBName},
		{"JWT_SECRET", c.JWTSecret},
	}
	var missing []string
	for _, r := range required {
		if r.val == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	if c.AccessTTLMin <= 0 {
		return fmt.Errorf("invalid ACCESS_TOKEN_TTL_MIN: %d", c.AccessTTLMin)
	}
	return nil
}

// overrideStr replaces *dst with the environment value when it is set.
func overrideStr(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// overrideInt is like overrideStr but converts the value into an integer.
func overrideInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid int for %s: %q", key, v)
	}
	*dst = n
	return nil
}
