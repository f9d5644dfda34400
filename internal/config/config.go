// internal/config/config.go
//
// Runtime configuration for the solver CLI and HTTP server.
// Values are layered, later layers winning:
//   1. built-in defaults (Default)
//   2. an optional YAML file
//   3. a .env file in the working directory (loaded into the process env)
//   4. environment variables

package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const devSecret = "dev_secret_change_me"

// Config holds every tunable of the application.
type Config struct {
	Env           string        `yaml:"env"`            // "development" or "production"
	Port          string        `yaml:"port"`           // HTTP listen port
	LogLevel      string        `yaml:"log_level"`      // zerolog level name
	LogFormat     string        `yaml:"log_format"`     // "json" or "pretty"
	WordsFile     string        `yaml:"words_file"`     // vocabulary file; empty = embedded list
	DBPath        string        `yaml:"db_path"`        // SQLite history; empty disables it
	JWTSecret     string        `yaml:"jwt_secret"`     // HS256 key for session tokens
	TokenTTL      time.Duration `yaml:"token_ttl"`      // session token lifetime
	Workers       int           `yaml:"workers"`        // parallelism for table build and ranking
	MaxRows       int           `yaml:"max_rows"`       // rows per game
	MaxVocabulary int           `yaml:"max_vocabulary"` // largest word list a client may upload
	ClientOrigin  string        `yaml:"client_origin"`  // CORS origin
	DailySalt     string        `yaml:"daily_salt"`     // salt for date-based target selection
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Env:           "development",
		Port:          "5175",
		LogLevel:      "info",
		LogFormat:     "json",
		DBPath:        "",
		TokenTTL:      24 * time.Hour,
		Workers:       defaultWorkers(),
		MaxRows:       6,
		MaxVocabulary: 15000,
		ClientOrigin:  "http://localhost:5173",
		DailySalt:     "local_dev_salt",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty or the file does not exist), .env and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" && !cfg.Production() {
		cfg.JWTSecret = devSecret
	}
	return cfg, nil
}

// Production reports whether the app runs in production mode.
func (c *Config) Production() bool { return strings.EqualFold(c.Env, "production") }

// Pretty reports whether logs should go through the console writer.
func (c *Config) Pretty() bool { return strings.EqualFold(c.LogFormat, "pretty") }

// Validate checks values that would make the app misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.MaxRows < 1 {
		errs = append(errs, fmt.Errorf("max_rows must be positive, got %d", c.MaxRows))
	}
	if c.MaxVocabulary < 1 {
		errs = append(errs, fmt.Errorf("max_vocabulary must be positive, got %d", c.MaxVocabulary))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token_ttl must be positive, got %s", c.TokenTTL))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in production"))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is empty"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() error {
	str := map[string]*string{
		"APP_ENV":       &c.Env,
		"PORT":          &c.Port,
		"LOG_LEVEL":     &c.LogLevel,
		"LOG_FORMAT":    &c.LogFormat,
		"WORDS_FILE":    &c.WordsFile,
		"DB_PATH":       &c.DBPath,
		"JWT_SECRET":    &c.JWTSecret,
		"CLIENT_ORIGIN": &c.ClientOrigin,
		"DAILY_SALT":    &c.DailySalt,
	}
	for k, dst := range str {
		if v := os.Getenv(k); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"WORKERS":        &c.Workers,
		"MAX_ROWS":       &c.MaxRows,
		"MAX_VOCABULARY": &c.MaxVocabulary,
	}
	for k, dst := range ints {
		if v := os.Getenv(k); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("TOKEN_TTL_HOURS"); v != "" {
		h, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL_HOURS: %w", err)
		}
		c.TokenTTL = time.Duration(h) * time.Hour
	}
	return nil
}

func defaultWorkers() int {
	if n := runtime.NumCPU(); n > 1 {
		return n
	}
	return 1
}
