package settings

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Settings holds the server configuration read from the environment
type Settings struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`

	RulesDir     string `env:"RULES_DIR" envDefault:"configs"`
	DefaultRules string `env:"DEFAULT_RULES" envDefault:"classic"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	SessionsDir  string `env:"SESSIONS_DIR" envDefault:"sessions"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"data/sessions.db"`

	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"10m"`

	Log LogSettings

	Ngrok NgrokSettings
}

// LogSettings configures the zap logger
type LogSettings struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// NgrokSettings configures the optional public tunnel
type NgrokSettings struct {
	Enabled   bool   `env:"NGROK_ENABLED" envDefault:"false"`
	AuthToken string `env:"NGROK_AUTHTOKEN"`
	Domain    string `env:"NGROK_DOMAIN"`
}

// Load reads an optional .env file from envFile and parses the environment.
// Variables already set in the process environment win over the file.
func Load(envFile string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks value ranges that the env tags cannot express
func (s *Settings) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("PORT must be between 0 and 65535, got %d", s.Port)
	}

	switch s.StoreBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, file, sqlite, got %q", s.StoreBackend)
	}

	if s.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", s.SessionTTL)
	}
	if s.SessionSweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive, got %s", s.SessionSweepInterval)
	}

	if s.Ngrok.Enabled && s.Ngrok.AuthToken == "" {
		return errors.New("NGROK_AUTHTOKEN is required when NGROK_ENABLED is set")
	}

	return nil
}

// Addr returns the listen address
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
