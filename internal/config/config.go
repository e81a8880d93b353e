// Package config reads the process configuration from environment variables.
package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/myrjola/interrogation/internal/errors"
)

var ErrInvalidConfig = errors.NewSentinel("invalid configuration")

const (
	ReplyProviderScripted = "scripted"
	ReplyProviderOpenAI   = "openai"
)

type Config struct {
	// Addr is the address the HTTP server listens on. Use port 0 for a random port.
	Addr string `env:"INTERROGATION_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the database file path or ":memory:".
	SqliteURL string `env:"INTERROGATION_SQLITE_URL" envDefault:"./interrogation.sqlite"`
	// ScenarioDir holds case files that are loaded on start.
	ScenarioDir   string        `env:"INTERROGATION_SCENARIO_DIR"    envDefault:"./scenarios"`
	ReplyProvider string        `env:"INTERROGATION_REPLY_PROVIDER"  envDefault:"scripted"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"INTERROGATION_OPENAI_BASE_URL"`
	OpenAIModel   string        `env:"INTERROGATION_OPENAI_MODEL"`
	ReplyTimeout  time.Duration `env:"INTERROGATION_REPLY_TIMEOUT"   envDefault:"20s"`
	HistoryLimit  int           `env:"INTERROGATION_HISTORY_LIMIT"   envDefault:"10"`
	// PprofAddr enables the pprof server when set.
	PprofAddr string `env:"INTERROGATION_PPROF_ADDR"`
}

// Parse reads the configuration from environ, a map of environment variables, and validates it.
func Parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil { //nolint:exhaustruct
		return cfg, errors.Wrap(errors.Join(ErrInvalidConfig, err), "parse environment")
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Environ returns the process environment as a map.
func Environ(environ []string) map[string]string {
	return env.ToMap(environ)
}

func (c Config) validate() error {
	var problems []error
	switch c.ReplyProvider {
	case ReplyProviderScripted:
	case ReplyProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			problems = append(problems, errors.New("OPENAI_API_KEY is required for the openai reply provider"))
		}
	default:
		problems = append(problems, errors.New("unknown reply provider",
			slog.String("reply_provider", c.ReplyProvider)))
	}
	if c.ReplyTimeout <= 0 {
		problems = append(problems, errors.New("reply timeout must be positive"))
	}
	if c.HistoryLimit <= 0 {
		problems = append(problems, errors.New("history limit must be positive"))
	}
	if c.SqliteURL == "" {
		problems = append(problems, errors.New("sqlite url is empty"))
	}
	if len(problems) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, problems...)...)
	}
	return nil
}
