package main

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/forgemail"
	"github.com/dmitrymomot/forgemail/pkg/logger"
	"github.com/dmitrymomot/forgemail/pkg/mailbox"
)

// Config is the example application configuration.
type Config struct {
	Log             logger.Config
	Mailbox         mailbox.Config
	Mailer          forgemail.Options
	Address         string        `env:"ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	DevMailbox      bool          `env:"DEV_MAILBOX" envDefault:"true"`
}

// loadConfig reads .env files when present and parses the environment.
func loadConfig(files ...string) (Config, error) {
	for _, f := range files {
		// Missing files are fine; the environment may be set directly
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Mailer.From == "" {
		cfg.Mailer.From = "Forgemail Example <example@localhost>"
	}
	return cfg, nil
}
