// Package config resolves runtime settings from a YAML file, a .env
// file, and FINLEDGER_* environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"

	"github.com/rumor-ml/commons.systems/finledger/internal/normalize"
)

// Config holds the settings every command shares.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`
	// Account is the default account label for rows without one.
	Account string `yaml:"account"`
	// Institution is recorded on accounts created during imports.
	Institution string `yaml:"institution"`
	// Currency is the ISO 4217 code recorded on new accounts.
	Currency string `yaml:"currency"`
	// CurrencySymbols are stripped from amount cells before parsing.
	CurrencySymbols []string `yaml:"currency_symbols"`
	// DateOrder resolves ambiguous slash dates: "mdy" or "dmy".
	DateOrder string `yaml:"date_order"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	p := normalize.DefaultPolicy()
	return Config{
		DBPath:          "finledger.db",
		Account:         "default",
		Institution:     "unknown",
		Currency:        "GBP",
		CurrencySymbols: p.CurrencySymbols,
		DateOrder:       string(p.DateOrder),
	}
}

// Load resolves the effective configuration. A missing config file or
// .env file is not an error; a present but malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %q: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"FINLEDGER_DB":          &c.DBPath,
		"FINLEDGER_ACCOUNT":     &c.Account,
		"FINLEDGER_INSTITUTION": &c.Institution,
		"FINLEDGER_CURRENCY":    &c.Currency,
		"FINLEDGER_DATE_ORDER":  &c.DateOrder,
	}
	for key, field := range overrides {
		if v := os.Getenv(key); v != "" {
			*field = v
		}
	}
	// FINLEDGER_SYMBOLS is a comma-separated list, e.g. "£,€,$".
	if v := os.Getenv("FINLEDGER_SYMBOLS"); v != "" {
		c.CurrencySymbols = strings.Split(v, ",")
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path cannot be empty")
	}
	if _, err := currency.ParseISO(c.Currency); err != nil {
		return fmt.Errorf("invalid currency %q: %w", c.Currency, err)
	}
	switch normalize.DateOrder(c.DateOrder) {
	case normalize.MonthDay, normalize.DayMonth:
	default:
		return fmt.Errorf("invalid date_order %q (must be %q or %q)",
			c.DateOrder, normalize.MonthDay, normalize.DayMonth)
	}
	return nil
}

// Policy builds the amount/date normalization policy for this config.
func (c *Config) Policy() normalize.Policy {
	return normalize.Policy{
		CurrencySymbols: c.CurrencySymbols,
		ThousandsSep:    ",",
		DateOrder:       normalize.DateOrder(c.DateOrder),
	}
}
