package atm

import (
	"context"
	"flag"
	"fmt"

	"github.com/sethvargo/go-envconfig"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	PIN            string `env:"ATM_PIN, overwrite"`
	InitialBalance string `env:"ATM_INITIAL_BALANCE, overwrite"`
	LogLevel       string `env:"LOG_LEVEL, overwrite"`

	// PINHashCost is the bcrypt cost used for the in-memory PIN hash.
	PINHashCost int

	balance decimal.Decimal
}

func NewConfigFromFlags(args []string) (*Config, error) {
	return loadConfig(args, envconfig.OsLookuper())
}

func loadConfig(args []string, lookuper envconfig.Lookuper) (*Config, error) {
	cfg := &Config{PINHashCost: bcrypt.DefaultCost}

	fs := flag.NewFlagSet("atm", flag.ContinueOnError)
	fs.StringVar(&cfg.PIN, "pin", "1234", "4-digit card PIN (env: ATM_PIN)")
	fs.StringVar(&cfg.InitialBalance, "balance", "1000", "Initial balance (env: ATM_INITIAL_BALANCE)")
	fs.StringVar(&cfg.LogLevel, "l", "warn", "Log level (debug|info|warn|error) (env: LOG_LEVEL)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !ValidPIN(c.PIN) {
		return ErrInvalidPIN
	}
	balance, err := decimal.NewFromString(c.InitialBalance)
	if err != nil {
		return fmt.Errorf("invalid initial balance %q: %w", c.InitialBalance, err)
	}
	if balance.IsNegative() {
		return ErrNegativeBalance
	}
	c.balance = balance
	return nil
}

// Balance is the opening balance parsed from InitialBalance.
func (c *Config) Balance() decimal.Decimal {
	return c.balance
}
