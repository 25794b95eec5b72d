// Package config loads ukcgt settings from an optional YAML file, a .env
// file and UKCGT_ environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	cgt "github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001"
	"github.com/skyersoft/uk-shares-and-stocks-tax-calculation-sub001/date"
)

// TaxYear overrides or adds the allowances of one tax year.
type TaxYear struct {
	Year              string `mapstructure:"year" validate:"required"`
	AnnualExemption   string `mapstructure:"annual_exemption" validate:"required,numeric"`
	DividendAllowance string `mapstructure:"dividend_allowance" validate:"required,numeric"`
	RateChangeDate    string `mapstructure:"rate_change_date" validate:"omitempty,datetime=2006-01-02"`
}

// Config holds application configuration.
type Config struct {
	LogLevel  string    `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string    `mapstructure:"log_format" validate:"oneof=text json"`
	Workers   int       `mapstructure:"workers" validate:"min=0,max=256"`
	Database  string    `mapstructure:"database"` // sqlite file receiving results, optional
	TaxYears  []TaxYear `mapstructure:"tax_years" validate:"dive"`
}

var validate = validator.New()

// Load reads the configuration. With an empty path, ukcgt.yaml is looked up
// in the working directory then in $HOME/.config/ukcgt; a missing file is
// not an error.
func Load(path string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("workers", 0)
	v.SetDefault("database", "")
	v.SetEnvPrefix("UKCGT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cannot read config %q: %w", path, err)
		}
	} else {
		v.SetConfigName("ukcgt")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ukcgt")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("cannot read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field formats and that every tax year parses.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	_, err := c.Allowances()
	return err
}

// Allowances returns the built-in allowances overridden by the configured
// tax years.
func (c *Config) Allowances() (cgt.AllowanceTable, error) {
	t := cgt.DefaultAllowances()
	for _, ty := range c.TaxYears {
		year, err := date.ParseTaxYear(ty.Year)
		if err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		exemption, err := decimal.NewFromString(ty.AnnualExemption)
		if err != nil {
			return nil, fmt.Errorf("invalid config: tax year %s: annual_exemption: %w", year, err)
		}
		dividend, err := decimal.NewFromString(ty.DividendAllowance)
		if err != nil {
			return nil, fmt.Errorf("invalid config: tax year %s: dividend_allowance: %w", year, err)
		}
		a := cgt.Allowances{AnnualExemption: cgt.GBP(exemption), DividendAllowance: cgt.GBP(dividend)}
		if ty.RateChangeDate != "" {
			d, err := date.Parse(ty.RateChangeDate)
			if err != nil {
				return nil, fmt.Errorf("invalid config: tax year %s: %w", year, err)
			}
			if !year.Contains(d) {
				return nil, fmt.Errorf("invalid config: tax year %s: rate change date %s is outside the year", year, d)
			}
			a.RateChangeDate = d
		}
		t[year] = a
	}
	return t, nil
}
