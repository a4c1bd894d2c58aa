// Package config loads process configuration from flags, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"

	"github.com/vsinha/mrpsim/pkg/application/services/demand"
	"github.com/vsinha/mrpsim/pkg/application/services/simulation"
	"github.com/vsinha/mrpsim/pkg/domain/entities"
)

// Environment variables carry the MRPSIM_ prefix, e.g. MRPSIM_STATE_PATH.
const Prefix = "MRPSIM"

// ErrHelpWanted is returned by Load after printing usage
var ErrHelpWanted = conf.ErrHelpWanted

// Config holds every setting of the mrpsim command
type Config struct {
	// Args holds the subcommand and its positional arguments
	Args conf.Args

	Catalog struct {
		Path   string `conf:"default:data/catalog.json,help:catalog file or scenario directory"`
		Format string `conf:"default:json,help:json or csv"`
	}
	State struct {
		Kind string `conf:"default:file,help:file or sqlite"`
		Path string `conf:"default:estado.json"`
	}
	Sim struct {
		DailyCapacity int64   `conf:"default:10"`
		DemandMean    float64 `conf:"default:5"`
		DemandStdDev  float64 `conf:"default:2"`
		BaseLeadTime  int     `conf:"default:3"`
		OrdersPerDay  int     `conf:"default:1"`
		Seed          uint64  `conf:"default:0,help:zero picks a random seed"`
		StartDate     string  `conf:"help:day 1 as YYYY-MM-DD or empty for today"`
	}
	Log struct {
		Level  string `conf:"default:info"`
		Format string `conf:"default:console,help:json or console"`
	}
	HTTP struct {
		Addr string `conf:"default:127.0.0.1:8080"`
	}
	Output string `conf:"default:text,help:text or json"`

	// Subcommand flags
	Days     int   `conf:"default:1"`
	Order    int   `conf:"default:0"`
	Product  int   `conf:"default:0"`
	Supplier int   `conf:"default:0"`
	Material int   `conf:"default:0"`
	Qty      int64 `conf:"default:0"`
	Limit    int   `conf:"default:0,help:maximum events or critical path materials to print or zero for all"`
}

// Load reads .env when present, then environment variables and command-line
// flags. When --help is given the usage text is returned with ErrHelpWanted.
func Load() (*Config, string, error) {
	var cfg Config
	_ = godotenv.Load()

	help, err := conf.Parse(Prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			return nil, help, err
		}
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, "", nil
}

// Validate checks the enumerated settings
func (c *Config) Validate() error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"catalog format", c.Catalog.Format, []string{"json", "csv"}},
		{"state kind", c.State.Kind, []string{"file", "sqlite"}},
		{"log format", c.Log.Format, []string{"json", "console"}},
		{"output", c.Output, []string{"text", "json"}},
	}
	for _, check := range checks {
		if !contains(check.allowed, check.value) {
			return fmt.Errorf("%w: %s %q must be one of %v", entities.ErrConfiguration, check.name, check.value, check.allowed)
		}
	}
	if _, err := c.StartDate(); err != nil {
		return err
	}
	return nil
}

// StartDate parses the configured start date. Empty yields the zero date.
func (c *Config) StartDate() (entities.Date, error) {
	if c.Sim.StartDate == "" {
		return entities.Date{}, nil
	}
	date, err := entities.ParseDate(c.Sim.StartDate)
	if err != nil {
		return entities.Date{}, fmt.Errorf("%w: start date: %v", entities.ErrConfiguration, err)
	}
	return date, nil
}

// Demand returns the demand generator settings
func (c *Config) Demand() demand.Params {
	return demand.Params{
		Mean:         c.Sim.DemandMean,
		StdDev:       c.Sim.DemandStdDev,
		BaseLeadTime: c.Sim.BaseLeadTime,
		OrdersPerDay: c.Sim.OrdersPerDay,
	}
}

// Simulation converts the settings into a simulation configuration
func (c *Config) Simulation() (simulation.Config, error) {
	start, err := c.StartDate()
	if err != nil {
		return simulation.Config{}, err
	}
	return simulation.Config{
		DailyCapacity: entities.Quantity(c.Sim.DailyCapacity),
		Demand:        c.Demand(),
		StartDate:     start,
		Seed:          c.Sim.Seed,
	}, nil
}

// Command returns the subcommand, empty when none was given
func (c *Config) Command() string {
	return c.Args.Num(0)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
