package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"backtestd/internal/engine"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Service struct {
		Addr  string `mapstructure:"addr"`
		Debug bool   `mapstructure:"debug"`
	} `mapstructure:"service"`

	Dataset struct {
		// CSVDir is a directory of <instrument>_<segment>.csv files.
		CSVDir string `mapstructure:"csv_dir"`
		// PostgresDSN, when set, adds a database candle source.
		PostgresDSN string `mapstructure:"postgres_dsn"`
	} `mapstructure:"dataset"`

	Engine struct {
		FillPolicy   string `mapstructure:"fill_policy"`
		AllowFlip    bool   `mapstructure:"allow_flip"`
		PositionSize string `mapstructure:"position_size"`
	} `mapstructure:"engine"`
}

// Load reads the YAML config file and environment overrides
// (BACKTESTD_SERVICE_ADDR and friends).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("backtestd")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service.addr", ":5002")
	v.SetDefault("service.debug", false)
	v.SetDefault("dataset.csv_dir", "dataset")
	v.SetDefault("engine.fill_policy", string(engine.FillClose))
	v.SetDefault("engine.allow_flip", false)
	v.SetDefault("engine.position_size", "1")

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// EngineDefaults converts the configured execution policies into an engine
// config. Per-request overrides are applied on top by the server.
func (c *Config) EngineDefaults() (engine.Config, error) {
	size, err := decimal.NewFromString(c.Engine.PositionSize)
	if err != nil {
		return engine.Config{}, errors.Wrapf(err, "position_size %q", c.Engine.PositionSize)
	}
	return engine.Config{
		Fill:      engine.FillPolicy(c.Engine.FillPolicy),
		AllowFlip: c.Engine.AllowFlip,
		Size:      size,
	}, nil
}
