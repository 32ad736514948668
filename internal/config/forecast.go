package config

import (
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ForecastConfig holds the default parameters of the consumption
// forecasting engine. Request-level query parameters override these.
type ForecastConfig struct {
	DecayRate          float64 `mapstructure:"decayRate"`
	DaysAhead          int     `mapstructure:"daysAhead"`
	MinPurchases       int     `mapstructure:"minPurchases"`
	MaxAvgIntervalDays float64 `mapstructure:"maxAvgIntervalDays"`
	MaxDaysSinceLast   float64 `mapstructure:"maxDaysSinceLast"`
	MinConfidence      float64 `mapstructure:"minConfidence"`
}

func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		DecayRate:          0.02,
		DaysAhead:          4,
		MinPurchases:       3,
		MaxAvgIntervalDays: 60,
		MaxDaysSinceLast:   90,
		MinConfidence:      0.3,
	}
}

type ForecastConfigHolder struct {
	current atomic.Value // holds ForecastConfig
}

func NewForecastConfigHolder() (*ForecastConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("forecast")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/pantrysense/config") // Volume-mounted config
	v.AddConfigPath("/etc/pantrysense")            // System config
	v.AddConfigPath(".")                           // Current directory (dev mode)

	v.SetEnvPrefix("PANTRYSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultForecastConfig()
		v.SetDefault("forecast.decayRate", defaults.DecayRate)
		v.SetDefault("forecast.daysAhead", defaults.DaysAhead)
		v.SetDefault("forecast.minPurchases", defaults.MinPurchases)
		v.SetDefault("forecast.maxAvgIntervalDays", defaults.MaxAvgIntervalDays)
		v.SetDefault("forecast.maxDaysSinceLast", defaults.MaxDaysSinceLast)
		v.SetDefault("forecast.minConfidence", defaults.MinConfidence)
	}

	var cfg ForecastConfig
	if err := v.UnmarshalKey("forecast", &cfg); err != nil {
		return nil, err
	}
	if err := validateForecastConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ForecastConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ForecastConfig
		if err := v.UnmarshalKey("forecast", &updated); err != nil {
			log.Printf("[forecast-config] reload failed: %v", err)
			return
		}
		if err := validateForecastConfig(updated); err != nil {
			log.Printf("[forecast-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[forecast-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticForecastConfigHolder wraps a fixed config without file
// watching. Used by tests and one-shot tooling.
func NewStaticForecastConfigHolder(cfg ForecastConfig) *ForecastConfigHolder {
	holder := &ForecastConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *ForecastConfigHolder) Get() ForecastConfig {
	return h.current.Load().(ForecastConfig)
}

func validateForecastConfig(cfg ForecastConfig) error {
	if cfg.DecayRate < 0.001 || cfg.DecayRate > 0.1 {
		return fmt.Errorf("forecast.decayRate must be within [0.001, 0.1], got %v", cfg.DecayRate)
	}
	if cfg.DaysAhead < 1 || cfg.DaysAhead > 30 {
		return fmt.Errorf("forecast.daysAhead must be within [1, 30], got %d", cfg.DaysAhead)
	}
	if cfg.MinPurchases < 1 {
		return fmt.Errorf("forecast.minPurchases must be >= 1, got %d", cfg.MinPurchases)
	}
	if cfg.MaxAvgIntervalDays < 7 || cfg.MaxAvgIntervalDays > 180 {
		return fmt.Errorf("forecast.maxAvgIntervalDays must be within [7, 180], got %v", cfg.MaxAvgIntervalDays)
	}
	if cfg.MaxDaysSinceLast < 14 || cfg.MaxDaysSinceLast > 365 {
		return fmt.Errorf("forecast.maxDaysSinceLast must be within [14, 365], got %v", cfg.MaxDaysSinceLast)
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return fmt.Errorf("forecast.minConfidence must be within [0, 1], got %v", cfg.MinConfidence)
	}
	return nil
}
