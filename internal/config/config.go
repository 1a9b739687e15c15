// Package config loads the engine's runtime knobs from the
// environment and an optional .env file.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/udp-edt/timetable-cpsat/internal/model"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the engine's environment-derived configuration, layered
// on top of model.DefaultConfig before the Entity Store overrides the
// grid shape (Days, SlotsPerDay, LunchWindow) from the data source.
type Config struct {
	Env string

	Log LogConfig

	TimeBudget              time.Duration
	Workers                 int
	LateThresholdOffset     int
	LateWeight              int64
	CapacityWeight          int64
	MediumWeightMultiplier  int64
	EmptyDayMeansUnavailable bool

	BisectionTimeoutPerTest time.Duration
}

// LogConfig controls the zap logger construction in internal/logging.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present) and the environment into a Config,
// falling back to setDefaults for anything unset. A missing .env file
// is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{
		Env: v.GetString("ENV"),
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		TimeBudget:               parseDuration(v.GetString("TIMETABLE_TIME_BUDGET"), 300*time.Second),
		Workers:                  v.GetInt("TIMETABLE_WORKERS"),
		LateThresholdOffset:      v.GetInt("TIMETABLE_LATE_THRESHOLD_OFFSET"),
		LateWeight:               v.GetInt64("TIMETABLE_LATE_WEIGHT"),
		CapacityWeight:           v.GetInt64("TIMETABLE_CAPACITY_WEIGHT"),
		MediumWeightMultiplier:   v.GetInt64("TIMETABLE_MEDIUM_WEIGHT_MULTIPLIER"),
		EmptyDayMeansUnavailable: v.GetBool("TIMETABLE_EMPTY_DAY_MEANS_UNAVAILABLE"),
		BisectionTimeoutPerTest:  parseDuration(v.GetString("TIMETABLE_BISECTION_TIMEOUT"), 60*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TIMETABLE_TIME_BUDGET", "300s")
	v.SetDefault("TIMETABLE_WORKERS", 8)
	v.SetDefault("TIMETABLE_LATE_THRESHOLD_OFFSET", 20)
	v.SetDefault("TIMETABLE_LATE_WEIGHT", 500)
	v.SetDefault("TIMETABLE_CAPACITY_WEIGHT", 1_000_000)
	v.SetDefault("TIMETABLE_MEDIUM_WEIGHT_MULTIPLIER", 10)
	v.SetDefault("TIMETABLE_EMPTY_DAY_MEANS_UNAVAILABLE", false)
	v.SetDefault("TIMETABLE_BISECTION_TIMEOUT", "60s")
}

// ModelConfig layers the environment-derived solver knobs on top of
// model.DefaultConfig; the Entity Store later overwrites Days,
// SlotsPerDay and LunchWindow from the data source itself.
func (c *Config) ModelConfig() model.Config {
	mc := model.DefaultConfig()
	mc.TimeBudget = c.TimeBudget
	mc.Workers = c.Workers
	mc.LateThresholdOffset = c.LateThresholdOffset
	mc.LateWeight = c.LateWeight
	mc.CapacityWeight = c.CapacityWeight
	mc.MediumWeightMultiplier = c.MediumWeightMultiplier
	mc.EmptyDayMeansUnavailable = c.EmptyDayMeansUnavailable
	return mc
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
