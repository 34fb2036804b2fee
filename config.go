package collisionflow

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/PavelBfl/CollisionFlow-sub000/numeric"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const DEFAULT_WORKERS = 1

var ErrInvalidConfig = errors.New("invalid config")

// Config holds the dispatcher settings
type Config struct {
	// Epsilon is the resolution of the numeric comparer and the time pad around contacts
	Epsilon float64 `yaml:"epsilon"`
	// GuardMin and GuardMax bound the roots accepted by the time of impact solver
	GuardMin float64 `yaml:"guard_min"`
	GuardMax float64 `yaml:"guard_max"`
	// Workers is the number of goroutines evaluating pairs
	Workers int `yaml:"workers"`
	// LogLevel is a zap level name: debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Epsilon:  numeric.DEFAULT_EPSILON,
		GuardMin: numeric.DEFAULT_GUARD_MIN,
		GuardMax: numeric.DEFAULT_GUARD_MAX,
		Workers:  DEFAULT_WORKERS,
		LogLevel: "info",
	}
}

// ParseConfig reads a yaml document over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseConfig(data)
}

func (c Config) Validate() error {
	if !(c.Epsilon > 0) || math.IsInf(c.Epsilon, 0) {
		return fmt.Errorf("%w: epsilon must be positive, got %v", ErrInvalidConfig, c.Epsilon)
	}
	if !(c.GuardMin < c.GuardMax) {
		return fmt.Errorf("%w: guard band [%v, %v] is empty", ErrInvalidConfig, c.GuardMin, c.GuardMax)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return level, nil
}

// Comparer builds the numeric comparer described by the config.
func (c Config) Comparer() numeric.Comparer {
	return numeric.NewComparer(c.Epsilon, c.GuardMin, c.GuardMax)
}
