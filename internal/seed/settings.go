package seed

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "github.com/ratemystudyspots/studyspots/pkg/config"
)

// EnvPrefix starts every variable Settings reads.
const EnvPrefix = "SEED_"

// Settings tune a seeding run. Command-line flags override them.
type Settings struct {
	PerSpot    int           `env:"PER_SPOT" envDefault:"5"`
	RandomSeed uint64        `env:"RANDOM_SEED" envDefault:"42"`
	Step       time.Duration `env:"STEP" envDefault:"37m"`
}

// Validate implements pkgconfig.Validator.
func (s *Settings) Validate() error {
	var errs []error
	if s.PerSpot < 1 {
		errs = append(errs, fmt.Errorf("%sPER_SPOT must be positive, got %d", EnvPrefix, s.PerSpot))
	}
	if s.Step <= 0 {
		errs = append(errs, fmt.Errorf("%sSTEP must be positive, got %s", EnvPrefix, s.Step))
	}
	return errors.Join(errs...)
}

// LoadSettings reads SEED_-prefixed variables from the process environment,
// or from the map given with pkgconfig.WithEnvironment.
func LoadSettings(opts ...pkgconfig.Option) (*Settings, error) {
	s, err := pkgconfig.Parse[Settings](append(opts, pkgconfig.WithPrefix(EnvPrefix))...)
	if err != nil {
		return nil, fmt.Errorf("load seed settings: %w", err)
	}
	return s, nil
}
