// Package config loads service configuration from environment variables
// described by `env` struct tags.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Validator is implemented by configurations that check their own invariants
// after parsing.
type Validator interface {
	Validate() error
}

// Option changes where Parse reads variables from.
type Option func(*env.Options)

// WithEnvironment makes Parse read from environ instead of the process
// environment. Variables missing from environ take their defaults.
func WithEnvironment(environ map[string]string) Option {
	return func(o *env.Options) { o.Environment = environ }
}

// WithPrefix only considers variables starting with prefix.
func WithPrefix(prefix string) Option {
	return func(o *env.Options) { o.Prefix = prefix }
}

// Parse builds a T from the environment. When *T implements Validator it is
// validated before being returned.
//
//	type Config struct {
//	    Port int `env:"HTTP_PORT" envDefault:"8080"`
//	}
//	cfg, err := config.Parse[Config]()
func Parse[T any](opts ...Option) (*T, error) {
	var o env.Options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := new(T)
	if err := env.ParseWithOptions(cfg, o); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if v, ok := any(cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}
