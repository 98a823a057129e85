// Package config provides type-safe environment variable loading. Each
// configuration type is parsed once per process and cached for subsequent
// calls; a .env file is loaded automatically on first use.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	mu    sync.Mutex
	cache = make(map[reflect.Type]any)
)

// ErrInvalidTarget is returned when the argument is not a non-nil pointer to
// a struct.
var ErrInvalidTarget = errors.New("config: target must be a non-nil struct pointer")

// Load parses environment variables into cfg based on `env` struct tags.
// The first call for a given type parses the environment; later calls for the
// same type return the cached value.
func Load(cfg any) error {
	rv := reflect.ValueOf(cfg)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}

	// Missing .env is not an error; real deployments use process env.
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	typ := rv.Elem().Type()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[typ]; ok {
		rv.Elem().Set(reflect.ValueOf(cached))
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", typ, err)
	}

	cache[typ] = rv.Elem().Interface()
	return nil
}

// MustLoad is like Load but panics on failure. Intended for startup paths.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
