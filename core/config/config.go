package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrParsingConfig wraps every env parsing failure.
var ErrParsingConfig = errors.New("failed to parse config from environment")

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> value of that type
)

// Load fills cfg from the environment. The first call for a type parses the
// environment; later calls for the same type copy the cached value.
// A .env file in the working directory is loaded once, without overriding
// variables already set.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrParsingConfig)
	}

	typ := reflect.TypeFor[T]()
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	actual, _ := cache.LoadOrStore(typ, parsed)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Meant for startup code.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
