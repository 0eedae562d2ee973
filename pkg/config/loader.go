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
	mu     sync.Mutex
	loaded = make(map[reflect.Type]any)

	dotenvOnce sync.Once
)

// Load fills v from environment variables described by `env` struct tags.
// A .env file in the working directory is read once per process if present.
// The parsed value is cached per type: later calls for the same T return the
// first result without re-reading the environment.
//
//	type Config struct {
//	    BaseURL string        `env:"APPTRACK_BASE_URL,required"`
//	    Timeout time.Duration `env:"APPTRACK_HTTP_TIMEOUT" envDefault:"15s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() {
		// A missing .env file is normal.
		_ = godotenv.Load()
	})

	typ := reflect.TypeFor[T]()

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := loaded[typ]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded[typ] = parsed
	*v = parsed
	return nil
}

// MustLoad is Load that panics on failure, for configuration the process
// cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Parse fills v from the given dotenv files and the process environment,
// bypassing the cache. Variables already set in the environment win over
// values from files. Files that do not exist are an error.
func Parse[T any](v *T, files ...string) error {
	if v == nil {
		return ErrNilPointer
	}
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}
