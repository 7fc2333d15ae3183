// Package config loads typed configuration from environment variables.
//
// Struct fields are mapped with caarlos0/env tags. A .env file, when present,
// is loaded once via godotenv before the first parse. Each configuration type
// is parsed once and cached for the lifetime of the process.
//
//	type APIConfig struct {
//		BaseURL string        `env:"API_URL"`
//		Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg APIConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Startup code may use MustLoad, which panics instead.
package config
