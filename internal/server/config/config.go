// Package config handles configuration for the userkeeper server,
// including defaults, JSON overlay, environment variables and
// command-line flags.
package config

import "time"

// Config holds runtime settings for the userkeeper server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the REST API.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint.
//   - AcceptableAge: minimum age in years a user must have to register.
//   - LogLevel: debug, info, warn or error.
//   - ReadTimeout / WriteTimeout: HTTP server timeouts.
//   - ShutdownTimeout: grace period for in-flight requests on stop.
type Config struct {
	EndpointAddrHTTP string        `env:"HTTP_ADDRESS"`
	EndpointAddrGRPC string        `env:"GRPC_ADDRESS"`
	AcceptableAge    int           `env:"ACCEPTABLE_AGE"`
	LogLevel         string        `env:"LOG_LEVEL"`
	ReadTimeout      time.Duration `env:"READ_TIMEOUT"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.AcceptableAge = 18
	c.LogLevel = "info"
	c.ReadTimeout = 15 * time.Second
	c.WriteTimeout = 15 * time.Second
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
