package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/userkeeper/internal/flagx"
	"github.com/dmitrijs2005/userkeeper/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "15s" style
// strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	AcceptableAge    int            `json:"acceptable_age"`
	LogLevel         string         `json:"log_level"`
	ReadTimeout      timex.Duration `json:"read_timeout"`
	WriteTimeout     timex.Duration `json:"write_timeout"`
	ShutdownTimeout  timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays values from the file named by -c/-config. Keys missing
// from the file leave the current values alone. An unreadable file or
// invalid JSON panics, since the server cannot start on a config it was
// explicitly pointed at but could not read.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.AcceptableAge != 0 {
		config.AcceptableAge = c.AcceptableAge
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
	if c.ReadTimeout.Duration != 0 {
		config.ReadTimeout = c.ReadTimeout.Duration
	}
	if c.WriteTimeout.Duration != 0 {
		config.WriteTimeout = c.WriteTimeout.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
}
