package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC bind address (e.g. ":50051")
//	-m int      acceptable (minimum) user age, years
//	-l string   log level
//	-t int      shutdown timeout, seconds
//
// os.Args is filtered with flagx.FilterArgs first so that -c/-config and
// test runner flags do not make parsing fail.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-m", "-l", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run gRPC health server")
	fs.IntVar(&config.AcceptableAge, "m", config.AcceptableAge, "minimum age (in years) required to register")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	shutdownTimeout := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t is whole seconds, so apply it only when given
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
		}
	})
}
