package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string       REST bind address (e.g., ":8080")
//	-g string       gRPC bind address (e.g., ":50051")
//	-driver string  database driver, pgx or sqlite
//	-d string       database DSN
//	-s string       JWT HMAC secret key
//	-t int          access token validity, minutes
//	-i duration     reconcile interval (e.g., "10m", 0 disables)
//	-sink string    report sink, log or s3
//	-l string       log level
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The token
// validity is only replaced when -t is given, so sub-minute values from
// other sources survive.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-driver", "-d", "-s", "-t", "-i", "-sink", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the REST server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC server")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (pgx|sqlite)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.DurationVar(&config.ReconcileInterval, "i", config.ReconcileInterval, "reconcile interval")
	fs.StringVar(&config.ReportSink, "sink", config.ReportSink, "report sink (log|s3)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})
}
