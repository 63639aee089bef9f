package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/securepass/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address, empty disables
//	-d string   PostgreSQL DSN, empty uses the in-memory store
//	-s string   JWT HMAC secret key
//	-k string   AES envelope key
//	-t int      token validity, minutes
//	-l int      login attempts per window
//	-w int      login rate window, seconds
//	-m int      max request body, bytes
//	-r string   Redis address for rate-limit counters
//	-dev        development mode
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are integers in the unit shown above.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-k", "-t", "-l", "-w", "-m", "-r", "-dev"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "gRPC health address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSecret, "s", config.JWTSecret, "JWT secret key")
	fs.StringVar(&config.AESKey, "k", config.AESKey, "AES key")

	tokenTTL := fs.Int("t", int(config.TokenTTL.Minutes()), "token validity (in minutes)")
	fs.IntVar(&config.LoginRateLimit, "l", config.LoginRateLimit, "login attempts per window")
	rateWindow := fs.Int("w", int(config.LoginRateWindow.Seconds()), "login rate window (in seconds)")
	fs.Int64Var(&config.MaxBodyBytes, "m", config.MaxBodyBytes, "max request body (bytes)")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.BoolVar(&config.Dev, "dev", config.Dev, "development mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// unit-converted flags only override when given explicitly
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenTTL = time.Duration(*tokenTTL) * time.Minute
		case "w":
			config.LoginRateWindow = time.Duration(*rateWindow) * time.Second
		}
	})
}
