package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/ghosiportal/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   backend API base URL
//	-t int      per-request timeout in seconds
//	-s string   storage path (sqlite DB file or directory for file storage)
//
// os.Args is filtered with flagx.FilterArgs first so -c/-config and other
// components' flags do not trip the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.StoragePath, "s", cfg.StoragePath, "local storage path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
