package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config           string
	Debug            bool
	Verbose          bool
	WarningsAsErrors bool
	Format           string
	Workers          int
	LogFile          string
}

// RegisterFlags adds the shared flags to fs. Each subcommand owns its flag set.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Verbose, "v", false, "Log conversion progress")
	fs.BoolVar(&f.WarningsAsErrors, "Werror", false, "Treat warnings as errors")
	fs.StringVar(&f.Format, "f", "", "Output format (binary, json, glb)")
	fs.IntVar(&f.Workers, "workers", 0, "Number of parallel conversions")
	fs.StringVar(&f.LogFile, "log", "", "Also write logs to this file")
	return f
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config, f *Flags) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
		cfg.Convert.Verbose = true
	}
	if f.Verbose {
		cfg.Convert.Verbose = true
	}
	if f.WarningsAsErrors {
		cfg.Convert.WarningsAsErrors = true
	}
	if f.Format != "" {
		cfg.Convert.Format = f.Format
	}
	if f.Workers > 0 {
		cfg.Batch.Workers = f.Workers
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
