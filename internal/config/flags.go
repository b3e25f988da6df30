package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags binds the sampler's command-line flags
type Flags struct {
	fs *pflag.FlagSet

	configPath string
	target     string
	interval   float64
	timeout    time.Duration
	output     string
	method     string
	bind4      string
	bind6      string
	db         string
	retention  time.Duration
	listen     string
	charts     string
	logLevel   string
}

// RegisterFlags defines the sampler flags on fs
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	d := Defaults()
	f := &Flags{fs: fs}

	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fs.StringVarP(&f.target, "target", "t", d.Target, "Target IP address or hostname")
	fs.Float64VarP(&f.interval, "interval", "i", d.Interval.Seconds(), "Ping interval in seconds")
	fs.StringVarP(&f.output, "output", "o", "", "Output file name (default: ping_results_YYYY-MM-DD-HH.MM.json)")
	fs.DurationVar(&f.timeout, "timeout", 0, "Per-attempt timeout (default: 2x interval)")
	fs.StringVar(&f.method, "method", d.Method, "Ping method: exec (system ping) or icmp (raw socket, needs root)")
	fs.StringVar(&f.bind4, "bind4", d.Bind4, "IPv4 bind address for the icmp method, empty disables IPv4")
	fs.StringVar(&f.bind6, "bind6", d.Bind6, "IPv6 bind address for the icmp method, empty disables IPv6")
	fs.StringVar(&f.db, "db", "", "SQLite archive path (disabled when empty)")
	fs.DurationVar(&f.retention, "retention", d.Retention, "How long finished runs are kept in the archive")
	fs.StringVar(&f.listen, "listen", "", "Address for the Prometheus /metrics endpoint (disabled when empty)")
	fs.StringVar(&f.charts, "charts", "", "Directory for a PNG report written at shutdown (disabled when empty)")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "Log level (debug, info, warn, error)")

	return f
}

// Load builds the configuration: defaults, then the config file, then any
// flag given explicitly on the command line.
func (f *Flags) Load() (Config, error) {
	cfg := Defaults()

	if f.configPath != "" {
		file, err := LoadFile(f.configPath)
		if err != nil {
			return cfg, err
		}
		file.Apply(&cfg)
	}

	changed := f.fs.Changed
	if changed("target") {
		cfg.Target = f.target
	}
	if changed("interval") {
		cfg.Interval = seconds(f.interval)
	}
	if changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("method") {
		cfg.Method = f.method
	}
	if changed("bind4") {
		cfg.Bind4 = f.bind4
	}
	if changed("bind6") {
		cfg.Bind6 = f.bind6
	}
	if changed("db") {
		cfg.DatabasePath = f.db
	}
	if changed("retention") {
		cfg.Retention = f.retention
	}
	if changed("listen") {
		cfg.Listen = f.listen
	}
	if changed("charts") {
		cfg.ChartDir = f.charts
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}

	return cfg, nil
}
