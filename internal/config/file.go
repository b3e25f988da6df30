package config

import (
	"fmt"
	"io"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// File is the YAML configuration file format. Zero values leave the
// corresponding setting untouched.
type File struct {
	Target string `yaml:"target"`
	Output string `yaml:"output"`

	Ping struct {
		Interval float64  `yaml:"interval"` // seconds
		Timeout  duration `yaml:"timeout"`
		Method   string   `yaml:"method"`
		Bind4    string   `yaml:"bind4"`
		Bind6    string   `yaml:"bind6"`
	} `yaml:"ping"`

	Archive struct {
		Path      string   `yaml:"path"`
		Retention duration `yaml:"retention"`
	} `yaml:"archive"`

	Listen   string `yaml:"listen"`
	Charts   string `yaml:"charts"`
	LogLevel string `yaml:"log-level"`
}

type duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (d *duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(dur)
	return nil
}

// Duration is a convenience getter.
func (d duration) Duration() time.Duration {
	return time.Duration(d)
}

// FromYAML reads YAML from reader and unmarshals it to File
func FromYAML(r io.Reader) (*File, error) {
	f := &File{}
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(f); err != nil && err != io.EOF {
		return nil, err
	}
	return f, nil
}

// LoadFile reads the YAML configuration at path
func LoadFile(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer fp.Close()

	f, err := FromYAML(fp)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
	}
	return f, nil
}

// Apply overlays the non-zero settings of the file onto c
func (f *File) Apply(c *Config) {
	setString(&c.Target, f.Target)
	setString(&c.Output, f.Output)
	if f.Ping.Interval != 0 {
		c.Interval = seconds(f.Ping.Interval)
	}
	if f.Ping.Timeout != 0 {
		c.Timeout = f.Ping.Timeout.Duration()
	}
	setString(&c.Method, f.Ping.Method)
	setString(&c.Bind4, f.Ping.Bind4)
	setString(&c.Bind6, f.Ping.Bind6)
	setString(&c.DatabasePath, f.Archive.Path)
	if f.Archive.Retention != 0 {
		c.Retention = f.Archive.Retention.Duration()
	}
	setString(&c.Listen, f.Listen)
	setString(&c.ChartDir, f.Charts)
	setString(&c.LogLevel, f.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// seconds converts fractional seconds to a Duration
func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
