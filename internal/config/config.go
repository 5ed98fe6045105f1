// Package config reads generator presets from TOML files.
package config

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/tinyrange/glbind/internal/gen"
	"github.com/tinyrange/glbind/internal/registry"
)

// Config is one generator run. Empty fields fall back to the namespace
// defaults.
type Config struct {
	Registry   string   `toml:"registry"`
	Namespace  string   `toml:"namespace"`
	API        string   `toml:"api"`
	Profile    string   `toml:"profile"`
	Version    string   `toml:"version"`
	Extensions []string `toml:"extensions"`
	Full       bool     `toml:"full"`
	Generator  string   `toml:"generator"`
	Package    string   `toml:"package"`
	Output     string   `toml:"output"`
}

// Default returns the preset for a namespace: desktop GL 3.3 core for gl,
// GLX 1.4 and WGL 1.0 otherwise.
func Default(namespace string) (*Config, error) {
	ns, err := registry.ParseNamespace(namespace)
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Namespace: string(ns),
		API:       string(ns),
		Generator: string(gen.Global),
		Package:   string(ns),
	}
	switch ns {
	case registry.NamespaceGL:
		cfg.Profile = "core"
		cfg.Version = "3.3"
	case registry.NamespaceGLX:
		cfg.Version = "1.4"
	case registry.NamespaceWGL:
		cfg.Version = "1.0"
	}
	return cfg, nil
}

// Load reads the preset at path. Unset fields stay empty until Complete.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &cfg, nil
}

// Decode reads a preset from r.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Complete fills unset fields from the namespace defaults. The profile
// default only applies to desktop GL.
func (c *Config) Complete() error {
	if c.Namespace == "" {
		c.Namespace = string(registry.NamespaceGL)
	}
	def, err := Default(c.Namespace)
	if err != nil {
		return err
	}
	if c.API == "" {
		c.API = def.API
	}
	if c.Profile == "" && c.API == "gl" {
		c.Profile = def.Profile
	}
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.Generator == "" {
		c.Generator = def.Generator
	}
	if c.Package == "" {
		c.Package = def.Package
	}
	return nil
}

// Filter builds and validates the registry filter the preset describes.
func (c *Config) Filter() (registry.Filter, error) {
	ns, err := registry.ParseNamespace(c.Namespace)
	if err != nil {
		return registry.Filter{}, err
	}
	f := registry.Filter{
		Namespace:  ns,
		API:        c.API,
		Profile:    c.Profile,
		Extensions: c.Extensions,
		Full:       c.Full,
	}
	if !c.Full || c.Version != "" {
		v, err := registry.ParseVersion(c.Version)
		if err != nil {
			return registry.Filter{}, err
		}
		f.Version = v
	}
	if err := f.Validate(); err != nil {
		return registry.Filter{}, err
	}
	return f, nil
}

// Options returns the generator options the preset describes.
func (c *Config) Options() (gen.Options, error) {
	kind, err := gen.ParseKind(c.Generator)
	if err != nil {
		return gen.Options{}, err
	}
	return gen.Options{
		Package: c.Package,
		Kind:    kind,
		Source:  c.Registry,
	}, nil
}
