// Package config loads host configuration from a CUE file.
//
// The schema is embedded and unified with the operator's file, so defaults
// and constraints live in one place and validation errors carry CUE
// positions.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/strongbox/internal/identity"
)

//go:embed schema.cue
var schemaSource string

// DefaultPath is where commands look for configuration when no --config
// flag is given.
const DefaultPath = "strongbox.cue"

// Config is the host configuration.
type Config struct {
	Storage struct {
		Path string `json:"path"`
	} `json:"storage"`
	Vault struct {
		DefaultCapacity int `json:"default_capacity"`
	} `json:"vault"`
	Recovery struct {
		Authority string `json:"authority"`
	} `json:"recovery"`
}

// RecoveryAuthority parses the configured recovery key.
func (c *Config) RecoveryAuthority() (identity.Identity, error) {
	id, err := identity.Parse(c.Recovery.Authority)
	if err != nil {
		return identity.Zero, fmt.Errorf("recovery.authority: %w", err)
	}
	if id.IsZero() {
		return identity.Zero, fmt.Errorf("recovery.authority: the all-zero key cannot hold authority")
	}
	return id, nil
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, src)
}

// Parse validates CUE source against the embedded schema and decodes it.
// The filename is only used in error positions.
func Parse(filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("config schema: %s", cueerrors.Details(err, nil))
	}

	val := ctx.CompileBytes(src, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return nil, fmt.Errorf("parse config: %s", cueerrors.Details(err, nil))
	}

	merged := schema.Unify(val)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate config: %s", cueerrors.Details(err, nil))
	}

	var cfg Config
	if err := merged.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %s", cueerrors.Details(err, nil))
	}

	// The schema pins the shape; the key still has to be a usable identity.
	if _, err := cfg.RecoveryAuthority(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
