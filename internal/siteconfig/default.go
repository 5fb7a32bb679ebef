package siteconfig

import (
	_ "embed"
	"fmt"
)

//go:embed default_config.json
var defaultConfigJSON []byte

// DefaultJSON returns the built-in configuration document.
func DefaultJSON() []byte {
	out := make([]byte, len(defaultConfigJSON))
	copy(out, defaultConfigJSON)
	return out
}

// Default returns a fresh copy of the built-in configuration.
func Default() *AppConfig {
	cfg, err := Parse(defaultConfigJSON)
	if err != nil {
		panic(fmt.Sprintf("built-in site config is invalid: %v", err))
	}
	return cfg
}
