// Package appid holds the application identity used for help text, config
// discovery, env var prefixes and telemetry namespacing.
package appid

import (
	"context"
	"errors"
	"strings"
)

// Identity describes the binary.
type Identity struct {
	BinaryName  string
	EnvPrefix   string
	ConfigName  string
	Description string
	Vendor      string
}

var defaultIdentity = Identity{
	BinaryName:  "movelens",
	EnvPrefix:   "MOVELENS_",
	ConfigName:  "movelens",
	Description: "Competitive move set recommendations for Pokemon species",
	Vendor:      "movelens",
}

// Get returns the application identity.
func Get(ctx context.Context) (*Identity, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	identity := defaultIdentity
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Validate checks the required identity fields.
func (i *Identity) Validate() error {
	switch {
	case i == nil:
		return errors.New("app identity is nil")
	case strings.TrimSpace(i.BinaryName) == "":
		return errors.New("app identity missing binary name")
	case strings.TrimSpace(i.EnvPrefix) == "":
		return errors.New("app identity missing env prefix")
	case strings.TrimSpace(i.ConfigName) == "":
		return errors.New("app identity missing config name")
	}
	return nil
}

// TelemetryNamespace returns the metric namespace, derived from the binary
// name with separators folded to underscores.
func (i *Identity) TelemetryNamespace() string {
	if i == nil {
		return ""
	}
	replacer := strings.NewReplacer("-", "_", ".", "_", " ", "_")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(i.BinaryName)))
}
