// Package cachekey derives render cache keys from a template and the render
// environment version.
package cachekey

import (
	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/checksum"
)

// Header carries the key between the content placeholder, the render request
// and the render response.
const Header = "Render-Environment"

// Key identifies one template rendered in one environment.
type Key string

// String returns the key as sent on the wire.
func (k Key) String() string {
	return string(k)
}

// Compute returns the key for templateID in the environment identified by
// envVersion. It is a pure function of its inputs.
func Compute(templateID, envVersion string) (Key, error) {
	if envVersion == "" {
		return "", &apperr.EnvironmentUnavailableError{}
	}
	return Key(checksum.Fields("render", templateID, envVersion)), nil
}

// VersionSource is satisfied by the report catalog.
type VersionSource interface {
	RenderEnvironmentVersion() (string, error)
}

// ForTemplate resolves the current environment version from src and computes
// the key for templateID.
func ForTemplate(src VersionSource, templateID string) (Key, error) {
	v, err := src.RenderEnvironmentVersion()
	if err != nil {
		return "", err
	}
	return Compute(templateID, v)
}
