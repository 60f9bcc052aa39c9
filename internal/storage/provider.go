// Package storage defines read access to the report template directory.
package storage

import "time"

// FileInfo describes one template source file.
type FileInfo struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for template source access.
type Provider interface {
	// List returns metadata for every template source file under dir
	// (relative to the root), sorted by path.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Root returns the absolute root directory.
	Root() string
}
