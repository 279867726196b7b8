// Package storage provides rooted file access for resource binaries and
// exported artifacts.
package storage

// Provider is the interface for rooted file operations.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Abs returns the absolute location of path (relative to root).
	Abs(path string) (string, error)
}
