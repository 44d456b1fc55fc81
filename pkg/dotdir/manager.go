// Package dotdir manages the .knol/ and ~/.knol directories.
//
// The directory holds the persistent configuration (config.toml) and, for the
// sqlite-backed vector store, the default index database.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the knol directory.
	dirName = ".knol"

	// IndexFile is the default filename of the sqlite-backed vector index
	// inside the knol directory.
	IndexFile = "index.db"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .knol/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.knol/ dir
//  3. Home ~/.knol/ dir
//  4. If none found, attempt to create ~/.knol/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating knol directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// IndexPath resolves the default sqlite index path inside the target
// .knol/ directory.
func (m *Manager) IndexPath(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(target, IndexFile), nil
}

// localDirExists checks whether a .knol/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
