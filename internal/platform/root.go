package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// SystemDir is the hidden directory holding workspace state.
	SystemDir = ".cirrus"
	// ConfigFile is the optional workspace configuration file.
	ConfigFile = "cirrus.yaml"
	// SnapshotFile is the default snapshot name inside SystemDir.
	SnapshotFile = "notes.json"
)

// ErrNoWorkspace is returned by FindRoot when no indicator is found.
var ErrNoWorkspace = errors.New("workspace not found")

// FindRoot looks upwards from startDir for a workspace root.
// Indicators are: a .cirrus directory or a cirrus.yaml file.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, SystemDir) || hasFile(dir, ConfigFile) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrNoWorkspace
}

// SnapshotPath returns the default snapshot location of a workspace.
func SnapshotPath(root string) string {
	return filepath.Join(root, SystemDir, SnapshotFile)
}

// WorkspaceConfig is the content of cirrus.yaml.
type WorkspaceConfig struct {
	Remote       string `yaml:"remote,omitempty"`
	SyncInterval string `yaml:"sync_interval,omitempty"`
	Snapshot     string `yaml:"snapshot,omitempty"`
}

// InitWorkspace creates the system directory and, unless it exists, the
// config file. It reports whether dir was not a workspace before.
func InitWorkspace(dir string, cfg WorkspaceConfig) (bool, error) {
	fresh := !hasFile(dir, SystemDir)
	if err := os.MkdirAll(filepath.Join(dir, SystemDir), 0o755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", SystemDir, err)
	}

	path := filepath.Join(dir, ConfigFile)
	if hasFile(dir, ConfigFile) {
		return fresh, nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", ConfigFile, err)
	}
	return fresh, nil
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
