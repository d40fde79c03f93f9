package types

import (
	"strings"

	"github.com/mesh-intelligence/keepsake/internal/paths"
)

// Options control where a persistence manager keeps its settings file and how
// it reacts to changes.
type Options struct {
	// LocalFilesDirectory is the directory settings files are resolved against.
	LocalFilesDirectory string `json:"local_files_directory" yaml:"local_files_directory"`

	// AutoSave saves the settings every time the current instance changes.
	AutoSave bool `json:"auto_save" yaml:"auto_save"`

	// CreateSettingsFile creates an empty settings document on load when the
	// file is missing.
	CreateSettingsFile bool `json:"create_settings_file" yaml:"create_settings_file"`
}

// DefaultOptions returns options rooted in the platform data directory for
// app, with autosave and file creation enabled.
func DefaultOptions(app string) (Options, error) {
	dir, err := paths.DefaultDataDir(app)
	if err != nil {
		return Options{}, err
	}
	return Options{
		LocalFilesDirectory: dir,
		AutoSave:            true,
		CreateSettingsFile:  true,
	}, nil
}

// Validate checks that the Options are usable. It returns a sentinel error
// from this package on failure.
func (o Options) Validate() error {
	if strings.TrimSpace(o.LocalFilesDirectory) == "" {
		return ErrDirectoryEmpty
	}
	return nil
}
