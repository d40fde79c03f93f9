package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/keepsake/internal/paths"
	"github.com/mesh-intelligence/keepsake/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir            = "data_dir"
	cfgKeyFile               = "file"
	cfgKeyBackend            = "backend"
	cfgKeyCreateSettingsFile = "create_settings_file"
	cfgKeyFormat             = "format"

	backendFile   = "file"
	backendSQLite = "sqlite"

	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// configFile holds the structure written to config.yaml.
type configFile struct {
	Backend            string `yaml:"backend"`
	DataDir            string `yaml:"data_dir,omitempty"`
	File               string `yaml:"file"`
	Format             string `yaml:"format"`
	CreateSettingsFile bool   `yaml:"create_settings_file"`
}

// settings is the fully resolved configuration of one command run.
type settings struct {
	configDir          string
	dataDir            string
	file               string
	backend            string
	format             string
	createSettingsFile bool
}

// documentPath is the absolute path of the settings document.
func (s settings) documentPath() string {
	return filepath.Join(s.dataDir, s.file)
}

// loadConfig reads config.yaml from configDir using Viper. A missing file is
// not an error; defaults apply.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, backendFile)
	v.SetDefault(cfgKeyFile, types.DefaultFile)
	v.SetDefault(cfgKeyFormat, formatJSON)
	v.SetDefault(cfgKeyCreateSettingsFile, true)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// resolve combines flags, config.yaml and the environment. Flags win over
// config values, which win over defaults.
func resolve(flags *rootFlags) (settings, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return settings{}, sysError("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return settings{}, userError("%w", err)
	}

	dataDir := v.GetString(cfgKeyDataDir)
	if dataDir != "" {
		if dataDir, err = paths.Expand(dataDir); err != nil {
			return settings{}, userError("config %s: %w", cfgKeyDataDir, err)
		}
	}
	dataDir, err = paths.ResolveDataDir(paths.AppName, flags.dataDir, dataDir)
	if err != nil {
		return settings{}, sysError("resolve data dir: %w", err)
	}

	s := settings{
		configDir:          configDir,
		dataDir:            dataDir,
		file:               firstNonEmpty(flags.file, v.GetString(cfgKeyFile)),
		backend:            firstNonEmpty(flags.backend, v.GetString(cfgKeyBackend)),
		format:             firstNonEmpty(flags.format, v.GetString(cfgKeyFormat)),
		createSettingsFile: v.GetBool(cfgKeyCreateSettingsFile),
	}
	switch s.backend {
	case backendFile, backendSQLite:
	default:
		return settings{}, userError("unknown backend %q (valid: %s, %s)", s.backend, backendFile, backendSQLite)
	}
	switch s.format {
	case formatJSON, formatYAML, formatTOML:
	default:
		return settings{}, userError("unknown format %q (valid: %s, %s, %s)", s.format, formatJSON, formatYAML, formatTOML)
	}
	return s, nil
}

// writeConfigIfMissing creates config.yaml from s if the file does not exist.
// It reports whether a file was written.
func writeConfigIfMissing(s settings) (bool, error) {
	path := filepath.Join(s.configDir, configFileExt)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := configFile{
		Backend:            s.backend,
		DataDir:            s.dataDir,
		File:               s.file,
		Format:             s.format,
		CreateSettingsFile: s.createSettingsFile,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(s.configDir, 0o755); err != nil {
		return false, err
	}
	return true, os.WriteFile(path, data, 0o644)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
