// Package conf loads and validates the engine's runtime configuration.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings is the root configuration tree, unmarshaled from config.yaml
// and overridable by environment variables (see env.go).
type Settings struct {
	Debug bool

	Main struct {
		Name string
		Log  LogConfig
	}

	FilterBank struct {
		NumChannels int
		MinFreq     float64
		MaxFreq     float64
		Samplerate  int
	}

	DetFunc struct {
		CorrWinSize      int
		Hopsize          int
		SigWinSize       int
		ScaleFactor      float64
		DedicatedThreads int
	}

	Transient struct {
		MinKernel int
		MaxKernel int
	}

	AudioSource struct {
		Kind   string // "file" or "mic"
		Path   string // for Kind == "file"
		Device string // for Kind == "mic"
	}

	Scheduler struct {
		Enabled   bool
		Latitude  float64
		Longitude float64
	}

	Notify struct {
		MQTT struct {
			Enabled  bool
			Broker   string
			Topic    string
			Username string
			Password string
		}
		Shoutrrr struct {
			Enabled bool
			URLs    []string
		}
	}

	Backup struct {
		FTP struct {
			Enabled  bool
			Host     string
			Port     int
			Username string
			Password string
			Path     string
		}
		SFTP struct {
			Enabled        bool
			Host           string
			Port           int
			Username       string
			Password       string
			PrivateKeyPath string
			Path           string
		}
	}

	Datastore struct {
		Driver string // "sqlite" or "mysql"
		DSN    string
	}

	HTTPServer struct {
		Enabled bool
		Listen  string
	}

	Telemetry struct {
		Enabled bool
		DSN     string
	}
}

// LogConfig defines the configuration for a rotating log file.
type LogConfig struct {
	Enabled     bool
	Path        string
	Rotation    RotationType
	MaxSize     int64
	RotationDay time.Weekday
}

type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

var (
	settingsInstance *Settings
	settingsMu       sync.RWMutex
)

// Load reads config.yaml (embedded default, overridden by any config.yaml
// found on the search path) into a Settings value, validates it, and caches
// it as the package-global Setting().
func Load() (*Settings, error) {
	if err := initViper(); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("conf: failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(settings)

	if err := Validate(settings); err != nil {
		return nil, err
	}

	settingsMu.Lock()
	settingsInstance = settings
	settingsMu.Unlock()

	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPaths, err := getDefaultConfigPaths(); err == nil {
		for _, path := range configPaths {
			viper.AddConfigPath(path)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return loadDefaultConfig()
		}
		return fmt.Errorf("conf: failed to read config file: %w", err)
	}
	return nil
}

// loadDefaultConfig falls back to the config.yaml embedded in the binary.
func loadDefaultConfig() error {
	defaultConfig, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("conf: failed to read embedded default config: %w", err)
	}
	return viper.ReadConfig(bytesReader(defaultConfig))
}

// getDefaultConfigPaths returns the directories searched for config.yaml,
// in priority order: current directory, then an XDG-style user config dir.
func getDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "onsetgo"))
	}
	return paths, nil
}

// Setting returns the currently loaded configuration. Panics if Load has
// not yet succeeded, mirroring the "configuration is fixed at startup"
// lifecycle the core assumes.
func Setting() *Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if settingsInstance == nil {
		panic("conf: Setting() called before Load()")
	}
	return settingsInstance
}

// SetTestSettings installs settings directly, bypassing viper. Test-only.
func SetTestSettings(s *Settings) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settingsInstance = s
}
