// config.go: settings struct for the camsift pipeline and functions to load
// and save the settings.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogConfig contains settings for a rotating log file.
type LogConfig struct {
	Enabled    bool   // true to enable file logging
	Path       string // path to the log file
	MaxSizeMB  int    // rotate after this many megabytes
	MaxBackups int    // number of rotated files to keep
	MaxAgeDays int    // days to retain rotated files
}

// MainSettings contains application-wide settings.
type MainSettings struct {
	Name string    // node name, included in reports
	Log  LogConfig // main log file settings
}

// InputSettings describes where the external detector/tracker output lives.
type InputSettings struct {
	ChunkIndex    string // path to the chunk index JSON produced by the splitter
	DetectionsDir string // directory holding one detections JSON per chunk
}

// GateSettings holds the thresholds of one quality-gate instance. The
// activity filter and the event detector each carry their own copy; the
// gate logic itself is shared.
type GateSettings struct {
	ConfThreshold  float64 `mapstructure:"confthreshold"`  // minimum detection confidence
	MinBBoxArea    float64 `mapstructure:"minbboxarea"`    // minimum bbox area in pixels
	MaxBBoxArea    float64 `mapstructure:"maxbboxarea"`    // maximum bbox area in pixels
	MinAspectRatio float64 `mapstructure:"minaspectratio"` // minimum height/width ratio
	MaxAspectRatio float64 `mapstructure:"maxaspectratio"` // maximum height/width ratio
}

// ActivityFilterSettings contains settings for the chunk-level activity
// filter stage.
type ActivityFilterSettings struct {
	Gate            GateSettings `mapstructure:",squash"`
	MinPersonFrames int          `mapstructure:"minpersonframes"` // minimum active frames to mark a chunk active
	SampleRate      int          `mapstructure:"samplerate"`      // feed every Nth frame to the activity filter
}

// EventDetectorSettings contains settings for the track segmentation stage.
type EventDetectorSettings struct {
	Gate                    GateSettings `mapstructure:",squash"`
	MinTrackLength          int          `mapstructure:"mintracklength"`          // minimum surviving detections per sub-track
	MinEventDurationSeconds float64      `mapstructure:"mineventdurationseconds"` // minimum sub-track duration
	MaxGapFrames            int          `mapstructure:"maxgapframes"`            // split sub-tracks on larger frame gaps; 0 derives one second from chunk fps
	MinTrackConfidenceAvg   float64      `mapstructure:"mintrackconfidenceavg"`   // minimum mean confidence over survivors
	RequireMotion           bool         `mapstructure:"requiremotion"`           // reject near-static tracks when true
	MinTrackMovementPixels  float64      `mapstructure:"mintrackmovementpixels"`  // minimum first-to-last center movement
}

// LabelerSettings contains settings for heuristic proposal generation.
type LabelerSettings struct {
	NormalMaxDuration       float64 `mapstructure:"normalmaxduration"`       // below this duration an event is classified normal
	SuspiciousMinDuration   float64 `mapstructure:"suspiciousminduration"`   // above this duration an event becomes suspicious
	SuspiciousMinFrames     int     `mapstructure:"suspiciousminframes"`     // minimum frames for the prolonged-stay heuristic
	HighConfidenceThreshold float64 `mapstructure:"highconfidencethreshold"` // proposals below this always need review
}

// SQLiteSettings contains SQLite database settings.
type SQLiteSettings struct {
	Enabled bool   // true to persist events to SQLite
	Path    string // path to the database file
}

// MetricsSettings contains Prometheus metrics endpoint settings.
type MetricsSettings struct {
	Enabled bool   // true to expose Prometheus metrics
	Listen  string // listen address for the metrics endpoint
}

// OutputSettings describes where reports and events are written.
type OutputSettings struct {
	Path    string          // directory for JSON reports
	SQLite  SQLiteSettings  // event database settings
	Metrics MetricsSettings // metrics endpoint settings
}

// PipelineSettings contains coordination settings.
type PipelineSettings struct {
	Workers   int    // chunk workers; 0 means number of CPUs
	StateFile string // path to the pipeline state file, empty disables resume
}

// Settings is the root configuration for the application.
type Settings struct {
	Debug bool // true to enable debug output

	Main           MainSettings
	Input          InputSettings
	ActivityFilter ActivityFilterSettings
	EventDetector  EventDetectorSettings
	Labeler        LabelerSettings
	Pipeline       PipelineSettings
	Output         OutputSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings struct,
// validates it, and installs it as the process-wide instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	// Inconsistent thresholds are fatal here, never deferred to
	// per-detection evaluation.
	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the
// configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// function defined in defaults.go
	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file found, defaults apply.
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the config search paths: the working
// directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}
	configDir, err := os.UserConfigDir()
	if err == nil {
		paths = append(paths, filepath.Join(configDir, "camsift"))
	}
	return paths, nil
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	settingsMutex.RLock()
	instance := settingsInstance
	settingsMutex.RUnlock()
	if instance != nil {
		return instance
	}

	instance, err := Load()
	if err != nil {
		panic(fmt.Sprintf("error loading settings: %v", err))
	}
	return instance
}

// SetTestSettings installs the given settings instance, for tests only.
func SetTestSettings(settings *Settings) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()
	settingsInstance = settings
}

// SaveYAMLConfig writes the settings to configPath as YAML.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory %s: %w", dir, err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file %s: %w", configPath, err)
	}
	return nil
}
