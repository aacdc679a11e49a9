package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the relstamp config.toml file
type Config struct {
	Annotate AnnotateConfig `toml:"annotate"`
	Parse    ParseConfig    `toml:"parse"`
	Serve    ServeConfig    `toml:"serve"`
	Log      LogConfig      `toml:"log"`
}

// AnnotateConfig controls which elements are annotated and how failures are handled
type AnnotateConfig struct {
	Class   string `toml:"class" config:"annotate.class" default:"timestamp" desc:"Marker class of elements to annotate"`
	OnError string `toml:"on_error" config:"annotate.on_error" default:"skip" oneof:"skip,fail,legacy" desc:"What to do with unusable timestamps"`
}

// ParseConfig controls how timestamp text is read
type ParseConfig struct {
	Timezone string `toml:"timezone" config:"parse.timezone" default:"Local" desc:"Zone for timestamps without an offset"`

	// Edited in the file only; empty means the built-in layout list.
	Layouts []string `toml:"layouts"`
}

// ServeConfig contains settings for relstamp serve
type ServeConfig struct {
	Host string `toml:"host" config:"serve.host" default:"127.0.0.1" desc:"Address to listen on"`
	Port int    `toml:"port" config:"serve.port" default:"5000" min:"1" max:"65535" desc:"Port to listen on"`
	Root string `toml:"root" config:"serve.root" default:"." desc:"Directory of pages to serve"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `toml:"level" config:"log.level" default:"info" oneof:"debug,info,warn,error" desc:"Log level"`
}

// Default returns a config with every field at its default value
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Path returns the config file location: $RELSTAMP_CONFIG if set, otherwise
// the platform config directory (XDG on Linux)
func Path() string {
	if p := os.Getenv("RELSTAMP_CONFIG"); p != "" {
		return p
	}

	var configDir string
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, "Library", "Application Support", "relstamp")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "relstamp")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "relstamp")
		} else {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config", "relstamp")
		}
	}

	return filepath.Join(configDir, "config.toml")
}

// Load reads the config file at path. A missing file yields defaults, and
// fields left empty in the file are filled with their defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config file to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// GetValue returns a config value by key (uses reflection)
func (c *Config) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a config value by key (uses reflection with validation)
func (c *Config) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}

// Validate checks every tagged field against its min/max/oneof constraints
func (c *Config) Validate() error {
	for _, f := range getConfigFields() {
		v, _ := getFieldValue(c, f.Key)
		if err := f.check(v); err != nil {
			return err
		}
	}
	return nil
}
