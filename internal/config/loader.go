package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/BioCatalysis-Toolkit/pkg/errors"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "RBT"

// DefaultConfigFile is looked up in the working directory.
const DefaultConfigFile = "rbt.yaml"

// DefaultSearchPaths lists the config files tried when no explicit path is
// given: ./rbt.yaml, ~/.rbt/config.yaml and /etc/rbt/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{DefaultConfigFile}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".rbt", "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", "rbt", "config.yaml"))
}

// newViper builds a Viper instance with YAML file type, the RBT_ env prefix,
// automatic env binding, and a key replacer that maps "." to "_" so that
// "redis.addr" resolves to "RBT_REDIS_ADDR".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

type loadOptions struct {
	configPath  string
	searchPaths []string
	overrides   map[string]interface{}
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

// WithConfigPath names an explicit config file.  A missing file is an error.
func WithConfigPath(path string) LoadOption {
	return func(o *loadOptions) { o.configPath = path }
}

// WithSearchPaths replaces DefaultSearchPaths.  The first existing file wins.
func WithSearchPaths(paths ...string) LoadOption {
	return func(o *loadOptions) { o.searchPaths = paths }
}

// WithOverrides sets keys with the highest precedence, above files and
// environment.  The CLI passes changed flags here.
func WithOverrides(overrides map[string]interface{}) LoadOption {
	return func(o *loadOptions) { o.overrides = overrides }
}

// Loaded is the result of Load: the config and the file it came from, empty
// when only defaults and environment were used.
type Loaded struct {
	*Config
	File string
}

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// Get returns the most recently loaded Config, or Default when nothing was
// loaded.
func Get() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalCfg == nil {
		return Default()
	}
	return globalCfg
}

func setGlobal(cfg *Config) {
	globalMu.Lock()
	globalCfg = cfg
	globalMu.Unlock()
}

// Load reads the first config file found, merges RBT_* environment
// variables and overrides, applies defaults, and validates the result.
func Load(opts ...LoadOption) (*Loaded, error) {
	o := loadOptions{searchPaths: DefaultSearchPaths()}
	for _, opt := range opts {
		opt(&o)
	}

	v := newViper()
	file, err := resolveFile(o)
	if err != nil {
		return nil, err
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.InvalidConfig("config: failed to read config file").WithCause(err).WithDetail(file)
		}
	}
	for key, value := range o.overrides {
		v.Set(key, value)
	}

	cfg, err := unmarshalAndFinalize(v)
	if err != nil {
		return nil, err
	}
	setGlobal(cfg)
	return &Loaded{Config: cfg, File: file}, nil
}

func resolveFile(o loadOptions) (string, error) {
	if o.configPath != "" {
		if _, err := os.Stat(o.configPath); err != nil {
			return "", errors.IOFailure(err, "config: config file not found").WithDetail(o.configPath)
		}
		return o.configPath, nil
	}
	for _, p := range o.searchPaths {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

// LoadFromFile is shorthand for Load(WithConfigPath(path)).
func LoadFromFile(path string) (*Config, error) {
	l, err := Load(WithConfigPath(path))
	if err != nil {
		return nil, err
	}
	return l.Config, nil
}

// LoadFromEnv builds a Config from RBT_* environment variables and defaults,
// with no config file.
func LoadFromEnv() (*Config, error) {
	l, err := Load(WithSearchPaths())
	if err != nil {
		return nil, err
	}
	return l.Config, nil
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.InvalidConfig("config: failed to unmarshal configuration").WithCause(err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch re-reads path whenever it changes and passes valid configs to
// onChange.  Invalid edits are reported to onError, if given, and otherwise
// ignored.  The watch lives for the rest of the process.
func Watch(path string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.InvalidConfig("config: failed to read config file").WithCause(err).WithDetail(path)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		setGlobal(cfg)
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load that panics on error.  It is meant for tests and tools
// where a config failure is always fatal.
func MustLoad(opts ...LoadOption) *Config {
	l, err := Load(opts...)
	if err != nil {
		panic("config: MustLoad failed: " + err.Error())
	}
	return l.Config
}

//Personal.AI order the ending
