package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

const defaultRC = "~/.config/ade/steam-search.rc"

var (
	globalConfig *Config
	globalErr    error
	once         sync.Once
)

// Config holds the provider settings read from the environment and the rc file.
type Config struct {
	static  env
	dynamic rc
}

// Bus is where the search provider lives on the session bus. The daemon and
// its clients both read it from the environment.
type Bus struct {
	BusName    string `envconfig:"STEAM_SEARCH_BUS_NAME" default:"dev.ade.Steam.SearchProvider"`
	ObjectPath string `envconfig:"STEAM_SEARCH_OBJECT_PATH" default:"/dev/ade/Steam/SearchProvider"`
}

type (
	env struct {
		Bus
		SteamRoot    string `envconfig:"STEAM_SEARCH_ROOT"`
		LogLevel     string `envconfig:"STEAM_SEARCH_LOG_LEVEL" default:"info"`
		Launcher     string `envconfig:"STEAM_SEARCH_LAUNCHER" default:"portal"`
		Opener       string `envconfig:"STEAM_SEARCH_OPENER" default:"xdg-open"`
		ExitOnChange bool   `envconfig:"STEAM_SEARCH_EXIT_ON_CHANGE" default:"true"`
		RCFile       string `envconfig:"STEAM_SEARCH_RC"`
	}
	rc struct {
		libraries []string
	}
)

// Init loads the process-wide configuration once.
func Init() error {
	once.Do(func() {
		globalConfig, globalErr = Load()
	})
	return globalErr
}

// Get returns the process-wide configuration, loading it on first use.
func Get() *Config {
	if err := Init(); err != nil {
		return nil
	}
	return globalConfig
}

// LoadBus reads only the bus name and object path from the environment.
func LoadBus() (Bus, error) {
	var bus Bus
	if err := envconfig.Process("", &bus); err != nil {
		return Bus{}, fmt.Errorf("failed to process environment: %w", err)
	}
	return bus, nil
}

// Load reads the environment and the rc file into a fresh Config.
func Load() (*Config, error) {
	c := &Config{}
	if err := envconfig.Process("", &c.static); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if c.static.RCFile == "" {
		c.static.RCFile = defaultRC
	}
	c.static.RCFile = expandPath(c.static.RCFile)
	c.static.SteamRoot = expandPath(c.static.SteamRoot)

	if err := c.loadRC(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", c.static.RCFile, err)
	}
	return c, nil
}

func (c *Config) loadRC() error {
	rcPath := c.static.RCFile

	if err := os.MkdirAll(filepath.Dir(rcPath), 0750); err != nil {
		return err
	}

	file, err := os.Open(rcPath)
	if err != nil {
		if os.IsNotExist(err) {
			file, err = os.Create(rcPath)
			if err != nil {
				return err
			}
			return file.Close()
		}
		return err
	}
	defer file.Close()

	c.dynamic.libraries = []string{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c.dynamic.libraries = append(c.dynamic.libraries, expandPath(line))
	}

	return scanner.Err()
}

// SteamRoot returns the Steam installation override, or "" to locate it.
func (c *Config) SteamRoot() string {
	return c.static.SteamRoot
}

// ExtraLibraries returns library folders listed in the rc file.
func (c *Config) ExtraLibraries() []string {
	out := make([]string, len(c.dynamic.libraries))
	copy(out, c.dynamic.libraries)
	return out
}

// BusName returns the well-known session bus name to own.
func (c *Config) BusName() string {
	return c.static.BusName
}

// ObjectPath returns the object path the search provider is exported on.
func (c *Config) ObjectPath() string {
	return c.static.ObjectPath
}

// LogLevel returns the configured log level name.
func (c *Config) LogLevel() string {
	return c.static.LogLevel
}

// Launcher returns the launcher kind: "portal" or "xdg-open".
func (c *Config) Launcher() string {
	if c.static.Launcher == "" {
		return "portal"
	}
	return c.static.Launcher
}

// Opener returns the program the xdg-open launcher runs.
func (c *Config) Opener() string {
	if c.static.Opener == "" {
		return "xdg-open"
	}
	return c.static.Opener
}

// ExitOnChange reports whether the daemon should exit once installed titles change.
func (c *Config) ExitOnChange() bool {
	return c.static.ExitOnChange
}

// RCFile returns the resolved rc file path.
func (c *Config) RCFile() string {
	return c.static.RCFile
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return strings.Replace(path, "~", home, 1)
	}
	return path
}
