package util

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const ConfigFileName = "hilal.toml"

const (
	BackendInterp = "interp"
	BackendVM     = "vm"
)

type Database struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	Backend  string `toml:"backend"`
	Optimize bool   `toml:"optimize"`
	DebugAST bool   `toml:"debug_ast"`
	Disasm   bool   `toml:"disasm"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	History  string `toml:"history"`

	Databases map[string]Database `toml:"databases"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		Backend:  BackendInterp,
		LogLevel: "none",
	}
}

// LoadConfiguration reads the file at path over the defaults.
func LoadConfiguration(path string) (Configuration, error) {
	config := DefaultConfiguration()
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return config, fmt.Errorf("parse error in %s: %w", path, err)
	}
	config.Path = path
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// FindConfiguration walks up from startDir looking for hilal.toml. Without
// one it returns the defaults.
func FindConfiguration(startDir string) (Configuration, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return DefaultConfiguration(), err
	}

	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadConfiguration(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return DefaultConfiguration(), nil
		}
		dir = parent
	}
}

func (c Configuration) Validate() error {
	switch c.Backend {
	case BackendInterp, BackendVM:
	default:
		return fmt.Errorf("unknown backend %q, want %s or %s", c.Backend, BackendInterp, BackendVM)
	}
	for name, db := range c.Databases {
		if db.Driver == "" || db.DSN == "" {
			return fmt.Errorf("database %q needs both driver and dsn", name)
		}
	}
	return nil
}
