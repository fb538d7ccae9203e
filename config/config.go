// Package config handles shapes.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/shapes/vm"
)

// FileName is the name of the configuration file.
const FileName = "shapes.toml"

// Config represents a shapes.toml configuration.
type Config struct {
	Heap   Heap   `toml:"heap" json:"heap"`
	Shapes Shapes `toml:"shapes" json:"shapes"`
	Log    Log    `toml:"log" json:"log"`

	// Dir is the directory containing the shapes.toml file (set at load time).
	Dir string `toml:"-" json:"-"`
}

// Heap configures the default allocator.
type Heap struct {
	Limit        uint64 `toml:"limit" json:"limit"`
	CollectEvery uint64 `toml:"collect-every" json:"collect-every"`
}

// Shapes configures shape construction.
type Shapes struct {
	ShareTransitions bool `toml:"share-transitions" json:"share-transitions"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity" json:"verbosity"`
	File      string `toml:"file" json:"file"`
}

// Default returns the configuration used when no shapes.toml exists.
func Default() *Config {
	return &Config{
		Heap: Heap{CollectEvery: vm.DefaultCollectEvery},
	}
}

// Load parses the shapes.toml file in the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(data, path)
	if err != nil {
		return nil, err
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// Parse decodes and validates configuration text. name is only used in
// error messages.
func Parse(data []byte, name string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in %s: %s", name, strings.Join(keys, ", "))
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a shapes.toml file, then loads
// and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// VMConfig converts the configuration into VM options.
func (c *Config) VMConfig() vm.Config {
	return vm.Config{
		HeapLimit:        c.Heap.Limit,
		CollectEvery:     c.Heap.CollectEvery,
		ShareTransitions: c.Shapes.ShareTransitions,
	}
}

// LogPath returns the log file path for commonlog.Configure, or nil for
// stderr. Relative paths are resolved against Dir.
func (c *Config) LogPath() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	if !filepath.IsAbs(path) && c.Dir != "" {
		path = filepath.Join(c.Dir, path)
	}
	return &path
}
