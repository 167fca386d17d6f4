package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds user defaults loaded from ~/.config/archview/config.toml.
// Command-line flags override anything set here.
type Config struct {
	// Passes bounds the crossing-reduction sweeps of the geometry command.
	Passes int `toml:"passes"`

	// GridWidth and GridHeight are the default dimensions for auto layouts.
	GridWidth  int `toml:"grid_width"`
	GridHeight int `toml:"grid_height"`

	// Engine is the default Graphviz layout engine for SVG export.
	Engine string `toml:"engine"`

	// Detailed labels exported pins with the full instance.port reference.
	Detailed bool `toml:"detailed"`

	// Collapse lists instance paths collapsed by default in geometry output.
	Collapse []string `toml:"collapse"`
}

// defaultConfig returns the built-in defaults used when no config file exists.
func defaultConfig() Config {
	return Config{Engine: "dot"}
}

// loadConfig reads the config file if present. A missing file yields the
// defaults; a malformed file is an error so typos do not pass silently.
func loadConfig() (Config, error) {
	cfg := defaultConfig()
	path, err := configPath()
	if err != nil {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}
