package minilight

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables of a lighting session.
type Config struct {
	// ScreenWidth and ScreenHeight size the darkness backdrop in pixels.
	ScreenWidth  int `yaml:"screenWidth"`
	ScreenHeight int `yaml:"screenHeight"`
	// TileW and TileH are the map tile size in pixels.
	TileW float64 `yaml:"tileWidth"`
	TileH float64 `yaml:"tileHeight"`
	// FlickerBase and FlickerRange define the flicker alpha band:
	// FlickerBase + [0, FlickerRange).
	FlickerBase  int `yaml:"flickerBase"`
	FlickerRange int `yaml:"flickerRange"`
	// Debug enables diagnostic output on stderr.
	Debug bool `yaml:"debug"`
	// SaveAppName names the gdata storage directory for save slots.
	SaveAppName string `yaml:"saveAppName"`
}

// DefaultConfig returns the stock settings: an 816x624 screen of 48x48
// tiles and a flicker band of [155, 254].
func DefaultConfig() Config {
	return Config{
		ScreenWidth:  816,
		ScreenHeight: 624,
		TileW:        48,
		TileH:        48,
		FlickerBase:  155,
		FlickerRange: 100,
		SaveAppName:  "minilight",
	}
}

// TileWidth implements MapMetrics.
func (c Config) TileWidth() float64 {
	return c.TileW
}

// TileHeight implements MapMetrics.
func (c Config) TileHeight() float64 {
	return c.TileH
}

// withDefaults fills unset fields from DefaultConfig. A zero FlickerBase is
// a valid band start; it is only treated as unset when the whole band is.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ScreenWidth <= 0 {
		c.ScreenWidth = d.ScreenWidth
	}
	if c.ScreenHeight <= 0 {
		c.ScreenHeight = d.ScreenHeight
	}
	if c.TileW <= 0 {
		c.TileW = d.TileW
	}
	if c.TileH <= 0 {
		c.TileH = d.TileH
	}
	if c.FlickerRange <= 0 {
		if c.FlickerBase == 0 {
			c.FlickerBase = d.FlickerBase
		}
		c.FlickerRange = d.FlickerRange
	}
	if c.FlickerBase < 0 {
		c.FlickerBase = d.FlickerBase
	}
	if c.SaveAppName == "" {
		c.SaveAppName = d.SaveAppName
	}
	return c
}

// ParseConfig decodes a YAML config. Missing fields take their defaults;
// fields present in the document are kept even when zero.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse lighting config: %w", err)
	}
	return c.withDefaults(), nil
}

// LoadConfig reads and decodes a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read lighting config %s: %w", path, err)
	}
	return ParseConfig(data)
}
