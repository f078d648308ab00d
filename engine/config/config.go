package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// Config is the application configuration loaded from a TOML file. Missing
// files fall back to defaults; malformed files are an error.
type Config struct {
	AppName string `toml:"app_name"`

	Window struct {
		Width  uint32 `toml:"width"`
		Height uint32 `toml:"height"`
	} `toml:"window"`

	Renderer struct {
		Vsync            bool       `toml:"vsync"`
		Validation       bool       `toml:"validation"`
		ClearColor       [4]float32 `toml:"clear_color"`
		MaxDrawsPerFrame uint32     `toml:"max_draws_per_frame"`
	} `toml:"renderer"`

	Assets struct {
		Dir   string `toml:"dir"`
		Watch bool   `toml:"watch"`
	} `toml:"assets"`

	Log struct {
		Verbose bool `toml:"verbose"`
	} `toml:"log"`
}

// Default returns the boot configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.AppName = "Nucleo App"
	c.Window.Width = 1280
	c.Window.Height = 720
	c.Renderer.Vsync = true
	c.Renderer.Validation = false
	c.Renderer.ClearColor = [4]float32{0.1, 0.1, 0.12, 1.0}
	c.Renderer.MaxDrawsPerFrame = 1024
	c.Assets.Dir = "assets"
	c.Assets.Watch = true
	c.Log.Verbose = true
	return c
}

// Load reads path and overlays it onto the defaults. A missing file is not
// an error; anything else (unreadable file, bad TOML) is.
func Load(path string) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	if err := toml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}

	if c.Window.Width == 0 || c.Window.Height == 0 {
		return nil, errors.Newf("config %s: window size %dx%d is degenerate", path, c.Window.Width, c.Window.Height)
	}
	if c.Renderer.MaxDrawsPerFrame == 0 {
		c.Renderer.MaxDrawsPerFrame = 1024
	}
	return c, nil
}
