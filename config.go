package ember

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/tanema/gween/ease"
)

// Config is the runtime configuration surface consumed by the renderer and
// by hosts constructing presets. Loadable from TOML; zero values are filled
// in by Validate via DefaultConfig.
type Config struct {
	// GridX and GridY are the default mesh resolution for presets that do
	// not specify their own. Both must be positive and the vertex count
	// (GridX+1)*(GridY+1) must fit the mesh index buffer (65536 at most).
	GridX int `toml:"grid_x"`
	GridY int `toml:"grid_y"`

	// TransitionDuration is the preset crossfade length in seconds. A
	// non-positive value makes every switch a hard cut.
	TransitionDuration float64 `toml:"transition_duration"`

	// TransitionEase names the blend curve: one of "linear", "in-out-quad",
	// "in-out-cubic", or "out-expo".
	TransitionEase string `toml:"transition_ease"`

	// TransitionStyle selects the compositor: "dissolve" or "wipe".
	TransitionStyle string `toml:"transition_style"`

	// Debug enables per-frame stats logging at debug level.
	Debug bool `toml:"debug"`
}

// DefaultConfig returns the stock configuration: a 48x36 mesh, a 2.7 second
// eased dissolve.
func DefaultConfig() Config {
	return Config{
		GridX:              48,
		GridY:              36,
		TransitionDuration: 2.7,
		TransitionEase:     "in-out-quad",
		TransitionStyle:    "dissolve",
	}
}

// LoadConfig reads a TOML config file, merged over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects impossible values. Grid dimensions must be positive;
// unknown ease or style names are configuration errors rather than silent
// fallbacks.
func (c Config) Validate() error {
	if c.GridX <= 0 || c.GridY <= 0 {
		return fmt.Errorf("config: %w (got %dx%d)", ErrGridSize, c.GridX, c.GridY)
	}
	if n := (c.GridX + 1) * (c.GridY + 1); n > maxMeshVertices {
		return fmt.Errorf("config: %w (%dx%d needs %d vertices, index buffer addresses %d)",
			ErrGridSize, c.GridX, c.GridY, n, maxMeshVertices)
	}
	if _, err := c.easeFunc(); err != nil {
		return err
	}
	switch c.TransitionStyle {
	case "dissolve", "wipe":
	default:
		return fmt.Errorf("config: unknown transition style %q", c.TransitionStyle)
	}
	return nil
}

// easeFunc maps the configured ease name to its gween function.
func (c Config) easeFunc() (ease.TweenFunc, error) {
	switch c.TransitionEase {
	case "linear":
		return ease.Linear, nil
	case "in-out-quad":
		return ease.InOutQuad, nil
	case "in-out-cubic":
		return ease.InOutCubic, nil
	case "out-expo":
		return ease.OutExpo, nil
	default:
		return nil, fmt.Errorf("config: unknown transition ease %q", c.TransitionEase)
	}
}
