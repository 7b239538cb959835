package foliage

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/pelletier/go-toml/v2"
)

// ErrConfig is returned for configuration files that cannot be decoded or
// hold invalid values.
var ErrConfig = errors.New("foliage: invalid config")

// Config is the file form of the engine options.
//
//	sample_count = 4
//	near = 0.0
//	far = 100.0
//	initial_capacity = 1
//	present_mode = "fifo"      # fifo | mailbox | immediate
//	downlevel = false
//	clear_color = [1.0, 1.0, 1.0, 1.0]
type Config struct {
	SampleCount     uint32     `toml:"sample_count"`
	Near            float32    `toml:"near"`
	Far             float32    `toml:"far"`
	InitialCapacity int        `toml:"initial_capacity"`
	PresentMode     string     `toml:"present_mode"`
	Downlevel       bool       `toml:"downlevel"`
	ClearColor      [4]float32 `toml:"clear_color"`
	ValidateShaders bool       `toml:"validate_shaders"`
}

// DefaultConfig returns the configuration matching the default options.
func DefaultConfig() Config {
	return Config{
		SampleCount:     4,
		Near:            0,
		Far:             100,
		InitialCapacity: 1,
		PresentMode:     "fifo",
		ClearColor:      [4]float32{1, 1, 1, 1},
	}
}

// LoadConfig reads and validates the TOML file at path. Keys missing from
// the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("foliage: load config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a TOML document. Unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		var missing *toml.StrictMissingError
		if errors.As(err, &missing) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfig, missing.String())
		}
		return Config{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.SampleCount {
	case 1, 2, 4, 8, 16:
	default:
		return fmt.Errorf("%w: sample_count %d is not 1, 2, 4, 8 or 16", ErrConfig, c.SampleCount)
	}
	if c.Near < 0 || c.Far <= c.Near {
		return fmt.Errorf("%w: need 0 <= near < far, got near %v far %v", ErrConfig, c.Near, c.Far)
	}
	if c.InitialCapacity < 1 {
		return fmt.Errorf("%w: initial_capacity %d is below 1", ErrConfig, c.InitialCapacity)
	}
	if _, ok := presentModes[c.PresentMode]; !ok {
		return fmt.Errorf("%w: unknown present_mode %q", ErrConfig, c.PresentMode)
	}
	for i, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: clear_color[%d] = %v is outside [0, 1]", ErrConfig, i, v)
		}
	}
	return nil
}

var presentModes = map[string]gputypes.PresentMode{
	"":          gputypes.PresentModeFifo,
	"fifo":      gputypes.PresentModeFifo,
	"mailbox":   gputypes.PresentModeMailbox,
	"immediate": gputypes.PresentModeImmediate,
}

func (c Config) presentMode() gputypes.PresentMode {
	if m, ok := presentModes[c.PresentMode]; ok {
		return m
	}
	return gputypes.PresentModeFifo
}
