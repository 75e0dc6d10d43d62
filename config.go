package pacs

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type BoundsConfig struct {
	XMin float64 `yaml:"xmin"`
	YMin float64 `yaml:"ymin"`
	XMax float64 `yaml:"xmax"`
	YMax float64 `yaml:"ymax"`
}

func (b BoundsConfig) BB() BB {
	return NewBB(b.XMin, b.YMin, b.XMax, b.YMax)
}

type CellsConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Config sizes a MoveContainer.
type Config struct {
	Bounds BoundsConfig `yaml:"bounds"`
	Cells  CellsConfig  `yaml:"cells"`

	// PrimitiveMaxSize bounds the footprint diameter of every primitive. Grid
	// cells are never smaller.
	PrimitiveMaxSize float64 `yaml:"primitive_max_size"`
	WorldImages      int     `yaml:"world_images"`

	MaxIteration int `yaml:"max_iteration"`
	OTSize       int `yaml:"ot_size"`

	StaticWorldImages []int `yaml:"static_world_images"`
}

// DefaultConfig is a single world image over a 100x100 area.
func DefaultConfig() Config {
	return Config{
		Bounds:           BoundsConfig{XMax: 100, YMax: 100},
		Cells:            CellsConfig{Width: 10, Height: 10},
		PrimitiveMaxSize: 10,
		WorldImages:      1,
		MaxIteration:     100,
		OTSize:           100,
	}
}

// LoadConfig reads a YAML config file. Missing keys keep their default value.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return DecodeConfig(f)
}

func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	bb := cfg.Bounds.BB()
	switch {
	case cfg.WorldImages < 1 || cfg.WorldImages > MaxWorldImages:
		return fmt.Errorf("%w: world_images %d not in [1, %d]", ErrInvalidConfig, cfg.WorldImages, MaxWorldImages)
	case cfg.Cells.Width < 1 || cfg.Cells.Height < 1:
		return fmt.Errorf("%w: cells %dx%d", ErrInvalidConfig, cfg.Cells.Width, cfg.Cells.Height)
	case !(bb.Width() > 0) || !(bb.Height() > 0):
		return fmt.Errorf("%w: empty bounds %v", ErrInvalidConfig, bb)
	case !(cfg.PrimitiveMaxSize > 0):
		return fmt.Errorf("%w: primitive_max_size %v", ErrInvalidConfig, cfg.PrimitiveMaxSize)
	case cfg.MaxIteration < 1:
		return fmt.Errorf("%w: max_iteration %d", ErrInvalidConfig, cfg.MaxIteration)
	case cfg.OTSize < 1:
		return fmt.Errorf("%w: ot_size %d", ErrInvalidConfig, cfg.OTSize)
	}
	for _, slot := range cfg.StaticWorldImages {
		if slot < 0 || slot >= cfg.WorldImages {
			return fmt.Errorf("%w: static world image %d", ErrSlotOutOfRange, slot)
		}
	}
	cellW := bb.Width() / float64(cfg.Cells.Width)
	cellH := bb.Height() / float64(cfg.Cells.Height)
	if cellW < cfg.PrimitiveMaxSize || cellH < cfg.PrimitiveMaxSize {
		return fmt.Errorf("%w: cells of %vx%v smaller than primitive_max_size %v",
			ErrInvalidConfig, cellW, cellH, cfg.PrimitiveMaxSize)
	}
	return nil
}
