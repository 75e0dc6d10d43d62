package pacs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfig_Defaults(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(`
bounds: {xmin: -100, ymin: -100, xmax: 100, ymax: 100}
cells: {width: 20, height: 20}
world_images: 4
static_world_images: [0, 2]
max_iteration: 8
`))
	require.NoError(t, err)
	assert.Equal(t, NewBB(-100, -100, 100, 100), cfg.Bounds.BB())
	assert.Equal(t, CellsConfig{Width: 20, Height: 20}, cfg.Cells)
	assert.Equal(t, 4, cfg.WorldImages)
	assert.Equal(t, []int{0, 2}, cfg.StaticWorldImages)
	assert.Equal(t, 8, cfg.MaxIteration)
	// untouched keys keep their default
	assert.Equal(t, 10.0, cfg.PrimitiveMaxSize)
	assert.Equal(t, 100, cfg.OTSize)

	c, err := NewMoveContainer(cfg)
	require.NoError(t, err)
	for slot, want := range []SlotKind{Static, Dynamic, Static, Dynamic} {
		kind, err := c.SlotKind(slot)
		require.NoError(t, err)
		assert.Equal(t, want, kind, "slot %d", slot)
	}
}

func TestDecodeConfig_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name, src string
		err       error
	}{
		{"syntax", "bounds: [", ErrInvalidConfig},
		{"no world image", "world_images: 0", ErrInvalidConfig},
		{"too many world images", "world_images: 65", ErrInvalidConfig},
		{"cells smaller than primitives", "cells: {width: 50, height: 50}", ErrInvalidConfig},
		{"empty bounds", "bounds: {xmin: 10, xmax: 10, ymax: 100}", ErrInvalidConfig},
		{"no iteration", "max_iteration: 0", ErrInvalidConfig},
		{"static slot", "static_world_images: [1]", ErrSlotOutOfRange},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeConfig(strings.NewReader(tc.src))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pacs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("primitive_max_size: 5\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.PrimitiveMaxSize)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
