// Package interaction turns pointer events into atomic model mutations:
// it owns the drag sessions for moving, resizing/rotating and rerouting
// cells, the preview strategies used while a gesture is in flight, and
// the commit dispatcher that applies the final geometry in one
// transaction.
package interaction

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"dragkit/geometry"
)

// Options are the editor-shell tunables for the interaction layer.
// Zero-value fields are filled by DefaultOptions; the toml tags match
// the demo config file.
type Options struct {
	GridEnabled bool    `toml:"grid_enabled"`
	GridSize    float64 `toml:"grid_size"`

	// Tolerance is the gesture threshold in device units: pointer
	// movement at or below it is a click, not a drag.
	Tolerance float64 `toml:"tolerance"`

	GuidesEnabled   bool `toml:"guides_enabled"`
	SnapToTerminals bool `toml:"snap_to_terminals"`

	MoveEnabled     bool `toml:"move_enabled"`
	SelectEnabled   bool `toml:"select_enabled"`
	CloneEnabled    bool `toml:"clone_enabled"`
	RotationEnabled bool `toml:"rotation_enabled"`
	ResizeEnabled   bool `toml:"resize_enabled"`

	// VertexLabelsMovable emits a label handle on selected vertices.
	// Off by default: the handle sits at the shape center, where it
	// would otherwise swallow clicks meant for cells underneath.
	VertexLabelsMovable bool `toml:"vertex_labels_movable"`
	EdgeLabelsMovable   bool `toml:"edge_labels_movable"`

	ConnectOnDrop      bool `toml:"connect_on_drop"`
	SplitOnDrop        bool `toml:"split_on_drop"`
	AllowDanglingEdges bool `toml:"allow_dangling_edges"`
	RemoveEmptyParents bool `toml:"remove_empty_parents"`

	// StraightRemoval drops a dragged waypoint that leaves its two
	// neighboring segments collinear within StraightTolerance.
	StraightRemoval   bool    `toml:"straight_removal"`
	StraightTolerance float64 `toml:"straight_tolerance"`

	// LivePreviewMaxCells is the cost threshold for the preview
	// strategy: sessions touching at most this many cells mutate and
	// redraw real states, larger ones draw a cheap outline.
	LivePreviewMaxCells int `toml:"live_preview_max_cells"`

	MinCellSize float64 `toml:"min_cell_size"`
	HandleSize  float64 `toml:"handle_size"`

	// RotationRaster snaps interactive rotation to coarse steps that
	// loosen with pointer distance from the shape center.
	RotationRaster         bool    `toml:"rotation_raster"`
	RotationHandleDistance float64 `toml:"rotation_handle_distance"`

	// MaxBounds clamps committed vertex bounds (page limits); nil
	// disables the clamp.
	MaxBounds *geometry.Rect `toml:"-"`
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() *Options {
	return &Options{
		GridEnabled:            true,
		GridSize:               10,
		Tolerance:              4,
		GuidesEnabled:          true,
		SnapToTerminals:        true,
		MoveEnabled:            true,
		SelectEnabled:          true,
		CloneEnabled:           true,
		RotationEnabled:        true,
		ResizeEnabled:          true,
		EdgeLabelsMovable:      true,
		ConnectOnDrop:          true,
		SplitOnDrop:            true,
		AllowDanglingEdges:     true,
		RemoveEmptyParents:     true,
		StraightRemoval:        true,
		StraightTolerance:      2,
		LivePreviewMaxCells:    8,
		MinCellSize:            1,
		HandleSize:             8,
		RotationRaster:         true,
		RotationHandleDistance: 20,
	}
}

// LoadOptions reads a toml options file on top of the defaults.
func LoadOptions(path string) (*Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options: %w", err)
	}
	if err := toml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parsing options %s: %w", path, err)
	}
	return opts, nil
}
