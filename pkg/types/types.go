package types

import "fmt"

// Placement is the anchor of the foreground inside the canvas
type Placement string

// Supported placements. Left/Right only apply to horizontal canvases and
// Up/Down only to vertical ones.
const (
	Center      Placement = "center"
	Random      Placement = "random"
	Left        Placement = "left"
	Right       Placement = "right"
	Up          Placement = "up"
	Down        Placement = "down"
	TopLeft     Placement = "top-left"
	TopMid      Placement = "top-mid"
	TopRight    Placement = "top-right"
	MidLeft     Placement = "mid-left"
	MidRight    Placement = "mid-right"
	BottomLeft  Placement = "bottom-left"
	BottomMid   Placement = "bottom-mid"
	BottomRight Placement = "bottom-right"
)

// Placements returns every placement accepted by the extended pipeline
func Placements() []Placement {
	return []Placement{
		Center, Random, Left, Right, Up, Down,
		TopLeft, TopMid, TopRight, MidLeft, MidRight,
		BottomLeft, BottomMid, BottomRight,
	}
}

// LegacyPlacements returns the placements of the legacy pipeline
func LegacyPlacements() []Placement {
	return []Placement{Center, Random, Left, Right, Up, Down}
}

// Variant selects the pipeline flavour
type Variant string

const (
	// Extended adds rotation, scaling, background colors and edge placements.
	Extended Variant = "extended"
	// Legacy only pads: no rotation or scaling and a fixed grey fill.
	Legacy Variant = "legacy"
)

// RandomToken is the parameter value requesting a random choice
const RandomToken = "random"

// Background fill values
const (
	White float32 = 1.0
	Black float32 = 0.0
	Grey  float32 = 0.5
)

// Params holds the raw invocation parameters as supplied by the caller
type Params struct {
	AspectRatio string `json:"aspect_ratio" yaml:"aspect_ratio" toml:"aspect_ratio"`
	Placement   string `json:"placement" yaml:"placement" toml:"placement"`
	Scale       string `json:"scale" yaml:"scale" toml:"scale"`
	Rotation    string `json:"rotation" yaml:"rotation" toml:"rotation"`
	Background  string `json:"background" yaml:"background" toml:"background"`
	Seed        uint32 `json:"seed" yaml:"seed" toml:"seed"`
	Feathering  int    `json:"feathering" yaml:"feathering" toml:"feathering"`

	// PreviousSeed is only consulted by the legacy variant: when set and
	// different from Seed the aspect ratio is re-chosen from Seed.
	PreviousSeed *uint32 `json:"previous_seed,omitempty" yaml:"previous_seed,omitempty" toml:"previous_seed,omitempty"`
}

// Resolved holds concrete parameter values after random choices and fallbacks
type Resolved struct {
	AspectRatio string    `json:"aspect_ratio"`
	Ratio       float64   `json:"ratio"`
	Rotation    float64   `json:"rotation"`
	Scale       int       `json:"scale"`
	Placement   Placement `json:"placement"`
	Background  float32   `json:"background"`
	Feathering  int       `json:"feathering"`
}

// String reports the resolved parameters
func (r Resolved) String() string {
	return fmt.Sprintf("aspect_ratio=%s placement=%s scale=%d%% rotation=%g°",
		r.AspectRatio, r.Placement, r.Scale, r.Rotation)
}

// PadOffsets is the padding around the foreground on each side of the canvas
type PadOffsets struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}
