package aspect

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/menta2k/aspect-outpaint/pkg/types"
)

// Alignment is the multiple both canvas dimensions are rounded up to
const Alignment = 8

// equalTolerance is how close two ratios must be to count as equal
const equalTolerance = 1e-6

// Ratio is a width:height canvas shape
type Ratio struct {
	Width  float64
	Height float64
	Name   string
}

// Canvas presets
var (
	Square        = Ratio{1, 1, "1:1"}
	Widescreen    = Ratio{16, 9, "16:9"}
	Story         = Ratio{9, 16, "9:16"}
	Photo         = Ratio{3, 2, "3:2"}
	PhotoTall     = Ratio{2, 3, "2:3"}
	Instagram     = Ratio{4, 5, "4:5"}
	InstagramWide = Ratio{5, 4, "5:4"}
	Landscape     = Ratio{4, 3, "4:3"}
	Portrait      = Ratio{3, 4, "3:4"}
)

// Presets returns the presets of the extended pipeline, square included
func Presets() []Ratio {
	return []Ratio{Square, Widescreen, Story, Photo, PhotoTall, Instagram, InstagramWide, Landscape, Portrait}
}

// LegacyPresets returns the presets of the legacy pipeline
func LegacyPresets() []Ratio {
	return []Ratio{Widescreen, Story, Photo, PhotoTall, Instagram, InstagramWide}
}

// Value returns width/height
func (r Ratio) Value() float64 {
	return r.Width / r.Height
}

// IsHorizontal reports whether the canvas is at least as wide as it is tall
func (r Ratio) IsHorizontal() bool {
	return r.Value() >= 1.0
}

// IsVertical reports whether the canvas is taller than it is wide
func (r Ratio) IsVertical() bool {
	return r.Value() < 1.0
}

// IsSquare reports whether the ratio is 1:1
func (r Ratio) IsSquare() bool {
	return math.Abs(r.Value()-1.0) < equalTolerance
}

func (r Ratio) String() string {
	return r.Name
}

// Parse reads a "W:H" token such as "16:9" or "2.39:1". Both sides must be
// positive finite numbers.
func Parse(token string) (Ratio, error) {
	token = strings.TrimSpace(token)
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return Ratio{}, fmt.Errorf("%w: %q is not W:H", types.ErrInvalidAspectRatio, token)
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errW != nil || errH != nil || !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return Ratio{}, fmt.Errorf("%w: %q", types.ErrInvalidAspectRatio, token)
	}
	return Ratio{Width: w, Height: h, Name: token}, nil
}

// CanvasSize returns the smallest canvas of the target ratio that contains a
// w x h image, with both sides rounded up to Alignment.
func CanvasSize(w, h int, target float64) (int, int) {
	cw, ch := w, h
	orig := float64(w) / float64(h)
	switch {
	case math.Abs(orig-target) < equalTolerance:
	case target > orig:
		cw = int(math.Round(target * float64(h)))
	default:
		ch = int(math.Round(float64(w) / target))
	}
	return AlignUp(cw, Alignment), AlignUp(ch, Alignment)
}

// AlignUp rounds x up to the next multiple of n
func AlignUp(x, n int) int {
	return ((x + n - 1) / n) * n
}
