// Package params turns raw invocation tokens into concrete pipeline values.
//
// Every random choice draws from its own PCG stream derived from the seed,
// so re-rolling one parameter never shifts another: the aspect ratio, the
// rotation, the scale and the placement offset each have a stream.
package params

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/menta2k/aspect-outpaint/pkg/aspect"
	"github.com/menta2k/aspect-outpaint/pkg/types"
)

// Limits of the invocation contract
const (
	MaxSeed       = 1<<31 - 1
	MaxFeathering = 1024
)

// Stream identifiers for the per-concern generators
const (
	streamAspect uint64 = iota + 1
	streamRotation
	streamScale
	streamPlacement
)

// Config controls how tokens are resolved
type Config struct {
	Variant types.Variant
	// Strict turns silent fallbacks into errors.
	Strict bool
	// NonReproducible draws the base seed from the process-wide source
	// instead of Params.Seed, so runs are not repeatable. The zero value
	// keeps every draw seeded.
	NonReproducible bool
}

// Resolver resolves raw parameters
type Resolver struct {
	config Config
}

// Streams holds one generator per randomized concern
type Streams struct {
	Aspect    *rand.Rand
	Rotation  *rand.Rand
	Scale     *rand.Rand
	Placement *rand.Rand
}

// NewStreams derives independent generators from seed
func NewStreams(seed uint64) Streams {
	return Streams{
		Aspect:    rand.New(rand.NewPCG(seed, streamAspect)),
		Rotation:  rand.New(rand.NewPCG(seed, streamRotation)),
		Scale:     rand.New(rand.NewPCG(seed, streamScale)),
		Placement: rand.New(rand.NewPCG(seed, streamPlacement)),
	}
}

// Resolution is the outcome of resolving one set of parameters
type Resolution struct {
	Values  types.Resolved
	Ratio   aspect.Ratio
	Streams Streams
}

// New creates a lenient, reproducible resolver for the extended variant
func New() *Resolver {
	return &Resolver{
		config: Config{
			Variant: types.Extended,
			Strict:  false,
		},
	}
}

// NewWithConfig creates a resolver with custom configuration
func NewWithConfig(config Config) *Resolver {
	if config.Variant == "" {
		config.Variant = types.Extended
	}
	return &Resolver{config: config}
}

// Config returns the resolver configuration
func (r *Resolver) Config() Config {
	return r.config
}

// Rotations returns the angles a random rotation is drawn from
func Rotations() []int {
	angles := make([]int, 0, 12)
	for a := 0; a < 360; a += 30 {
		angles = append(angles, a)
	}
	return angles
}

// Scales returns the valid scale percentages for a canvas ratio. Square
// canvases exclude 90 and 100 so the padding stays visible.
func Scales(ratio aspect.Ratio) []int {
	if ratio.IsSquare() {
		return []int{50, 60, 70, 80}
	}
	return []int{50, 60, 70, 80, 90, 100}
}

// Resolve produces concrete values for p
func (r *Resolver) Resolve(p types.Params) (Resolution, error) {
	if r.config.Strict {
		if p.Seed > MaxSeed {
			return Resolution{}, fmt.Errorf("%w: seed %d exceeds %d", types.ErrOutOfRange, p.Seed, MaxSeed)
		}
		if p.Feathering < 0 || p.Feathering > MaxFeathering {
			return Resolution{}, fmt.Errorf("%w: feathering %d not in [0,%d]", types.ErrOutOfRange, p.Feathering, MaxFeathering)
		}
	}

	seed := uint64(p.Seed)
	if r.config.NonReproducible {
		seed = rand.Uint64()
	}
	streams := NewStreams(seed)

	ratio, err := r.resolveAspect(p, streams.Aspect)
	if err != nil {
		return Resolution{}, err
	}

	values := types.Resolved{
		AspectRatio: ratio.Name,
		Ratio:       ratio.Value(),
		Scale:       100,
		Background:  types.Grey,
		Feathering:  max(p.Feathering, 0),
	}

	placement, err := r.resolvePlacement(p.Placement, ratio)
	if err != nil {
		return Resolution{}, err
	}
	values.Placement = placement

	if r.config.Variant == types.Extended {
		if values.Rotation, err = r.resolveRotation(p.Rotation, streams.Rotation); err != nil {
			return Resolution{}, err
		}
		if values.Scale, err = r.resolveScale(p.Scale, ratio, streams.Scale); err != nil {
			return Resolution{}, err
		}
		if values.Background, err = r.resolveBackground(p.Background); err != nil {
			return Resolution{}, err
		}
	}

	return Resolution{Values: values, Ratio: ratio, Streams: streams}, nil
}

func (r *Resolver) resolveAspect(p types.Params, rng *rand.Rand) (aspect.Ratio, error) {
	presets := aspect.Presets()
	if r.config.Variant == types.Legacy {
		presets = aspect.LegacyPresets()
		if p.PreviousSeed != nil && *p.PreviousSeed != p.Seed {
			// Always seeded from the new seed, whatever the base seed policy.
			reseed := rand.New(rand.NewPCG(uint64(p.Seed), streamAspect))
			return presets[reseed.IntN(len(presets))], nil
		}
	}

	token := strings.TrimSpace(p.AspectRatio)
	if strings.EqualFold(token, types.RandomToken) {
		return presets[rng.IntN(len(presets))], nil
	}

	ratio, err := aspect.Parse(token)
	if err != nil {
		if r.config.Strict {
			return aspect.Ratio{}, err
		}
		return aspect.Ratio{Width: 1, Height: 1, Name: token}, nil
	}
	return ratio, nil
}

func (r *Resolver) resolvePlacement(token string, ratio aspect.Ratio) (types.Placement, error) {
	allowed := types.Placements()
	if r.config.Variant == types.Legacy {
		allowed = types.LegacyPlacements()
	}

	placement := types.Placement(strings.ToLower(strings.TrimSpace(token)))
	if placement == "" {
		placement = types.Center
	}
	if !slices.Contains(allowed, placement) {
		if r.config.Strict {
			return "", fmt.Errorf("%w: %q", types.ErrInvalidPlacement, token)
		}
		return types.Center, nil
	}
	return Effective(placement, ratio), nil
}

// Effective collapses directional placements that do not fit the canvas
// orientation to center.
func Effective(placement types.Placement, ratio aspect.Ratio) types.Placement {
	switch placement {
	case types.Left, types.Right:
		if !ratio.IsHorizontal() {
			return types.Center
		}
	case types.Up, types.Down:
		if !ratio.IsVertical() {
			return types.Center
		}
	}
	return placement
}

func (r *Resolver) resolveRotation(token string, rng *rand.Rand) (float64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, nil
	}
	if strings.EqualFold(token, types.RandomToken) {
		angles := Rotations()
		return float64(angles[rng.IntN(len(angles))]), nil
	}

	degrees, err := strconv.ParseFloat(strings.TrimSuffix(token, "°"), 64)
	if err != nil || math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		if r.config.Strict {
			return 0, fmt.Errorf("%w: %q", types.ErrInvalidRotation, token)
		}
		return 0, nil
	}
	if r.config.Strict && (degrees != math.Trunc(degrees) || !slices.Contains(Rotations(), int(degrees))) {
		return 0, fmt.Errorf("%w: %q is not a multiple of 30 in [0,330]", types.ErrInvalidRotation, token)
	}
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	return degrees, nil
}

func (r *Resolver) resolveScale(token string, ratio aspect.Ratio, rng *rand.Rand) (int, error) {
	valid := Scales(ratio)
	largest := valid[len(valid)-1]

	token = strings.TrimSpace(token)
	if strings.EqualFold(token, types.RandomToken) {
		return valid[rng.IntN(len(valid))], nil
	}
	if token == "" {
		return largest, nil
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(token, "%"))
	if err != nil {
		if r.config.Strict {
			return 0, fmt.Errorf("%w: %q", types.ErrInvalidScale, token)
		}
		return largest, nil
	}
	if !slices.Contains(valid, pct) {
		if r.config.Strict {
			return 0, fmt.Errorf("%w: %d%% not allowed for %s (valid %v)", types.ErrInvalidScale, pct, ratio.Name, valid)
		}
		return largest, nil
	}
	return pct, nil
}

func (r *Resolver) resolveBackground(token string) (float32, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", "grey", "gray":
		return types.Grey, nil
	case "white":
		return types.White, nil
	case "black":
		return types.Black, nil
	}
	if r.config.Strict {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidBackground, token)
	}
	return types.Grey, nil
}
