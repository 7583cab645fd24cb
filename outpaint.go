// Package outpaint pads images onto aspect-ratio canvases and builds the
// feathered masks used by outpainting models.
//
// A single call runs a forward-only pipeline:
//
//  1. Resolve parameters ("random" tokens, fallbacks, placement collapse)
//  2. Rotate the source about its centre, filling uncovered corners
//  3. Size the canvas for the target ratio, aligned up to 8 pixels
//  4. Shrink the foreground by the scale percentage
//  5. Place the foreground on the canvas and build the mask
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		outpaint "github.com/menta2k/aspect-outpaint"
//		"github.com/menta2k/aspect-outpaint/pkg/processing"
//		"github.com/menta2k/aspect-outpaint/pkg/types"
//	)
//
//	func main() {
//		proc := processing.NewProcessor()
//		img, err := proc.LoadImage("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := outpaint.New().ProcessImage(img, types.Params{
//			AspectRatio: "16:9",
//			Placement:   "left",
//			Scale:       "80",
//			Feathering:  40,
//		})
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(result.Info)
//	}
//
// Recoverable problems (a malformed ratio, an unknown placement, a scale not
// allowed for the canvas) resolve silently to safe defaults unless the
// Outpainter is configured as strict.
package outpaint

import (
	"fmt"
	"image"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/menta2k/aspect-outpaint/pkg/aspect"
	"github.com/menta2k/aspect-outpaint/pkg/composite"
	"github.com/menta2k/aspect-outpaint/pkg/params"
	"github.com/menta2k/aspect-outpaint/pkg/rotate"
	"github.com/menta2k/aspect-outpaint/pkg/scale"
	"github.com/menta2k/aspect-outpaint/pkg/tensor"
	"github.com/menta2k/aspect-outpaint/pkg/types"
)

// Version of the outpaint library
const Version = "1.0.0"

// Config controls pipeline behaviour
type Config struct {
	Variant types.Variant
	Strict  bool
	// NonReproducible draws the base seed from the process-wide source
	// instead of Params.Seed. The zero value keeps runs repeatable.
	NonReproducible bool
	// Logger receives debug output; nil uses log.Default().
	Logger *log.Logger
}

// DefaultConfig returns a lenient, reproducible extended pipeline
func DefaultConfig() Config {
	return Config{
		Variant: types.Extended,
		Strict:  false,
	}
}

// Outpainter runs the padding pipeline. It is safe for concurrent use.
type Outpainter struct {
	config   Config
	resolver *params.Resolver
	logger   *log.Logger

	mu   sync.Mutex
	last string
}

// New creates a new Outpainter with default configuration
func New() *Outpainter {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new Outpainter with custom configuration
func NewWithConfig(config Config) *Outpainter {
	if config.Variant == "" {
		config.Variant = types.Extended
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Outpainter{
		config: config,
		resolver: params.NewWithConfig(params.Config{
			Variant:         config.Variant,
			Strict:          config.Strict,
			NonReproducible: config.NonReproducible,
		}),
		logger: logger,
	}
}

// Result holds the outputs of one invocation
type Result struct {
	Image *tensor.Image
	Mask  *tensor.Mask
	// Info summarises the resolved parameters. The legacy variant reports
	// only the aspect ratio used.
	Info         string
	Resolved     types.Resolved
	Offsets      types.PadOffsets
	CanvasWidth  int
	CanvasHeight int
}

// Process pads img according to p. img is never modified.
func (o *Outpainter) Process(img *tensor.Image, p types.Params) (Result, error) {
	if err := img.Validate(); err != nil {
		return Result{}, err
	}

	res, err := o.resolver.Resolve(p)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve parameters: %w", err)
	}
	values := res.Values
	o.remember(values.AspectRatio)
	o.logger.Debug("resolved parameters",
		"aspect_ratio", values.AspectRatio,
		"placement", values.Placement,
		"scale", values.Scale,
		"rotation", values.Rotation,
		"background", values.Background)

	fg := rotate.Rotate(img, values.Rotation, values.Background)
	cw, ch := aspect.CanvasSize(fg.Width, fg.Height, values.Ratio)

	fg, err = scale.Resize(fg, values.Scale)
	if err != nil {
		return Result{}, fmt.Errorf("failed to scale foreground: %w", err)
	}

	off, err := composite.Offsets(cw, ch, fg.Width, fg.Height, values.Placement, res.Streams.Placement)
	if err != nil {
		return Result{}, fmt.Errorf("failed to place foreground: %w", err)
	}

	canvas, err := composite.Canvas(fg, cw, ch, off, values.Background)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build canvas: %w", err)
	}
	mask := composite.FeatherMask(cw, ch, fg.Width, fg.Height, off, values.Feathering)

	o.logger.Debug("composited",
		"canvas", fmt.Sprintf("%dx%d", cw, ch),
		"foreground", fmt.Sprintf("%dx%d", fg.Width, fg.Height),
		"left", off.Left, "top", off.Top, "right", off.Right, "bottom", off.Bottom)

	info := values.String()
	if o.config.Variant == types.Legacy {
		info = values.AspectRatio
	}

	return Result{
		Image:        canvas,
		Mask:         mask,
		Info:         info,
		Resolved:     values,
		Offsets:      off,
		CanvasWidth:  cw,
		CanvasHeight: ch,
	}, nil
}

// ProcessImage converts img to a single-item RGB batch and pads it
func (o *Outpainter) ProcessImage(img image.Image, p types.Params) (Result, error) {
	t, err := tensor.FromImages(false, img)
	if err != nil {
		return Result{}, err
	}
	return o.Process(t, p)
}

// LastAspectRatio returns the aspect ratio used by the most recent call. It
// is informational only and never feeds back into processing.
func (o *Outpainter) LastAspectRatio() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

func (o *Outpainter) remember(ratio string) {
	o.mu.Lock()
	o.last = ratio
	o.mu.Unlock()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
