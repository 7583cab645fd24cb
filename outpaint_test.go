package outpaint

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/menta2k/aspect-outpaint/pkg/tensor"
	"github.com/menta2k/aspect-outpaint/pkg/types"
)

// createTestImage creates a gradient tensor
func createTestImage(t testing.TB, width, height int) *tensor.Image {
	img, err := tensor.New(1, height, width, 3)
	require.NoError(t, err)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(0, y, x, 0, float32(x)/float32(width))
			img.Set(0, y, x, 1, float32(y)/float32(height))
			img.Set(0, y, x, 2, 0.5)
		}
	}
	return img
}

func TestNew(t *testing.T) {
	o := New()
	require.NotNil(t, o)
	require.NotNil(t, o.resolver)
	require.NotNil(t, o.logger)
	require.Equal(t, types.Extended, o.config.Variant)
	require.False(t, o.config.NonReproducible)
	require.Empty(t, o.LastAspectRatio())
}

func TestProcessEndToEnd(t *testing.T) {
	img := createTestImage(t, 512, 768)
	before := img.Clone()

	o := New()
	result, err := o.Process(img, types.Params{
		AspectRatio: "1:1",
		Placement:   "center",
		Scale:       "100",
		Feathering:  40,
	})
	require.NoError(t, err)
	require.Equal(t, before.Pix, img.Pix, "input must not be modified")

	require.Equal(t, 80, result.Resolved.Scale)
	require.Equal(t, 768, result.CanvasWidth)
	require.Equal(t, 768, result.CanvasHeight)
	require.Equal(t, [4]int{1, 768, 768, 3}, result.Image.Shape())
	require.Equal(t, [3]int{1, 768, 768}, result.Mask.Shape())

	off := result.Offsets
	fw, fh := 409, 614
	require.Equal(t, (768-fw)/2, off.Left)
	require.Equal(t, (768-fh)/2, off.Top)
	require.Equal(t, 768-fw, off.Left+off.Right)
	require.Equal(t, 768-fh, off.Top+off.Bottom)

	for y := 0; y < 768; y++ {
		for x := 0; x < 768; x++ {
			inside := x >= off.Left && x < off.Left+fw && y >= off.Top && y < off.Top+fh
			v := result.Mask.At(y, x)
			if !inside {
				require.Equal(t, float32(1), v, "(%d,%d)", x, y)
				require.Equal(t, types.Grey, result.Image.At(0, y, x, 0))
				continue
			}
			d := min(x-off.Left, off.Left+fw-1-x, y-off.Top, off.Top+fh-1-y)
			if d >= 40 {
				require.Zero(t, v, "(%d,%d)", x, y)
			} else {
				require.Greater(t, v, float32(0))
			}
		}
	}
	require.Equal(t, "aspect_ratio=1:1 placement=center scale=80% rotation=0°", result.Info)
	require.Equal(t, "1:1", o.LastAspectRatio())
}

func TestProcessMatchingRatioIsIdentity(t *testing.T) {
	img := createTestImage(t, 64, 48)
	result, err := New().Process(img, types.Params{
		AspectRatio: "4:3",
		Scale:       "100",
		Rotation:    "0",
		Feathering:  8,
	})
	require.NoError(t, err)
	require.Equal(t, img.Shape(), result.Image.Shape())
	require.Equal(t, img.Pix, result.Image.Pix)
	for _, v := range result.Mask.Pix {
		require.Zero(t, v)
	}
}

func TestProcessMatchingRatioAligned(t *testing.T) {
	img := createTestImage(t, 60, 45)
	result, err := New().Process(img, types.Params{AspectRatio: "4:3", Scale: "100"})
	require.NoError(t, err)
	require.Equal(t, 64, result.CanvasWidth)
	require.Equal(t, 48, result.CanvasHeight)
	off := result.Offsets
	for y := off.Top; y < off.Top+45; y++ {
		for x := off.Left; x < off.Left+60; x++ {
			require.Zero(t, result.Mask.At(y, x))
			require.Equal(t, img.At(0, y-off.Top, x-off.Left, 1), result.Image.At(0, y, x, 1))
		}
	}
}

func TestProcessRotation(t *testing.T) {
	img := createTestImage(t, 100, 50)
	result, err := New().Process(img, types.Params{
		AspectRatio: "16:9",
		Rotation:    "90",
		Scale:       "100",
		Background:  "black",
	})
	require.NoError(t, err)
	// Rotated foreground is 50x100; canvas round(16/9*100)=178 -> 184 wide.
	require.Equal(t, 184, result.CanvasWidth)
	require.Equal(t, 104, result.CanvasHeight)
	require.Equal(t, types.Black, result.Image.At(0, 0, 0, 0))
	require.Equal(t, 90.0, result.Resolved.Rotation)
}

func TestProcessRandomIsReproducible(t *testing.T) {
	img := createTestImage(t, 96, 64)
	p := types.Params{AspectRatio: "random", Placement: "random", Scale: "random", Rotation: "random", Seed: 42, Feathering: 4}

	a, err := New().Process(img, p)
	require.NoError(t, err)
	b, err := New().Process(img, p)
	require.NoError(t, err)
	require.Equal(t, a.Info, b.Info)
	require.Equal(t, a.Offsets, b.Offsets)
	require.Equal(t, a.Mask.Pix, b.Mask.Pix)
}

func TestProcessZeroConfigIsReproducible(t *testing.T) {
	img := createTestImage(t, 96, 64)
	p := types.Params{AspectRatio: "random", Placement: "random", Scale: "random", Seed: 7}

	first, err := NewWithConfig(Config{Strict: true}).Process(img, p)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := NewWithConfig(Config{Strict: true}).Process(img, p)
		require.NoError(t, err)
		require.Equal(t, first.Resolved, again.Resolved)
		require.Equal(t, first.Offsets, again.Offsets)
	}
}

func TestProcessLegacy(t *testing.T) {
	o := NewWithConfig(Config{Variant: types.Legacy})
	img := createTestImage(t, 64, 64)

	result, err := o.Process(img, types.Params{AspectRatio: "16:9", Placement: "up", Scale: "50", Rotation: "90", Feathering: 4})
	require.NoError(t, err)
	require.Equal(t, "16:9", result.Info)
	require.Equal(t, "16:9", o.LastAspectRatio())
	require.Equal(t, types.Center, result.Resolved.Placement)
	require.Equal(t, 64, result.Image.Height)
	require.Equal(t, 120, result.CanvasWidth)
	require.Equal(t, types.Grey, result.Image.At(0, 0, 0, 0))
}

func TestProcessInvalidImage(t *testing.T) {
	_, err := New().Process(&tensor.Image{Batch: 1, Height: 0, Width: 4, Channels: 3}, types.Params{AspectRatio: "1:1"})
	require.True(t, errors.Is(err, types.ErrInvalidImage))

	_, err = New().Process(nil, types.Params{AspectRatio: "1:1"})
	require.True(t, errors.Is(err, types.ErrInvalidImage))
}

func TestProcessStrict(t *testing.T) {
	img := createTestImage(t, 32, 32)
	strict := NewWithConfig(Config{Strict: true})

	_, err := strict.Process(img, types.Params{AspectRatio: "bogus"})
	require.True(t, errors.Is(err, types.ErrInvalidAspectRatio))

	lenient, err := New().Process(img, types.Params{AspectRatio: "bogus", Scale: "80"})
	require.NoError(t, err)
	require.Equal(t, 1.0, lenient.Resolved.Ratio)
}

func TestProcessImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			src.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	result, err := New().ProcessImage(src, types.Params{AspectRatio: "1:1", Scale: "50", Placement: "top-left"})
	require.NoError(t, err)
	require.Equal(t, 40, result.CanvasWidth)
	require.Equal(t, 40, result.CanvasHeight)
	require.Equal(t, float32(1), result.Image.At(0, 0, 0, 0))
	require.Equal(t, float32(0), result.Image.At(0, 0, 0, 1))
	require.Equal(t, types.Grey, result.Image.At(0, 39, 39, 0))
}

func TestGetVersion(t *testing.T) {
	require.Equal(t, Version, GetVersion())
}

func BenchmarkProcess(b *testing.B) {
	img := createTestImage(b, 512, 768)
	o := New()
	p := types.Params{AspectRatio: "16:9", Placement: "center", Scale: "80", Rotation: "30", Feathering: 40}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		o.Process(img, p)
	}
}
