// Package composite places the foreground on the canvas and builds the
// outpaint mask.
//
// The mask is 1 over synthetic padding and 0 over original content, with a
// quadratic ramp of width f along every edge of the foreground that borders
// padding. Edges flush with the canvas border never feather.
package composite

import (
	"fmt"
	"math/rand/v2"

	"github.com/menta2k/aspect-outpaint/pkg/tensor"
	"github.com/menta2k/aspect-outpaint/pkg/types"
)

// Offsets places a w x h foreground on a cw x ch canvas. Unknown placements
// are centred. rng is only used for types.Random; nil draws from the
// process-wide source.
func Offsets(cw, ch, w, h int, placement types.Placement, rng *rand.Rand) (types.PadOffsets, error) {
	dw, dh := cw-w, ch-h
	if dw < 0 || dh < 0 {
		return types.PadOffsets{}, fmt.Errorf("%w: %dx%d foreground on %dx%d canvas", types.ErrNegativePadding, w, h, cw, ch)
	}

	var left, top int
	switch placement {
	case types.Random:
		left, top = intN(rng, dw+1), intN(rng, dh+1)
	case types.Left, types.MidLeft:
		left, top = 0, dh/2
	case types.Right, types.MidRight:
		left, top = dw, dh/2
	case types.Up, types.TopMid:
		left, top = dw/2, 0
	case types.Down, types.BottomMid:
		left, top = dw/2, dh
	case types.TopLeft:
		left, top = 0, 0
	case types.TopRight:
		left, top = dw, 0
	case types.BottomLeft:
		left, top = 0, dh
	case types.BottomRight:
		left, top = dw, dh
	default:
		left, top = dw/2, dh/2
	}

	return types.PadOffsets{
		Left:   left,
		Top:    top,
		Right:  dw - left,
		Bottom: dh - top,
	}, nil
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}

// Canvas allocates a cw x ch canvas filled with bg and copies img into it at
// the given offsets.
func Canvas(img *tensor.Image, cw, ch int, off types.PadOffsets, bg float32) (*tensor.Image, error) {
	if off.Left < 0 || off.Top < 0 || off.Left+img.Width > cw || off.Top+img.Height > ch {
		return nil, fmt.Errorf("%w: %dx%d at (%d,%d) on %dx%d canvas",
			types.ErrNegativePadding, img.Width, img.Height, off.Left, off.Top, cw, ch)
	}
	out, err := tensor.Filled(img.Batch, ch, cw, img.Channels, bg)
	if err != nil {
		return nil, err
	}
	rowLen := img.Width * img.Channels
	for b := 0; b < img.Batch; b++ {
		for y := 0; y < img.Height; y++ {
			src := img.Offset(b, y, 0)
			dst := out.Offset(b, off.Top+y, off.Left)
			copy(out.Pix[dst:dst+rowLen], img.Pix[src:src+rowLen])
		}
	}
	return out, nil
}

// FeatherMask builds the cw x ch mask for a w x h foreground at off with a
// feather radius of f pixels. Feathering is skipped unless 0 < 2f < min(w, h).
func FeatherMask(cw, ch, w, h int, off types.PadOffsets, f int) *tensor.Mask {
	mask := tensor.NewMask(ch, cw, 1)

	feather := f > 0 && 2*f < h && 2*f < w
	var rows, cols []int
	if feather {
		rows = edgeDistances(h, off.Top > 0, off.Bottom > 0)
		cols = edgeDistances(w, off.Left > 0, off.Right > 0)
	}

	ff := float64(f)
	for i := 0; i < h; i++ {
		line := mask.Pix[(off.Top+i)*cw+off.Left : (off.Top+i)*cw+off.Left+w]
		for j := range line {
			line[j] = 0
			if !feather {
				continue
			}
			if d := min(rows[i], cols[j]); d < f {
				v := (ff - float64(d)) / ff
				line[j] = float32(v * v)
			}
		}
	}
	return mask
}

// edgeDistances returns, for each index along an axis of length n, the
// distance to the nearest padded end. An unpadded end counts as n away.
func edgeDistances(n int, padStart, padEnd bool) []int {
	ds := make([]int, n)
	for i := range ds {
		start, end := n, n
		if padStart {
			start = i
		}
		if padEnd {
			end = n - 1 - i
		}
		ds[i] = min(start, end)
	}
	return ds
}
