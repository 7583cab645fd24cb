package scale

import (
	"fmt"
	"math"

	"github.com/menta2k/aspect-outpaint/pkg/tensor"
	"github.com/menta2k/aspect-outpaint/pkg/types"
)

// Dimensions returns the size of a w x h image scaled by percent. Each side
// is floored and never drops below 1.
func Dimensions(w, h, percent int) (int, int) {
	f := float64(percent) / 100
	return max(1, int(math.Floor(float64(w)*f))), max(1, int(math.Floor(float64(h)*f)))
}

// Resize shrinks img uniformly by percent using bilinear interpolation with
// half-pixel centres. 100 returns img itself.
func Resize(img *tensor.Image, percent int) (*tensor.Image, error) {
	if percent == 100 {
		return img, nil
	}
	if percent <= 0 {
		return nil, fmt.Errorf("%w: scale %d%%", types.ErrInvalidScale, percent)
	}
	nw, nh := Dimensions(img.Width, img.Height, percent)
	return ResizeTo(img, nw, nh), nil
}

// ResizeTo resamples img to exactly width x height
func ResizeTo(img *tensor.Image, width, height int) *tensor.Image {
	out := &tensor.Image{
		Batch:    img.Batch,
		Height:   height,
		Width:    width,
		Channels: img.Channels,
		Pix:      make([]float32, img.Batch*height*width*img.Channels),
	}

	xs := axisWeights(img.Width, width)
	ys := axisWeights(img.Height, height)

	for b := 0; b < img.Batch; b++ {
		for y, wy := range ys {
			for x, wx := range xs {
				o00 := img.Offset(b, wy.i0, wx.i0)
				o01 := img.Offset(b, wy.i0, wx.i1)
				o10 := img.Offset(b, wy.i1, wx.i0)
				o11 := img.Offset(b, wy.i1, wx.i1)
				o := out.Offset(b, y, x)
				for c := 0; c < img.Channels; c++ {
					top := img.Pix[o00+c]*(1-wx.f) + img.Pix[o01+c]*wx.f
					bottom := img.Pix[o10+c]*(1-wx.f) + img.Pix[o11+c]*wx.f
					out.Pix[o+c] = top*(1-wy.f) + bottom*wy.f
				}
			}
		}
	}
	return out
}

type weight struct {
	i0, i1 int
	f      float32
}

// axisWeights precomputes the neighbour pair and blend factor along one axis
func axisWeights(in, out int) []weight {
	ratio := float64(in) / float64(out)
	ws := make([]weight, out)
	for i := range ws {
		src := (float64(i)+0.5)*ratio - 0.5
		if src < 0 {
			src = 0
		}
		i0 := int(math.Floor(src))
		if i0 > in-1 {
			i0 = in - 1
		}
		i1 := min(i0+1, in-1)
		ws[i] = weight{i0: i0, i1: i1, f: float32(src - float64(i0))}
	}
	return ws
}
