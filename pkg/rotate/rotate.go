// Package rotate turns an image about its centre onto a canvas that exactly
// bounds the rotated rectangle.
package rotate

import (
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/menta2k/aspect-outpaint/pkg/tensor"
)

// sizeEpsilon absorbs float noise before flooring the rotated extents, so
// 90° of a 512 wide image is 512 tall and not 511.
const sizeEpsilon = 1e-9

// boundsEpsilon widens the half-pixel source border by a hair
const boundsEpsilon = 1e-6

// Size returns the dimensions of the canvas bounding a w x h rectangle
// rotated by degrees.
func Size(w, h int, degrees float64) (int, int) {
	rad := degrees * math.Pi / 180
	c, s := math.Abs(math.Cos(rad)), math.Abs(math.Sin(rad))
	nw := int(math.Floor(float64(w)*c + float64(h)*s + sizeEpsilon))
	nh := int(math.Floor(float64(h)*c + float64(w)*s + sizeEpsilon))
	return max(nw, 1), max(nh, 1)
}

// Rotate turns img counter-clockwise by degrees. Destination pixels whose
// source falls outside img are set to bg on every channel. A rotation that is
// a multiple of 360 returns img itself.
func Rotate(img *tensor.Image, degrees float64, bg float32) *tensor.Image {
	if math.Mod(degrees, 360) == 0 {
		return img
	}

	w, h := img.Width, img.Height
	nw, nh := Size(w, h, degrees)
	out := &tensor.Image{
		Batch:    img.Batch,
		Height:   nh,
		Width:    nw,
		Channels: img.Channels,
		Pix:      make([]float32, img.Batch*nh*nw*img.Channels),
	}

	rad := degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	srcCX, srcCY := float64(w-1)/2, float64(h-1)/2
	dstCX, dstCY := float64(nw-1)/2, float64(nh-1)/2
	minX, maxX := -0.5-boundsEpsilon, float64(w)-0.5+boundsEpsilon
	minY, maxY := -0.5-boundsEpsilon, float64(h)-0.5+boundsEpsilon

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < nh; y++ {
		g.Go(func() error {
			dy := float64(y) - dstCY
			for x := 0; x < nw; x++ {
				dx := float64(x) - dstCX
				sx := cos*dx - sin*dy + srcCX
				sy := sin*dx + cos*dy + srcCY
				valid := sx >= minX && sx <= maxX && sy >= minY && sy <= maxY
				for b := 0; b < img.Batch; b++ {
					o := out.Offset(b, y, x)
					if !valid {
						for c := 0; c < out.Channels; c++ {
							out.Pix[o+c] = bg
						}
						continue
					}
					sampleBilinear(img, b, sx, sy, out.Pix[o:o+out.Channels])
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// sampleBilinear writes the interpolated sample at (sx, sy) of batch item b
// into dst. Neighbours outside the image are clamped to the edge.
func sampleBilinear(img *tensor.Image, b int, sx, sy float64, dst []float32) {
	x0f, y0f := math.Floor(sx), math.Floor(sy)
	fx, fy := float32(sx-x0f), float32(sy-y0f)
	x0 := clampIndex(int(x0f), img.Width)
	x1 := clampIndex(int(x0f)+1, img.Width)
	y0 := clampIndex(int(y0f), img.Height)
	y1 := clampIndex(int(y0f)+1, img.Height)

	o00 := img.Offset(b, y0, x0)
	o01 := img.Offset(b, y0, x1)
	o10 := img.Offset(b, y1, x0)
	o11 := img.Offset(b, y1, x1)
	for c := range dst {
		top := img.Pix[o00+c]*(1-fx) + img.Pix[o01+c]*fx
		bottom := img.Pix[o10+c]*(1-fx) + img.Pix[o11+c]*fx
		dst[c] = top*(1-fy) + bottom*fy
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
