// Package tensor holds the float sample buffers the pipeline operates on.
//
// Images are laid out as (batch, height, width, channel) and masks as
// (1, height, width), both row-major with values nominally in [0,1].
package tensor

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/menta2k/aspect-outpaint/pkg/types"
)

// Image is a batch of equally sized images with interleaved channels
type Image struct {
	Batch    int
	Height   int
	Width    int
	Channels int
	Pix      []float32
}

// New allocates a zeroed image
func New(batch, height, width, channels int) (*Image, error) {
	if batch <= 0 || height <= 0 || width <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: shape (%d,%d,%d,%d)", types.ErrInvalidImage, batch, height, width, channels)
	}
	return &Image{
		Batch:    batch,
		Height:   height,
		Width:    width,
		Channels: channels,
		Pix:      make([]float32, batch*height*width*channels),
	}, nil
}

// Filled allocates an image with every sample set to v
func Filled(batch, height, width, channels int, v float32) (*Image, error) {
	img, err := New(batch, height, width, channels)
	if err != nil {
		return nil, err
	}
	if v != 0 {
		for i := range img.Pix {
			img.Pix[i] = v
		}
	}
	return img, nil
}

// Shape returns (batch, height, width, channels)
func (m *Image) Shape() [4]int {
	return [4]int{m.Batch, m.Height, m.Width, m.Channels}
}

// Offset returns the index of sample (b, y, x, 0)
func (m *Image) Offset(b, y, x int) int {
	return ((b*m.Height+y)*m.Width + x) * m.Channels
}

// At returns a single sample
func (m *Image) At(b, y, x, c int) float32 {
	return m.Pix[m.Offset(b, y, x)+c]
}

// Set writes a single sample
func (m *Image) Set(b, y, x, c int, v float32) {
	m.Pix[m.Offset(b, y, x)+c] = v
}

// Validate checks that the shape is positive and matches the buffer
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", types.ErrInvalidImage)
	}
	if m.Batch <= 0 || m.Height <= 0 || m.Width <= 0 || m.Channels <= 0 {
		return fmt.Errorf("%w: shape (%d,%d,%d,%d)", types.ErrInvalidImage, m.Batch, m.Height, m.Width, m.Channels)
	}
	if want := m.Batch * m.Height * m.Width * m.Channels; len(m.Pix) != want {
		return fmt.Errorf("%w: buffer has %d samples, want %d", types.ErrInvalidImage, len(m.Pix), want)
	}
	return nil
}

// Clone returns a deep copy
func (m *Image) Clone() *Image {
	out := *m
	out.Pix = make([]float32, len(m.Pix))
	copy(out.Pix, m.Pix)
	return &out
}

// Mask is a single-channel canvas-sized alpha with a unit leading dimension
type Mask struct {
	Height int
	Width  int
	Pix    []float32
}

// NewMask allocates a mask with every value set to v
func NewMask(height, width int, v float32) *Mask {
	m := &Mask{Height: height, Width: width, Pix: make([]float32, height*width)}
	if v != 0 {
		for i := range m.Pix {
			m.Pix[i] = v
		}
	}
	return m
}

// Shape returns (1, height, width)
func (m *Mask) Shape() [3]int {
	return [3]int{1, m.Height, m.Width}
}

// At returns the value at (y, x)
func (m *Mask) At(y, x int) float32 {
	return m.Pix[y*m.Width+x]
}

// FromImages converts decoded images into one batch. All images must share
// the same size; channels are RGB, plus alpha when withAlpha is set.
func FromImages(withAlpha bool, imgs ...image.Image) (*Image, error) {
	if len(imgs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", types.ErrInvalidImage)
	}
	b0 := imgs[0].Bounds()
	channels := 3
	if withAlpha {
		channels = 4
	}
	out, err := New(len(imgs), b0.Dy(), b0.Dx(), channels)
	if err != nil {
		return nil, err
	}
	for i, img := range imgs {
		bounds := img.Bounds()
		if bounds.Dx() != out.Width || bounds.Dy() != out.Height {
			return nil, fmt.Errorf("%w: batch item %d is %dx%d, want %dx%d",
				types.ErrInvalidImage, i, bounds.Dx(), bounds.Dy(), out.Width, out.Height)
		}
		nrgba := image.NewNRGBA(image.Rect(0, 0, out.Width, out.Height))
		draw.Copy(nrgba, image.Point{}, img, bounds, draw.Src, nil)
		for y := 0; y < out.Height; y++ {
			row := nrgba.Pix[y*nrgba.Stride:]
			for x := 0; x < out.Width; x++ {
				o := out.Offset(i, y, x)
				for c := 0; c < channels; c++ {
					out.Pix[o+c] = float32(row[x*4+c]) / 255
				}
			}
		}
	}
	return out, nil
}

// ToImage converts batch item b to an NRGBA image
func (m *Image) ToImage(b int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			o := m.Offset(b, y, x)
			var px color.NRGBA
			px.A = 255
			switch {
			case m.Channels >= 3:
				px.R, px.G, px.B = toByte(m.Pix[o]), toByte(m.Pix[o+1]), toByte(m.Pix[o+2])
				if m.Channels >= 4 {
					px.A = toByte(m.Pix[o+3])
				}
			default:
				v := toByte(m.Pix[o])
				px.R, px.G, px.B = v, v, v
			}
			out.SetNRGBA(x, y, px)
		}
	}
	return out
}

// ToGray converts the mask to an 8-bit grayscale image, 1.0 mapping to white
func (m *Mask) ToGray() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Pix {
		out.Pix[i] = toByte(v)
	}
	return out
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
