package tensor

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/menta2k/aspect-outpaint/pkg/types"
)

func TestNewRejectsDegenerateShapes(t *testing.T) {
	for _, shape := range [][4]int{{0, 1, 1, 3}, {1, 0, 1, 3}, {1, 1, 0, 3}, {1, 1, 1, 0}} {
		_, err := New(shape[0], shape[1], shape[2], shape[3])
		require.ErrorIs(t, err, types.ErrInvalidImage, "%v", shape)
	}
}

func TestValidate(t *testing.T) {
	var nilImg *Image
	require.ErrorIs(t, nilImg.Validate(), types.ErrInvalidImage)

	img, err := Filled(2, 3, 4, 3, 0.25)
	require.NoError(t, err)
	require.NoError(t, img.Validate())
	require.Equal(t, [4]int{2, 3, 4, 3}, img.Shape())

	img.Pix = img.Pix[:10]
	require.ErrorIs(t, img.Validate(), types.ErrInvalidImage)
}

func TestIndexingAndClone(t *testing.T) {
	img, err := New(2, 3, 4, 3)
	require.NoError(t, err)

	img.Set(1, 2, 3, 2, 0.75)
	require.Equal(t, float32(0.75), img.At(1, 2, 3, 2))
	require.Equal(t, len(img.Pix)-1, img.Offset(1, 2, 3)+2)

	clone := img.Clone()
	clone.Set(1, 2, 3, 2, 0)
	require.Equal(t, float32(0.75), img.At(1, 2, 3, 2))
}

func TestMask(t *testing.T) {
	m := NewMask(2, 3, 1)
	require.Equal(t, [3]int{1, 2, 3}, m.Shape())
	require.Equal(t, float32(1), m.At(1, 2))

	m.Pix[0] = 0
	m.Pix[1] = 0.5
	gray := m.ToGray()
	require.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
	require.Equal(t, uint8(128), gray.GrayAt(1, 0).Y)
	require.Equal(t, uint8(255), gray.GrayAt(2, 1).Y)
}

func TestFromImagesAndBack(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(2, 1, color.NRGBA{255, 0, 51, 255})

	img, err := FromImages(false, src, src)
	require.NoError(t, err)
	require.Equal(t, [4]int{2, 2, 3, 3}, img.Shape())
	require.Equal(t, float32(1), img.At(1, 1, 2, 0))
	require.InDelta(t, 0.2, img.At(1, 1, 2, 2), 1e-6)

	out := img.ToImage(1)
	require.Equal(t, color.NRGBA{255, 0, 51, 255}, out.NRGBAAt(2, 1))

	withAlpha, err := FromImages(true, src)
	require.NoError(t, err)
	require.Equal(t, 4, withAlpha.Channels)
}

func TestFromImagesOffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 13, 22))
	src.SetNRGBA(10, 20, color.NRGBA{0, 255, 0, 255})
	paletted := image.NewPaletted(image.Rect(0, 0, 3, 2), color.Palette{color.Black, color.White})
	paletted.SetColorIndex(2, 1, 1)

	img, err := FromImages(false, src, paletted)
	require.NoError(t, err)
	require.Equal(t, float32(1), img.At(0, 0, 0, 1))
	require.Equal(t, float32(0), img.At(0, 0, 0, 0))
	require.Equal(t, float32(1), img.At(1, 1, 2, 0))
	require.Equal(t, float32(0), img.At(1, 0, 0, 0))
}

func TestFromImagesRejectsMixedSizes(t *testing.T) {
	_, err := FromImages(false)
	require.ErrorIs(t, err, types.ErrInvalidImage)

	a := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	b := image.NewNRGBA(image.Rect(0, 0, 2, 3))
	_, err = FromImages(false, a, b)
	require.ErrorIs(t, err, types.ErrInvalidImage)
}
