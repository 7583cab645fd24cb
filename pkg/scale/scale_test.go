package scale

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/menta2k/aspect-outpaint/pkg/tensor"
	"github.com/menta2k/aspect-outpaint/pkg/types"
)

func TestDimensions(t *testing.T) {
	w, h := Dimensions(512, 768, 80)
	require.Equal(t, 409, w)
	require.Equal(t, 614, h)

	w, h = Dimensions(1, 3, 50)
	require.Equal(t, 1, w)
	require.Equal(t, 1, h)
}

func TestResizePassthrough(t *testing.T) {
	img, err := tensor.Filled(1, 4, 4, 3, 0.3)
	require.NoError(t, err)
	out, err := Resize(img, 100)
	require.NoError(t, err)
	require.Same(t, img, out)
}

func TestResizeInvalid(t *testing.T) {
	img, err := tensor.Filled(1, 4, 4, 3, 0.3)
	require.NoError(t, err)
	_, err = Resize(img, 0)
	require.True(t, errors.Is(err, types.ErrInvalidScale))
}

func TestResizeHalf(t *testing.T) {
	// 4x1 ramp halves to the means of neighbouring pairs.
	img, err := tensor.New(1, 2, 4, 1)
	require.NoError(t, err)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.Set(0, y, x, 0, float32(x))
		}
	}

	out, err := Resize(img, 50)
	require.NoError(t, err)
	require.Equal(t, [4]int{1, 1, 2, 1}, out.Shape())
	require.InDelta(t, 0.5, out.At(0, 0, 0, 0), 1e-6)
	require.InDelta(t, 2.5, out.At(0, 0, 1, 0), 1e-6)
}

func TestResizeKeepsFlatColour(t *testing.T) {
	img, err := tensor.Filled(2, 30, 20, 4, 0.7)
	require.NoError(t, err)
	out, err := Resize(img, 60)
	require.NoError(t, err)
	require.Equal(t, [4]int{2, 18, 12, 4}, out.Shape())
	for _, v := range out.Pix {
		require.InDelta(t, 0.7, v, 1e-6)
	}
}

func BenchmarkResize(b *testing.B) {
	img, _ := tensor.Filled(1, 768, 512, 3, 0.5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Resize(img, 80)
	}
}
