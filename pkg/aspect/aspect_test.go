package aspect

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/menta2k/aspect-outpaint/pkg/types"
)

func TestPresets(t *testing.T) {
	foundSquare := false
	for _, r := range Presets() {
		if r.IsSquare() {
			foundSquare = true
		}
		parsed, err := Parse(r.Name)
		require.NoError(t, err)
		require.InDelta(t, r.Value(), parsed.Value(), 1e-12)
	}
	require.True(t, foundSquare, "extended presets must include 1:1")

	for _, r := range LegacyPresets() {
		require.False(t, r.IsSquare(), "legacy preset %s", r.Name)
	}
}

func TestParse(t *testing.T) {
	r, err := Parse(" 2.39:1 ")
	require.NoError(t, err)
	require.Equal(t, "2.39:1", r.Name)
	require.InDelta(t, 2.39, r.Value(), 1e-12)

	for _, bad := range []string{"", "16x9", "16:", ":9", "a:b", "0:1", "1:0", "-4:3", "1:2:3", "inf:1"} {
		_, err := Parse(bad)
		require.Error(t, err, bad)
		require.True(t, errors.Is(err, types.ErrInvalidAspectRatio), bad)
	}
}

func TestOrientation(t *testing.T) {
	require.True(t, Widescreen.IsHorizontal())
	require.False(t, Widescreen.IsVertical())
	require.True(t, Story.IsVertical())
	require.False(t, Story.IsHorizontal())
	require.True(t, Square.IsHorizontal())
	require.False(t, Square.IsVertical())
}

func TestAlignUp(t *testing.T) {
	cases := map[int]int{0: 0, 1: 8, 7: 8, 8: 8, 9: 16, 767: 768, 768: 768}
	for in, want := range cases {
		require.Equal(t, want, AlignUp(in, 8), "AlignUp(%d)", in)
	}
}

func TestCanvasSizeAlignedAndContaining(t *testing.T) {
	sizes := [][2]int{{512, 768}, {768, 512}, {1, 1}, {333, 777}, {1920, 1080}, {100, 100}, {7, 3}}
	for _, r := range append(Presets(), LegacyPresets()...) {
		for _, sz := range sizes {
			w, h := sz[0], sz[1]
			cw, ch := CanvasSize(w, h, r.Value())

			require.Zero(t, cw%Alignment, "%s %dx%d width %d", r.Name, w, h, cw)
			require.Zero(t, ch%Alignment, "%s %dx%d height %d", r.Name, w, h, ch)
			require.GreaterOrEqual(t, cw, w)
			require.GreaterOrEqual(t, ch, h)

			target := r.Value()
			orig := float64(w) / float64(h)
			switch {
			case math.Abs(orig-target) < equalTolerance:
			case target > orig:
				require.GreaterOrEqual(t, cw, int(math.Round(target*float64(h))))
			default:
				require.GreaterOrEqual(t, ch, int(math.Round(float64(w)/target)))
			}
		}
	}
}

func TestCanvasSizeExact(t *testing.T) {
	// Matching ratio keeps the source size before alignment.
	cw, ch := CanvasSize(1600, 900, Widescreen.Value())
	require.Equal(t, 1600, cw)
	require.Equal(t, 904, ch)

	cw, ch = CanvasSize(512, 768, Square.Value())
	require.Equal(t, 768, cw)
	require.Equal(t, 768, ch)

	// 768/ (16/9) = 432
	cw, ch = CanvasSize(768, 400, Widescreen.Value())
	require.Equal(t, 768, cw)
	require.Equal(t, 432, ch)

	// round(16/9 * 300) = 533 -> 536
	cw, ch = CanvasSize(300, 300, Widescreen.Value())
	require.Equal(t, 536, cw)
	require.Equal(t, 304, ch)
}

func BenchmarkCanvasSize(b *testing.B) {
	presets := Presets()
	for i := 0; i < b.N; i++ {
		CanvasSize(1920, 1080, presets[i%len(presets)].Value())
	}
}
