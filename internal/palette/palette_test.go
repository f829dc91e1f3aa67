package palette

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePalette(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "palette.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writePalette(t, "  #ff0000\n; comment\n#00ff00\n\nnot a color\n#00f\n")
	colors, err := LoadFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, colors, 3)

	r, g, b := colors[0].RGB255()
	require.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
	r, g, b = colors[2].RGB255()
	require.Equal(t, [3]uint8{0, 0, 255}, [3]uint8{r, g, b}, "short #rgb form must expand")
}

func TestLoadFile_MalformedEntriesSkipped(t *testing.T) {
	t.Parallel()

	path := writePalette(t, "#zzzzzz\n#123456\n")
	colors, err := LoadFile(path, testLogger())
	require.NoError(t, err)
	require.Len(t, colors, 1)
}

func TestLoadFile_NoValidColors(t *testing.T) {
	t.Parallel()

	// No marker-prefixed lines: not fatal, just no palette.
	path := writePalette(t, "ff0000\n00ff00\n")
	colors, err := LoadFile(path, testLogger())
	require.NoError(t, err)
	require.Nil(t, colors)
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"), testLogger())
	require.Error(t, err)
}

// twoTone builds an image split between two solid colors.
func twoTone(a, b color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			if x < 16 {
				img.SetNRGBA(x, y, a)
			} else {
				img.SetNRGBA(x, y, b)
			}
		}
	}
	return img
}

func TestExtract(t *testing.T) {
	t.Parallel()

	img := twoTone(
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{B: 255, A: 255},
	)
	for _, method := range []Method{MethodDominantColor, MethodKMeans} {
		pal := Extract(img, 2, method, testLogger())
		require.Len(t, pal, 2, "method %v", method)
	}
}

func TestExtract_ZeroCount(t *testing.T) {
	t.Parallel()

	img := twoTone(color.NRGBA{A: 255}, color.NRGBA{R: 255, A: 255})
	require.Nil(t, Extract(img, 0, MethodDominantColor, testLogger()))
}

func TestAutoDetectCount_Bounds(t *testing.T) {
	t.Parallel()

	img := twoTone(
		color.NRGBA{R: 255, A: 255},
		color.NRGBA{B: 255, A: 255},
	)
	n := AutoDetectCount(img, 32)
	require.GreaterOrEqual(t, n, 2)
	require.LessOrEqual(t, n, 32)
}

func TestSortByBrightness(t *testing.T) {
	t.Parallel()

	pal := []colorful.Color{
		{R: 1, G: 1, B: 1},
		{R: 0, G: 0, B: 0},
		{R: 0.5, G: 0.5, B: 0.5},
	}
	SortByBrightness(pal)
	require.Equal(t, colorful.Color{R: 0, G: 0, B: 0}, pal[0])
	require.Equal(t, colorful.Color{R: 1, G: 1, B: 1}, pal[2])
}
