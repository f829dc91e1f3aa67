package imageio

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsImageExt(t *testing.T) {
	t.Parallel()

	for _, ext := range []string{".png", ".PNG", ".Jpeg", ".tif", ".WEBP"} {
		require.True(t, IsImageExt(ext), "expected %q to be recognized", ext)
	}
	for _, ext := range []string{"", ".txt", ".gif", "png"} {
		require.False(t, IsImageExt(ext), "expected %q to be rejected", ext)
	}
}

func TestUpscaledExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		origExt      string
		preserveWebP bool
		want         string
	}{
		{".png", false, ".png"},
		{".PNG", false, ".png"},
		{".tiff", false, ".tiff"},
		{".tif", false, ".tif"},
		{".jpg", false, ".png"},
		{".jpeg", true, ".png"},
		{".bmp", false, ".png"},
		{".webp", false, ".png"},
		{".webp", true, ".webp"},
		{".WebP", true, ".webp"},
	}
	for _, tt := range tests {
		got := UpscaledExt(tt.origExt, tt.preserveWebP)
		require.Equal(t, tt.want, got, "UpscaledExt(%q, %v)", tt.origExt, tt.preserveWebP)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(3, 1, color.NRGBA{G: 255, A: 255})

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, Save(path, src))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, src.Bounds(), got.Bounds())

	n := ToNRGBA(got)
	require.Equal(t, src.NRGBAAt(0, 0), n.NRGBAAt(0, 0))
	require.Equal(t, src.NRGBAAt(3, 1), n.NRGBAAt(3, 1))
}

func TestSave_UnknownExtension(t *testing.T) {
	t.Parallel()

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	err := Save(filepath.Join(t.TempDir(), "out.jpg"), img)
	require.Error(t, err)
	require.ErrorContains(t, err, `no encoder for extension ".jpg"`)
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestToNRGBA_Converts(t *testing.T) {
	t.Parallel()

	gray := image.NewGray(image.Rect(2, 2, 6, 5))
	gray.SetGray(3, 3, color.Gray{Y: 200})

	n := ToNRGBA(gray)
	require.Equal(t, image.Rect(0, 0, 4, 3), n.Bounds(), "bounds must be re-anchored at the origin")
	require.Equal(t, color.NRGBA{R: 200, G: 200, B: 200, A: 255}, n.NRGBAAt(1, 1))
}
