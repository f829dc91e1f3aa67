// Package imageio handles image decoding, encoding and the output
// extension policy for processed and upscaled artifacts.
package imageio

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/webp"
)

// Extensions of formats the resolver treats as image inputs.
var KnownExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".tif", ".webp"}

// IsImageExt reports whether ext (with leading dot, any case) is a known
// image extension.
func IsImageExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range KnownExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load decodes the image at path. The registered decoders cover PNG, JPEG,
// GIF, BMP, TIFF and WebP.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img to path, choosing the encoder from the file extension.
// Extensions without an encoder are an error, so bytes of one format never
// land under another format's name.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		err = png.Encode(f, img)
	case ".tiff", ".tif":
		err = tiff.Encode(f, img, nil)
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	default:
		err = fmt.Errorf("no encoder for extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// UpscaledExt returns the extension for an upscaled artifact derived from an
// input with extension origExt. Alpha-capable originals keep their format,
// everything else becomes PNG. WebP is only preserved in upscale-only mode,
// where preserveWebP is true.
func UpscaledExt(origExt string, preserveWebP bool) string {
	switch strings.ToLower(origExt) {
	case ".png", ".tiff", ".tif":
		return strings.ToLower(origExt)
	case ".webp":
		if preserveWebP {
			return ".webp"
		}
	}
	return ".png"
}

// ToNRGBA returns img as *image.NRGBA with bounds anchored at the origin,
// copying only when the representation differs.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
