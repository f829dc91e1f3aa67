// Package upscale magnifies images by an integer factor with
// nearest-neighbor sampling, preserving hard pixel edges and alpha.
package upscale

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Nearest returns a copy of img scaled up by factor. Every output pixel
// (x, y) equals source pixel (x/factor, y/factor); no interpolation occurs.
func Nearest(img image.Image, factor int) (*image.NRGBA, error) {
	if factor < 1 {
		return nil, fmt.Errorf("upscale factor must be >= 1, got %d", factor)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("cannot upscale empty image")
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	if src, ok := img.(*image.NRGBA); ok {
		// Replicate raw pixel blocks. Scaling through the generic drawer
		// round-trips each pixel over premultiplied RGBA64, which does not
		// survive exactly for low-alpha pixels.
		replicateNRGBA(dst, src, factor)
		return dst, nil
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

func replicateNRGBA(dst, src *image.NRGBA, factor int) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	for sy := 0; sy < h; sy++ {
		row := dst.Pix[sy*factor*dst.Stride:]
		for sx := 0; sx < w; sx++ {
			p := src.Pix[src.PixOffset(b.Min.X+sx, b.Min.Y+sy):]
			for i := 0; i < factor; i++ {
				copy(row[(sx*factor+i)*4:(sx*factor+i)*4+4], p[:4])
			}
		}
		for i := 1; i < factor; i++ {
			copy(dst.Pix[(sy*factor+i)*dst.Stride:(sy*factor+i)*dst.Stride+w*factor*4], row[:w*factor*4])
		}
	}
}
