package engine

import "image"

// morphCleanup removes isolated specks: a pixel whose 8-neighborhood is
// dominated (6 of 8) by one other color takes that color. One pass, reading
// from a snapshot so the result does not depend on scan order.
func morphCleanup(img *image.NRGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w < 3 || h < 3 {
		return
	}
	orig := make([]byte, len(img.Pix))
	copy(orig, img.Pix)

	at := func(x, y int) uint32 {
		return packNRGBA(orig, y*img.Stride+x*4)
	}
	counts := make(map[uint32]int, 8)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := at(x, y)
			clear(counts)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					counts[at(x+dx, y+dy)]++
				}
			}
			for c, n := range counts {
				if c != center && n >= 6 {
					writePacked(img, x, y, c)
					break
				}
			}
		}
	}
}

// jaggyCleanup smooths single-pixel staircase artifacts: when both
// orthogonal neighbors across a corner and the matching diagonal agree on a
// color different from the pixel's own, the pixel joins them.
func jaggyCleanup(img *image.NRGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w < 3 || h < 3 {
		return
	}
	orig := make([]byte, len(img.Pix))
	copy(orig, img.Pix)

	at := func(x, y int) uint32 {
		return packNRGBA(orig, y*img.Stride+x*4)
	}
	corners := [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			center := at(x, y)
			for _, c := range corners {
				side := at(x+c[0], y)
				above := at(x, y+c[1])
				diag := at(x+c[0], y+c[1])
				if side != center && side == above && side == diag {
					writePacked(img, x, y, side)
					break
				}
			}
		}
	}
}

func writePacked(img *image.NRGBA, x, y int, packed uint32) {
	off := y*img.Stride + x*4
	img.Pix[off] = uint8(packed >> 24)
	img.Pix[off+1] = uint8(packed >> 16)
	img.Pix[off+2] = uint8(packed >> 8)
	img.Pix[off+3] = uint8(packed)
}
