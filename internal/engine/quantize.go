package engine

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// mapToPalette replaces every opaque pixel with its Lab-nearest palette
// entry. Distinct input colors are memoized, so cost scales with the color
// count rather than the pixel count.
func mapToPalette(img *image.NRGBA, pal []colorful.Color) {
	type labEntry struct {
		l, a, b float64
		nrgba   color.NRGBA
	}
	entries := make([]labEntry, len(pal))
	for i, c := range pal {
		l, a, b := c.Lab()
		r8, g8, b8 := c.Clamped().RGB255()
		entries[i] = labEntry{l: l, a: a, b: b, nrgba: color.NRGBA{R: r8, G: g8, B: b8, A: 255}}
	}

	memo := make(map[uint32]color.NRGBA)
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] == 0 {
			continue
		}
		key := packNRGBA(img.Pix, i)
		mapped, ok := memo[key]
		if !ok {
			src := colorful.Color{
				R: float64(img.Pix[i]) / 255,
				G: float64(img.Pix[i+1]) / 255,
				B: float64(img.Pix[i+2]) / 255,
			}
			sl, sa, sb := src.Lab()
			bestIdx := 0
			bestDist := -1.0
			for j, e := range entries {
				dl := sl - e.l
				da := sa - e.a
				db := sb - e.b
				d := dl*dl + da*da + db*db
				if bestDist < 0 || d < bestDist {
					bestDist = d
					bestIdx = j
				}
			}
			mapped = entries[bestIdx].nrgba
			memo[key] = mapped
		}
		img.Pix[i] = mapped.R
		img.Pix[i+1] = mapped.G
		img.Pix[i+2] = mapped.B
	}
}

// uniqueColorCount counts distinct opaque colors.
func uniqueColorCount(img *image.NRGBA) int {
	seen := make(map[uint32]struct{})
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] == 0 {
			continue
		}
		seen[packNRGBA(img.Pix, i)] = struct{}{}
	}
	return len(seen)
}

// imagePalette lists the distinct opaque colors already present, in first-
// appearance order.
func imagePalette(img *image.NRGBA) []colorful.Color {
	seen := make(map[uint32]struct{})
	var pal []colorful.Color
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+3] == 0 {
			continue
		}
		key := packNRGBA(img.Pix, i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		pal = append(pal, colorful.Color{
			R: float64(img.Pix[i]) / 255,
			G: float64(img.Pix[i+1]) / 255,
			B: float64(img.Pix[i+2]) / 255,
		})
	}
	return pal
}
