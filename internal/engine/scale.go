package engine

import (
	"image"
	"math"
)

// Largest upscale factor the detectors will consider.
const maxDetectScale = 64

func packNRGBA(pix []byte, off int) uint32 {
	return uint32(pix[off])<<24 | uint32(pix[off+1])<<16 | uint32(pix[off+2])<<8 | uint32(pix[off+3])
}

// detectScale estimates the integer factor the artwork was upscaled by.
// Returns 1 when no grid structure is found (the image is already 1:1).
func detectScale(img *image.NRGBA, method DetectMethod) int {
	switch method {
	case DetectRuns:
		return detectScaleRuns(img)
	case DetectEdge:
		return detectScaleEdge(img)
	default:
		if s := detectScaleRuns(img); s > 1 {
			return s
		}
		return detectScaleEdge(img)
	}
}

// detectScaleRuns histograms the lengths of horizontal and vertical runs of
// identical pixels. In an n-times upscaled image almost every run length is
// a multiple of n, so the most common short run wins.
func detectScaleRuns(img *image.NRGBA) int {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	hist := make(map[int]int)

	for y := range h {
		row := y * img.Stride
		runStart := 0
		prev := packNRGBA(img.Pix, row)
		for x := 1; x < w; x++ {
			cur := packNRGBA(img.Pix, row+x*4)
			if cur != prev {
				addRun(hist, x-runStart)
				runStart = x
				prev = cur
			}
		}
		addRun(hist, w-runStart)
	}
	for x := range w {
		runStart := 0
		prev := packNRGBA(img.Pix, x*4)
		for y := 1; y < h; y++ {
			cur := packNRGBA(img.Pix, y*img.Stride+x*4)
			if cur != prev {
				addRun(hist, y-runStart)
				runStart = y
				prev = cur
			}
		}
		addRun(hist, h-runStart)
	}
	return histogramMode(hist)
}

// detectScaleEdge histograms the spacing between color transitions along
// rows and columns. Flat regions do not contribute, which makes this method
// more robust on artwork with large single-color areas.
func detectScaleEdge(img *image.NRGBA) int {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	hist := make(map[int]int)

	for y := range h {
		row := y * img.Stride
		lastEdge := -1
		prev := packNRGBA(img.Pix, row)
		for x := 1; x < w; x++ {
			cur := packNRGBA(img.Pix, row+x*4)
			if cur != prev {
				if lastEdge >= 0 {
					addRun(hist, x-lastEdge)
				}
				lastEdge = x
				prev = cur
			}
		}
	}
	for x := range w {
		lastEdge := -1
		prev := packNRGBA(img.Pix, x*4)
		for y := 1; y < h; y++ {
			cur := packNRGBA(img.Pix, y*img.Stride+x*4)
			if cur != prev {
				if lastEdge >= 0 {
					addRun(hist, y-lastEdge)
				}
				lastEdge = y
				prev = cur
			}
		}
	}
	return histogramMode(hist)
}

func addRun(hist map[int]int, length int) {
	if length >= 2 && length <= maxDetectScale {
		hist[length]++
	}
}

// histogramMode returns the most common entry, preferring the smaller
// length on ties. Below a minimal sample count the grid is considered
// undetectable and the scale is 1.
func histogramMode(hist map[int]int) int {
	const minSamples = 8
	best, bestCount := 1, 0
	for length, count := range hist {
		if count > bestCount || (count == bestCount && length < best) {
			best, bestCount = length, count
		}
	}
	if bestCount < minSamples {
		return 1
	}
	return best
}

// bestGridOffset finds the grid origin that minimizes within-cell color
// variance, so downscaling cells line up with the artwork's pixel grid even
// when the image was cropped off-grid.
func bestGridOffset(img *image.NRGBA, scale int) image.Point {
	if scale <= 1 {
		return image.Point{}
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w < 2*scale || h < 2*scale {
		return image.Point{}
	}

	// Sample at most ~16x16 cells per candidate offset.
	cellsX := (w - scale) / scale
	cellsY := (h - scale) / scale
	stepX := max(1, cellsX/16)
	stepY := max(1, cellsY/16)

	best := image.Point{}
	bestCost := math.Inf(1)
	for oy := range scale {
		for ox := range scale {
			cost := gridCost(img, scale, ox, oy, stepX, stepY)
			if cost < bestCost {
				bestCost = cost
				best = image.Point{X: ox, Y: oy}
			}
		}
	}
	return best
}

// gridCost sums per-channel variance over sampled cells for a candidate
// grid origin. Perfectly aligned cells are single-colored and cost zero.
func gridCost(img *image.NRGBA, scale, ox, oy, stepX, stepY int) float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	total := 0.0
	for cy := oy; cy+scale <= h; cy += scale * stepY {
		for cx := ox; cx+scale <= w; cx += scale * stepX {
			var sum, sumSq [3]float64
			n := 0.0
			for y := cy; y < cy+scale; y++ {
				off := y*img.Stride + cx*4
				for x := 0; x < scale; x++ {
					for ch := range 3 {
						v := float64(img.Pix[off+x*4+ch])
						sum[ch] += v
						sumSq[ch] += v * v
					}
					n++
				}
			}
			for ch := range 3 {
				mean := sum[ch] / n
				total += sumSq[ch]/n - mean*mean
			}
		}
	}
	return total
}
