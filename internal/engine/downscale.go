package engine

import (
	"image"
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"
)

// downscale collapses each scale-by-scale cell of src (starting at the grid
// offset) into one output pixel using the given method. Scale 1 with a zero
// offset is an identity copy.
func downscale(src *image.NRGBA, scale int, offset image.Point, method DownscaleMethod, domThreshold float64) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if scale <= 1 && offset == (image.Point{}) {
		out := image.NewNRGBA(image.Rect(0, 0, w, h))
		copy(out.Pix, src.Pix)
		return out
	}
	if scale < 1 {
		scale = 1
	}

	outW := max((w-offset.X)/scale, 1)
	outH := max((h-offset.Y)/scale, 1)
	out := image.NewNRGBA(image.Rect(0, 0, outW, outH))

	var cell cellBuf
	for cy := range outH {
		for cx := range outW {
			x0 := offset.X + cx*scale
			y0 := offset.Y + cy*scale
			x1 := min(x0+scale, w)
			y1 := min(y0+scale, h)
			cell.fill(src, x0, y0, x1, y1)
			out.SetNRGBA(cx, cy, cell.reduce(method, domThreshold))
		}
	}
	return out
}

// cellBuf gathers one cell's pixels as per-channel float slices plus packed
// RGBA keys, reused across cells to avoid churn.
type cellBuf struct {
	r, g, b, a []float64
	packed     []float64
	centerOff  int
	src        *image.NRGBA
}

func (c *cellBuf) fill(src *image.NRGBA, x0, y0, x1, y1 int) {
	c.r = c.r[:0]
	c.g = c.g[:0]
	c.b = c.b[:0]
	c.a = c.a[:0]
	c.packed = c.packed[:0]
	c.src = src
	for y := y0; y < y1; y++ {
		off := y*src.Stride + x0*4
		for x := x0; x < x1; x++ {
			c.r = append(c.r, float64(src.Pix[off]))
			c.g = append(c.g, float64(src.Pix[off+1]))
			c.b = append(c.b, float64(src.Pix[off+2]))
			c.a = append(c.a, float64(src.Pix[off+3]))
			// Exact in float64: packed keys fit well below 2^53.
			c.packed = append(c.packed, float64(packNRGBA(src.Pix, off)))
			off += 4
		}
	}
	cx := (x0 + x1) / 2
	cy := (y0 + y1) / 2
	c.centerOff = cy*src.Stride + cx*4
}

func (c *cellBuf) reduce(method DownscaleMethod, domThreshold float64) color.NRGBA {
	switch method {
	case MethodNearest:
		return color.NRGBA{
			R: c.src.Pix[c.centerOff],
			G: c.src.Pix[c.centerOff+1],
			B: c.src.Pix[c.centerOff+2],
			A: c.src.Pix[c.centerOff+3],
		}
	case MethodMean:
		return c.mean()
	case MethodMedian:
		return c.median()
	case MethodMode:
		mode, _ := c.mode()
		return mode
	case MethodContentAdaptive:
		return c.contentAdaptive()
	default: // MethodDominant
		mode, share := c.mode()
		if share >= domThreshold {
			return mode
		}
		return c.mean()
	}
}

func (c *cellBuf) mean() color.NRGBA {
	return color.NRGBA{
		R: clamp8(stat.Mean(c.r, nil)),
		G: clamp8(stat.Mean(c.g, nil)),
		B: clamp8(stat.Mean(c.b, nil)),
		A: binAlpha(stat.Mean(c.a, nil)),
	}
}

func (c *cellBuf) median() color.NRGBA {
	return color.NRGBA{
		R: clamp8(medianOf(c.r)),
		G: clamp8(medianOf(c.g)),
		B: clamp8(medianOf(c.b)),
		A: binAlpha(medianOf(c.a)),
	}
}

// mode returns the most frequent cell color and its share of the cell.
func (c *cellBuf) mode() (color.NRGBA, float64) {
	sort.Float64s(c.packed)
	m, count := stat.Mode(c.packed, nil)
	p := uint32(m)
	return color.NRGBA{
		R: uint8(p >> 24),
		G: uint8(p >> 16),
		B: uint8(p >> 8),
		A: uint8(p),
	}, count / float64(len(c.packed))
}

// contentAdaptive picks the actual cell pixel closest in Lab space to the
// cell mean, keeping edges crisp while following the cell's overall tone.
func (c *cellBuf) contentAdaptive() color.NRGBA {
	mean := colorful.Color{
		R: stat.Mean(c.r, nil) / 255,
		G: stat.Mean(c.g, nil) / 255,
		B: stat.Mean(c.b, nil) / 255,
	}
	bestIdx := 0
	bestDist := -1.0
	for i := range c.r {
		px := colorful.Color{R: c.r[i] / 255, G: c.g[i] / 255, B: c.b[i] / 255}
		d := mean.DistanceLab(px)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	return color.NRGBA{
		R: uint8(c.r[bestIdx]),
		G: uint8(c.g[bestIdx]),
		B: uint8(c.b[bestIdx]),
		A: uint8(c.a[bestIdx]),
	}
}

func medianOf(vals []float64) float64 {
	sort.Float64s(vals)
	return stat.Quantile(0.5, stat.Empirical, vals, nil)
}

func clamp8(v float64) uint8 {
	return uint8(max(0, min(255, v+0.5)))
}

// binAlpha keeps alpha binary after averaging: majority-opaque wins.
func binAlpha(v float64) uint8 {
	if v >= 128 {
		return 255
	}
	return 0
}
