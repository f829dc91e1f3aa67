package engine

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

// fillCell builds a 4x4 image from a flat list of 16 colors.
func fillCell(colors [16]color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i, c := range colors {
		img.SetNRGBA(i%4, i/4, c)
	}
	return img
}

func TestDownscale_Methods(t *testing.T) {
	t.Parallel()

	dark := color.NRGBA{R: 10, G: 10, B: 10, A: 255}
	light := color.NRGBA{R: 250, G: 250, B: 250, A: 255}

	// 12 dark pixels, 4 light: dominant share 0.75.
	var cell [16]color.NRGBA
	for i := range cell {
		if i < 12 {
			cell[i] = dark
		} else {
			cell[i] = light
		}
	}
	img := fillCell(cell)

	tests := []struct {
		method DownscaleMethod
		want   color.NRGBA
	}{
		{MethodDominant, dark},
		{MethodMode, dark},
		{MethodMedian, dark},
		// mean: 10*0.75 + 250*0.25 = 70
		{MethodMean, color.NRGBA{R: 70, G: 70, B: 70, A: 255}},
		// content-adaptive: the cell pixel nearest the mean tone is dark
		{MethodContentAdaptive, dark},
	}
	for _, tt := range tests {
		out := downscale(img, 4, image.Point{}, tt.method, 0.05)
		require.Equal(t, 1, out.Bounds().Dx())
		require.Equal(t, 1, out.Bounds().Dy())
		require.Equal(t, tt.want, out.NRGBAAt(0, 0), "method %s", tt.method)
	}
}

func TestDownscale_DominantFallsBackToMean(t *testing.T) {
	t.Parallel()

	dark := color.NRGBA{R: 10, G: 10, B: 10, A: 255}
	light := color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	var cell [16]color.NRGBA
	for i := range cell {
		if i < 12 {
			cell[i] = dark
		} else {
			cell[i] = light
		}
	}
	img := fillCell(cell)

	// Threshold above the dominant share of 0.75 forces the mean branch.
	out := downscale(img, 4, image.Point{}, MethodDominant, 0.9)
	require.Equal(t, color.NRGBA{R: 70, G: 70, B: 70, A: 255}, out.NRGBAAt(0, 0))
}

func TestDownscale_Nearest(t *testing.T) {
	t.Parallel()

	var cell [16]color.NRGBA
	for i := range cell {
		cell[i] = color.NRGBA{R: uint8(i), A: 255}
	}
	img := fillCell(cell)

	// Cell center of a 4x4 cell is (2,2), i.e. index 10.
	out := downscale(img, 4, image.Point{}, MethodNearest, 0.05)
	require.Equal(t, color.NRGBA{R: 10, A: 255}, out.NRGBAAt(0, 0))
}

func TestDownscale_Offset(t *testing.T) {
	t.Parallel()

	// 10x10 image: with offset (1,1) and scale 2 only 4x4 cells fit.
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	out := downscale(img, 2, image.Point{X: 1, Y: 1}, MethodNearest, 0.05)
	require.Equal(t, 4, out.Bounds().Dx())
	require.Equal(t, 4, out.Bounds().Dy())
}

func TestDownscale_Identity(t *testing.T) {
	t.Parallel()

	img := fillCell([16]color.NRGBA{})
	img.SetNRGBA(2, 1, color.NRGBA{G: 99, A: 255})
	out := downscale(img, 1, image.Point{}, MethodDominant, 0.05)
	require.Equal(t, img.Pix, out.Pix)
}

func TestMorphCleanup_RemovesSpeck(t *testing.T) {
	t.Parallel()

	bg := color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	img := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	for y := range 5 {
		for x := range 5 {
			img.SetNRGBA(x, y, bg)
		}
	}
	img.SetNRGBA(2, 2, color.NRGBA{R: 255, A: 255})

	morphCleanup(img)
	require.Equal(t, bg, img.NRGBAAt(2, 2))
}

func TestMorphCleanup_KeepsSolidRegions(t *testing.T) {
	t.Parallel()

	a := color.NRGBA{R: 40, A: 255}
	b := color.NRGBA{B: 40, A: 255}
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := range 6 {
		for x := range 6 {
			if x < 3 {
				img.SetNRGBA(x, y, a)
			} else {
				img.SetNRGBA(x, y, b)
			}
		}
	}
	before := make([]byte, len(img.Pix))
	copy(before, img.Pix)

	morphCleanup(img)
	require.Equal(t, before, img.Pix, "a clean two-region image must be a fixed point")
}

func TestJaggyCleanup_UniformFixedPoint(t *testing.T) {
	t.Parallel()

	c := color.NRGBA{R: 7, G: 7, B: 7, A: 255}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.SetNRGBA(x, y, c)
		}
	}
	before := make([]byte, len(img.Pix))
	copy(before, img.Pix)

	jaggyCleanup(img)
	require.Equal(t, before, img.Pix)
}

func TestJaggyCleanup_FlipsStaircasePixel(t *testing.T) {
	t.Parallel()

	bg := color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	fg := color.NRGBA{R: 20, G: 20, B: 20, A: 255}
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for y := range 3 {
		for x := range 3 {
			img.SetNRGBA(x, y, bg)
		}
	}
	// Lone fg pixel at the center: its left, top and top-left corner all
	// agree on bg, so the staircase rule flips it.
	img.SetNRGBA(1, 1, fg)

	jaggyCleanup(img)
	require.Equal(t, bg, img.NRGBAAt(1, 1))
}
