// Package engine reconstructs clean pixel art from upscaled or smoothed
// images. It is the single processing capability the rest of the tool calls:
// a path plus an options bag goes in, a processed image comes out. The
// algorithmic work (palette extraction, clustering, color math) is delegated
// to dominantcolor, kmeans and go-colorful rather than reimplemented here.
package engine

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/setanarut/repix/internal/imageio"
	"github.com/setanarut/repix/internal/palette"
)

// DetectMethod selects how the pixel grid scale is detected.
type DetectMethod string

const (
	DetectAuto DetectMethod = "auto"
	DetectRuns DetectMethod = "runs"
	DetectEdge DetectMethod = "edge"
)

// Valid reports whether m names a known detection method.
func (m DetectMethod) Valid() bool {
	switch m {
	case DetectAuto, DetectRuns, DetectEdge:
		return true
	}
	return false
}

// DownscaleMethod selects how each grid cell collapses to one pixel.
type DownscaleMethod string

const (
	MethodDominant        DownscaleMethod = "dominant"
	MethodMedian          DownscaleMethod = "median"
	MethodMode            DownscaleMethod = "mode"
	MethodMean            DownscaleMethod = "mean"
	MethodNearest         DownscaleMethod = "nearest"
	MethodContentAdaptive DownscaleMethod = "content-adaptive"
)

// Valid reports whether m names a known downscale method.
func (m DownscaleMethod) Valid() bool {
	switch m {
	case MethodDominant, MethodMedian, MethodMode, MethodMean, MethodNearest, MethodContentAdaptive:
		return true
	}
	return false
}

// Cleanup toggles the post-quantization cleanup filters.
type Cleanup struct {
	Morph bool
	Jaggy bool
}

// Options is the parameter bag for Process. Nil pointer fields are "unset":
// the engine applies its own default and the caller never has to invent a
// sentinel value.
type Options struct {
	MaxColors       *int             // nil: auto-detect
	ManualScale     *int             // nil: detect
	Detect          DetectMethod     // empty: DetectAuto
	Method          DownscaleMethod  // empty: MethodDominant
	DomThreshold    *float64         // nil: 0.05
	Cleanup         Cleanup
	FixedPalette    []colorful.Color // nil: quantize instead
	AlphaThreshold  *int             // nil: 128
	SnapGrid        *bool            // nil: true
	AutoColorDetect bool
}

const (
	defaultDomThreshold   = 0.05
	defaultAlphaThreshold = 128
	maxAutoColors         = 32
)

// Result is the outcome of one processing call.
type Result struct {
	Image      *image.NRGBA
	Scale      int
	GridOffset image.Point
	Palette    []colorful.Color
	ColorCount int
}

// Engine holds the run-scoped configuration shared by all processing calls.
type Engine struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Process runs the full reconstruction pipeline on the image at path:
// alpha binarization, scale detection, grid snapping, downscaling, palette
// quantization and optional cleanup. It is synchronous; ctx is only
// consulted between pipeline stages.
func (e *Engine) Process(ctx context.Context, path string, opts Options) (*Result, error) {
	img, err := imageio.Load(path)
	if err != nil {
		return nil, err
	}
	src := imageio.ToNRGBA(img)
	if src.Bounds().Empty() {
		return nil, fmt.Errorf("image %s is empty", path)
	}

	alphaThr := defaultAlphaThreshold
	if opts.AlphaThreshold != nil {
		alphaThr = *opts.AlphaThreshold
	}
	binarizeAlpha(src, alphaThr)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := 0
	if opts.ManualScale != nil && *opts.ManualScale > 0 {
		scale = *opts.ManualScale
	} else {
		detect := opts.Detect
		if detect == "" {
			detect = DetectAuto
		}
		scale = detectScale(src, detect)
		e.logger.Debug("detected pixel scale", "scale", scale, "method", detect)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := image.Point{}
	if opts.SnapGrid == nil || *opts.SnapGrid {
		offset = bestGridOffset(src, scale)
		if offset != (image.Point{}) {
			e.logger.Debug("snapped pixel grid", "offset_x", offset.X, "offset_y", offset.Y)
		}
	}

	method := opts.Method
	if method == "" {
		method = MethodDominant
	}
	domThr := defaultDomThreshold
	if opts.DomThreshold != nil {
		domThr = *opts.DomThreshold
	}
	small := downscale(src, scale, offset, method, domThr)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pal, err := e.applyPalette(small, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Cleanup.Morph {
		morphCleanup(small)
	}
	if opts.Cleanup.Jaggy {
		jaggyCleanup(small)
	}

	return &Result{
		Image:      small,
		Scale:      scale,
		GridOffset: offset,
		Palette:    pal,
		ColorCount: uniqueColorCount(small),
	}, nil
}

// applyPalette maps the downscaled image onto its final palette: the fixed
// one when supplied, otherwise a palette quantized from the image itself.
func (e *Engine) applyPalette(img *image.NRGBA, opts Options) ([]colorful.Color, error) {
	if len(opts.FixedPalette) > 0 {
		mapToPalette(img, opts.FixedPalette)
		return opts.FixedPalette, nil
	}

	k := 0
	if opts.MaxColors != nil {
		k = *opts.MaxColors
	}
	if k <= 0 || opts.AutoColorDetect {
		auto := palette.AutoDetectCount(img, maxAutoColors)
		if k <= 0 || auto < k {
			k = auto
		}
		e.logger.Debug("auto-detected color count", "colors", k)
	}
	if k <= 0 {
		return nil, fmt.Errorf("invalid color count %d", k)
	}

	if uniqueColorCount(img) <= k {
		return imagePalette(img), nil
	}
	pal := palette.Extract(img, k, palette.MethodKMeans, e.logger)
	if len(pal) == 0 {
		return nil, fmt.Errorf("palette quantization produced no colors")
	}
	palette.SortByBrightness(pal)
	mapToPalette(img, pal)
	return pal, nil
}

// binarizeAlpha forces every pixel to be fully opaque or fully transparent.
// Transparent pixels are also cleared to black so they count as one color.
func binarizeAlpha(img *image.NRGBA, threshold int) {
	for i := 3; i < len(img.Pix); i += 4 {
		if int(img.Pix[i]) < threshold {
			img.Pix[i-3] = 0
			img.Pix[i-2] = 0
			img.Pix[i-1] = 0
			img.Pix[i] = 0
		} else {
			img.Pix[i] = 255
		}
	}
}
