package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/setanarut/repix/internal/app"
	"github.com/setanarut/repix/internal/engine"
)

// ExitError is an error carrying a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments into a run configuration. The
// second return value is true when the program should exit cleanly (help
// requested or no input given).
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("repix", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `repix - batch pixel art reconstruction with 8x nearest-neighbor previews.

Usage:
  repix [options] INPUT

Arguments:
  INPUT
    An image file or a directory of images (png, jpg, jpeg, bmp, tiff, tif, webp).

Options:
`)
		flagSet.PrintDefaults()
	}

	outputPrefix := flagSet.String("output-prefix", "pixelart_", "Prefix for output filenames.")
	flagSet.StringVar(outputPrefix, "o", "pixelart_", "Prefix for output filenames (shorthand).")
	upscaledSuffix := flagSet.String("upscaled-suffix", "_8x", "Suffix for the upscaled output filename.")
	flagSet.StringVar(upscaledSuffix, "u", "_8x", "Suffix for the upscaled output filename (shorthand).")
	upscaleOnly := flagSet.Bool("upscale-only", false, "Only perform the 8x nearest-neighbor upscale, skip reconstruction.")
	noSaveMain := flagSet.Bool("no-save-main", false, "Do not save the main processed image.")
	noSaveUpscaled := flagSet.Bool("no-save-upscaled", false, "Do not save the upscaled processed image.")
	colors := flagSet.Int("colors", 0, "Maximum number of colors. 0 auto-detects.")
	flagSet.IntVar(colors, "c", 0, "Maximum number of colors (shorthand).")
	autoColors := flagSet.Bool("auto-colors", false, "Auto-detect the optimal color count.")
	scale := flagSet.Int("scale", 0, "Manual scale override. 0 detects automatically.")
	flagSet.IntVar(scale, "s", 0, "Manual scale override (shorthand).")
	detect := flagSet.String("detect", string(engine.DetectAuto), "Scale detection method: 'auto', 'runs' or 'edge'.")
	flagSet.StringVar(detect, "d", string(engine.DetectAuto), "Scale detection method (shorthand).")
	method := flagSet.String("method", string(engine.MethodDominant), "Downscale method: 'dominant', 'median', 'mode', 'mean', 'nearest' or 'content-adaptive'.")
	flagSet.StringVar(method, "m", string(engine.MethodDominant), "Downscale method (shorthand).")
	threshold := flagSet.Float64("threshold", 0.05, "Dominant color threshold.")
	cleanup := flagSet.String("cleanup", "", "Cleanup options, comma-separated: morph,jaggy.")
	palettePath := flagSet.String("palette", "", "Fixed palette file (hex colors, one per line).")
	alphaThreshold := flagSet.Int("alpha-threshold", 128, "Alpha binarization threshold.")
	noSnap := flagSet.Bool("no-snap", false, "Disable grid snapping.")
	quiet := flagSet.Bool("quiet", false, "Suppress all output below error level.")
	flagSet.BoolVar(quiet, "q", false, "Suppress output (shorthand).")
	verbose := flagSet.Bool("verbose", false, "Verbose output.")
	flagSet.BoolVar(verbose, "v", false, "Verbose output (shorthand).")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: "expected exactly one input path"}
	}

	if !engine.DetectMethod(*detect).Valid() {
		return nil, false, &ExitError{Code: 2, Message: "invalid detect method: must be 'auto', 'runs' or 'edge'"}
	}
	if !engine.DownscaleMethod(*method).Valid() {
		return nil, false, &ExitError{Code: 2, Message: "invalid downscale method: must be 'dominant', 'median', 'mode', 'mean', 'nearest' or 'content-adaptive'"}
	}
	if *colors < 0 {
		return nil, false, &ExitError{Code: 2, Message: "colors must be positive"}
	}
	if *scale < 0 {
		return nil, false, &ExitError{Code: 2, Message: "scale must be positive"}
	}
	if *alphaThreshold < 0 || *alphaThreshold > 256 {
		return nil, false, &ExitError{Code: 2, Message: "alpha-threshold must be in [0, 256]"}
	}

	verbosity := app.VerbosityNormal
	switch {
	case *quiet:
		verbosity = app.VerbosityQuiet
	case *verbose:
		verbosity = app.VerbosityDebug
	}

	cfg := &app.Config{
		InputPath:      flagSet.Arg(0),
		OutputPrefix:   *outputPrefix,
		UpscaledSuffix: *upscaledSuffix,
		UpscaleOnly:    *upscaleOnly,
		NoSaveMain:     *noSaveMain,
		NoSaveUpscaled: *noSaveUpscaled,
		PalettePath:    *palettePath,
		Verbosity:      verbosity,
		Engine:         translateOptions(*colors, *scale, *detect, *method, *threshold, *alphaThreshold, *noSnap, *autoColors),
	}
	cfg.Engine.Cleanup = ParseCleanup(*cleanup, output)
	return cfg, false, nil
}

// translateOptions builds the engine parameter bag. Flags the user did not
// set (zero color count, zero scale) stay nil so the engine applies its own
// defaults; the translator never invents a value.
func translateOptions(colors, scale int, detect, method string, threshold float64, alphaThreshold int, noSnap, autoColors bool) engine.Options {
	opts := engine.Options{
		Detect:          engine.DetectMethod(detect),
		Method:          engine.DownscaleMethod(method),
		DomThreshold:    &threshold,
		AlphaThreshold:  &alphaThreshold,
		AutoColorDetect: autoColors,
	}
	snap := !noSnap
	opts.SnapGrid = &snap
	if colors > 0 {
		opts.MaxColors = &colors
	}
	if scale > 0 {
		opts.ManualScale = &scale
	}
	return opts
}

// ParseCleanup maps a comma-separated option string to cleanup toggles.
// Recognized keys (any case) are enabled; unknown keys get a warning on
// warn and are otherwise ignored.
func ParseCleanup(s string, warn io.Writer) engine.Cleanup {
	var c engine.Cleanup
	if s == "" {
		return c
	}
	for _, opt := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(opt)) {
		case "morph":
			c.Morph = true
		case "jaggy":
			c.Jaggy = true
		default:
			fmt.Fprintf(warn, "Warning: unknown cleanup option %q\n", strings.TrimSpace(opt))
		}
	}
	return c
}
