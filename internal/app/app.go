// Package app drives a batch run: it resolves input files, processes each
// one through the engine (or the upscale-only shortcut), saves the
// artifacts and tallies per-file results.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/setanarut/repix/internal/engine"
	"github.com/setanarut/repix/internal/fsutil"
	"github.com/setanarut/repix/internal/imageio"
	"github.com/setanarut/repix/internal/palette"
	"github.com/setanarut/repix/internal/upscale"
)

// FileResult records the outcome for one input file. Failures are values
// here, not control flow: the batch continues past them.
type FileResult struct {
	Path    string
	Outputs []string
	Err     error
}

// App is the run controller.
type App struct {
	cfg    Config
	logger *slog.Logger
	eng    *engine.Engine
}

func New(cfg Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		eng:    engine.New(logger),
	}
}

// Run executes the whole batch. It returns an error for the fatal startup
// cases (missing palette file, invalid input path, nothing to process) and
// when any file fails; per-file failures never abort the loop.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.PalettePath != "" {
		pal, err := palette.LoadFile(a.cfg.PalettePath, a.logger)
		if err != nil {
			return err
		}
		a.cfg.Engine.FixedPalette = pal
	}

	files, err := fsutil.ResolveInputs(a.cfg.InputPath, a.logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no valid image files found to process")
	}
	a.logger.Info("found image files", "count", len(files))

	succeeded := 0
	for _, f := range files {
		res := a.ProcessFile(ctx, f)
		if res.Err != nil {
			a.logger.Error("failed to process file", "path", f, "error", res.Err)
			continue
		}
		succeeded++
	}

	a.logger.Info("processing complete", "succeeded", succeeded, "total", len(files))
	if succeeded != len(files) {
		return fmt.Errorf("%d of %d file(s) failed", len(files)-succeeded, len(files))
	}
	return nil
}

// ProcessFile handles a single input, full pipeline or upscale-only.
func (a *App) ProcessFile(ctx context.Context, path string) FileResult {
	a.logger.Info("processing", "path", path)
	if a.cfg.UpscaleOnly {
		return a.upscaleOnly(path)
	}
	return a.processFull(ctx, path)
}

func (a *App) processFull(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path}

	r, err := a.eng.Process(ctx, path, a.cfg.Engine)
	if err != nil {
		res.Err = err
		return res
	}
	a.logger.Debug("engine finished", "path", path, "scale", r.Scale, "colors", r.ColorCount)

	dir, stem := splitPath(path)
	if a.cfg.NoSaveMain {
		a.logger.Info("skipping main image save", "path", path)
	} else {
		// The primary artifact is always PNG: lossless for the reduced palette.
		out := filepath.Join(dir, a.cfg.OutputPrefix+stem+".png")
		if err := imageio.Save(out, r.Image); err != nil {
			res.Err = err
			return res
		}
		a.logger.Info("saved processed image", "path", out)
		res.Outputs = append(res.Outputs, out)
	}

	if a.cfg.NoSaveUpscaled {
		a.logger.Info("skipping upscaled image save", "path", path)
		return res
	}
	up, err := upscale.Nearest(r.Image, UpscaleFactor)
	if err != nil {
		res.Err = err
		return res
	}
	ext := imageio.UpscaledExt(filepath.Ext(path), false)
	out := filepath.Join(dir, a.cfg.OutputPrefix+stem+a.cfg.UpscaledSuffix+ext)
	if err := imageio.Save(out, up); err != nil {
		res.Err = err
		return res
	}
	a.logger.Info("saved upscaled image", "path", out, "factor", UpscaleFactor)
	res.Outputs = append(res.Outputs, out)
	return res
}

func (a *App) upscaleOnly(path string) FileResult {
	res := FileResult{Path: path}

	img, err := imageio.Load(path)
	if err != nil {
		res.Err = err
		return res
	}
	up, err := upscale.Nearest(imageio.ToNRGBA(img), UpscaleFactor)
	if err != nil {
		res.Err = err
		return res
	}

	dir, stem := splitPath(path)
	ext := imageio.UpscaledExt(filepath.Ext(path), true)
	out := filepath.Join(dir, a.cfg.OutputPrefix+stem+a.cfg.UpscaledSuffix+ext)
	if err := imageio.Save(out, up); err != nil {
		res.Err = err
		return res
	}
	a.logger.Info("saved upscaled image", "path", out, "factor", UpscaleFactor)
	res.Outputs = append(res.Outputs, out)
	return res
}

func splitPath(path string) (dir, stem string) {
	base := filepath.Base(path)
	return filepath.Dir(path), strings.TrimSuffix(base, filepath.Ext(base))
}
