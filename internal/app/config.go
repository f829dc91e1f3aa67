package app

import (
	"io"
	"log/slog"

	"github.com/setanarut/repix/internal/engine"
)

// UpscaleFactor is the fixed magnification applied to every preview copy,
// in both the full and the upscale-only branch.
const UpscaleFactor = 8

// Verbosity selects how much the run logs.
type Verbosity int

const (
	VerbosityNormal Verbosity = iota // informational progress
	VerbosityQuiet                   // errors only
	VerbosityDebug                   // full pipeline detail
)

// Config is the validated, immutable configuration for one run.
type Config struct {
	InputPath      string
	OutputPrefix   string
	UpscaledSuffix string
	UpscaleOnly    bool
	NoSaveMain     bool
	NoSaveUpscaled bool
	PalettePath    string
	Engine         engine.Options
	Verbosity      Verbosity
}

// NewLogger builds the run's logger for the given verbosity. Components
// receive it explicitly; nothing mutates the process-wide default.
func NewLogger(v Verbosity, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch v {
	case VerbosityQuiet:
		level = slog.LevelError
	case VerbosityDebug:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
