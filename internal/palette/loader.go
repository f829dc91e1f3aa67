// Package palette loads fixed palettes from hex-color text files and
// extracts palettes from images when none is supplied.
package palette

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// LoadFile reads a palette file: one hex color per line, lines not starting
// with '#' are ignored. A missing or unreadable file is an error (the run
// aborts); a file with no usable colors is not, it just yields a nil palette.
func LoadFile(path string, logger *slog.Logger) ([]colorful.Color, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("palette file: %w", err)
	}
	defer f.Close()

	var colors []colorful.Color
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "#") {
			continue
		}
		c, err := parseHex(line)
		if err != nil {
			logger.Warn("skipping malformed palette entry", "entry", line, "path", path)
			continue
		}
		colors = append(colors, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("palette file %s: %w", path, err)
	}
	if len(colors) == 0 {
		logger.Warn("no valid hex colors found in palette file, ignoring palette", "path", path)
		return nil, nil
	}
	logger.Info("loaded fixed palette", "colors", len(colors), "path", path)
	return colors, nil
}

// parseHex accepts "#rgb" and "#rrggbb".
func parseHex(s string) (colorful.Color, error) {
	if len(s) == 4 {
		s = fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3])
	}
	return colorful.Hex(strings.ToLower(s))
}
