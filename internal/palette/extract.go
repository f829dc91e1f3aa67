package palette

import (
	"image"
	"image/color"
	"log/slog"
	"math"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Method selects the automatic palette extraction strategy.
type Method int

const (
	MethodDominantColor Method = iota
	MethodKMeans
)

func (m Method) String() string {
	switch m {
	case MethodKMeans:
		return "kmeans"
	default:
		return "dominantcolor"
	}
}

type weightedColor struct {
	col    colorful.Color
	weight float64
}

// Extract returns a k-color palette for img using the given method. KMeans
// falls back to the dominant-color method when clustering yields nothing.
func Extract(img image.Image, k int, method Method, logger *slog.Logger) []colorful.Color {
	if method == MethodKMeans {
		if p := extractKMeans(img, k); len(p) != 0 {
			return p
		}
		logger.Warn("kmeans returned empty palette, falling back to dominantcolor")
	}
	return extractDominant(img, k)
}

// extractDominant picks k diverse colors out of the dominant-color
// candidates, weighted by how much of the image each one covers.
func extractDominant(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}

	nCandidates := max(24, k*8)
	candidates := dominantcolor.FindWeight(img, nCandidates)
	if len(candidates) == 0 {
		// Avoid an empty palette that would break the quantizer downstream.
		candidates = append(candidates, dominantcolor.Color{
			RGBA:   color.RGBA{R: 128, G: 128, B: 128, A: 255},
			Weight: 1.0,
		})
	}

	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col.Clamped(), weight: w})
	}
	return selectDiverse(weighted, k)
}

// extractKMeans clusters a subsample of opaque pixels in RGB space and keeps
// the k most diverse cluster centers, weighted by cluster population.
func extractKMeans(img image.Image, k int) []colorful.Color {
	if k <= 0 {
		return nil
	}
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := 12000
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 == 0 {
				continue
			}
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / 65535.0,
				float64(g16) / 65535.0,
				float64(b16) / 65535.0,
			})
		}
	}
	if len(dataset) == 0 {
		return nil
	}

	workK := min(max(k*4, k+2), len(dataset))
	if workK <= 0 {
		return nil
	}
	km := kmeans.New()
	cc, err := km.Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return nil
	}

	weighted := make([]weightedColor, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		w := float64(len(c.Observations))
		if w <= 0 {
			w = 1e-6
		}
		weighted = append(weighted, weightedColor{col: col, weight: w})
	}
	return selectDiverse(weighted, k)
}

// selectDiverse greedily picks k colors maximizing Lab-space spread while
// favoring heavily weighted candidates. Seeded with the strongest color so
// the palette stays close to the image's dominant tones.
func selectDiverse(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		col := c.col.Clamped()
		l, a, b := col.Lab()
		w := max(c.weight, 1e-6)
		maxW = max(maxW, w)
		items = append(items, item{col: col, lab: [3]float64{l, a, b}, w: w})
	}
	if k > len(items) {
		k = len(items)
	}
	if maxW <= 0 {
		maxW = 1.0
	}

	seed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[seed].w {
			seed = i
		}
	}
	selectedIdx := []int{seed}
	selected := make([]bool, len(items))
	selected[seed] = true

	for len(selectedIdx) < k {
		bestIdx := -1
		bestScore := -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range selectedIdx {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(items[i].w/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		selectedIdx = append(selectedIdx, bestIdx)
	}

	out := make([]colorful.Color, 0, len(selectedIdx))
	for _, idx := range selectedIdx {
		out = append(out, items[idx].col)
	}
	return out
}

// AutoDetectCount estimates how many colors an image meaningfully uses by
// counting dominant-color candidates that each cover at least 1% of the
// image. Clamped to [2, maxColors].
func AutoDetectCount(img image.Image, maxColors int) int {
	if maxColors < 2 {
		maxColors = 2
	}
	candidates := dominantcolor.FindWeight(img, maxColors)
	total := 0.0
	for _, c := range candidates {
		total += max(c.Weight, 0)
	}
	if total <= 0 {
		return 2
	}
	n := 0
	for _, c := range candidates {
		if c.Weight/total >= 0.01 {
			n++
		}
	}
	return min(max(n, 2), maxColors)
}

// SortByBrightness orders colors from darkest to brightest so palettes have
// a stable, reproducible order regardless of extraction method.
func SortByBrightness(palette []colorful.Color) {
	slices.SortFunc(palette, func(a, b colorful.Color) int {
		ri, gi, bi := a.LinearRgb()
		rj, gj, bj := b.LinearRgb()
		yi := 0.2126*ri + 0.7152*gi + 0.0722*bi
		yj := 0.2126*rj + 0.7152*gj + 0.0722*bj
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}
