package vision

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

// FaceEstimator locates a face by sampling skin-coloured pixels on a grid.
// It is a coarse colour heuristic, not a detector: it returns the region
// covered by the bulk of skin-like samples.
type FaceEstimator struct {
	config SkinConfig
}

// SkinConfig holds the thresholds of the skin-tone heuristic
type SkinConfig struct {
	MinRed          int `json:"min_red" yaml:"min_red"`
	MinGreen        int `json:"min_green" yaml:"min_green"`
	MinBlue         int `json:"min_blue" yaml:"min_blue"`
	MinRedGreenDiff int `json:"min_red_green_diff" yaml:"min_red_green_diff"`
	MinRedBlueDiff  int `json:"min_red_blue_diff" yaml:"min_red_blue_diff"`
	MinSpread       int `json:"min_spread" yaml:"min_spread"`

	// Pixels brighter than all three are treated as highlights, not skin
	WhiteRed   int `json:"white_red" yaml:"white_red"`
	WhiteGreen int `json:"white_green" yaml:"white_green"`
	WhiteBlue  int `json:"white_blue" yaml:"white_blue"`

	SampleDivisor    int `json:"sample_divisor" yaml:"sample_divisor"`
	MinPixels        int `json:"min_pixels" yaml:"min_pixels"`
	TrimDivisor      int `json:"trim_divisor" yaml:"trim_divisor"`
	MinWidthDivisor  int `json:"min_width_divisor" yaml:"min_width_divisor"`
	MinHeightDivisor int `json:"min_height_divisor" yaml:"min_height_divisor"`
}

// DefaultSkinConfig returns thresholds that work across a broad range of skin tones
func DefaultSkinConfig() SkinConfig {
	return SkinConfig{
		MinRed:           60,
		MinGreen:         40,
		MinBlue:          20,
		MinRedGreenDiff:  10,
		MinRedBlueDiff:   15,
		MinSpread:        15,
		WhiteRed:         220,
		WhiteGreen:       210,
		WhiteBlue:        200,
		SampleDivisor:    150,
		MinPixels:        20,
		TrimDivisor:      5,
		MinWidthDivisor:  6,
		MinHeightDivisor: 5,
	}
}

// New creates a new FaceEstimator with default configuration
func New() *FaceEstimator {
	return &FaceEstimator{config: DefaultSkinConfig()}
}

// NewWithConfig creates a new FaceEstimator with custom configuration
func NewWithConfig(config SkinConfig) *FaceEstimator {
	return &FaceEstimator{config: config}
}

// Config returns the estimator thresholds
func (e *FaceEstimator) Config() SkinConfig {
	return e.config
}

// IsSkin reports whether a colour passes the skin-tone heuristic
func (e *FaceEstimator) IsSkin(r8, g8, b8 uint8) bool {
	r, g, b := int(r8), int(g8), int(b8)
	c := e.config

	if r <= c.MinRed || g <= c.MinGreen || b <= c.MinBlue {
		return false
	}
	if r <= g || r <= b {
		return false
	}
	if r-g <= c.MinRedGreenDiff || r-b <= c.MinRedBlueDiff {
		return false
	}
	if max(r, g, b)-min(r, g, b) <= c.MinSpread {
		return false
	}
	return !(r > c.WhiteRed && g > c.WhiteGreen && b > c.WhiteBlue)
}

// SampleStep returns the grid stride used for an image of the given size
func (e *FaceEstimator) SampleStep(width, height int) int {
	div := e.config.SampleDivisor
	if div <= 0 {
		return 1
	}
	return max(1, min(width, height)/div)
}

// SkinSamples returns the coordinates of every grid sample classified as skin
func (e *FaceEstimator) SkinSamples(buf *raster.Buffer) (xs, ys []float64) {
	step := e.SampleStep(buf.Width, buf.Height)
	for y := 0; y < buf.Height; y += step {
		row := buf.Row(y)
		for x := 0; x < buf.Width; x += step {
			i := x * 3
			if e.IsSkin(row[i], row[i+1], row[i+2]) {
				xs = append(xs, float64(x))
				ys = append(ys, float64(y))
			}
		}
	}
	return xs, ys
}

// Estimate returns the estimated face region, or false when fewer than
// MinPixels skin samples were found.
//
// The x and y sample lists are sorted and trimmed independently, so the
// resulting center is not the centroid of any single subset of pixels.
func (e *FaceEstimator) Estimate(buf *raster.Buffer) (types.FaceRegion, bool) {
	if buf.Empty() {
		return types.FaceRegion{}, false
	}
	xs, ys := e.SkinSamples(buf)
	if len(xs) < e.config.MinPixels || len(xs) == 0 {
		return types.FaceRegion{}, false
	}

	coreX := trimmed(xs, e.config.TrimDivisor)
	coreY := trimmed(ys, e.config.TrimDivisor)

	minW, minH := 1, 1
	if e.config.MinWidthDivisor > 0 {
		minW = max(minW, buf.Width/e.config.MinWidthDivisor)
	}
	if e.config.MinHeightDivisor > 0 {
		minH = max(minH, buf.Height/e.config.MinHeightDivisor)
	}

	return types.FaceRegion{
		Cx: int(stat.Mean(coreX, nil)),
		Cy: int(stat.Mean(coreY, nil)),
		W:  max(int(floats.Max(coreX)-floats.Min(coreX)), minW),
		H:  max(int(floats.Max(coreY)-floats.Min(coreY)), minH),
	}, true
}

// trimmed sorts v in place and drops len/divisor entries from each end
func trimmed(v []float64, divisor int) []float64 {
	sort.Float64s(v)
	if divisor <= 0 {
		return v
	}
	trim := len(v) / divisor
	if trim == 0 || 2*trim >= len(v) {
		return v
	}
	return v[trim : len(v)-trim]
}
