package pipeline

import (
	"fmt"

	"github.com/menta2k/headshot/pkg/background"
	"github.com/menta2k/headshot/pkg/cropper"
	"github.com/menta2k/headshot/pkg/grading"
	"github.com/menta2k/headshot/pkg/lighting"
	"github.com/menta2k/headshot/pkg/matte"
	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/sharpen"
	"github.com/menta2k/headshot/pkg/vision"
)

// Config gathers every constant used by the pipeline stages
type Config struct {
	Skin       vision.SkinConfig     `json:"skin" yaml:"skin"`
	Background background.Config     `json:"background" yaml:"background"`
	Mask       matte.Config          `json:"mask" yaml:"mask"`
	Lighting   lighting.Config       `json:"lighting" yaml:"lighting"`
	Grading    grading.Config        `json:"grading" yaml:"grading"`
	Sharpen    sharpen.Config        `json:"sharpen" yaml:"sharpen"`
	Crop       cropper.CropConfig    `json:"crop" yaml:"crop"`
	Enhance    grading.EnhanceConfig `json:"enhance" yaml:"enhance"`

	VignetteStrength float64              `json:"vignette_strength" yaml:"vignette_strength"`
	OutputSize       int                  `json:"output_size" yaml:"output_size"`
	FinalSharpen     raster.UnsharpParams `json:"final_sharpen" yaml:"final_sharpen"`
}

// DefaultConfig returns the studio headshot look at 1080x1080
func DefaultConfig() Config {
	return Config{
		Skin:             vision.DefaultSkinConfig(),
		Background:       background.DefaultConfig(),
		Mask:             matte.DefaultConfig(),
		Lighting:         lighting.DefaultConfig(),
		Grading:          grading.DefaultConfig(),
		Sharpen:          sharpen.DefaultConfig(),
		Crop:             cropper.DefaultCropConfig(),
		Enhance:          grading.DefaultEnhanceConfig(),
		VignetteStrength: 0.35,
		OutputSize:       1080,
		FinalSharpen:     raster.UnsharpParams{Radius: 1, Percent: 40, Threshold: 2},
	}
}

// Validate rejects values that would make a stage degenerate
func (c Config) Validate() error {
	if c.OutputSize < 1 {
		return fmt.Errorf("output_size must be positive, got %d", c.OutputSize)
	}
	if c.VignetteStrength < 0 {
		return fmt.Errorf("vignette_strength must not be negative, got %g", c.VignetteStrength)
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"enhance.contrast", c.Enhance.Contrast},
		{"enhance.saturation", c.Enhance.Saturation},
		{"enhance.brightness", c.Enhance.Brightness},
		{"mask.contrast", c.Mask.Contrast},
		{"grading.compress", c.Grading.Compress},
		{"skin.sample_divisor", float64(c.Skin.SampleDivisor)},
		{"skin.trim_divisor", float64(c.Skin.TrimDivisor)},
		{"skin.min_width_divisor", float64(c.Skin.MinWidthDivisor)},
		{"skin.min_height_divisor", float64(c.Skin.MinHeightDivisor)},
		{"mask.sample_step", float64(c.Mask.SampleStep)},
		{"mask.blur_divisor", float64(c.Mask.BlurDivisor)},
		{"mask.soften_divisor", float64(c.Mask.SoftenDivisor)},
		{"sharpen.blur_divisor", float64(c.Sharpen.BlurDivisor)},
		{"sharpen.scale_x", c.Sharpen.ScaleX},
		{"sharpen.scale_y", c.Sharpen.ScaleY},
		{"lighting.rim_scale_x", c.Lighting.RimScaleX},
		{"lighting.rim_scale_y", c.Lighting.RimScaleY},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %g", p.name, p.value)
		}
	}

	if c.Skin.MinPixels < 1 {
		return fmt.Errorf("skin.min_pixels must be at least 1, got %d", c.Skin.MinPixels)
	}
	if c.Crop.FaceLine < 0 || c.Crop.FaceLine > 1 {
		return fmt.Errorf("crop.face_line must be between 0 and 1, got %g", c.Crop.FaceLine)
	}
	if c.FinalSharpen.Radius < 0 || c.Sharpen.Unsharp.Radius < 0 {
		return fmt.Errorf("unsharp radius must not be negative")
	}
	return nil
}
