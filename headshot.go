// Package headshot turns casual portrait photos into studio-style headshots.
//
// The pipeline estimates the face from skin-coloured pixels, crops a square
// with rule-of-thirds headroom, replaces the background with a lit studio
// gradient, adds key and rim light, applies a cinematic colour grade,
// sharpens the face while softening the rest, and resizes to the output
// resolution.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		"github.com/menta2k/headshot"
//		"github.com/menta2k/headshot/pkg/types"
//	)
//
//	func main() {
//		h := headshot.New()
//
//		res, err := h.ProcessFile("portrait.jpg", "headshot.jpg", types.SaveOptions{Quality: 98})
//		if err != nil {
//			log.Fatal(err)
//		}
//		if !res.FaceDetected {
//			log.Println("no face found, used the image center")
//		}
//	}
//
// The package consists of these components:
//
//  1. Vision (pkg/vision): skin-tone face region estimation
//  2. Matte (pkg/matte): subject mask from head, body and hair templates
//  3. Background, Lighting, Grading, Sharpen (pkg/...): the studio look
//  4. Cropper (pkg/cropper): square crop planning and face remapping
//  5. Pipeline (pkg/pipeline): the fixed stage order and its configuration
//  6. Processing (pkg/processing): loading, saving and debug overlays
package headshot

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/menta2k/headshot/pkg/analyzer"
	"github.com/menta2k/headshot/pkg/pipeline"
	"github.com/menta2k/headshot/pkg/processing"
	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

// Version of the headshot library
const Version = "1.0.0"

// Headshot provides a high-level interface to the headshot pipeline
type Headshot struct {
	analyzer  *analyzer.ImageAnalyzer
	processor *processing.Processor
	pipeline  *pipeline.Pipeline
}

// New creates a new Headshot with default configuration
func New(opts ...pipeline.Option) *Headshot {
	return &Headshot{
		analyzer:  analyzer.New(),
		processor: processing.NewProcessor(),
		pipeline:  pipeline.New(opts...),
	}
}

// NewWithConfig creates a new Headshot with custom configuration
func NewWithConfig(analyzerConfig analyzer.Config, pipelineConfig pipeline.Config, opts ...pipeline.Option) (*Headshot, error) {
	if err := pipelineConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	return &Headshot{
		analyzer:  analyzer.NewWithConfig(analyzerConfig),
		processor: processing.NewProcessor(),
		pipeline:  pipeline.NewWithConfig(pipelineConfig, opts...),
	}, nil
}

// LoadImage loads and validates an image from a file path or URL. Local
// files have their header checked before the full decode.
func (h *Headshot) LoadImage(source string) (*raster.Buffer, error) {
	if !processing.IsURL(source) {
		info, err := h.analyzer.Inspect(source)
		if err != nil {
			return nil, err
		}
		if err := h.analyzer.ValidateSize(info.Width, info.Height); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
	}

	img, err := h.processor.LoadImageSmart(source)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	if err := h.analyzer.ValidateImage(img); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return raster.FromImage(img), nil
}

// ProcessImage runs the pipeline on an already decoded image
func (h *Headshot) ProcessImage(img image.Image) (*pipeline.Result, error) {
	if err := h.analyzer.ValidateImage(img); err != nil {
		return nil, fmt.Errorf("image validation failed: %w", err)
	}
	return h.pipeline.Process(raster.FromImage(img))
}

// ProcessBuffer runs the pipeline on a buffer returned by LoadImage
func (h *Headshot) ProcessBuffer(buf *raster.Buffer) (*pipeline.Result, error) {
	return h.pipeline.Process(buf)
}

// ProcessFile is a convenience function that loads, processes and saves an image
func (h *Headshot) ProcessFile(input, output string, opts types.SaveOptions) (*pipeline.Result, error) {
	buf, err := h.LoadImage(input)
	if err != nil {
		return nil, err
	}

	res, err := h.pipeline.Process(buf)
	if err != nil {
		return nil, fmt.Errorf("processing %s failed: %w", input, err)
	}

	if output == "" {
		output = types.DefaultOutputPath
	}
	if err := h.SaveImage(res.Image, output, opts); err != nil {
		return nil, err
	}
	return res, nil
}

// SaveImage encodes a finished buffer to path
func (h *Headshot) SaveImage(buf *raster.Buffer, path string, opts types.SaveOptions) error {
	if err := h.processor.SaveImage(buf.ToNRGBA(), path, opts); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}

// SaveDebugImages writes a face/crop overlay of src and the subject mask as
// PNG files next to base, returning the paths written
func (h *Headshot) SaveDebugImages(src *raster.Buffer, res *pipeline.Result, base string) ([]string, error) {
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	overlayPath := stem + "_debug.png"
	maskPath := stem + "_mask.png"

	overlay := h.processor.CreateDebugOverlay(src.ToNRGBA(), res.SourceFace, res.Crop)
	if err := h.processor.SaveImage(overlay, overlayPath, types.SaveOptions{Format: "png"}); err != nil {
		return nil, fmt.Errorf("failed to save debug overlay: %w", err)
	}
	if err := h.processor.SaveImage(res.Mask.ToGray(), maskPath, types.SaveOptions{Format: "png"}); err != nil {
		return nil, fmt.Errorf("failed to save mask: %w", err)
	}
	return []string{overlayPath, maskPath}, nil
}

// GetImageInfo returns basic information about an image
func (h *Headshot) GetImageInfo(img image.Image) analyzer.ImageInfo {
	return h.analyzer.GetImageInfo(img)
}

// Config returns the pipeline configuration in use
func (h *Headshot) Config() pipeline.Config {
	return h.pipeline.Config()
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
