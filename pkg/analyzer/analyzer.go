package analyzer

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/webp"
)

// ErrImageTooSmall is returned when an input image is below the minimum side length
var ErrImageTooSmall = errors.New("image too small")

// ImageAnalyzer inspects input images before they enter the pipeline
type ImageAnalyzer struct {
	config Config
}

// Config holds configuration for the image analyzer
type Config struct {
	SupportedFormats []string `json:"supported_formats" yaml:"supported_formats"`
	MinImageSize     int      `json:"min_image_size" yaml:"min_image_size"`
}

// DefaultConfig accepts JPEG, PNG and WebP of any non-empty size. The
// pipeline floors every region to at least one pixel, so tiny inputs are
// processed rather than rejected.
func DefaultConfig() Config {
	return Config{
		SupportedFormats: []string{"jpeg", "png", "webp"},
		MinImageSize:     1,
	}
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{config: DefaultConfig()}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Format      string
	Width       int
	Height      int
	AspectRatio float64
	Area        int
}

// Inspect reads only the header of the file at path and reports its format
// and dimensions
func (a *ImageAnalyzer) Inspect(path string) (ImageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	info, err := a.InspectReader(file)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%s: %w", path, err)
	}
	return info, nil
}

// InspectReader reads an image header from reader
func (a *ImageAnalyzer) InspectReader(reader io.Reader) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(reader)
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	if !a.IsFormatSupported(format) {
		return ImageInfo{}, fmt.Errorf("unsupported image format: %s", format)
	}

	info := infoFor(cfg.Width, cfg.Height)
	info.Format = format
	return info, nil
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	return infoFor(bounds.Dx(), bounds.Dy())
}

// IsFormatSupported reports whether format is in the configured list.
// "jpg" and "jpeg" are treated as the same format.
func (a *ImageAnalyzer) IsFormatSupported(format string) bool {
	format = normalizeFormat(format)
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, normalizeFormat(supported)) {
			return true
		}
	}
	return false
}

// ValidateImage checks if an image meets minimum requirements
func (a *ImageAnalyzer) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	return a.ValidateSize(bounds.Dx(), bounds.Dy())
}

// ValidateSize checks dimensions against the minimum side length
func (a *ImageAnalyzer) ValidateSize(width, height int) error {
	if width < a.config.MinImageSize || height < a.config.MinImageSize {
		return fmt.Errorf("%w: %dx%d (minimum: %d)",
			ErrImageTooSmall, width, height, a.config.MinImageSize)
	}
	return nil
}

func infoFor(width, height int) ImageInfo {
	info := ImageInfo{Width: width, Height: height, Area: width * height}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "jpg" {
		return "jpeg"
	}
	return format
}
