package processing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/headshot/pkg/types"
)

// ErrUnsupportedFormat is returned when an image cannot be decoded or a
// requested output format is not handled
var ErrUnsupportedFormat = errors.New("unsupported image format")

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "headshot/1.0"
)

// Processor handles image loading and saving
type Processor struct {
	client    *http.Client
	userAgent string
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
	}
}

// LoadImageFromURL downloads and loads an image from a URL
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	img, err := p.decodeImageFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", imageURL, err)
	}
	return img, nil
}

// LoadImage loads an image from a file path. JPEG, PNG and WebP are
// supported; EXIF orientation is applied.
func (p *Processor) LoadImage(path string) (image.Image, error) {
	if img, err := imaging.Open(path, imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	img, err := p.decodeImageFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if IsURL(source) {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

// IsURL reports whether source looks like an http(s) URL
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// decodeImageFromBytes decodes an image from byte data with WebP support
func (p *Processor) decodeImageFromBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	// chai2010/webp handles extended WebP files the x/image decoder rejects
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, ErrUnsupportedFormat
}

// FormatFromPath returns the output format implied by the file extension
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".webp":
		return "webp"
	case ".jpg", ".jpeg":
		return "jpg"
	default:
		return ""
	}
}

// SaveImage saves an image to a file with the specified format and quality.
// An empty format is derived from the path extension, defaulting to JPEG.
func (p *Processor) SaveImage(img image.Image, path string, opts types.SaveOptions) error {
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatFromPath(path)
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 98
	}

	switch format {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		webpOpts := &webp.Options{Lossless: opts.Lossless, Quality: float32(quality)}
		if err := webp.Encode(f, img, webpOpts); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode webp %s: %w", path, err)
		}
		return f.Close()
	case "png":
		if err := imaging.Save(img, path, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		return nil
	case "", "jpg", "jpeg":
		// imaging.Save picks the encoder from the extension, so encode
		// explicitly to honour the requested format.
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := imaging.Encode(f, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode jpeg %s: %w", path, err)
		}
		return f.Close()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// CreateDebugOverlay draws the face region as an ellipse, the face bounding
// box and the crop rectangle over a copy of img
func (p *Processor) CreateDebugOverlay(img image.Image, face types.FaceRegion, crop image.Rectangle) image.Image {
	dc := gg.NewContextForImage(img)
	w, h := dc.Width(), dc.Height()
	stroke := math.Max(2, 0.004*float64(min(w, h)))

	// face ellipse and box
	dc.SetColor(color.NRGBA{0, 255, 0, 255})
	dc.SetLineWidth(stroke)
	dc.DrawEllipse(float64(face.Cx), float64(face.Cy), float64(face.W)/2, float64(face.H)/2)
	dc.Stroke()
	b := face.Bounds()
	dc.SetDash(stroke*3, stroke*2)
	dc.DrawRectangle(float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy()))
	dc.Stroke()
	dc.SetDash()

	// crop rectangle
	if !crop.Empty() {
		dc.SetColor(color.NRGBA{255, 204, 0, 255})
		dc.DrawRectangle(float64(crop.Min.X), float64(crop.Min.Y), float64(crop.Dx()), float64(crop.Dy()))
		dc.Stroke()
	}

	// face center crosshair
	cross := math.Max(4, 0.01*float64(min(w, h)))
	fx, fy := float64(face.Cx), float64(face.Cy)
	dc.SetColor(color.NRGBA{255, 0, 0, 255})
	dc.DrawLine(fx-cross, fy, fx+cross, fy)
	dc.DrawLine(fx, fy-cross, fx, fy+cross)
	dc.Stroke()

	return dc.Image()
}
