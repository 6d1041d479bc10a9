package processing

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/headshot/pkg/types"
)

// createTestImage creates an opaque gradient image
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / width), uint8(y * 255 / height), 90, 255})
		}
	}
	return img
}

func TestSaveAndLoadPNG(t *testing.T) {
	p := NewProcessor()
	src := createTestImage(64, 48)
	path := filepath.Join(t.TempDir(), "out.png")

	if err := p.SaveImage(src, path, types.SaveOptions{}); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	img, err := p.LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Fatalf("Expected 64x48, got %v", img.Bounds())
	}

	// png is lossless
	r1, g1, b1, _ := src.At(10, 20).RGBA()
	r2, g2, b2, _ := img.At(10, 20).RGBA()
	if r1 != r2 || g1 != g2 || b1 != b2 {
		t.Error("PNG round trip should be lossless")
	}
}

func TestSaveJPEG(t *testing.T) {
	p := NewProcessor()
	path := filepath.Join(t.TempDir(), "out.jpg")

	if err := p.SaveImage(createTestImage(32, 32), path, types.SaveOptions{Quality: 98}); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("Expected JPEG SOI marker")
	}
}

func TestSaveFormatOverridesExtension(t *testing.T) {
	p := NewProcessor()
	path := filepath.Join(t.TempDir(), "out.png")

	if err := p.SaveImage(createTestImage(16, 16), path, types.SaveOptions{Format: "jpg"}); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("Expected JPEG content despite .png extension")
	}
}

func TestSaveWebPLossless(t *testing.T) {
	p := NewProcessor()
	src := createTestImage(40, 30)
	path := filepath.Join(t.TempDir(), "out.webp")

	if err := p.SaveImage(src, path, types.SaveOptions{Format: "webp", Lossless: true}); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	img, err := p.LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
		t.Errorf("Expected 40x30, got %v", img.Bounds())
	}
}

func TestSaveUnsupportedFormat(t *testing.T) {
	p := NewProcessor()
	err := p.SaveImage(createTestImage(8, 8), filepath.Join(t.TempDir(), "out.bmp"), types.SaveOptions{Format: "bmp"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadImageMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jpg")
	_, err := NewProcessor().LoadImage(path)
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !bytes.Contains([]byte(err.Error()), []byte(path)) {
		t.Errorf("Error should name the path, got %v", err)
	}
}

func TestLoadImageCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := NewProcessor().LoadImage(path); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadImageFromURL(t *testing.T) {
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, createTestImage(20, 10)); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photo.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(encoded.Bytes())
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := NewProcessor()
	img, err := p.LoadImageSmart(server.URL + "/photo.png")
	if err != nil {
		t.Fatalf("LoadImageSmart failed: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("Expected 20x10, got %v", img.Bounds())
	}

	if _, err := p.LoadImageFromURL(server.URL + "/page"); err == nil {
		t.Error("Expected error for non-image content type")
	}
	if _, err := p.LoadImageFromURL(server.URL + "/missing"); err == nil {
		t.Error("Expected error for HTTP 404")
	}
	if _, err := p.LoadImageFromURL("ftp://example.com/a.png"); err == nil {
		t.Error("Expected error for unsupported scheme")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"a.jpg":  "jpg",
		"a.JPEG": "jpg",
		"a.png":  "png",
		"a.webp": "webp",
		"a.gif":  "",
		"noext":  "",
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestIsURL(t *testing.T) {
	if !IsURL("https://example.com/a.jpg") || !IsURL("http://example.com") {
		t.Error("Expected http(s) sources to be URLs")
	}
	if IsURL("/tmp/a.jpg") || IsURL("ftp://example.com") {
		t.Error("Expected paths and other schemes not to be URLs")
	}
}

func TestCreateDebugOverlay(t *testing.T) {
	src := createTestImage(200, 100)
	face := types.FaceRegion{Cx: 140, Cy: 40, W: 30, H: 40}
	crop := image.Rect(100, 0, 200, 100)

	out := NewProcessor().CreateDebugOverlay(src, face, crop)
	if out.Bounds().Dx() != 200 || out.Bounds().Dy() != 100 {
		t.Fatalf("Overlay changed size to %v", out.Bounds())
	}

	// the crosshair is drawn in red over the face center
	cr, cg, _, _ := out.At(140, 40).RGBA()
	if cr>>8 < 200 || cg>>8 > 80 {
		t.Errorf("Expected red crosshair at face center, got r=%d g=%d", cr>>8, cg>>8)
	}
	// far from any marker the source is untouched
	r, g, b, _ := out.At(20, 90).RGBA()
	if int(r>>8) != 20*255/200 || int(g>>8) != 90*255/100 || b>>8 != 90 {
		t.Errorf("Expected untouched pixel, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}
