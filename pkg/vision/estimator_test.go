package vision

import (
	"testing"

	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

var (
	skinTone = [3]uint8{200, 150, 120}
	midGray  = [3]uint8{128, 128, 128}
)

// createTestImage creates a gray image with a skin-toned block
func createTestImage(width, height, bx, by, bw, bh int) *raster.Buffer {
	buf := raster.Filled(width, height, midGray[0], midGray[1], midGray[2])
	for y := by; y < by+bh; y++ {
		for x := bx; x < bx+bw; x++ {
			buf.SetRGB(x, y, skinTone[0], skinTone[1], skinTone[2])
		}
	}
	return buf
}

func TestNew(t *testing.T) {
	estimator := New()
	if estimator == nil {
		t.Fatal("New() returned nil")
	}
	if estimator.config.MinPixels != 20 {
		t.Errorf("Expected min pixels 20, got %d", estimator.config.MinPixels)
	}
}

func TestNewWithConfig(t *testing.T) {
	cfg := DefaultSkinConfig()
	cfg.MinPixels = 5

	estimator := NewWithConfig(cfg)
	if estimator.Config().MinPixels != 5 {
		t.Errorf("Expected min pixels 5, got %d", estimator.Config().MinPixels)
	}
}

func TestIsSkin(t *testing.T) {
	estimator := New()

	tests := []struct {
		name    string
		r, g, b uint8
		want    bool
	}{
		{"light skin", 200, 150, 120, true},
		{"dark skin", 120, 80, 60, true},
		{"gray", 128, 128, 128, false},
		{"black", 0, 0, 0, false},
		{"near white", 240, 215, 205, false},
		{"blue", 40, 60, 200, false},
		{"red too close to green", 150, 145, 100, false},
		{"red too close to blue", 150, 100, 140, false},
		{"too dark", 60, 45, 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := estimator.IsSkin(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("IsSkin(%d,%d,%d) = %v, want %v", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestSampleStep(t *testing.T) {
	estimator := New()

	tests := []struct {
		w, h int
		want int
	}{
		{100, 100, 1},
		{300, 400, 2},
		{4000, 3000, 20},
	}
	for _, tt := range tests {
		if got := estimator.SampleStep(tt.w, tt.h); got != tt.want {
			t.Errorf("SampleStep(%d,%d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestEstimateUniformGrayNotFound(t *testing.T) {
	estimator := New()
	buf := raster.Filled(400, 300, 128, 128, 128)

	if _, ok := estimator.Estimate(buf); ok {
		t.Fatal("Expected no face in a uniform gray image")
	}

	fallback := types.FallbackRegion(buf.Width, buf.Height)
	want := types.FaceRegion{Cx: 200, Cy: 150, W: 100, H: 100}
	if fallback != want {
		t.Errorf("Expected fallback %+v, got %+v", want, fallback)
	}
}

func TestEstimateSkinBlock(t *testing.T) {
	estimator := New()
	bx, by := 100, 160
	buf := createTestImage(300, 300, bx, by, 50, 50)

	face, ok := estimator.Estimate(buf)
	if !ok {
		t.Fatal("Expected a face region for the skin block")
	}

	if face.Cx < bx || face.Cx >= bx+50 || face.Cy < by || face.Cy >= by+50 {
		t.Errorf("Face center (%d,%d) outside block [%d,%d)x[%d,%d)",
			face.Cx, face.Cy, bx, bx+50, by, by+50)
	}

	if face.W < 300/6 {
		t.Errorf("Face width %d below floor %d", face.W, 300/6)
	}
	if face.H < 300/5 {
		t.Errorf("Face height %d below floor %d", face.H, 300/5)
	}
}

func TestEstimateMinimumPixelBoundary(t *testing.T) {
	estimator := New()

	// 150x150 samples every pixel; a 4x5 block is exactly 20 skin pixels
	exactly := createTestImage(150, 150, 60, 60, 4, 5)
	if _, ok := estimator.Estimate(exactly); !ok {
		t.Error("Exactly 20 skin pixels must not trigger the fallback")
	}

	fewer := createTestImage(150, 150, 60, 60, 19, 1)
	if _, ok := estimator.Estimate(fewer); ok {
		t.Error("19 skin pixels must trigger the fallback")
	}
}

func TestEstimateEmptyBuffer(t *testing.T) {
	estimator := New()
	if _, ok := estimator.Estimate(raster.New(0, 0)); ok {
		t.Error("Empty buffer should not produce a face")
	}
}

func TestTrimmed(t *testing.T) {
	v := []float64{9, 1, 8, 2, 7, 3, 6, 4, 5, 0}
	core := trimmed(v, 5)
	if len(core) != 6 {
		t.Fatalf("Expected 6 values, got %d", len(core))
	}
	if core[0] != 2 || core[len(core)-1] != 7 {
		t.Errorf("Expected core [2..7], got %v", core)
	}

	short := trimmed([]float64{3, 1, 2}, 5)
	if len(short) != 3 {
		t.Errorf("Lists shorter than the divisor should not be trimmed, got %v", short)
	}
}

func BenchmarkEstimate(b *testing.B) {
	estimator := New()
	buf := createTestImage(1920, 1080, 800, 300, 300, 400)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		estimator.Estimate(buf)
	}
}
