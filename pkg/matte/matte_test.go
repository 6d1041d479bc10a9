package matte

import (
	"testing"

	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

// createPortrait creates a dark frame with a skin-toned oval head
func createPortrait(width, height int) (*raster.Buffer, types.FaceRegion) {
	buf := raster.Filled(width, height, 30, 30, 35)
	face := types.FaceRegion{Cx: width / 2, Cy: height * 2 / 5, W: width / 4, H: height / 3}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx := float64(x-face.Cx) / float64(face.W/2)
			dy := float64(y-face.Cy) / float64(face.H/2)
			if dx*dx+dy*dy <= 1 {
				buf.SetRGB(x, y, 200, 150, 120)
			}
		}
	}
	return buf, face
}

func TestNew(t *testing.T) {
	b := New()
	if b == nil {
		t.Fatal("New() returned nil")
	}
	if b.config.Contrast != 1.8 {
		t.Errorf("Expected contrast 1.8, got %f", b.config.Contrast)
	}
}

func TestBuildMaskShape(t *testing.T) {
	buf, face := createPortrait(200, 200)
	res := New().Build(buf, face)

	if res.Fallback {
		t.Fatal("Expected template mask, got fallback")
	}
	if res.Mask.Width != 200 || res.Mask.Height != 200 {
		t.Fatalf("Mask size %dx%d, want 200x200", res.Mask.Width, res.Mask.Height)
	}

	center := res.Mask.At(face.Cx, face.Cy)
	corner := res.Mask.At(0, 0)
	if center < 200 {
		t.Errorf("Face center should be mostly subject, got %d", center)
	}
	if corner > 20 {
		t.Errorf("Top-left corner should be background, got %d", corner)
	}

	// shoulders below the face belong to the subject
	if v := res.Mask.At(face.Cx, face.Cy+face.H); v < 100 {
		t.Errorf("Body region below the face should be subject, got %d", v)
	}
}

func TestBuildReferenceColor(t *testing.T) {
	buf, face := createPortrait(200, 200)
	ref, ok := New().ReferenceColor(buf, face)
	if !ok {
		t.Fatal("Expected a reference colour")
	}
	if ref.R < 150 || ref.R <= ref.B {
		t.Errorf("Reference colour should be skin-like, got %+v", ref)
	}
}

func TestBuildFallbackOnDegenerateRegion(t *testing.T) {
	buf := raster.Filled(100, 100, 128, 128, 128)
	face := types.FaceRegion{Cx: 50, Cy: 50, W: 2, H: 2}

	res := New().Build(buf, face)
	if !res.Fallback {
		t.Fatal("Expected fallback mask for a region with no sample window")
	}
	if res.Mask.Width != 100 || res.Mask.Height != 100 {
		t.Errorf("Fallback mask has wrong size %dx%d", res.Mask.Width, res.Mask.Height)
	}

	if _, ok := New().ReferenceColor(buf, types.FaceRegion{Cx: 50, Cy: 50, W: 0, H: 40}); ok {
		t.Error("Zero-area region should have no reference colour")
	}
}

func TestBuildFallbackOutsideImage(t *testing.T) {
	buf := raster.Filled(60, 60, 128, 128, 128)
	face := types.FaceRegion{Cx: 500, Cy: 500, W: 30, H: 30}

	if res := New().Build(buf, face); !res.Fallback {
		t.Error("Expected fallback when the sample window lies outside the image")
	}
}

func TestMaskValuesInRange(t *testing.T) {
	// Every stored value is a uint8, so the meaningful check is that
	// the scoring functions never exceed their weights before clamping.
	cfg := DefaultConfig()
	for y := -50.0; y <= 250; y += 7 {
		for x := -50.0; x <= 250; x += 7 {
			h := headScore(x, y, 100, 80, 50, 60, cfg.Head)
			b := bodyScore(x, y, 100, 80, 50, 60, cfg.Body)
			r := hairScore(x, y, 100, 80, 50, 60, cfg.Hair)
			if h < 0 || h > cfg.Head.Weight || b < 0 || b > cfg.Body.Weight || r < 0 || r > cfg.Hair.Weight {
				t.Fatalf("score out of range at (%v,%v): head %v body %v hair %v", x, y, h, b, r)
			}
		}
	}
}

func TestTemplateGates(t *testing.T) {
	cfg := DefaultConfig()
	// above the gate the body template contributes nothing
	if s := bodyScore(100, 80, 100, 80, 50, 60, cfg.Body); s != 0 {
		t.Errorf("Body score at face center should be 0, got %f", s)
	}
	// below the gate the hair template contributes nothing
	if s := hairScore(100, 100, 100, 80, 50, 60, cfg.Hair); s != 0 {
		t.Errorf("Hair score below the face should be 0, got %f", s)
	}
	if s := headScore(100, 80-0.15*60, 100, 80, 50, 60, cfg.Head); s != cfg.Head.Weight {
		t.Errorf("Head score at the head center should be %f, got %f", cfg.Head.Weight, s)
	}
}

func BenchmarkBuild(b *testing.B) {
	buf, face := createPortrait(1080, 1080)
	builder := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder.Build(buf, face)
	}
}
