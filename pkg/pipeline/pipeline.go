// Package pipeline turns a portrait photograph into a studio headshot. The
// stages run strictly in order, each consuming the complete output of the
// previous one; only the face region is carried between them.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/menta2k/headshot/pkg/background"
	"github.com/menta2k/headshot/pkg/compositing"
	"github.com/menta2k/headshot/pkg/cropper"
	"github.com/menta2k/headshot/pkg/grading"
	"github.com/menta2k/headshot/pkg/lighting"
	"github.com/menta2k/headshot/pkg/matte"
	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/sharpen"
	"github.com/menta2k/headshot/pkg/types"
	"github.com/menta2k/headshot/pkg/vision"
)

// ErrEmptyImage is returned when the pipeline is handed a zero-area buffer
var ErrEmptyImage = errors.New("empty image")

// Stage identifies a pipeline step
type Stage int

const (
	StageEstimate Stage = iota
	StageCrop
	StageMask
	StageComposite
	StageLighting
	StageGrade
	StageSharpen
	StageEnhance
	StageVignette
	StageResize
	StageFinalSharpen
)

// StageCount is the number of stages a successful run completes
const StageCount = int(StageFinalSharpen) + 1

var stageNames = [StageCount]string{
	"estimate",
	"crop",
	"mask",
	"composite",
	"lighting",
	"grade",
	"sharpen",
	"enhance",
	"vignette",
	"resize",
	"final-sharpen",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= StageCount {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger used for warnings and stage timings
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithStageHook registers fn to be called after each stage completes
func WithStageHook(fn func(Stage)) Option {
	return func(p *Pipeline) {
		p.hook = fn
	}
}

// Pipeline runs the fixed headshot stage sequence
type Pipeline struct {
	config Config
	logger *slog.Logger
	hook   func(Stage)

	estimator   *vision.FaceEstimator
	backdrop    *background.Synthesizer
	matte       *matte.Builder
	lights      *lighting.Simulator
	grader      *grading.Grader
	sharpener   *sharpen.FaceAwareSharpener
	cropPlanner *cropper.SquareCropPlanner
}

// Result is the output of a pipeline run
type Result struct {
	Image *raster.Buffer

	// SourceFace is the face region in source coordinates; FaceDetected is
	// false when it is the fallback region.
	SourceFace   types.FaceRegion
	FaceDetected bool

	// Crop is the square crop in source coordinates and Face the face
	// region remapped into it, before the final resize.
	Crop image.Rectangle
	Face types.FaceRegion

	// Mask is the subject mask in crop coordinates
	Mask         *raster.Mask
	MaskFallback bool
}

// New creates a Pipeline with the default configuration
func New(opts ...Option) *Pipeline {
	return NewWithConfig(DefaultConfig(), opts...)
}

// NewWithConfig creates a Pipeline with a custom configuration
func NewWithConfig(config Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:      config,
		logger:      slog.Default(),
		estimator:   vision.NewWithConfig(config.Skin),
		backdrop:    background.NewWithConfig(config.Background),
		matte:       matte.NewWithConfig(config.Mask),
		lights:      lighting.NewWithConfig(config.Lighting),
		grader:      grading.NewWithConfig(config.Grading),
		sharpener:   sharpen.NewWithConfig(config.Sharpen),
		cropPlanner: cropper.NewWithConfig(config.Crop),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() Config {
	return p.config
}

// Process runs every stage on src and returns the finished headshot.
// src is not modified.
func (p *Pipeline) Process(src *raster.Buffer) (*Result, error) {
	if src.Empty() {
		return nil, ErrEmptyImage
	}
	if err := p.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}

	res := &Result{}

	start := time.Now()
	face, ok := p.estimator.Estimate(src)
	if ok {
		p.logger.Info("face detected", "cx", face.Cx, "cy", face.Cy, "w", face.W, "h", face.H)
	} else {
		face = types.FallbackRegion(src.Width, src.Height)
		p.logger.Warn("could not detect face, using center of image",
			"width", src.Width, "height", src.Height)
	}
	res.SourceFace, res.FaceDetected = face, ok
	p.done(StageEstimate, start)

	start = time.Now()
	cropped, err := p.cropPlanner.Apply(src, face)
	if err != nil {
		return nil, fmt.Errorf("crop: %w", err)
	}
	img, face := cropped.Image, cropped.Face
	res.Crop, res.Face = cropped.Rect, face
	p.done(StageCrop, start)

	start = time.Now()
	backdrop := p.backdrop.Generate(img.Width, img.Height)
	subject := p.matte.Build(img, face)
	if subject.Fallback {
		p.logger.Warn("no reference colour near face, using elliptical mask")
	}
	res.Mask, res.MaskFallback = subject.Mask, subject.Fallback
	p.done(StageMask, start)

	start = time.Now()
	img, err = compositing.Composite(img, backdrop, subject.Mask)
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}
	p.done(StageComposite, start)

	start = time.Now()
	img = p.lights.Apply(img, face)
	p.done(StageLighting, start)

	start = time.Now()
	img = p.grader.Apply(img)
	p.done(StageGrade, start)

	start = time.Now()
	img, err = p.sharpener.Apply(img, face)
	if err != nil {
		return nil, fmt.Errorf("sharpen: %w", err)
	}
	p.done(StageSharpen, start)

	start = time.Now()
	img = grading.Enhance(img, p.config.Enhance)
	p.done(StageEnhance, start)

	start = time.Now()
	img = lighting.Vignette(img, p.config.VignetteStrength)
	p.done(StageVignette, start)

	start = time.Now()
	img = raster.Resize(img, p.config.OutputSize, p.config.OutputSize)
	p.done(StageResize, start)

	start = time.Now()
	img = raster.UnsharpMask(img, p.config.FinalSharpen)
	p.done(StageFinalSharpen, start)

	res.Image = img
	return res, nil
}

func (p *Pipeline) done(stage Stage, start time.Time) {
	p.logger.Debug("stage complete", "stage", stage.String(), "elapsed", time.Since(start))
	if p.hook != nil {
		p.hook(stage)
	}
}
