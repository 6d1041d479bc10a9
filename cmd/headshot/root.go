package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/menta2k/headshot"
	"github.com/menta2k/headshot/internal/config"
	"github.com/menta2k/headshot/internal/utils"
	"github.com/menta2k/headshot/pkg/pipeline"
	"github.com/menta2k/headshot/pkg/processing"
	"github.com/menta2k/headshot/pkg/types"
)

var (
	configPath string
	verbose    bool
	noProgress bool

	outFormat string
	quality   int
	lossless  bool
	size      int
	debug     bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "headshot <input> [output]",
	Short: "Turn a casual portrait into a studio headshot",
	Long: `headshot finds the face in a portrait photograph, crops a square around it,
replaces the background with a dark studio gradient and applies studio
lighting, colour grading and sharpening.

The input may be a local file or an http(s) URL. The output defaults to
` + types.DefaultOutputPath + `.`,
	Version:           headshot.Version,
	Args:              cobra.RangeArgs(1, 2),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSingle,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.GetConfigPath()+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every pipeline stage")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	rootCmd.PersistentFlags().StringVarP(&outFormat, "format", "f", "", "output format: jpg, png or webp (default from output extension); jpg is 4:2:0, use png or lossless webp for full chroma")
	rootCmd.PersistentFlags().IntVarP(&quality, "quality", "q", 0, "JPEG/WebP quality 1-100")
	rootCmd.PersistentFlags().BoolVar(&lossless, "lossless", false, "lossless WebP output")
	rootCmd.PersistentFlags().IntVarP(&size, "size", "s", 0, "output edge length in pixels")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "also write face/crop overlay and mask images")
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "headshot %s\n" .Version}}`)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	var err error
	switch {
	case configPath != "":
		cfg, err = config.LoadFromFile(configPath)
	case utils.FileExists(config.GetConfigPath()):
		cfg, err = config.LoadFromFile(config.GetConfigPath())
	default:
		cfg = config.Default()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = outFormat
	}
	if flags.Changed("quality") {
		cfg.Output.Quality = quality
	}
	if flags.Changed("lossless") {
		cfg.Output.Lossless = lossless
	}
	if flags.Changed("size") {
		cfg.Pipeline.OutputSize = size
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err = cfg.Logging.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

func runSingle(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := cfg.Output.Path
	if len(args) > 1 {
		output = args[1]
	}

	var bar *progressbar.ProgressBar
	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if !noProgress && !verbose {
		bar = progressbar.NewOptions(pipeline.StageCount,
			progressbar.OptionSetDescription("Processing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		opts = append(opts, pipeline.WithStageHook(func(s pipeline.Stage) {
			bar.Describe(s.String())
			bar.Add(1)
		}))
	}

	h, err := headshot.NewWithConfig(cfg.Input, cfg.Pipeline, opts...)
	if err != nil {
		return err
	}

	src, err := h.LoadImage(input)
	if err != nil {
		return err
	}
	logger.Info("image loaded", "source", input, "width", src.Width, "height", src.Height)

	res, err := h.ProcessBuffer(src)
	if err != nil {
		return fmt.Errorf("processing %s failed: %w", input, err)
	}
	if bar != nil {
		bar.Finish()
	}

	if err := utils.EnsureDir(filepath.Dir(output)); err != nil {
		return err
	}
	if err := h.SaveImage(res.Image, output, saveOptionsFor(cmd, output)); err != nil {
		return err
	}
	logger.Info("saved headshot", "path", output, "face_detected", res.FaceDetected)
	report(output)

	if debug {
		paths, err := h.SaveDebugImages(src, res, output)
		if err != nil {
			return err
		}
		for _, p := range paths {
			report(p)
		}
	}
	return nil
}

// saveOptionsFor picks the encoder for path. An explicit --format wins,
// then the output extension, then the configured format.
func saveOptionsFor(cmd *cobra.Command, path string) types.SaveOptions {
	opts := cfg.Output.SaveOptions()
	if cmd.Flags().Changed("format") {
		return opts
	}
	if format := processing.FormatFromPath(path); format != "" {
		opts.Format = format
	}
	return opts
}

func report(path string) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Saved %s\n", path)
		return
	}
	fmt.Printf("Saved %s (%s)\n", path, utils.FormatFileSize(info.Size()))
}
