package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/menta2k/headshot"
	"github.com/menta2k/headshot/internal/utils"
	"github.com/menta2k/headshot/pkg/pipeline"
	"github.com/menta2k/headshot/pkg/types"
)

var batchOut string

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Process every image under a directory",
	Long: `Process every JPEG, PNG and WebP file under <dir>, writing each result to
the output directory as <name><suffix>.<format>. Subdirectories of <dir> are
mirrored under the output directory, and the output directory itself is
never read as input. A file that fails is
logged and skipped; the command exits non-zero if any file failed.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "headshots", "output directory")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if !utils.DirExists(dir) {
		return fmt.Errorf("%s is not a directory", dir)
	}

	files, err := utils.ListImageFiles(dir, batchOut)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}
	if err := utils.EnsureDir(batchOut); err != nil {
		return err
	}

	h, err := headshot.NewWithConfig(cfg.Input, cfg.Pipeline, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !noProgress && !verbose {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("Processing"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
	}

	ctx := cmd.Context()
	opts := cfg.Output.SaveOptions()
	failed := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("batch interrupted: %w", err)
		}

		output, err := utils.MirrorOutputFilename(file, dir, batchOut, cfg.Output.Suffix, cfg.Output.Format)
		if err == nil {
			err = processOne(h, file, output, opts)
		}
		if err != nil {
			failed++
			logger.Error("failed to process image", "file", file, "error", err)
		}

		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	fmt.Printf("Processed %d of %d images into %s\n", len(files)-failed, len(files), batchOut)
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(files))
	}
	return nil
}

func processOne(h *headshot.Headshot, file, output string, opts types.SaveOptions) error {
	src, err := h.LoadImage(file)
	if err != nil {
		return err
	}
	res, err := h.ProcessBuffer(src)
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(filepath.Dir(output)); err != nil {
		return err
	}
	if err := h.SaveImage(res.Image, output, opts); err != nil {
		return err
	}
	logger.Info("saved headshot", "path", output, "face_detected", res.FaceDetected)

	if debug {
		if _, err := h.SaveDebugImages(src, res, output); err != nil {
			logger.Warn("debug images not written", "file", file, "error", err)
		}
	}
	return nil
}
