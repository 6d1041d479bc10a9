package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/menta2k/headshot/internal/config"
	"github.com/menta2k/headshot/internal/utils"
	"github.com/menta2k/headshot/pkg/processing"
	"github.com/menta2k/headshot/pkg/raster"
	"github.com/menta2k/headshot/pkg/types"
)

func TestSaveOptionsFor(t *testing.T) {
	cfg = config.Default()
	cmd := &cobra.Command{}
	cmd.Flags().String("format", "", "")

	tests := []struct {
		path string
		want string
	}{
		{"out.png", "png"},
		{"out.webp", "webp"},
		{"out.JPEG", "jpg"},
		{"out", "jpg"}, // configured default
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := saveOptionsFor(cmd, tt.path).Format; got != tt.want {
				t.Errorf("Expected format %s, got %s", tt.want, got)
			}
		})
	}

	// an explicit --format beats the extension
	cmd.Flags().Set("format", "webp")
	cfg.Output.Format = "webp"
	if got := saveOptionsFor(cmd, "out.png").Format; got != "webp" {
		t.Errorf("Expected --format to win, got %s", got)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headshot.yaml")

	rootCmd.SetArgs([]string{"config", "init", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !utils.FileExists(path) {
		t.Fatal("Expected config file to be written")
	}
	if _, err := config.LoadFromFile(path); err != nil {
		t.Errorf("Written config does not load: %v", err)
	}

	rootCmd.SetArgs([]string{"config", "init", path})
	if err := rootCmd.Execute(); err == nil {
		t.Error("Expected refusal to overwrite without --force")
	}

	rootCmd.SetArgs([]string{"config", "init", "--force", path})
	if err := rootCmd.Execute(); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
	force = false
}

func TestSetupAppliesFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rootCmd.SetArgs([]string{"config", "show", "--size", "256", "--quality", "80"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if cfg.Pipeline.OutputSize != 256 {
		t.Errorf("Expected output size 256, got %d", cfg.Pipeline.OutputSize)
	}
	if cfg.Output.Quality != 80 {
		t.Errorf("Expected quality 80, got %d", cfg.Output.Quality)
	}
	if logger == nil {
		t.Error("Expected setup to build a logger")
	}
}

func TestSetupRejectsInvalidFlags(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rootCmd.SetArgs([]string{"config", "show", "--quality", "0"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("Expected error for quality 0")
	}
}

func TestBatchKeepsSameNamedFilesApart(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	in := t.TempDir()
	out := filepath.Join(in, "headshots")

	portrait := raster.Filled(80, 80, 128, 128, 128)
	for y := 20; y < 40; y++ {
		for x := 30; x < 50; x++ {
			portrait.SetRGB(x, y, 200, 150, 120)
		}
	}
	for _, sub := range []string{"a", "b"} {
		path := filepath.Join(in, sub, "x.png")
		if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
			t.Fatalf("EnsureDir failed: %v", err)
		}
		if err := processing.NewProcessor().SaveImage(portrait, path, types.SaveOptions{}); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}

	// flag values persist across Execute calls, so every flag the earlier tests
	// set is given again. The second run must not pick up the first run's outputs.
	for run := 0; run < 2; run++ {
		rootCmd.SetArgs([]string{"batch", in, "--out", out, "--size", "32", "--quality", "90", "--no-progress", "--format", "png"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("batch run %d failed: %v", run, err)
		}
	}

	for _, sub := range []string{"a", "b"} {
		if path := filepath.Join(out, sub, "x_headshot.png"); !utils.FileExists(path) {
			t.Errorf("Expected %s to be written", path)
		}
	}
	files, err := utils.ListImageFiles(out)
	if err != nil {
		t.Fatalf("ListImageFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected exactly 2 outputs, got %v", files)
	}
}

func TestFormatHelpNamesFullChromaFormats(t *testing.T) {
	usage := rootCmd.PersistentFlags().Lookup("format").Usage
	for _, want := range []string{"4:2:0", "png", "lossless webp"} {
		if !strings.Contains(usage, want) {
			t.Errorf("Expected --format help to mention %q, got %q", want, usage)
		}
	}
}
