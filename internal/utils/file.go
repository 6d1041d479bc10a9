package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var imageExts = []string{"jpg", "jpeg", "png", "webp"}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// GetFileExtension returns the lowercase file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an extension the pipeline can decode
func IsImageFile(filename string) bool {
	return slices.Contains(imageExts, GetFileExtension(filename))
}

// GenerateOutputFilename generates an output filename based on input and parameters
func GenerateOutputFilename(inputFile, outputDir, suffix, format string) string {
	baseName := filepath.Base(inputFile)
	nameWithoutExt := strings.TrimSuffix(baseName, filepath.Ext(baseName))

	if format == "" {
		format = "jpg"
	}

	return filepath.Join(outputDir, fmt.Sprintf("%s%s.%s", nameWithoutExt, suffix, format))
}

// MirrorOutputFilename is GenerateOutputFilename for a file found under
// inputDir: the file's subdirectory relative to inputDir is kept under
// outputDir, so same-named files in different folders do not collide.
func MirrorOutputFilename(inputFile, inputDir, outputDir, suffix, format string) (string, error) {
	rel, err := filepath.Rel(inputDir, inputFile)
	if err != nil {
		return "", fmt.Errorf("%s is not under %s: %w", inputFile, inputDir, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is not under %s", inputFile, inputDir)
	}
	return GenerateOutputFilename(inputFile, filepath.Join(outputDir, filepath.Dir(rel)), suffix, format), nil
}

// ListImageFiles recursively lists all image files in a directory, in
// lexical order. Subdirectories matching one of skip are not entered.
func ListImageFiles(dir string, skip ...string) ([]string, error) {
	var skipAbs []string
	for _, s := range skip {
		abs, err := filepath.Abs(s)
		if err != nil {
			return nil, err
		}
		skipAbs = append(skipAbs, abs)
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && len(skipAbs) > 0 {
				if abs, err := filepath.Abs(path); err == nil && slices.Contains(skipAbs, abs) {
					return fs.SkipDir
				}
			}
			return nil
		}
		if IsImageFile(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// FormatFileSize formats file size in human-readable format
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
