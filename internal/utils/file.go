package utils

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension the loader can decode
func IsImageFile(filename string) bool {
	imageExts := []string{"jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp"}
	return slices.Contains(imageExts, GetFileExtension(filename))
}

// BaseName returns the input name without directory or extension. URLs use
// the last path segment.
func BaseName(source string) string {
	name := filepath.Base(source)
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		name = path.Base(u.Path)
		if name == "/" || name == "." {
			return SanitizeFilename(u.Host)
		}
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name = SanitizeFilename(name); name == "" {
		name = "image"
	}
	return name
}

// GenerateOutputFilename generates an output filename based on input and parameters
func GenerateOutputFilename(inputFile, outputDir, prefix, suffix, format string) string {
	if format == "" {
		format = GetFileExtension(inputFile)
	}
	return OutputPath(outputDir, prefix+BaseName(inputFile), suffix, format)
}

// OutputPath joins outputDir with stem+suffix and the format extension,
// defaulting to png
func OutputPath(outputDir, stem, suffix, format string) string {
	if format == "" {
		format = "png"
	}
	return filepath.Join(outputDir, fmt.Sprintf("%s%s.%s", stem, suffix, format))
}

// UniqueBaseNames returns one output stem per input. Inputs sharing a base
// name get "_1", "_2", ... appended in input order, skipping any stem that
// another input already owns.
func UniqueBaseNames(inputs []string) []string {
	bases := make([]string, len(inputs))
	counts := map[string]int{}
	for i, in := range inputs {
		bases[i] = BaseName(in)
		counts[bases[i]]++
	}

	taken := map[string]bool{}
	for base, n := range counts {
		if n == 1 {
			taken[base] = true
		}
	}

	stems := make([]string, len(inputs))
	next := map[string]int{}
	for i, base := range bases {
		if counts[base] == 1 {
			stems[i] = base
			continue
		}
		for {
			next[base]++
			cand := fmt.Sprintf("%s_%d", base, next[base])
			if !taken[cand] {
				taken[cand] = true
				stems[i] = cand
				break
			}
		}
	}
	return stems
}

// ListImageFiles recursively lists all image files in a directory
func ListImageFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && IsImageFile(path) {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

// ExpandInputs replaces directories with the image files they contain. URLs
// and plain files pass through unchanged.
func ExpandInputs(inputs []string) ([]string, error) {
	var out []string
	for _, in := range inputs {
		if DirExists(in) {
			files, err := ListImageFiles(in)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", in, err)
			}
			out = append(out, files...)
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && info.IsDir()
}

// SanitizeFilename removes or replaces invalid characters in filenames
func SanitizeFilename(filename string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename

	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	return strings.Trim(result, " .")
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
