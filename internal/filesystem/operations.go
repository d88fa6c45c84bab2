package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeeftor/rpa-runner/internal/logging"
)

// EnsureDirectory creates a directory and all necessary parent directories
func EnsureDirectory(path string) error {
	if path == "." || path == "" {
		return nil // Current directory always exists
	}

	return os.MkdirAll(path, 0755)
}

// EnsureDirectoryForFile creates the parent directory for a given file path
func EnsureDirectoryForFile(filePath string) error {
	return EnsureDirectory(filepath.Dir(filePath))
}

// FileExists reports whether path names an existing regular file
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	stat, err := os.Stat(path)
	return err == nil && !stat.IsDir()
}

// CheckFileExists verifies that a file exists and is readable
func CheckFileExists(path string) error {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file '%s' does not exist", path)
		}
		return fmt.Errorf("cannot access file '%s': %w", path, err)
	}
	if stat.IsDir() {
		return fmt.Errorf("'%s' is a directory", path)
	}
	return nil
}

// ValidateInputFile validates that an input file exists and is readable
func ValidateInputFile(inputFile string, paramName string, envVar string) error {
	if inputFile == "" {
		if envVar != "" {
			return fmt.Errorf("%s is required: provide as argument or set %s environment variable", paramName, envVar)
		}
		return fmt.Errorf("%s is required", paramName)
	}

	if err := CheckFileExists(inputFile); err != nil {
		return fmt.Errorf("%s: %w", paramName, err)
	}

	file, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("%s '%s' is not readable: %w", paramName, inputFile, err)
	}
	file.Close()

	return nil
}

// ValidateOutputFile validates that an output file path is valid and writable
func ValidateOutputFile(outputFile string, paramName string, overwrite bool) error {
	if outputFile == "" {
		return fmt.Errorf("%s is required", paramName)
	}

	if err := EnsureDirectoryForFile(outputFile); err != nil {
		return fmt.Errorf("cannot create directory for %s '%s': %w", paramName, outputFile, err)
	}

	if _, err := os.Stat(outputFile); err == nil {
		if !overwrite {
			return fmt.Errorf("%s '%s' already exists", paramName, outputFile)
		}
		file, err := os.OpenFile(outputFile, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("%s '%s' exists but is not writable: %w", paramName, outputFile, err)
		}
		file.Close()
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot access %s '%s': %w", paramName, outputFile, err)
	}

	return nil
}

// GetFileExtension returns the lowercase file extension without the dot
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// IsImageFile checks if a file path represents a template image the matcher can decode
func IsImageFile(path string) bool {
	switch GetFileExtension(path) {
	case "png", "jpg", "jpeg", "gif", "bmp", "tif", "tiff", "webp", "ppm", "pgm", "pbm", "pam":
		return true
	default:
		return false
	}
}

// GetAbsolutePath converts a path to absolute form, handling ~ expansion
func GetAbsolutePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path provided")
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		if len(path) == 1 {
			path = homeDir
		} else {
			path = filepath.Join(homeDir, path[1:])
		}
	}

	return filepath.Abs(path)
}

// ExecutableDir returns the directory of the running binary, or "" if unknown
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		logging.Debug("Cannot determine executable path", "error", err)
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
