// Package natives unpacks platform shared libraries from native classifier jars.
package natives

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/AlsoSylv/synth-launcher-sub000/internal/logger"
	"github.com/AlsoSylv/synth-launcher-sub000/internal/utils"
)

// Extension returns the shared library suffix for a manifest OS name
func Extension(osName string) string {
	switch osName {
	case "windows":
		return ".dll"
	case "osx":
		return ".dylib"
	default:
		return ".so"
	}
}

// Extract copies every entry of the jar at archivePath whose name ends in ext
// into destDir, flattened to its base name. Entries under an excluded prefix are skipped.
func Extract(archivePath, destDir, ext string, exclude []string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open native archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	var extracted []string
	for _, file := range reader.File {
		if !ShouldExtract(file.Name, file.FileInfo().IsDir(), ext, exclude) {
			continue
		}

		target := filepath.Join(destDir, path.Base(file.Name))
		if err := extractFile(file, target); err != nil {
			return extracted, err
		}

		logger.Debug("Extracted native: %s", target)
		extracted = append(extracted, target)
	}

	return extracted, nil
}

func extractFile(file *zip.File, target string) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s in archive: %w", file.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("failed to read %s in archive: %w", file.Name, err)
	}

	if err := utils.AtomicWriteFile(target, content, 0755); err != nil {
		return fmt.Errorf("failed to write native %s: %w", target, err)
	}
	return nil
}

// ShouldExtract checks if an archive entry is a shared library that should be unpacked
func ShouldExtract(name string, isDir bool, ext string, exclude []string) bool {
	if isDir {
		return false
	}

	for _, prefix := range exclude {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}

	return strings.HasSuffix(name, ext)
}
