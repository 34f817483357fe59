package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

func IsDir(path string) bool {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return true
	}

	return false
}

func IsFile(path string) bool {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return true
	}

	return false
}

func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsHidden reports dot-files and dot-directories.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// RelativeSegments splits the path of target below root, e.g. ["Toys", "Dragon", "dragon.stl"].
func RelativeSegments(root, target string) []string {
	relativePath, err := filepath.Rel(root, target)

	if err != nil || relativePath == "." {
		return nil
	}

	return strings.Split(filepath.ToSlash(relativePath), "/")
}

// IsWithin reports whether target is root or lies below it.
func IsWithin(root, target string) bool {
	relativePath, err := filepath.Rel(root, target)

	if err != nil {
		return false
	}

	return relativePath == "." || (relativePath != ".." && !strings.HasPrefix(relativePath, ".."+string(filepath.Separator)))
}
