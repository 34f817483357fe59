package fsutil

import (
	"os"
	"path/filepath"
)

// ClearEmptyFolders removes every empty folder below root, repeating until none are left.
// root itself is kept.
func ClearEmptyFolders(root string) error {
	for {
		foldersDeleted := 0

		err := filepath.Walk(root, func(currentPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.IsDir() || currentPath == root {
				return nil
			}

			removed, err := removeDirectoryIfEmpty(currentPath)

			if err != nil {
				return err
			}

			if removed {
				foldersDeleted++
				return filepath.SkipDir
			}

			return nil
		})

		if err != nil {
			return err
		}

		if foldersDeleted == 0 {
			return nil
		}
	}
}

// RemoveEmptyParents walks up from the parent of path removing empty folders until stopAt.
func RemoveEmptyParents(path, stopAt string) error {
	current := filepath.Dir(path)

	for current != stopAt && IsWithin(stopAt, current) {
		removed, err := removeDirectoryIfEmpty(current)

		if err != nil || !removed {
			return err
		}

		current = filepath.Dir(current)
	}

	return nil
}

func removeDirectoryIfEmpty(currentPath string) (bool, error) {
	entries, err := os.ReadDir(currentPath)

	if err != nil {
		return false, err
	}

	if len(entries) == 0 {
		return true, os.Remove(currentPath)
	}

	return false, nil
}
