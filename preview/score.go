package preview

import (
	"path/filepath"
	"print-vault/fileclass"
	"regexp"
	"strings"
)

type Kind int

const (
	ThreeMF Kind = iota
	PhotoZip
)

var (
	firstPlatePattern = regexp.MustCompile(`^plate_1(\D|$)`)
	photoZipWords     = []string{"photo", "image", "picture", "pic", "img", "thumbnail", "preview"}
)

// IsPhotoZip reports .zip archives whose name suggests they hold pictures rather than models.
func IsPhotoZip(name string) bool {
	lower := strings.ToLower(filepath.Base(name))

	if filepath.Ext(lower) != ".zip" {
		return false
	}

	for _, word := range photoZipWords {
		if strings.Contains(lower, word) {
			return true
		}
	}

	return false
}

// Score ranks an archive entry as a preview image. Entries scoring 0 are not images.
func Score(kind Kind, entry Entry) int {
	if !fileclass.IsImage(entry.Name) || isJunkEntry(entry.Name) {
		return 0
	}

	name := entry.BaseName()
	lowerPath := strings.ToLower(entry.Name)

	if kind == ThreeMF {
		switch {
		case firstPlatePattern.MatchString(name):
			return 600
		case strings.HasPrefix(name, "plate"):
			return 500
		// pick_N images are object selection masks, not renders
		case strings.HasPrefix(name, "pick"):
			return 10
		case strings.HasPrefix(lowerPath, "metadata/") || strings.HasPrefix(name, "metadata"):
			return 400
		case strings.HasPrefix(name, "thumbnail"):
			return 300
		case strings.HasPrefix(name, "preview"):
			return 200
		default:
			return 100
		}
	}

	switch {
	case strings.Contains(name, "main") || strings.Contains(name, "cover"):
		return 300
	case strings.Contains(name, "thumb") || strings.Contains(name, "preview"):
		return 200
	default:
		return 100
	}
}

func isJunkEntry(name string) bool {
	for _, segment := range strings.Split(name, "/") {
		if segment == "__MACOSX" || strings.HasPrefix(segment, ".") {
			return true
		}
	}

	return false
}

// bestEntry picks the highest scoring image, preferring larger files and then names on ties.
func bestEntry(kind Kind, archive *Archive) (Entry, bool) {
	var best Entry
	bestScore := 0

	for entry := range archive.Entries() {
		score := Score(kind, entry)

		if score == 0 {
			continue
		}

		if score > bestScore ||
			(score == bestScore && entry.Size > best.Size) ||
			(score == bestScore && entry.Size == best.Size && entry.Name < best.Name) {
			best = entry
			bestScore = score
		}
	}

	return best, bestScore > 0
}
