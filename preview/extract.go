// Package preview pulls a representative image out of the archives inside a model folder.
package preview

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	ExtractedPrefix = "_extracted_"

	// Larger entries are not previews
	maxEntrySize = 64 << 20
)

var ErrNoPreview = errors.New("no preview image found in archives")

type Candidate struct {
	Path    string
	Kind    Kind
	ModTime time.Time
}

// Candidates lists the folder's .3mf archives and then its photo zips, oldest first within each.
func Candidates(dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, err
	}

	var candidates []Candidate

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		var kind Kind

		switch {
		case strings.EqualFold(filepath.Ext(entry.Name()), ".3mf"):
			kind = ThreeMF
		case IsPhotoZip(entry.Name()):
			kind = PhotoZip
		default:
			continue
		}

		info, err := entry.Info()

		if err != nil {
			continue
		}

		candidates = append(candidates, Candidate{
			Path:    filepath.Join(dir, entry.Name()),
			Kind:    kind,
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Kind != candidates[j].Kind {
			return candidates[i].Kind < candidates[j].Kind
		}

		if !candidates[i].ModTime.Equal(candidates[j].ModTime) {
			return candidates[i].ModTime.Before(candidates[j].ModTime)
		}

		return candidates[i].Path < candidates[j].Path
	})

	return candidates, nil
}

type Extractor struct {
	maxWidth int
	log      *zap.SugaredLogger
}

// NewExtractor builds an extractor that downscales previews wider than maxWidth (0 disables).
func NewExtractor(maxWidth int, log *zap.SugaredLogger) *Extractor {
	return &Extractor{maxWidth: maxWidth, log: log}
}

// ExtractBest writes the best preview found across the folder's candidate archives and returns
// its path. A broken archive is skipped in favour of the next one.
func (x *Extractor) ExtractBest(dir string) (string, error) {
	candidates, err := Candidates(dir)

	if err != nil {
		return "", err
	}

	for _, candidate := range candidates {
		extractedPath, err := x.extractFrom(candidate)

		if err != nil {
			x.log.Warnw("could not extract preview", "archive", candidate.Path, "error", err)
			continue
		}

		if extractedPath != "" {
			return extractedPath, nil
		}
	}

	return "", ErrNoPreview
}

func (x *Extractor) extractFrom(candidate Candidate) (string, error) {
	archive, err := Open(candidate.Path)

	if err != nil {
		return "", err
	}

	defer archive.Close()

	entry, found := bestEntry(candidate.Kind, archive)

	if !found {
		return "", nil
	}

	archiveBase := strings.TrimSuffix(filepath.Base(candidate.Path), filepath.Ext(candidate.Path))
	destination := filepath.Join(filepath.Dir(candidate.Path), ExtractedPrefix+archiveBase+entry.Ext())

	if _, err := os.Stat(destination); err == nil {
		return destination, nil
	}

	if entry.Size > maxEntrySize {
		return "", fmt.Errorf("entry %q is too large (%d bytes)", entry.Name, entry.Size)
	}

	data, err := readEntry(entry)

	if err != nil {
		return "", err
	}

	data = x.downscale(data, entry.Ext())

	temporary := destination + ".tmp"

	if err = os.WriteFile(temporary, data, 0600); err != nil {
		return "", err
	}

	if err = os.Rename(temporary, destination); err != nil {
		_ = os.Remove(temporary)
		return "", err
	}

	x.log.Debugw("extracted preview", "archive", candidate.Path, "entry", entry.Name, "destination", destination)
	return destination, nil
}

func readEntry(entry Entry) ([]byte, error) {
	reader, err := entry.Open()

	if err != nil {
		return nil, err
	}

	defer reader.Close()

	return io.ReadAll(io.LimitReader(reader, maxEntrySize))
}

// downscale keeps the original bytes whenever the image cannot be decoded or is small enough.
func (x *Extractor) downscale(data []byte, ext string) []byte {
	if x.maxWidth <= 0 || (ext != ".png" && ext != ".jpg" && ext != ".jpeg") {
		return data
	}

	img, format, err := image.Decode(bytes.NewReader(data))

	if err != nil || img.Bounds().Dx() <= x.maxWidth {
		return data
	}

	resized := resize.Resize(uint(x.maxWidth), 0, img, resize.Lanczos3)

	var buf bytes.Buffer

	if format == "png" {
		err = png.Encode(&buf, resized)
	} else {
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85})
	}

	if err != nil {
		x.log.Warnw("could not downscale preview", "error", err)
		return data
	}

	return buf.Bytes()
}
