package scanner

import (
	"context"
	"github.com/djherbis/times"
	"io/fs"
	"os"
	"path/filepath"
	"print-vault/fileclass"
	"print-vault/fsutil"
	"print-vault/utils"
	"time"
)

// Model files this close to the root are loose files, not model folders.
const looseFileMaxDepth = 2

type scannedFile struct {
	path      string
	name      string
	size      int64
	modTime   time.Time
	birthTime time.Time
}

type looseFile struct {
	scannedFile
	category string
}

type folder struct {
	path              string
	segments          []string
	files             []scannedFile
	earliestModTime   time.Time
	earliestBirthTime time.Time
}

func (f *folder) add(file scannedFile) {
	f.files = append(f.files, file)

	if f.earliestModTime.IsZero() || file.modTime.Before(f.earliestModTime) {
		f.earliestModTime = file.modTime
	}

	if f.earliestBirthTime.IsZero() || file.birthTime.Before(f.earliestBirthTime) {
		f.earliestBirthTime = file.birthTime
	}
}

type walkResult struct {
	folders   map[string]*folder
	loose     []looseFile
	startedAt time.Time
}

// walk collects the model files below start. Depths are measured from root.
func (s *Scanner) walk(ctx context.Context, root, start string) (*walkResult, error) {
	result := &walkResult{folders: map[string]*folder{}, startedAt: time.Now()}

	err := filepath.WalkDir(start, func(thisPath string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if thisPath == start {
				return err
			}

			s.log.Warnw("skipping unreadable entry", "path", thisPath, "error", err)
			return nil
		}

		if d.IsDir() {
			if thisPath == start {
				return nil
			}

			if fsutil.IsHidden(d.Name()) || utils.IsInArray(d.Name(), s.options.FolderNamesToIgnore) {
				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() || fsutil.IsHidden(d.Name()) || utils.IsInArray(d.Name(), s.options.FileNamesToIgnore) {
			return nil
		}

		s.update(func(p *Progress) { p.FilesSeen++ })

		if !fileclass.IsModelOrArchive(d.Name()) {
			return nil
		}

		file, err := statFile(thisPath)

		if err != nil {
			s.log.Warnw("skipping unreadable file", "path", thisPath, "error", err)
			return nil
		}

		segments := fsutil.RelativeSegments(root, thisPath)

		if len(segments) <= looseFileMaxDepth {
			result.loose = append(result.loose, looseFile{scannedFile: file, category: looseCategory(segments)})
			s.update(func(p *Progress) { p.LooseFilesFound++ })
			return nil
		}

		dir := filepath.Dir(thisPath)
		f, found := result.folders[dir]

		if !found {
			f = &folder{path: dir, segments: segments[:len(segments)-1]}
			result.folders[dir] = f
			s.update(func(p *Progress) { p.ModelsFound++ })
		}

		f.add(file)
		s.update(func(p *Progress) { p.ModelFilesFound++ })
		return nil
	})

	return result, err
}

func statFile(path string) (scannedFile, error) {
	info, err := os.Stat(path)

	if err != nil {
		return scannedFile{}, err
	}

	file := scannedFile{
		path:      path,
		name:      info.Name(),
		size:      info.Size(),
		modTime:   info.ModTime(),
		birthTime: info.ModTime(),
	}

	if timespec := times.Get(info); timespec.HasBirthTime() {
		file.birthTime = timespec.BirthTime()
	}

	return file, nil
}

func looseCategory(segments []string) string {
	if len(segments) < 2 {
		return ""
	}

	return segments[0]
}
