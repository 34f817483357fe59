package preview

import (
	"archive/zip"
	"io"
	"iter"
	"path"
	"path/filepath"
	"strings"
)

// Entry is one member of an opened archive. Its bytes are only read through Open.
type Entry struct {
	Name string
	Size uint64
	file *zip.File
}

func (e Entry) Open() (io.ReadCloser, error) {
	return e.file.Open()
}

// BaseName is the lower case file name of the entry without its folders.
func (e Entry) BaseName() string {
	return strings.ToLower(path.Base(e.Name))
}

func (e Entry) Ext() string {
	return strings.ToLower(filepath.Ext(e.Name))
}

// Archive is a zip container (.zip or .3mf) whose central directory has been read once.
type Archive struct {
	reader  *zip.ReadCloser
	entries []Entry
}

func Open(archivePath string) (*Archive, error) {
	reader, err := zip.OpenReader(archivePath)

	if err != nil {
		return nil, err
	}

	archive := &Archive{reader: reader}

	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}

		archive.entries = append(archive.entries, Entry{
			Name: f.Name,
			Size: f.UncompressedSize64,
			file: f,
		})
	}

	return archive, nil
}

// Entries yields the archive's files in directory order.
func (a *Archive) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, entry := range a.entries {
			if !yield(entry) {
				return
			}
		}
	}
}

func (a *Archive) Close() error {
	return a.reader.Close()
}
