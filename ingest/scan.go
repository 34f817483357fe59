package ingest

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"print-vault/docmeta"
	"print-vault/fileclass"
	"print-vault/fsutil"
	"print-vault/names"
	"print-vault/settings"
	"print-vault/suggest"
	"print-vault/utils"
	"strings"
)

const (
	maxDocumentsPerItem = 3
	readmeExcerptLimit  = 2000
)

// Item is one folder or loose file waiting in the ingestion root.
type Item struct {
	Name       string             `json:"name"`
	Filepath   string             `json:"filepath"`
	IsFolder   bool               `json:"isFolder"`
	ModelFiles []string           `json:"model_files"`
	Size       int64              `json:"size"`
	Designer   string             `json:"designer,omitempty"`
	Tags       []string           `json:"tags,omitempty"`
	License    string             `json:"license,omitempty"`
	SourceURL  string             `json:"source_url,omitempty"`
	Text       string             `json:"-"`
	Readme     string             `json:"readme,omitempty"`
	Suggestion suggest.Suggestion `json:"suggestion"`
}

func (i Item) Input() suggest.Input {
	return suggest.Input{
		Name:      i.Name,
		Filenames: i.ModelFiles,
		Tags:      i.Tags,
		Designer:  i.Designer,
		Text:      i.Text,
		Readme:    i.Readme,
	}
}

// Scan lists the ingestion root and attaches a fuzzy suggestion to every item.
func (s *Service) Scan(ctx context.Context) ([]Item, error) {
	root, err := s.root(ctx, settings.IngestionRoot, ErrIngestionRootNotSet)

	if err != nil {
		return nil, err
	}

	categories, err := s.Categories(ctx)

	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)

	if err != nil {
		return nil, err
	}

	var items []Item

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if fsutil.IsHidden(entry.Name()) {
			continue
		}

		entryPath := filepath.Join(root, entry.Name())
		var item Item
		var found bool

		if entry.IsDir() {
			if utils.IsInArray(entry.Name(), s.options.FolderNamesToIgnore) {
				continue
			}

			item, found = s.scanFolder(entryPath)
		} else {
			if utils.IsInArray(entry.Name(), s.options.FileNamesToIgnore) {
				continue
			}

			item, found = scanFile(entryPath)
		}

		if !found {
			continue
		}

		item.Suggestion = s.fuzzy.Suggest(ctx, item.Input(), categories)
		items = append(items, item)
	}

	return items, nil
}

func scanFile(path string) (Item, bool) {
	if !fileclass.IsModelOrArchive(path) {
		return Item{}, false
	}

	info, err := os.Stat(path)

	if err != nil {
		return Item{}, false
	}

	return Item{
		Name:       names.CleanupFolderName(filepath.Base(path)),
		Filepath:   path,
		ModelFiles: []string{filepath.Base(path)},
		Size:       info.Size(),
	}, true
}

// scanFolder gathers a folder's model files, up to a few PDFs and its readme. Folders without
// any model file are not items.
func (s *Service) scanFolder(dir string) (Item, bool) {
	item := Item{
		Name:     names.CleanupFolderName(filepath.Base(dir)),
		Filepath: dir,
		IsFolder: true,
	}

	var documents []string

	err := filepath.WalkDir(dir, func(thisPath string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warnw("skipping unreadable entry", "path", thisPath, "error", err)
			return nil
		}

		if thisPath != dir && fsutil.IsHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		switch {
		case fileclass.IsModelOrArchive(thisPath):
			item.ModelFiles = append(item.ModelFiles, d.Name())

			if info, err := d.Info(); err == nil {
				item.Size += info.Size()
			}
		case fileclass.IsDocument(thisPath):
			documents = append(documents, thisPath)
		case item.Readme == "" && isReadme(d.Name()):
			item.Readme = readExcerpt(thisPath)
		}

		return nil
	})

	if err != nil || len(item.ModelFiles) == 0 {
		return Item{}, false
	}

	s.describeDocuments(&item, documents)
	return item, true
}

func (s *Service) describeDocuments(item *Item, documents []string) {
	var texts []string
	seenTags := map[string]bool{}

	for i, document := range documents {
		if i == maxDocumentsPerItem {
			break
		}

		metadata, err := docmeta.Describe(document)

		if err != nil {
			s.log.Debugw("could not fully read document", "path", document, "error", err)
		}

		if item.Designer == "" {
			item.Designer = metadata.Designer
		}

		if item.License == "" {
			item.License = metadata.License
		}

		if item.SourceURL == "" {
			item.SourceURL = metadata.SourceURL
		}

		for _, tag := range metadata.Tags {
			if !seenTags[strings.ToLower(tag)] {
				seenTags[strings.ToLower(tag)] = true
				item.Tags = append(item.Tags, tag)
			}
		}

		if metadata.Text != "" {
			texts = append(texts, metadata.Text)
		}
	}

	item.Text = strings.Join(texts, "\n")
}

func isReadme(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "readme") && (strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".md"))
}

func readExcerpt(path string) string {
	data, err := os.ReadFile(filepath.Clean(path))

	if err != nil {
		return ""
	}

	if runes := []rune(string(data)); len(runes) > readmeExcerptLimit {
		return string(runes[:readmeExcerptLimit])
	}

	return string(data)
}
