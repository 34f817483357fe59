// Package ingest stages new downloads: it lists what is waiting, suggests categories and files
// items into the model root.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"os"
	"print-vault/finder"
	"print-vault/fsutil"
	"print-vault/models"
	"print-vault/scanner"
	"print-vault/settings"
	"print-vault/suggest"
	"sort"
)

const apiKeyEnvironmentVariable = "LLM_API_KEY"

var (
	ErrIngestionRootNotSet = errors.New("ingestion root is not set")
	ErrModelRootNotSet     = errors.New("model root is not set")
	ErrRootMissing         = errors.New("configured folder does not exist")
)

type Settings interface {
	Get(ctx context.Context, key string) (string, error)
}

type Options struct {
	LLMProvider         string
	LLMModel            string
	LLMBaseURL          string
	FileNamesToIgnore   []string
	FolderNamesToIgnore []string
}

type Service struct {
	db          *gorm.DB
	settings    Settings
	scanner     *scanner.Scanner
	fuzzy       *suggest.Fuzzy
	hints       suggest.HintStore
	categorizer *suggest.Categorizer
	tagger      finder.Tagger
	options     Options
	log         *zap.SugaredLogger
}

type Dependencies struct {
	DB          *gorm.DB
	Settings    Settings
	Scanner     *scanner.Scanner
	Fuzzy       *suggest.Fuzzy
	Hints       suggest.HintStore
	Categorizer *suggest.Categorizer
	Tagger      finder.Tagger
	Log         *zap.SugaredLogger
}

func NewService(deps Dependencies, options Options) *Service {
	tagger := deps.Tagger

	if tagger == nil {
		tagger = finder.Noop{}
	}

	return &Service{
		db:          deps.DB,
		settings:    deps.Settings,
		scanner:     deps.Scanner,
		fuzzy:       deps.Fuzzy,
		hints:       deps.Hints,
		categorizer: deps.Categorizer,
		tagger:      tagger,
		options:     options,
		log:         deps.Log,
	}
}

// Categories lists the categories already used in the library, excluding the Paid and
// Original Creations trees which are organised by designer instead.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	result := s.db.WithContext(ctx).Model(&models.Model{}).Distinct().Where("category <> ''").Pluck("category", &categories)

	if result.Error != nil {
		return nil, result.Error
	}

	seen := map[string]bool{}

	for _, category := range categories {
		seen[category] = true
	}

	if modelRoot, err := s.settings.Get(ctx, settings.ModelRoot); err == nil && modelRoot != "" {
		if entries, err := os.ReadDir(modelRoot); err == nil {
			for _, entry := range entries {
				if entry.IsDir() && !seen[entry.Name()] && !fsutil.IsHidden(entry.Name()) {
					seen[entry.Name()] = true
				}
			}
		}
	}

	delete(seen, scanner.PaidSegment)
	delete(seen, scanner.OriginalCreationsSegment)

	categories = categories[:0]

	for category := range seen {
		categories = append(categories, category)
	}

	sort.Strings(categories)
	return categories, nil
}

func (s *Service) root(ctx context.Context, key string, notSet error) (string, error) {
	root, err := s.settings.Get(ctx, key)

	if err != nil {
		return "", err
	}

	if root == "" {
		return "", notSet
	}

	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootMissing, root)
	}

	return root, nil
}
