// Package scanner indexes a model root into the database and keeps the index in step with disk.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"path/filepath"
	"print-vault/fsutil"
	"print-vault/preview"
	"sync"
	"time"
)

var (
	ErrScanInProgress    = errors.New("a scan is already in progress")
	ErrInvalidRoot       = errors.New("scan root is not a directory")
	ErrInvalidMode       = errors.New("unknown scan mode")
	ErrFolderOutsideRoot = errors.New("folder is not inside the model root")
)

type Mode string

const (
	// ModeFull rebuilds file, asset and loose file rows from disk. Model IDs are kept.
	ModeFull Mode = "full"
	// ModeFullSync reconciles with disk, keeping the primary and hidden flags on assets.
	ModeFullSync Mode = "full_sync"
	// ModeAddOnly inserts folders that are not indexed yet and leaves everything else alone.
	ModeAddOnly Mode = "add_only"
)

func ParseMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case "":
		return ModeFull, nil
	case ModeFull, ModeFullSync, ModeAddOnly:
		return mode, nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidMode, value)
}

type Options struct {
	FolderNamesToIgnore         []string
	FileNamesToIgnore           []string
	MaxConcurrentFileOperations int64
	MaxPreviewWidth             int
}

type Progress struct {
	Scanning        bool       `json:"scanning"`
	Mode            Mode       `json:"mode,omitempty"`
	Root            string     `json:"root,omitempty"`
	FilesSeen       int64      `json:"files_seen"`
	FilesProcessed  int64      `json:"files_processed"`
	ModelsFound     int64      `json:"models_found"`
	ModelFilesFound int64      `json:"model_files_found"`
	AssetsFound     int64      `json:"assets_found"`
	LooseFilesFound int64      `json:"loose_files_found"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}

type Result struct {
	ModelsAdded   int64
	ModelsUpdated int64
	ModelsSkipped int64
	ModelsRemoved int64
	LooseFiles    int64
	Previews      int64
	Duration      time.Duration
}

type Scanner struct {
	db        *gorm.DB
	options   Options
	log       *zap.SugaredLogger
	extractor *preview.Extractor

	mutex    sync.Mutex
	progress Progress

	// held while rows are written, shared by full scans and single folder scans
	indexMutex sync.Mutex

	indexBatchSize int
	batchCommitted func()
}

func New(db *gorm.DB, options Options, log *zap.SugaredLogger) *Scanner {
	return &Scanner{
		db:        db,
		options:   options,
		log:       log,
		extractor: preview.NewExtractor(options.MaxPreviewWidth, log),

		indexBatchSize: batchSize,
	}
}

// Scan indexes root and returns when it is done.
func (s *Scanner) Scan(ctx context.Context, root string, mode Mode) (Result, error) {
	absoluteRoot, err := s.begin(root, mode)

	if err != nil {
		return Result{}, err
	}

	return s.run(ctx, absoluteRoot, mode)
}

// Start validates the request and then scans in the background. Poll Status for progress.
func (s *Scanner) Start(ctx context.Context, root string, mode Mode) error {
	absoluteRoot, err := s.begin(root, mode)

	if err != nil {
		return err
	}

	go func() {
		_, _ = s.run(ctx, absoluteRoot, mode)
	}()

	return nil
}

// Sync runs a reconciling scan. This is what the watcher calls.
func (s *Scanner) Sync(ctx context.Context, root string) error {
	_, err := s.Scan(ctx, root, ModeFullSync)
	return err
}

func (s *Scanner) IsScanning() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.progress.Scanning
}

func (s *Scanner) Status() Progress {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.progress
}

// ScanFolder indexes one folder below root, e.g. right after an import moved it there.
func (s *Scanner) ScanFolder(ctx context.Context, root, folder string) (Result, error) {
	absoluteRoot, err := filepath.Abs(root)

	if err != nil || !fsutil.IsDir(absoluteRoot) {
		return Result{}, ErrInvalidRoot
	}

	absoluteFolder, err := filepath.Abs(folder)

	if err != nil || !fsutil.IsDir(absoluteFolder) {
		return Result{}, fmt.Errorf("%w: %s", ErrInvalidRoot, folder)
	}

	if !fsutil.IsWithin(absoluteRoot, absoluteFolder) {
		return Result{}, ErrFolderOutsideRoot
	}

	startTime := time.Now()
	walked, err := s.walk(ctx, absoluteRoot, absoluteFolder)

	if err != nil {
		return Result{}, err
	}

	result, err := s.index(ctx, absoluteFolder, ModeFullSync, walked)
	result.Duration = time.Since(startTime)
	return result, err
}

func (s *Scanner) begin(root string, mode Mode) (string, error) {
	if _, err := ParseMode(string(mode)); err != nil || mode == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	if root == "" {
		return "", ErrInvalidRoot
	}

	absoluteRoot, err := filepath.Abs(root)

	if err != nil || !fsutil.IsDir(absoluteRoot) {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.progress.Scanning {
		return "", ErrScanInProgress
	}

	now := time.Now()
	s.progress = Progress{
		Scanning:  true,
		Mode:      mode,
		Root:      absoluteRoot,
		StartedAt: &now,
	}

	return absoluteRoot, nil
}

func (s *Scanner) run(ctx context.Context, root string, mode Mode) (Result, error) {
	startTime := time.Now()
	s.log.Infow("scan started", "root", root, "mode", mode)

	walked, err := s.walk(ctx, root, root)
	var result Result

	if err == nil {
		result, err = s.index(ctx, root, mode, walked)
	}

	result.Duration = time.Since(startTime)
	s.finish(err)

	if err != nil {
		s.log.Errorw("scan failed", "root", root, "mode", mode, "error", err)
		return result, err
	}

	s.log.Infow("scan finished",
		"root", root,
		"mode", mode,
		"added", result.ModelsAdded,
		"updated", result.ModelsUpdated,
		"removed", result.ModelsRemoved,
		"loose", result.LooseFiles,
		"previews", result.Previews,
		"duration", result.Duration,
	)

	return result, nil
}

func (s *Scanner) finish(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	s.progress.Scanning = false
	s.progress.FinishedAt = &now

	if err != nil {
		s.progress.LastError = err.Error()
	}
}

func (s *Scanner) update(fn func(progress *Progress)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	fn(&s.progress)
}
