package ingest

import (
	"context"
	"errors"
	"fmt"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"os"
	"path/filepath"
	"print-vault/fsutil"
	"print-vault/models"
	"print-vault/names"
	"print-vault/settings"
	"strings"
)

var (
	ErrTargetExists          = errors.New("target folder already exists")
	ErrOutsideIngestionRoot  = errors.New("item is not inside the ingestion root")
	ErrSourceMissing         = errors.New("item no longer exists")
	errInvalidCategoryFolder = errors.New("must be a single folder name")
)

type ImportRequest struct {
	Filepath string `json:"filepath"`
	Category string `json:"category"`
	IsFolder bool   `json:"isFolder"`
}

func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Filepath, validation.Required),
		validation.Field(&r.Category, validation.Required, validation.By(isFolderName)),
	)
}

func isFolderName(value any) error {
	name, _ := value.(string)
	trimmed := strings.TrimSpace(name)

	if trimmed == "." || trimmed == ".." || strings.ContainsAny(name, `/\`) || trimmed != name {
		return errInvalidCategoryFolder
	}

	return nil
}

type ImportResult struct {
	Filepath string `json:"filepath"`
	Target   string `json:"target,omitempty"`
	ModelID  uint   `json:"model_id,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// Import files every request into <model root>/<category>/<name>. Each request succeeds or fails
// on its own.
func (s *Service) Import(ctx context.Context, requests []ImportRequest) ([]ImportResult, error) {
	ingestionRoot, err := s.root(ctx, settings.IngestionRoot, ErrIngestionRootNotSet)

	if err != nil {
		return nil, err
	}

	modelRoot, err := s.root(ctx, settings.ModelRoot, ErrModelRootNotSet)

	if err != nil {
		return nil, err
	}

	results := make([]ImportResult, 0, len(requests))

	for _, request := range requests {
		result := ImportResult{Filepath: request.Filepath}
		target, modelID, err := s.importOne(ctx, ingestionRoot, modelRoot, request)

		if err != nil {
			s.log.Warnw("import failed", "path", request.Filepath, "category", request.Category, "error", err)
			result.Error = err.Error()
		} else {
			s.log.Infow("imported", "path", request.Filepath, "target", target)
			result.Target = target
			result.ModelID = modelID
			result.Success = true
		}

		results = append(results, result)
	}

	return results, nil
}

func (s *Service) importOne(ctx context.Context, ingestionRoot, modelRoot string, request ImportRequest) (string, uint, error) {
	if err := request.Validate(); err != nil {
		return "", 0, err
	}

	source, err := filepath.Abs(request.Filepath)

	if err != nil {
		return "", 0, err
	}

	if source == ingestionRoot || !fsutil.IsWithin(ingestionRoot, source) {
		return "", 0, ErrOutsideIngestionRoot
	}

	info, err := os.Stat(source)

	if err != nil {
		return "", 0, fmt.Errorf("%w: %s", ErrSourceMissing, source)
	}

	isFolder := info.IsDir()
	name := filepath.Base(source)

	if isFolder != request.IsFolder {
		s.log.Debugw("import request folder flag does not match disk", "path", source, "is_folder", isFolder)
	}

	if !isFolder {
		name = names.CleanupFolderName(name)
	}

	target := filepath.Join(modelRoot, request.Category, name)

	if fsutil.Exists(target) {
		return "", 0, fmt.Errorf("%w: %s", ErrTargetExists, target)
	}

	if isFolder {
		err = fsutil.MoveDir(source, target)
	} else {
		err = fsutil.MoveFile(source, filepath.Join(target, filepath.Base(source)))
	}

	if err != nil {
		return "", 0, err
	}

	if _, err := s.scanner.ScanFolder(ctx, modelRoot, target); err != nil {
		return target, 0, fmt.Errorf("moved to %s but indexing failed: %w", target, err)
	}

	if err := s.hints.Record(ctx, request.Category, s.fuzzy.Tokenize(name)); err != nil {
		s.log.Warnw("could not record categorization hints", "path", target, "error", err)
	}

	s.tagger.SetTags(ctx, target, []string{request.Category})

	if err := fsutil.RemoveEmptyParents(source, ingestionRoot); err != nil {
		s.log.Warnw("could not clean up ingestion folder", "path", source, "error", err)
	}

	var model models.Model
	result := s.db.WithContext(ctx).Where(&models.Model{Filepath: target}).Limit(1).Find(&model)

	if result.Error != nil {
		return target, 0, result.Error
	}

	return target, model.ID, nil
}
