// Package catalog holds the user's annotations on indexed models: favorites, the print queue,
// print history, tags, gallery flags and organizing loose files.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"print-vault/scanner"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrSolePrimaryImage = errors.New("cannot hide the only visible primary image")
	ErrNotAnImage       = errors.New("only images can be the primary asset")
	ErrHiddenAsset      = errors.New("a hidden asset cannot be the primary image")
	ErrTargetExists     = errors.New("target folder already exists")
	ErrCategoryRequired = errors.New("a category is needed to organize a file in the model root")
	ErrModelRootNotSet  = errors.New("model root is not set")
)

type Settings interface {
	Get(ctx context.Context, key string) (string, error)
}

type Catalog struct {
	db       *gorm.DB
	settings Settings
	scanner  *scanner.Scanner
	log      *zap.SugaredLogger
}

func New(db *gorm.DB, settings Settings, scanner *scanner.Scanner, log *zap.SugaredLogger) *Catalog {
	return &Catalog{db: db, settings: settings, scanner: scanner, log: log}
}

func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}

	return err
}
