package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"print-vault/fsutil"
	"print-vault/models"
	"print-vault/names"
	"print-vault/settings"
	"strings"
)

// trashFolder sits in the model root. The scanner skips it like every dot-folder.
const trashFolder = ".trash"

func (c *Catalog) looseFile(ctx context.Context, looseID uint) (models.LooseFile, error) {
	var loose models.LooseFile
	err := c.db.WithContext(ctx).First(&loose, looseID).Error
	return loose, notFound(err, "loose file", looseID)
}

func (c *Catalog) modelRoot(ctx context.Context) (string, error) {
	root, err := c.settings.Get(ctx, settings.ModelRoot)

	if err != nil {
		return "", err
	}

	if root == "" {
		return "", ErrModelRootNotSet
	}

	return filepath.Abs(root)
}

// OrganizeLoose moves a loose file into <model root>/<category>/<name>/ and indexes that folder
// as a model. category defaults to the file's current category, name to its cleaned file name.
func (c *Catalog) OrganizeLoose(ctx context.Context, looseID uint, category, name string) (models.Model, error) {
	root, err := c.modelRoot(ctx)

	if err != nil {
		return models.Model{}, err
	}

	loose, err := c.looseFile(ctx, looseID)

	if err != nil {
		return models.Model{}, err
	}

	category = strings.TrimSpace(category)

	if category == "" {
		category = loose.Category
	}

	if category == "" {
		return models.Model{}, ErrCategoryRequired
	}

	name = strings.TrimSpace(name)

	if name == "" {
		name = names.CleanupFolderName(loose.Filename)
	}

	if strings.ContainsAny(category+name, `/\`) {
		return models.Model{}, fmt.Errorf("invalid folder name %q", filepath.Join(category, name))
	}

	target := filepath.Join(root, category, name)

	if fsutil.Exists(target) {
		return models.Model{}, fmt.Errorf("%w: %s", ErrTargetExists, target)
	}

	if err := fsutil.MoveFile(loose.Filepath, filepath.Join(target, loose.Filename)); err != nil {
		return models.Model{}, err
	}

	if err := c.db.WithContext(ctx).Delete(&loose).Error; err != nil {
		return models.Model{}, err
	}

	if _, err := c.scanner.ScanFolder(ctx, root, target); err != nil {
		return models.Model{}, err
	}

	var model models.Model
	err = c.db.WithContext(ctx).Where(&models.Model{Filepath: target}).First(&model).Error
	return model, err
}

// TrashLoose moves a loose file into the model root's trash folder and forgets it.
func (c *Catalog) TrashLoose(ctx context.Context, looseID uint) error {
	root, err := c.modelRoot(ctx)

	if err != nil {
		return err
	}

	loose, err := c.looseFile(ctx, looseID)

	if err != nil {
		return err
	}

	if fsutil.IsFile(loose.Filepath) {
		destination := filepath.Join(root, trashFolder, fmt.Sprintf("%d_%s", loose.ID, loose.Filename))

		if err := fsutil.MoveFile(loose.Filepath, destination); err != nil {
			return err
		}
	} else if _, err := os.Stat(loose.Filepath); err != nil && !os.IsNotExist(err) {
		return err
	}

	return c.db.WithContext(ctx).Delete(&loose).Error
}
