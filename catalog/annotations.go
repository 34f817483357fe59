package catalog

import (
	"context"
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"print-vault/models"
	"strings"
	"time"
)

func (c *Catalog) model(tx *gorm.DB, modelID uint) (models.Model, error) {
	var model models.Model
	err := tx.First(&model, modelID).Error
	return model, notFound(err, "model", modelID)
}

// ToggleFavorite flips the favorite flag and returns the new state.
func (c *Catalog) ToggleFavorite(ctx context.Context, modelID uint) (bool, error) {
	favorited := false

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := c.model(tx, modelID); err != nil {
			return err
		}

		result := tx.Where("model_id = ?", modelID).Delete(&models.Favorite{})

		if result.Error != nil || result.RowsAffected > 0 {
			return result.Error
		}

		favorited = true
		return tx.Create(&models.Favorite{ModelID: modelID}).Error
	})

	return favorited, err
}

// Enqueue appends a model to the print queue. Queuing a queued model is a no-op.
func (c *Catalog) Enqueue(ctx context.Context, modelID uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := c.model(tx, modelID); err != nil {
			return err
		}

		var last int
		err := tx.Model(&models.PrintQueue{}).Select("COALESCE(MAX(position), 0)").Scan(&last).Error

		if err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.PrintQueue{ModelID: modelID, Position: last + 1}).Error
	})
}

func (c *Catalog) Dequeue(ctx context.Context, modelID uint) error {
	return c.db.WithContext(ctx).Where("model_id = ?", modelID).Delete(&models.PrintQueue{}).Error
}

func (c *Catalog) Queue(ctx context.Context) ([]models.PrintQueue, error) {
	var queue []models.PrintQueue
	err := c.db.WithContext(ctx).Preload("Model").Order("position").Find(&queue).Error
	return queue, err
}

// MarkPrinted records a print and takes the model off the queue.
func (c *Catalog) MarkPrinted(ctx context.Context, modelID uint, rating int, notes string) (models.PrintedModel, error) {
	printed := models.PrintedModel{
		ModelID:   modelID,
		Rating:    min(max(rating, 0), 5),
		Notes:     notes,
		PrintedAt: time.Now(),
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := c.model(tx, modelID); err != nil {
			return err
		}

		if err := tx.Create(&printed).Error; err != nil {
			return err
		}

		return tx.Where("model_id = ?", modelID).Delete(&models.PrintQueue{}).Error
	})

	return printed, err
}

func (c *Catalog) AddTag(ctx context.Context, modelID uint, name string) (models.Tag, error) {
	tag := models.Tag{Name: strings.TrimSpace(name)}

	if tag.Name == "" {
		return tag, errors.New("tag name is empty")
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := c.model(tx, modelID); err != nil {
			return err
		}

		if err := tx.Where(&models.Tag{Name: tag.Name}).FirstOrCreate(&tag).Error; err != nil {
			return err
		}

		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.ModelTag{ModelID: modelID, TagID: tag.ID}).Error
	})

	return tag, err
}

func (c *Catalog) RemoveTag(ctx context.Context, modelID, tagID uint) error {
	return c.db.WithContext(ctx).Where("model_id = ? AND tag_id = ?", modelID, tagID).Delete(&models.ModelTag{}).Error
}
