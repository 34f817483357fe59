package catalog

import (
	"context"
	"gorm.io/gorm"
	"print-vault/models"
)

func (c *Catalog) asset(tx *gorm.DB, assetID uint) (models.ModelAsset, error) {
	var asset models.ModelAsset
	err := tx.First(&asset, assetID).Error
	return asset, notFound(err, "asset", assetID)
}

// SetPrimary makes assetID the model's only primary image.
func (c *Catalog) SetPrimary(ctx context.Context, assetID uint) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asset, err := c.asset(tx, assetID)

		if err != nil {
			return err
		}

		if asset.AssetType != models.AssetTypeImage {
			return ErrNotAnImage
		}

		if asset.IsHidden {
			return ErrHiddenAsset
		}

		return makePrimary(tx, asset)
	})
}

func makePrimary(tx *gorm.DB, asset models.ModelAsset) error {
	err := tx.Model(&models.ModelAsset{}).
		Where("model_id = ? AND id <> ?", asset.ModelID, asset.ID).
		Update("is_primary", false).Error

	if err != nil {
		return err
	}

	return tx.Model(&asset).Update("is_primary", true).Error
}

// SetHidden hides or shows an asset in the gallery. Hiding the primary image hands primary to the
// next visible image, and is refused when there is none.
func (c *Catalog) SetHidden(ctx context.Context, assetID uint, hidden bool) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asset, err := c.asset(tx, assetID)

		if err != nil {
			return err
		}

		if asset.IsHidden == hidden {
			return nil
		}

		if !hidden {
			if err := tx.Model(&asset).Update("is_hidden", false).Error; err != nil {
				return err
			}

			return promoteIfNoPrimary(tx, asset.ModelID)
		}

		if asset.IsPrimary && asset.AssetType == models.AssetTypeImage {
			var next models.ModelAsset
			result := tx.Where("model_id = ? AND id <> ? AND asset_type = ? AND is_hidden = ?", asset.ModelID, asset.ID, models.AssetTypeImage, false).
				Order("is_extracted, filepath").
				Limit(1).
				Find(&next)

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				return ErrSolePrimaryImage
			}

			if err := makePrimary(tx, next); err != nil {
				return err
			}
		}

		return tx.Model(&asset).Updates(map[string]any{"is_hidden": true, "is_primary": false}).Error
	})
}

func promoteIfNoPrimary(tx *gorm.DB, modelID uint) error {
	var primaries int64
	err := tx.Model(&models.ModelAsset{}).
		Where("model_id = ? AND is_primary = ? AND is_hidden = ?", modelID, true, false).
		Count(&primaries).Error

	if err != nil || primaries > 0 {
		return err
	}

	var first models.ModelAsset
	result := tx.Where("model_id = ? AND asset_type = ? AND is_hidden = ?", modelID, models.AssetTypeImage, false).
		Order("is_extracted, filepath").
		Limit(1).
		Find(&first)

	if result.Error != nil || result.RowsAffected == 0 {
		return result.Error
	}

	return makePrimary(tx, first)
}
