package database

import (
	"github.com/stretchr/testify/assert"
	"path/filepath"
	"print-vault/config"
	"print-vault/models"
	"testing"
)

func TestOpenMigratesAllTables(t *testing.T) {
	c := &config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "catalog.db"),
	}

	db, err := Open(c)
	assert.NoError(t, err)

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model))
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle", DBPath: "x"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestDeletingModelCascadesToFavorites(t *testing.T) {
	db := NewTestDB(t)

	model := models.Model{Filename: "Benchy", Filepath: "/root/Boats/Benchy"}
	assert.NoError(t, db.Create(&model).Error)
	assert.NoError(t, db.Create(&models.Favorite{ModelID: model.ID}).Error)

	assert.NoError(t, db.Unscoped().Delete(&models.Model{}, model.ID).Error)

	var count int64
	assert.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.Zero(t, count)
}
