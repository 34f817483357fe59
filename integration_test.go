package main

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"print-vault/fsutil"
	"print-vault/models"
	"testing"
)

func TestIntegration(t *testing.T) {
	ctx := newTestContext(t)
	modelRoot, ingestionRoot := createTempLibrary(t)

	require.NoError(t, ctx.runCommand("set_root", []string{"model", modelRoot}))
	require.NoError(t, ctx.runCommand("set_root", []string{"ingestion", ingestionRoot}))

	err := ctx.runCommand("scan", nil)
	require.NoError(t, err)

	var modelCount, looseCount int64
	require.NoError(t, ctx.DB.Model(&models.Model{}).Count(&modelCount).Error)
	require.NoError(t, ctx.DB.Model(&models.LooseFile{}).Count(&looseCount).Error)
	assert.Equal(t, int64(2), modelCount)
	assert.Equal(t, int64(1), looseCount)

	summary, err := ctx.GetCategorySummary()
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, CategorySummary{Category: "Kitchen", ModelCount: 1, FileCount: 1}, summary[0])
	assert.Equal(t, "Toys", summary[1].Category)

	withoutPreview, err := ctx.CountModelsWithoutPreview()
	require.NoError(t, err)
	assert.Equal(t, int64(1), withoutPreview)

	loose, err := ctx.GetLooseFileSummary()
	require.NoError(t, err)
	assert.Equal(t, LooseFileSummary{FileCount: 1, TotalSize: int64(len("solid robot"))}, loose)

	assert.NoError(t, ctx.runCommand("status", nil))
	assert.NoError(t, ctx.runCommand("ingest", nil))

	err = ctx.runCommand("import", []string{filepath.Join(ingestionRoot, "Kitchen_Knife_Block"), "Kitchen"})
	require.NoError(t, err)
	assert.False(t, fsutil.Exists(filepath.Join(ingestionRoot, "Kitchen_Knife_Block")))

	require.NoError(t, ctx.DB.Model(&models.Model{}).Count(&modelCount).Error)
	assert.Equal(t, int64(3), modelCount)

	err = ctx.runCommand("sync", nil)
	require.NoError(t, err)
	require.NoError(t, ctx.DB.Model(&models.Model{}).Count(&modelCount).Error)
	assert.Equal(t, int64(3), modelCount)

	err = ctx.runCommand("categorize", nil)
	assert.Error(t, err)
}

func TestTidyIngestion(t *testing.T) {
	ctx := newTestContext(t)
	_, ingestionRoot := createTempLibrary(t)

	assert.ErrorIs(t, ctx.TidyIngestion(), ErrCouldNotResolvePath)

	require.NoError(t, ctx.SetRoot("ingestion", ingestionRoot))
	writeTestFile(t, filepath.Join(ingestionRoot, "Empty", "Nested", ".keep"), "")
	require.NoError(t, os.Remove(filepath.Join(ingestionRoot, "Empty", "Nested", ".keep")))

	require.NoError(t, ctx.TidyIngestion())
	assert.False(t, fsutil.Exists(filepath.Join(ingestionRoot, "Empty")))
	assert.True(t, fsutil.Exists(filepath.Join(ingestionRoot, "Kitchen_Knife_Block")))
}
