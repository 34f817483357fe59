package scanner

import (
	"archive/zip"
	"context"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"os"
	"path/filepath"
	"print-vault/database"
	"print-vault/models"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func write3MF(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	writer := zip.NewWriter(f)
	entry, err := writer.Create("Metadata/plate_1.png")
	require.NoError(t, err)
	_, err = entry.Write([]byte("plate"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
}

// newLibrary lays out a small model root:
//
//	top.stl                              loose, no category
//	Toys/loose.stl                       loose in Toys
//	Toys/Dragon/dragon.stl + dragon.png  model with an image
//	Paid/Alice/Castle Set (v2)/castle.3mf
//	Original Creations/Widget/widget.obj
//	.cache/Junk/junk.stl                 hidden, ignored
func newLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "top.stl"), "solid")
	writeFile(t, filepath.Join(root, "Toys", "loose.stl"), "solid")
	writeFile(t, filepath.Join(root, "Toys", "Dragon", "dragon.stl"), "solid dragon")
	writeFile(t, filepath.Join(root, "Toys", "Dragon", "dragon.png"), "png")
	writeFile(t, filepath.Join(root, "Toys", "Dragon", "readme.txt"), "read me")
	write3MF(t, filepath.Join(root, "Paid", "Alice", "Castle Set (v2)", "castle.3mf"))
	writeFile(t, filepath.Join(root, "Original Creations", "Widget", "widget.obj"), "o widget")
	writeFile(t, filepath.Join(root, ".cache", "Junk", "junk.stl"), "solid")

	return root
}

func newScanner(t *testing.T) (*Scanner, *gorm.DB) {
	db := database.NewTestDB(t)
	return New(db, Options{MaxConcurrentFileOperations: 2}, zaptest.NewLogger(t).Sugar()), db
}

func findModel(t *testing.T, db *gorm.DB, path string) models.Model {
	t.Helper()

	var model models.Model
	require.NoError(t, db.Preload("Designer").Where(&models.Model{Filepath: path}).First(&model).Error)
	return model
}

func countRows(t *testing.T, db *gorm.DB, table any) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(table).Count(&count).Error)
	return count
}

func TestScanIndexesModelsAndLooseFiles(t *testing.T) {
	root := newLibrary(t)
	s, db := newScanner(t)

	result, err := s.Scan(context.Background(), root, ModeFull)
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.ModelsAdded)
	assert.Equal(t, int64(2), result.LooseFiles)
	assert.Equal(t, int64(1), result.Previews)
	assert.Equal(t, int64(3), countRows(t, db, &models.Model{}))

	dragon := findModel(t, db, filepath.Join(root, "Toys", "Dragon"))
	assert.Equal(t, "Dragon", dragon.Filename)
	assert.Equal(t, "Toys", dragon.Category)
	assert.Equal(t, 1, dragon.FileCount)
	assert.False(t, dragon.IsPaid)
	assert.NotNil(t, dragon.DateAdded)
	assert.NotNil(t, dragon.DateCreated)

	var dragonAssets []models.ModelAsset
	require.NoError(t, db.Where("model_id = ?", dragon.ID).Find(&dragonAssets).Error)
	require.Len(t, dragonAssets, 1)
	assert.True(t, dragonAssets[0].IsPrimary)
	assert.False(t, dragonAssets[0].IsExtracted)

	castle := findModel(t, db, filepath.Join(root, "Paid", "Alice", "Castle Set (v2)"))
	assert.Equal(t, "Castle Set", castle.Filename)
	assert.Equal(t, PaidSegment, castle.Category)
	assert.True(t, castle.IsPaid)
	require.NotNil(t, castle.Designer)
	assert.Equal(t, "Alice", castle.Designer.Name)

	var extracted models.ModelAsset
	require.NoError(t, db.Where("model_id = ?", castle.ID).First(&extracted).Error)
	assert.True(t, extracted.IsExtracted)
	assert.True(t, extracted.IsPrimary)
	assert.Equal(t, filepath.Join(root, "Paid", "Alice", "Castle Set (v2)", "_extracted_castle.png"), extracted.Filepath)

	widget := findModel(t, db, filepath.Join(root, "Original Creations", "Widget"))
	assert.Equal(t, OriginalCreationsSegment, widget.Category)
	assert.True(t, widget.IsOriginal)

	var loose []models.LooseFile
	require.NoError(t, db.Order("filepath").Find(&loose).Error)
	require.Len(t, loose, 2)
	assert.Equal(t, "Toys", loose[0].Category)
	assert.Equal(t, "", loose[1].Category)

	status := s.Status()
	assert.False(t, status.Scanning)
	assert.Equal(t, int64(3), status.ModelsFound)
	assert.Equal(t, int64(3), status.ModelFilesFound)
	assert.Equal(t, int64(2), status.LooseFilesFound)
	assert.NotNil(t, status.FinishedAt)
}

func TestRescanKeepsModelIDsAndAnnotations(t *testing.T) {
	root := newLibrary(t)
	s, db := newScanner(t)

	_, err := s.Scan(context.Background(), root, ModeFull)
	require.NoError(t, err)

	dragon := findModel(t, db, filepath.Join(root, "Toys", "Dragon"))
	require.NoError(t, db.Create(&models.Favorite{ModelID: dragon.ID}).Error)

	for _, mode := range []Mode{ModeFull, ModeFullSync, ModeFull} {
		result, err := s.Scan(context.Background(), root, mode)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.ModelsAdded)
		assert.Equal(t, int64(3), result.ModelsUpdated)
		assert.Equal(t, int64(0), result.ModelsRemoved)
	}

	assert.Equal(t, dragon.ID, findModel(t, db, dragon.Filepath).ID)
	assert.Equal(t, int64(3), countRows(t, db, &models.Model{}))
	assert.Equal(t, int64(3), countRows(t, db, &models.ModelFile{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.LooseFile{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Favorite{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.Designer{}))
}

func TestFullSyncKeepsAssetFlags(t *testing.T) {
	root := newLibrary(t)
	s, db := newScanner(t)
	dragonPath := filepath.Join(root, "Toys", "Dragon")

	_, err := s.Scan(context.Background(), root, ModeFull)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dragonPath, "a_side.png"), "png")
	_, err = s.Scan(context.Background(), root, ModeFullSync)
	require.NoError(t, err)

	var side, front models.ModelAsset
	require.NoError(t, db.Where(&models.ModelAsset{Filepath: filepath.Join(dragonPath, "a_side.png")}).First(&side).Error)
	require.NoError(t, db.Where(&models.ModelAsset{Filepath: filepath.Join(dragonPath, "dragon.png")}).First(&front).Error)
	assert.False(t, side.IsPrimary)
	assert.True(t, front.IsPrimary)

	// The user picks the side view and hides the front
	require.NoError(t, db.Model(&front).Updates(map[string]any{"is_primary": false, "is_hidden": true}).Error)
	require.NoError(t, db.Model(&side).Update("is_primary", true).Error)

	_, err = s.Scan(context.Background(), root, ModeFullSync)
	require.NoError(t, err)

	require.NoError(t, db.First(&side, side.ID).Error)
	require.NoError(t, db.First(&front, front.ID).Error)
	assert.True(t, side.IsPrimary)
	assert.True(t, front.IsHidden)
	assert.False(t, front.IsPrimary)

	// Deleting the primary image promotes the next visible one, never the hidden one
	require.NoError(t, os.Remove(side.Filepath))
	writeFile(t, filepath.Join(dragonPath, "z_top.png"), "png")

	_, err = s.Scan(context.Background(), root, ModeFullSync)
	require.NoError(t, err)

	var primaries []models.ModelAsset
	require.NoError(t, db.Where("model_id = ? AND is_primary = ?", front.ModelID, true).Find(&primaries).Error)
	require.Len(t, primaries, 1)
	assert.Equal(t, filepath.Join(dragonPath, "z_top.png"), primaries[0].Filepath)
}

func TestVanishedFolderIsRemovedWithItsAnnotations(t *testing.T) {
	root := newLibrary(t)
	s, db := newScanner(t)
	dragonPath := filepath.Join(root, "Toys", "Dragon")

	_, err := s.Scan(context.Background(), root, ModeFull)
	require.NoError(t, err)

	dragon := findModel(t, db, dragonPath)
	require.NoError(t, db.Create(&models.Favorite{ModelID: dragon.ID}).Error)
	require.NoError(t, db.Create(&models.PrintQueue{ModelID: dragon.ID, Position: 1}).Error)
	require.NoError(t, os.RemoveAll(dragonPath))

	result, err := s.Scan(context.Background(), root, ModeFullSync)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.ModelsRemoved)
	assert.Equal(t, int64(0), countRows(t, db, &models.Favorite{}))
	assert.Equal(t, int64(0), countRows(t, db, &models.PrintQueue{}))

	var remaining int64
	require.NoError(t, db.Unscoped().Model(&models.Model{}).Where("id = ?", dragon.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestAddOnlyNeverTouchesExistingRows(t *testing.T) {
	root := newLibrary(t)
	s, db := newScanner(t)

	_, err := s.Scan(context.Background(), root, ModeFull)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "Toys", "Dragon")))
	writeFile(t, filepath.Join(root, "Toys", "Robot", "robot.stl"), "solid robot")

	result, err := s.Scan(context.Background(), root, ModeAddOnly)
	require.NoError(t, err)

	assert.Equal(t, int64(1), result.ModelsAdded)
	assert.Equal(t, int64(2), result.ModelsSkipped)
	assert.Equal(t, int64(0), result.ModelsRemoved)
	assert.Equal(t, int64(4), countRows(t, db, &models.Model{}))
}

func TestScanFolder(t *testing.T) {
	root := newLibrary(t)
	s, db := newScanner(t)

	_, err := s.Scan(context.Background(), root, ModeFull)
	require.NoError(t, err)

	robotPath := filepath.Join(root, "Toys", "Robot")
	writeFile(t, filepath.Join(robotPath, "robot.stl"), "solid robot")
	writeFile(t, filepath.Join(robotPath, "robot.jpg"), "jpg")

	result, err := s.ScanFolder(context.Background(), root, robotPath)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ModelsAdded)

	robot := findModel(t, db, robotPath)
	assert.Equal(t, "Toys", robot.Category)
	assert.Equal(t, int64(4), countRows(t, db, &models.Model{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.LooseFile{}))

	_, err = s.ScanFolder(context.Background(), root, t.TempDir())
	assert.ErrorIs(t, err, ErrFolderOutsideRoot)
}

func TestDatabaseStaysAvailableBetweenIndexBatches(t *testing.T) {
	root := newLibrary(t)
	s, db := newScanner(t)
	s.indexBatchSize = 2

	for i := range 6 {
		writeFile(t, filepath.Join(root, "Toys", fmt.Sprintf("Model %d", i), "part.stl"), "solid")
	}

	var queryErrors []error
	var scanningDuringQuery []bool

	s.batchCommitted = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var favorites int64
		queryErrors = append(queryErrors, db.WithContext(ctx).Model(&models.Favorite{}).Count(&favorites).Error)
		scanningDuringQuery = append(scanningDuringQuery, s.IsScanning())
	}

	result, err := s.Scan(context.Background(), root, ModeFullSync)
	require.NoError(t, err)
	assert.Equal(t, int64(9), result.ModelsAdded)

	assert.Len(t, queryErrors, 5)

	for i := range queryErrors {
		assert.NoError(t, queryErrors[i])
		assert.True(t, scanningDuringQuery[i])
	}
}

func TestModelWrittenDuringScanIsNotRemoved(t *testing.T) {
	root := newLibrary(t)
	s, db := newScanner(t)
	ctx := context.Background()

	_, err := s.Scan(ctx, root, ModeFull)
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "Original Creations", "Widget")))

	walked, err := s.walk(ctx, root, root)
	require.NoError(t, err)

	// an import lands between the walk and the indexing of a running scan
	robotPath := filepath.Join(root, "Toys", "Robot")
	writeFile(t, filepath.Join(robotPath, "robot.stl"), "solid robot")
	_, err = s.ScanFolder(ctx, root, robotPath)
	require.NoError(t, err)

	result, err := s.index(ctx, root, ModeFullSync, walked)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.ModelsRemoved)

	robot := findModel(t, db, robotPath)
	assert.NotZero(t, robot.ID)
	assert.Equal(t, int64(3), countRows(t, db, &models.Model{}))
}

func TestScanRejectsBadRequests(t *testing.T) {
	root := newLibrary(t)
	s, _ := newScanner(t)

	_, err := s.Scan(context.Background(), filepath.Join(root, "missing"), ModeFull)
	assert.ErrorIs(t, err, ErrInvalidRoot)

	_, err = s.Scan(context.Background(), root, Mode("everything"))
	assert.ErrorIs(t, err, ErrInvalidMode)

	s.progress.Scanning = true
	assert.True(t, s.IsScanning())

	_, err = s.Scan(context.Background(), root, ModeFull)
	assert.ErrorIs(t, err, ErrScanInProgress)
	assert.ErrorIs(t, s.Start(context.Background(), root, ModeFull), ErrScanInProgress)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	assert.NoError(t, err)
	assert.Equal(t, ModeFull, mode)

	mode, err = ParseMode("full_sync")
	assert.NoError(t, err)
	assert.Equal(t, ModeFullSync, mode)

	_, err = ParseMode("nope")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestPlacementFor(t *testing.T) {
	tests := []struct {
		segments []string
		expected placement
	}{
		{[]string{"Toys", "Dragon"}, placement{category: "Toys"}},
		{[]string{"Paid", "Alice", "Castle"}, placement{category: "Paid", isPaid: true, designer: "Alice"}},
		{[]string{"Paid", "Castle"}, placement{category: "Paid", isPaid: true}},
		{[]string{"Toys", "Paid", "Bob", "Robot"}, placement{category: "Paid", isPaid: true, designer: "Bob"}},
		{[]string{"Original Creations", "Widget"}, placement{category: "Original Creations", isOriginal: true}},
		{[]string{"Original Creations", "Paid", "Eve", "Vase"}, placement{category: "Paid", isPaid: true, isOriginal: true, designer: "Eve"}},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, placementFor(test.segments), test.segments)
	}
}
