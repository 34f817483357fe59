package scanner

import (
	"context"
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"os"
	"path/filepath"
	"print-vault/fileclass"
	"print-vault/fsutil"
	"print-vault/models"
	"print-vault/names"
	"print-vault/preview"
	"print-vault/utils"
	"sort"
	"strings"
	"time"
)

const (
	PaidSegment              = "Paid"
	OriginalCreationsSegment = "Original Creations"
)

const batchSize = 100

type placement struct {
	category   string
	isPaid     bool
	isOriginal bool
	designer   string
}

// placementFor derives category, flags and designer from a folder's segments below the root.
// A Paid segment anywhere wins over Original Creations, which wins over the first segment.
func placementFor(segments []string) placement {
	var p placement

	if len(segments) > 0 {
		p.category = segments[0]
	}

	for i, segment := range segments {
		switch {
		case strings.EqualFold(segment, PaidSegment):
			p.isPaid = true

			// Paid/<designer>/<model>
			if p.designer == "" && i+1 < len(segments)-1 {
				p.designer = segments[i+1]
			}
		case strings.EqualFold(segment, OriginalCreationsSegment):
			p.isOriginal = true
		}
	}

	switch {
	case p.isPaid:
		p.category = PaidSegment
	case p.isOriginal:
		p.category = OriginalCreationsSegment
	}

	return p
}

type previewJob struct {
	modelID uint
	dir     string
}

// index writes the walked folders below scope, then extracts previews for folders without an image.
// Folders are committed in batches so other readers and writers get the database between them.
func (s *Scanner) index(ctx context.Context, scope string, mode Mode, walked *walkResult) (Result, error) {
	s.indexMutex.Lock()
	defer s.indexMutex.Unlock()

	var result Result
	var jobs []previewJob

	existing, err := existingModels(s.db.WithContext(ctx), scope)

	if err != nil {
		return result, err
	}

	dirs := make([]string, 0, len(walked.folders))

	for dir := range walked.folders {
		dirs = append(dirs, dir)
	}

	sort.Strings(dirs)

	for start := 0; start < len(dirs); start += s.indexBatchSize {
		batch := dirs[start:min(start+s.indexBatchSize, len(dirs))]

		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, dir := range batch {
				if err := ctx.Err(); err != nil {
					return err
				}

				f := walked.folders[dir]
				model, found := existing[dir]

				if found && mode == ModeAddOnly {
					result.ModelsSkipped++
					continue
				}

				if err := s.writeModel(tx, &model, f); err != nil {
					return err
				}

				if found {
					result.ModelsUpdated++
				} else {
					result.ModelsAdded++
				}

				if err := replaceFiles(tx, model.ID, f.files); err != nil {
					return err
				}

				hasImage, err := s.reconcileAssets(tx, model.ID, dir, mode == ModeFull)

				if err != nil {
					return err
				}

				if !hasImage {
					jobs = append(jobs, previewJob{modelID: model.ID, dir: dir})
				}

				s.update(func(p *Progress) { p.FilesProcessed += int64(len(f.files)) })
			}

			return nil
		})

		if err != nil {
			return result, err
		}

		for _, dir := range batch {
			delete(existing, dir)
		}

		if s.batchCommitted != nil {
			s.batchCommitted()
		}
	}

	if mode != ModeAddOnly {
		removed, err := s.removeVanished(ctx, existing, walked.startedAt)
		result.ModelsRemoved = removed

		if err != nil {
			return result, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return replaceLooseFiles(tx, scope, walked.loose)
	})

	if err != nil {
		return result, err
	}

	result.LooseFiles = int64(len(walked.loose))
	result.Previews = s.extractPreviews(ctx, jobs)
	return result, nil
}

// removeVanished deletes the models that were not walked. A model written after the walk started,
// e.g. by an import scanning its own folder meanwhile, is kept while its folder exists.
func (s *Scanner) removeVanished(ctx context.Context, vanished map[string]models.Model, walkStartedAt time.Time) (int64, error) {
	removed := int64(0)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range vanished {
			var current models.Model
			result := tx.Unscoped().Limit(1).Find(&current, model.ID)

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				continue
			}

			if !current.UpdatedAt.Before(walkStartedAt) && fsutil.IsDir(current.Filepath) {
				continue
			}

			if err := removeModel(tx, model.ID); err != nil {
				return err
			}

			s.log.Infow("removed model that is no longer on disk", "path", model.Filepath)
			removed++
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return removed, nil
}

func existingModels(tx *gorm.DB, scope string) (map[string]models.Model, error) {
	var rows []models.Model
	result := tx.Unscoped().Find(&rows)

	if result.Error != nil {
		return nil, result.Error
	}

	existing := make(map[string]models.Model, len(rows))

	for _, row := range rows {
		if fsutil.IsWithin(scope, row.Filepath) {
			existing[row.Filepath] = row
		}
	}

	return existing, nil
}

// writeModel updates model in place when it already has an ID, keeping the row and its annotations.
func (s *Scanner) writeModel(tx *gorm.DB, model *models.Model, f *folder) error {
	p := placementFor(f.segments)
	designerID, err := upsertDesigner(tx, p.designer)

	if err != nil {
		return err
	}

	dateAdded := f.earliestModTime
	dateCreated := f.earliestBirthTime

	model.Filename = names.CleanupFolderName(filepath.Base(f.path))
	model.Filepath = f.path
	model.Category = p.category
	model.IsPaid = p.isPaid
	model.IsOriginal = p.isOriginal
	model.FileCount = len(f.files)
	model.DateAdded = &dateAdded
	model.DateCreated = &dateCreated
	model.DesignerID = designerID
	model.Designer = nil

	if model.ID == 0 {
		return tx.Omit(clause.Associations).Create(model).Error
	}

	model.DeletedAt = gorm.DeletedAt{}
	return tx.Unscoped().Omit(clause.Associations).Save(model).Error
}

func upsertDesigner(tx *gorm.DB, name string) (*uint, error) {
	if name == "" {
		return nil, nil
	}

	designer := models.Designer{Name: name}
	result := tx.Where(&models.Designer{Name: name}).FirstOrCreate(&designer)

	if result.Error != nil {
		return nil, result.Error
	}

	return &designer.ID, nil
}

func replaceFiles(tx *gorm.DB, modelID uint, files []scannedFile) error {
	result := tx.Where("model_id = ?", modelID).Delete(&models.ModelFile{})

	if result.Error != nil {
		return result.Error
	}

	rows := make([]models.ModelFile, 0, len(files))

	for _, file := range files {
		rows = append(rows, models.ModelFile{
			ModelID:  modelID,
			Filename: file.name,
			Filepath: file.path,
			Size:     file.size,
			FileType: strings.TrimPrefix(strings.ToLower(filepath.Ext(file.name)), "."),
		})
	}

	if len(rows) == 0 {
		return nil
	}

	return tx.CreateInBatches(rows, batchSize).Error
}

// folderAssets lists the images and PDFs directly inside dir. Real images sort before extracted ones.
func folderAssets(dir string) ([]models.ModelAsset, error) {
	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, err
	}

	var assets []models.ModelAsset

	for _, entry := range entries {
		if entry.IsDir() || fsutil.IsHidden(entry.Name()) {
			continue
		}

		asset := models.ModelAsset{
			Filepath:    filepath.Join(dir, entry.Name()),
			IsExtracted: strings.HasPrefix(entry.Name(), preview.ExtractedPrefix),
		}

		switch {
		case fileclass.IsImage(entry.Name()):
			asset.AssetType = models.AssetTypeImage
		case strings.EqualFold(filepath.Ext(entry.Name()), ".pdf"):
			asset.AssetType = models.AssetTypePDF
		default:
			continue
		}

		assets = append(assets, asset)
	}

	sort.SliceStable(assets, func(i, j int) bool {
		if assets[i].IsExtracted != assets[j].IsExtracted {
			return !assets[i].IsExtracted
		}

		return assets[i].Filepath < assets[j].Filepath
	})

	return assets, nil
}

// reconcileAssets brings a model's asset rows in line with the folder. Rows that are still on disk
// keep their flags unless rebuild is set. Reports whether the model has an image.
func (s *Scanner) reconcileAssets(tx *gorm.DB, modelID uint, dir string, rebuild bool) (bool, error) {
	onDisk, err := folderAssets(dir)

	if err != nil {
		s.log.Warnw("could not list assets", "path", dir, "error", err)
	}

	if rebuild {
		if err := tx.Where("model_id = ?", modelID).Delete(&models.ModelAsset{}).Error; err != nil {
			return false, err
		}
	}

	var current []models.ModelAsset

	if err := tx.Where("model_id = ?", modelID).Find(&current).Error; err != nil {
		return false, err
	}

	known := make(map[string]models.ModelAsset, len(current))

	for _, asset := range current {
		known[asset.Filepath] = asset
	}

	var assets []models.ModelAsset

	for _, asset := range onDisk {
		if existing, found := known[asset.Filepath]; found {
			delete(known, asset.Filepath)
			assets = append(assets, existing)
			continue
		}

		asset.ModelID = modelID

		if err := tx.Create(&asset).Error; err != nil {
			return false, err
		}

		assets = append(assets, asset)
	}

	var vanished []uint

	for _, asset := range known {
		vanished = append(vanished, asset.ID)
	}

	if len(vanished) > 0 {
		if err := tx.Delete(&models.ModelAsset{}, vanished).Error; err != nil {
			return false, err
		}
	}

	s.update(func(p *Progress) { p.AssetsFound += int64(len(assets)) })
	return ensurePrimary(tx, assets)
}

// ensurePrimary promotes the first visible image when no visible primary image is left.
func ensurePrimary(tx *gorm.DB, assets []models.ModelAsset) (bool, error) {
	var candidate *models.ModelAsset
	hasImage := false

	for i := range assets {
		asset := &assets[i]

		if asset.AssetType != models.AssetTypeImage {
			continue
		}

		hasImage = true

		if asset.IsHidden {
			continue
		}

		if asset.IsPrimary {
			return true, nil
		}

		if candidate == nil {
			candidate = asset
		}
	}

	if candidate == nil {
		return hasImage, nil
	}

	return true, tx.Model(candidate).Update("is_primary", true).Error
}

// removeModel deletes a model together with every row that refers to it.
func removeModel(tx *gorm.DB, modelID uint) error {
	owned := append([]any{&models.ModelFile{}, &models.ModelAsset{}}, models.AnnotationTables()...)

	for _, table := range owned {
		if err := tx.Where("model_id = ?", modelID).Delete(table).Error; err != nil {
			return err
		}
	}

	return tx.Unscoped().Delete(&models.Model{}, modelID).Error
}

func replaceLooseFiles(tx *gorm.DB, scope string, loose []looseFile) error {
	var rows []models.LooseFile

	if err := tx.Find(&rows).Error; err != nil {
		return err
	}

	var stale []uint

	for _, row := range rows {
		if fsutil.IsWithin(scope, row.Filepath) {
			stale = append(stale, row.ID)
		}
	}

	if len(stale) > 0 {
		if err := tx.Delete(&models.LooseFile{}, stale).Error; err != nil {
			return err
		}
	}

	if len(loose) == 0 {
		return nil
	}

	fresh := make([]models.LooseFile, 0, len(loose))

	for _, file := range loose {
		dateAdded := file.modTime
		fresh = append(fresh, models.LooseFile{
			Filename:  file.name,
			Filepath:  file.path,
			Category:  file.category,
			Size:      file.size,
			FileType:  string(fileclass.Classify(file.name)),
			DateAdded: &dateAdded,
		})
	}

	return tx.CreateInBatches(fresh, batchSize).Error
}

func (s *Scanner) extractPreviews(ctx context.Context, jobs []previewJob) int64 {
	if len(jobs) == 0 {
		return 0
	}

	task := utils.NewTaskOrchestrator(nil, len(jobs), s.options.MaxConcurrentFileOperations)
	extracted := int64(0)

	for _, job := range jobs {
		task.Go(func() {
			if ctx.Err() != nil {
				return
			}

			extractedPath, err := s.extractor.ExtractBest(job.dir)

			if err != nil {
				if !errors.Is(err, preview.ErrNoPreview) {
					s.log.Warnw("preview extraction failed", "path", job.dir, "error", err)
				}

				return
			}

			task.Lock()
			defer task.Unlock()

			asset := models.ModelAsset{
				ModelID:     job.modelID,
				Filepath:    extractedPath,
				AssetType:   models.AssetTypeImage,
				IsPrimary:   true,
				IsExtracted: true,
			}

			result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&asset)

			if result.Error != nil {
				s.log.Warnw("could not record extracted preview", "path", extractedPath, "error", result.Error)
				return
			}

			extracted++
		})
	}

	task.WaitForTasks()
	return extracted
}
