package main

import (
	"context"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"print-vault/models"
	"print-vault/settings"
	"print-vault/utils"
	"time"
)

func (ctx *Context) Status() error {
	background := context.Background()
	values, err := ctx.Settings.All(background)

	if err != nil {
		return err
	}

	utils.PrintFormattedTitle("Settings")
	utils.ConsoleAndLogPrintf("Model root:     %s", orNotSet(values[settings.ModelRoot]))
	utils.ConsoleAndLogPrintf("Ingestion root: %s", orNotSet(values[settings.IngestionRoot]))
	utils.ConsoleAndLogPrintf("File watcher:   %s", orNotSet(values[settings.FileWatcherEnabled]))

	categories, err := ctx.GetCategorySummary()

	if err != nil {
		return err
	}

	utils.PrintFormattedTitle("Library")
	total := int64(0)

	for _, category := range categories {
		total += category.ModelCount
		utils.ConsoleAndLogPrintf("%-24s %s, %s, %s",
			orNotSet(category.Category),
			utils.Pluralize("model", category.ModelCount),
			utils.Pluralize("file", category.FileCount),
			utils.Pluralize("favorite", category.FavoriteCount),
		)
	}

	utils.ConsoleAndLogPrintf("Total: %s in %s", utils.Pluralize("model", total), utils.Pluralize("category", int64(len(categories))))

	var latest models.Model
	result := ctx.DB.Order("updated_at DESC").Limit(1).Find(&latest)

	if result.Error != nil {
		return result.Error
	}

	var lastIndexed *time.Time

	if result.RowsAffected > 0 {
		lastIndexed = &latest.UpdatedAt
	}

	utils.ConsoleAndLogPrintf("Last indexed: %s", utils.FormatSince(lastIndexed))

	withoutPreview, err := ctx.CountModelsWithoutPreview()

	if err != nil {
		return err
	}

	if withoutPreview > 0 {
		color.Yellow("%s without a preview image", utils.Pluralize("model", withoutPreview))
	}

	loose, err := ctx.GetLooseFileSummary()

	if err != nil {
		return err
	}

	utils.ConsoleAndLogPrintf("%s waiting to be organized (%s)", utils.Pluralize("loose file", loose.FileCount), humanize.Bytes(uint64(max(loose.TotalSize, 0))))

	var queued, printed int64

	if err := ctx.DB.Model(&models.PrintQueue{}).Count(&queued).Error; err != nil {
		return err
	}

	if err := ctx.DB.Model(&models.PrintedModel{}).Count(&printed).Error; err != nil {
		return err
	}

	utils.ConsoleAndLogPrintf("%s queued, %s printed", utils.Pluralize("model", queued), utils.Pluralize("print", printed))
	return nil
}

func orNotSet(value string) string {
	if value == "" {
		return "(not set)"
	}

	return value
}
