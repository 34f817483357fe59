package main

import (
	"context"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"print-vault/fsutil"
	"print-vault/ingest"
	"print-vault/settings"
	"print-vault/suggest"
	"print-vault/utils"
)

// ListIngestion prints what is waiting in the ingestion root with free fuzzy suggestions.
func (ctx *Context) ListIngestion() error {
	items, err := ctx.Ingest.Scan(context.Background())

	if err != nil {
		return err
	}

	utils.PrintFormattedTitle("Ingestion")
	printItems(items)
	return nil
}

func (ctx *Context) CategorizeIngestion() error {
	items, err := ctx.Ingest.Categorize(context.Background(), nil)

	if err != nil {
		return err
	}

	utils.PrintFormattedTitle("Suggested categories")
	printItems(items)
	return nil
}

func printItems(items []ingest.Item) {
	if len(items) == 0 {
		utils.ConsoleAndLogPrintf("Nothing to ingest.")
		return
	}

	for _, item := range items {
		line := confidenceColor(item.Suggestion.Confidence).SprintFunc()

		utils.ConsoleAndLogPrintf("%s (%s) -> %s [%s, %s]",
			item.Name,
			humanize.Bytes(uint64(max(item.Size, 0))),
			line(item.Suggestion.Category),
			item.Suggestion.Confidence,
			item.Suggestion.Source,
		)
	}

	utils.ConsoleAndLogPrintf("%s waiting", utils.Pluralize("item", int64(len(items))))
}

func confidenceColor(confidence suggest.Confidence) *color.Color {
	switch confidence {
	case suggest.High:
		return color.New(color.FgGreen)
	case suggest.Medium:
		return color.New(color.FgYellow)
	}

	return color.New(color.FgRed)
}

func (ctx *Context) Import(sourcePath, category string) error {
	results, err := ctx.Ingest.Import(context.Background(), []ingest.ImportRequest{{
		Filepath: sourcePath,
		Category: category,
		IsFolder: fsutil.IsDir(sourcePath),
	}})

	if err != nil {
		return err
	}

	for _, result := range results {
		if !result.Success {
			color.Red("Could not import \"%s\": %s", result.Filepath, result.Error)
			continue
		}

		utils.ConsoleAndLogPrintf("Imported \"%s\" to \"%s\"", result.Filepath, result.Target)
	}

	return nil
}

// TidyIngestion removes the empty folders imports leave behind in the ingestion root.
func (ctx *Context) TidyIngestion() error {
	root, err := ctx.Settings.Get(context.Background(), settings.IngestionRoot)

	if err != nil {
		return err
	}

	if !fsutil.IsDir(root) {
		return ErrCouldNotResolvePath
	}

	utils.ConsoleAndLogPrintf("Removing empty folders from \"%s\"", root)
	return fsutil.ClearEmptyFolders(root)
}
