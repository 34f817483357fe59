package main

import (
	"context"
	"github.com/schollz/progressbar/v3"
	"print-vault/scanner"
	"print-vault/settings"
	"print-vault/utils"
	"time"
)

const scanPollInterval = 200 * time.Millisecond

// Scan indexes rootPath, or the model root when rootPath is empty, drawing a spinner meanwhile.
func (ctx *Context) Scan(mode, rootPath string) error {
	scanMode, err := scanner.ParseMode(mode)

	if err != nil {
		return err
	}

	background := context.Background()

	if rootPath == "" {
		if rootPath, err = ctx.Settings.Get(background, settings.ModelRoot); err != nil {
			return err
		}

		if rootPath == "" {
			return ErrCouldNotResolvePath
		}
	}

	utils.PrintFormattedTitle("Scanning " + rootPath)

	type outcome struct {
		result scanner.Result
		err    error
	}

	done := make(chan outcome, 1)

	go func() {
		result, err := ctx.Scanner.Scan(background, rootPath, scanMode)
		done <- outcome{result, err}
	}()

	bar := progressbar.NewOptions64(-1, progressbar.OptionSetDescription("scanning"), progressbar.OptionSpinnerType(14))
	ticker := time.NewTicker(scanPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			progress := ctx.Scanner.Status()
			bar.Describe(utils.Pluralize("file", progress.FilesSeen) + " seen, " + utils.Pluralize("model", progress.ModelsFound) + " found")
			_ = bar.Add(1)

		case o := <-done:
			_ = bar.Finish()

			if o.err != nil {
				return o.err
			}

			printScanResult(o.result)
			return nil
		}
	}
}

func printScanResult(result scanner.Result) {
	utils.ConsoleAndLogPrintf("%s added, %s updated, %s skipped, %s removed",
		utils.Pluralize("model", result.ModelsAdded),
		utils.Pluralize("model", result.ModelsUpdated),
		utils.Pluralize("model", result.ModelsSkipped),
		utils.Pluralize("model", result.ModelsRemoved),
	)

	utils.ConsoleAndLogPrintf("%s, %s extracted in %s",
		utils.Pluralize("loose file", result.LooseFiles),
		utils.Pluralize("preview", result.Previews),
		utils.FormatDuration(result.Duration),
	)
}
