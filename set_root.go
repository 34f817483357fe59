package main

import (
	"context"
	"path/filepath"
	"print-vault/fsutil"
	"print-vault/settings"
	"print-vault/utils"
)

var rootSettings = map[string]string{
	"model":     settings.ModelRoot,
	"ingestion": settings.IngestionRoot,
}

var textSettings = []string{
	settings.LLMAPIKey,
	settings.CustomPrompt,
	settings.FileWatcherEnabled,
}

func (ctx *Context) SetRoot(kind, rootPath string) error {
	key, found := rootSettings[kind]

	if !found {
		return ErrUnknownRootKind
	}

	if !fsutil.IsDir(rootPath) {
		return ErrCouldNotResolvePath
	}

	absoluteRootPath, err := filepath.Abs(rootPath)

	if err != nil {
		return ErrCouldNotResolvePath
	}

	utils.ConsoleAndLogPrintf("Setting %s root to \"%s\"", kind, absoluteRootPath)
	return ctx.Settings.Set(context.Background(), key, absoluteRootPath)
}

func (ctx *Context) SetSetting(key, value string) error {
	if !utils.IsInArray(key, textSettings) {
		return ErrUnknownSetting
	}

	if key == settings.FileWatcherEnabled {
		return ctx.Settings.SetBool(context.Background(), key, value == "true")
	}

	return ctx.Settings.Set(context.Background(), key, value)
}
