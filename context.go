package main

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
	"print-vault/catalog"
	"print-vault/config"
	"print-vault/finder"
	"print-vault/ingest"
	"print-vault/scanner"
	"print-vault/settings"
	"print-vault/suggest"
	"print-vault/watcher"
)

type Context struct {
	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.SugaredLogger
	Settings *settings.Store
	Scanner  *scanner.Scanner
	Watcher  *watcher.Watcher
	Ingest   *ingest.Service
	Catalog  *catalog.Catalog
}

func newContext(c *config.Config, db *gorm.DB, log *zap.SugaredLogger) *Context {
	store := settings.NewStore(db)

	s := scanner.New(db, scanner.Options{
		FolderNamesToIgnore:         c.FolderNamesToIgnore,
		FileNamesToIgnore:           c.FileNamesToIgnore,
		MaxConcurrentFileOperations: c.MaxConcurrentFileOperations,
		MaxPreviewWidth:             c.MaxPreviewWidth,
	}, log)

	hints := suggest.NewDBHints(db)
	fuzzy := suggest.NewFuzzy(suggest.Params{
		HighConfidence:       c.HighConfidence,
		SecondaryCap:         c.SecondaryCap,
		TextCap:              c.TextCap,
		NoiseWords:           c.NoiseWords,
		SynonymGroups:        c.SynonymGroups,
		PhraseOnlyCategories: c.PhraseOnlyCategories,
	}, hints, log)

	categorizer := suggest.NewCategorizer(fuzzy, suggest.CategorizerOptions{
		BatchSize:            c.LLMBatchSize,
		RequestsPerMinute:    c.LLMRequestsPerMinute,
		CategoryDescriptions: c.CategoryDescriptions,
	}, log)

	ingestService := ingest.NewService(ingest.Dependencies{
		DB:          db,
		Settings:    store,
		Scanner:     s,
		Fuzzy:       fuzzy,
		Hints:       hints,
		Categorizer: categorizer,
		Tagger:      finder.New(log),
		Log:         log,
	}, ingest.Options{
		LLMProvider:         c.LLMProvider,
		LLMModel:            c.LLMModel,
		LLMBaseURL:          c.LLMBaseURL,
		FileNamesToIgnore:   c.FileNamesToIgnore,
		FolderNamesToIgnore: c.FolderNamesToIgnore,
	})

	return &Context{
		Config:   c,
		DB:       db,
		Log:      log,
		Settings: store,
		Scanner:  s,
		Watcher:  watcher.New(s, store, watcher.Options{Debounce: c.WatcherDebounce, Backstop: c.WatcherBackstop}, log),
		Ingest:   ingestService,
		Catalog:  catalog.New(db, store, s, log),
	}
}
