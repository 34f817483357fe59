// Package settings persists the string key/value configuration edited from the UI.
package settings

import (
	"context"
	"errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"print-vault/models"
	"strconv"
)

const (
	IngestionRoot      = "ingestion_root"
	LLMAPIKey          = "llm_api_key"
	CustomPrompt       = "custom_prompt"
	ModelRoot          = "model_root"
	FileWatcherEnabled = "file_watcher_enabled"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Get returns "" for keys that were never set.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	result := s.db.WithContext(ctx).Where(&models.Setting{Key: key}).First(&setting)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return "", nil
	}

	if result.Error != nil {
		return "", result.Error
	}

	return setting.Value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.Setting{Key: key, Value: value}).Error
}

func (s *Store) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := s.Get(ctx, key)

	if err != nil || value == "" {
		return false, err
	}

	enabled, err := strconv.ParseBool(value)

	if err != nil {
		return false, nil
	}

	return enabled, nil
}

func (s *Store) SetBool(ctx context.Context, key string, value bool) error {
	return s.Set(ctx, key, strconv.FormatBool(value))
}

func (s *Store) All(ctx context.Context) (map[string]string, error) {
	var rows []models.Setting
	result := s.db.WithContext(ctx).Find(&rows)

	if result.Error != nil {
		return nil, result.Error
	}

	values := make(map[string]string, len(rows))

	for _, row := range rows {
		values[row.Key] = row.Value
	}

	return values, nil
}
