package config

import (
	"gopkg.in/yaml.v3"
	"log"
	"os"
	"path"
	"time"
)

type yamlConfig struct {
	IsDebug                     bool              `yaml:"debug"`
	LogFilePath                 string            `yaml:"log_file_path"`
	DBDriver                    string            `yaml:"db_driver"`
	DBPath                      string            `yaml:"db_path"`
	ListenAddress               string            `yaml:"listen_address"`
	MaxConcurrentFileOperations int64             `yaml:"max_concurrent_file_operations"`
	MaxPreviewWidth             int               `yaml:"max_preview_width"`
	FileNamesToIgnore           []string          `yaml:"file_names_to_ignore"`
	FolderNamesToIgnore         []string          `yaml:"folder_names_to_ignore"`
	WatcherDebounceSeconds      int               `yaml:"watcher_debounce_seconds"`
	WatcherBackstopSeconds      int               `yaml:"watcher_backstop_seconds"`
	LLMProvider                 string            `yaml:"llm_provider"`
	LLMModel                    string            `yaml:"llm_model"`
	LLMBaseURL                  string            `yaml:"llm_base_url"`
	LLMBatchSize                int               `yaml:"llm_batch_size"`
	LLMRequestsPerMinute        int               `yaml:"llm_requests_per_minute"`
	HighConfidence              float64           `yaml:"high_confidence"`
	SecondaryCap                float64           `yaml:"secondary_cap"`
	TextCap                     int               `yaml:"text_cap"`
	NoiseWords                  []string          `yaml:"noise_words"`
	SynonymGroups               [][]string        `yaml:"synonym_groups"`
	PhraseOnlyCategories        []string          `yaml:"phrase_only_categories"`
	CategoryDescriptions        map[string]string `yaml:"category_descriptions"`
}

type Config struct {
	IsDebug                     bool
	LogFilePath                 string
	DBDriver                    string
	DBPath                      string
	ListenAddress               string
	MaxConcurrentFileOperations int64
	MaxPreviewWidth             int
	FileNamesToIgnore           []string
	FolderNamesToIgnore         []string
	WatcherDebounce             time.Duration
	WatcherBackstop             time.Duration
	LLMProvider                 string
	LLMModel                    string
	LLMBaseURL                  string
	LLMBatchSize                int
	LLMRequestsPerMinute        int
	HighConfidence              float64
	SecondaryCap                float64
	TextCap                     int
	NoiseWords                  []string
	SynonymGroups               [][]string
	PhraseOnlyCategories        []string
	CategoryDescriptions        map[string]string
}

func Load(defaultConfigData []byte) (*Config, error) {
	configFile := "config.yaml"
	_, err := os.Stat(configFile)

	if err != nil {
		log.Print("No config file found. Creating a new config file...")
		err := os.WriteFile(configFile, defaultConfigData, 0600)

		if err != nil {
			return nil, err
		}
	}

	return parseConfigFile(configFile)
}

func parseConfigFile(configFilePath string) (*Config, error) {
	yamlFile, err := os.ReadFile(path.Clean(configFilePath))

	if err != nil {
		return nil, err
	}

	return Parse(yamlFile)
}

// Parse maps raw YAML onto a Config, filling in defaults for anything left out.
func Parse(data []byte) (*Config, error) {
	config := &yamlConfig{}

	err := yaml.Unmarshal(data, config)

	if err != nil {
		return nil, err
	}

	return &Config{
		IsDebug:                     config.IsDebug,
		LogFilePath:                 config.LogFilePath,
		DBDriver:                    withDefault(config.DBDriver, "sqlite"),
		DBPath:                      withDefault(config.DBPath, "print-vault.db"),
		ListenAddress:               withDefault(config.ListenAddress, "127.0.0.1:8420"),
		MaxConcurrentFileOperations: positiveOr(config.MaxConcurrentFileOperations, 4),
		MaxPreviewWidth:             config.MaxPreviewWidth,
		FileNamesToIgnore:           config.FileNamesToIgnore,
		FolderNamesToIgnore:         config.FolderNamesToIgnore,
		WatcherDebounce:             time.Duration(positiveOr(config.WatcherDebounceSeconds, 20)) * time.Second,
		WatcherBackstop:             time.Duration(positiveOr(config.WatcherBackstopSeconds, 300)) * time.Second,
		LLMProvider:                 withDefault(config.LLMProvider, "openai"),
		LLMModel:                    config.LLMModel,
		LLMBaseURL:                  config.LLMBaseURL,
		LLMBatchSize:                positiveOr(config.LLMBatchSize, 10),
		LLMRequestsPerMinute:        positiveOr(config.LLMRequestsPerMinute, 20),
		HighConfidence:              positiveOr(config.HighConfidence, 0.8),
		SecondaryCap:                positiveOr(config.SecondaryCap, 0.79),
		TextCap:                     positiveOr(config.TextCap, 2000),
		NoiseWords:                  config.NoiseWords,
		SynonymGroups:               config.SynonymGroups,
		PhraseOnlyCategories:        config.PhraseOnlyCategories,
		CategoryDescriptions:        config.CategoryDescriptions,
	}, nil
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

func positiveOr[T int | int64 | float64](value, fallback T) T {
	if value <= 0 {
		return fallback
	}

	return value
}
