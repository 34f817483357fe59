package models

import (
	"time"

	"gorm.io/gorm"
)

type Designer struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"unique;not null"`
	URL       string
	CreatedAt time.Time
}

// Model is one catalogued folder. Filepath is the identity key and never changes for a row.
type Model struct {
	ID          uint   `gorm:"primarykey"`
	Filename    string `gorm:"not null"`
	Filepath    string `gorm:"uniqueIndex;not null"`
	Category    string `gorm:"index"`
	IsPaid      bool
	IsOriginal  bool
	FileCount   int
	DateAdded   *time.Time
	DateCreated *time.Time
	DesignerID  *uint
	Designer    *Designer
	SourceURL   string
	License     string
	Notes       string
	Files       []ModelFile  `gorm:"constraint:OnDelete:CASCADE"`
	Assets      []ModelAsset `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

type ModelFile struct {
	ID       uint   `gorm:"primarykey"`
	ModelID  uint   `gorm:"index;not null"`
	Filename string `gorm:"not null"`
	Filepath string `gorm:"uniqueIndex;not null"`
	Size     int64
	FileType string
}

const (
	AssetTypeImage = "image"
	AssetTypePDF   = "pdf"
)

type ModelAsset struct {
	ID          uint   `gorm:"primarykey"`
	ModelID     uint   `gorm:"index;not null"`
	Filepath    string `gorm:"uniqueIndex;not null"`
	AssetType   string `gorm:"not null"`
	IsPrimary   bool
	IsHidden    bool
	IsExtracted bool
	CreatedAt   time.Time
}

type LooseFile struct {
	ID        uint   `gorm:"primarykey"`
	Filename  string `gorm:"not null"`
	Filepath  string `gorm:"uniqueIndex;not null"`
	Category  string
	Size      int64
	FileType  string
	DateAdded *time.Time
	CreatedAt time.Time
}

type Favorite struct {
	ID        uint  `gorm:"primarykey"`
	ModelID   uint  `gorm:"uniqueIndex;not null"`
	Model     Model `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

type PrintQueue struct {
	ID        uint  `gorm:"primarykey"`
	ModelID   uint  `gorm:"uniqueIndex;not null"`
	Model     Model `gorm:"constraint:OnDelete:CASCADE"`
	Position  int
	CreatedAt time.Time
}

type PrintedModel struct {
	ID        uint  `gorm:"primarykey"`
	ModelID   uint  `gorm:"index;not null"`
	Model     Model `gorm:"constraint:OnDelete:CASCADE"`
	Rating    int
	Notes     string
	PrintedAt time.Time
}

type Tag struct {
	ID   uint   `gorm:"primarykey"`
	Name string `gorm:"unique;not null"`
}

type ModelTag struct {
	ModelID uint  `gorm:"primaryKey"`
	Model   Model `gorm:"constraint:OnDelete:CASCADE"`
	TagID   uint  `gorm:"primaryKey"`
	Tag     Tag   `gorm:"constraint:OnDelete:CASCADE"`
}

// CategorizationHint counts how often a name token ended up in a category on import.
type CategorizationHint struct {
	ID       uint   `gorm:"primarykey"`
	Token    string `gorm:"uniqueIndex:idx_hint_token_category;not null"`
	Category string `gorm:"uniqueIndex:idx_hint_token_category;not null"`
	Count    int
}

type Setting struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// AnnotationTables lists the tables keyed by model_id that belong to user actions, not scans.
func AnnotationTables() []any {
	return []any{&Favorite{}, &PrintQueue{}, &PrintedModel{}, &ModelTag{}}
}

func All() []any {
	return []any{
		&Designer{},
		&Model{},
		&ModelFile{},
		&ModelAsset{},
		&LooseFile{},
		&Favorite{},
		&PrintQueue{},
		&PrintedModel{},
		&Tag{},
		&ModelTag{},
		&CategorizationHint{},
		&Setting{},
	}
}
