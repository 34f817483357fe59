package suggest

import (
	"context"
	"gorm.io/gorm"
	"print-vault/models"
)

// HintStore remembers which categories name tokens were filed under.
type HintStore interface {
	Lookup(ctx context.Context, tokens []string) (string, error)
	Record(ctx context.Context, category string, tokens []string) error
}

type DBHints struct {
	db *gorm.DB
}

func NewDBHints(db *gorm.DB) *DBHints {
	return &DBHints{db: db}
}

// Lookup returns the category with the highest summed count over tokens, or "" when none is known.
func (h *DBHints) Lookup(ctx context.Context, tokens []string) (string, error) {
	if len(tokens) == 0 {
		return "", nil
	}

	var hints []models.CategorizationHint
	result := h.db.WithContext(ctx).Where("token IN ?", tokens).Find(&hints)

	if result.Error != nil {
		return "", result.Error
	}

	totals := map[string]int{}

	for _, hint := range hints {
		totals[hint.Category] += hint.Count
	}

	best := ""

	for category, total := range totals {
		if total > totals[best] || (total == totals[best] && category < best) {
			best = category
		}
	}

	return best, nil
}

func (h *DBHints) Record(ctx context.Context, category string, tokens []string) error {
	if category == "" || category == Uncategorized {
		return nil
	}

	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := map[string]bool{}

		for _, token := range tokens {
			if seen[token] {
				continue
			}

			seen[token] = true
			hint := models.CategorizationHint{Token: token, Category: category}

			if err := tx.Where(&hint).FirstOrCreate(&hint).Error; err != nil {
				return err
			}

			if err := tx.Model(&hint).UpdateColumn("count", gorm.Expr("count + ?", 1)).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
