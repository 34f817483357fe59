package main

const queryCategorySummary = `
SELECT		m.category,
			COUNT(*) model_count,
			COALESCE(SUM(m.file_count), 0) file_count,
			COUNT(f.id) favorite_count
FROM		models m
LEFT JOIN	favorites f ON f.model_id = m.id
WHERE		m.deleted_at IS NULL
GROUP BY	m.category
ORDER BY	m.category
`

const queryModelsWithoutPreview = `
SELECT		COUNT(*)
FROM		models m
WHERE		m.deleted_at IS NULL
AND			NOT EXISTS (
				SELECT	1
				FROM	model_assets a
				WHERE	a.model_id = m.id
				AND		a.is_primary = ?
				AND		a.is_hidden = ?
			)
`

const queryLooseFileSize = `
SELECT		COUNT(*) file_count,
			COALESCE(SUM(l.size), 0) total_size
FROM		loose_files l
`

type CategorySummary struct {
	Category      string
	ModelCount    int64
	FileCount     int64
	FavoriteCount int64
}

type LooseFileSummary struct {
	FileCount int64
	TotalSize int64
}

func (ctx *Context) GetCategorySummary() ([]CategorySummary, error) {
	var summary []CategorySummary
	result := ctx.DB.Raw(queryCategorySummary).Scan(&summary)
	return summary, result.Error
}

func (ctx *Context) CountModelsWithoutPreview() (int64, error) {
	var count int64
	result := ctx.DB.Raw(queryModelsWithoutPreview, true, false).Scan(&count)
	return count, result.Error
}

func (ctx *Context) GetLooseFileSummary() (LooseFileSummary, error) {
	var summary LooseFileSummary
	result := ctx.DB.Raw(queryLooseFileSize).Scan(&summary)
	return summary, result.Error
}
