package ingest

import (
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"print-vault/database"
	"print-vault/finder"
	"print-vault/fsutil"
	"print-vault/models"
	"print-vault/scanner"
	"print-vault/settings"
	"print-vault/suggest"
	"strings"
	"testing"
)

type fixture struct {
	service       *Service
	db            *gorm.DB
	store         *settings.Store
	ingestionRoot string
	modelRoot     string
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func newFixture(t *testing.T, options Options) *fixture {
	t.Helper()
	t.Setenv(apiKeyEnvironmentVariable, "")

	log := zaptest.NewLogger(t).Sugar()
	db := database.NewTestDB(t)
	store := settings.NewStore(db)
	hints := suggest.NewDBHints(db)
	fuzzy := suggest.NewFuzzy(suggest.DefaultParams(), hints, log)

	f := &fixture{
		db:            db,
		store:         store,
		ingestionRoot: t.TempDir(),
		modelRoot:     t.TempDir(),
	}

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, settings.IngestionRoot, f.ingestionRoot))
	require.NoError(t, store.Set(ctx, settings.ModelRoot, f.modelRoot))

	require.NoError(t, os.MkdirAll(filepath.Join(f.modelRoot, "Kitchen"), 0700))
	require.NoError(t, os.MkdirAll(filepath.Join(f.modelRoot, "Toys"), 0700))
	require.NoError(t, os.MkdirAll(filepath.Join(f.modelRoot, "Paid"), 0700))

	writeFile(t, filepath.Join(f.ingestionRoot, "Kitchen_Spice_Rack", "rack.stl"), "solid rack")
	writeFile(t, filepath.Join(f.ingestionRoot, "Kitchen_Spice_Rack", "README.md"), "A rack for spices")
	writeFile(t, filepath.Join(f.ingestionRoot, "robot_v2.3mf"), "robot")
	writeFile(t, filepath.Join(f.ingestionRoot, "notes", "todo.txt"), "nothing printable")
	writeFile(t, filepath.Join(f.ingestionRoot, ".DS_Store"), "")

	f.service = NewService(Dependencies{
		DB:          db,
		Settings:    store,
		Scanner:     scanner.New(db, scanner.Options{}, log),
		Fuzzy:       fuzzy,
		Hints:       hints,
		Categorizer: suggest.NewCategorizer(fuzzy, suggest.CategorizerOptions{RequestsPerMinute: 6000}, log),
		Tagger:      finder.Noop{},
		Log:         log,
	}, options)

	return f
}

func TestCategoriesComeFromTheLibrary(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.db.Create(&models.Model{Filename: "Lamp", Filepath: "/x/Lighting/Lamp", Category: "Lighting"}).Error)

	categories, err := f.service.Categories(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Kitchen", "Lighting", "Toys"}, categories)
}

func TestScanListsItemsWithSuggestions(t *testing.T) {
	f := newFixture(t, Options{})

	items, err := f.service.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	rack := items[0]
	assert.Equal(t, "Kitchen Spice Rack", rack.Name)
	assert.True(t, rack.IsFolder)
	assert.Equal(t, []string{"rack.stl"}, rack.ModelFiles)
	assert.Equal(t, "A rack for spices", rack.Readme)
	assert.Equal(t, "Kitchen", rack.Suggestion.Category)
	assert.Equal(t, suggest.High, rack.Suggestion.Confidence)

	robot := items[1]
	assert.Equal(t, "Robot", robot.Name)
	assert.False(t, robot.IsFolder)
	assert.Equal(t, suggest.Uncategorized, robot.Suggestion.Category)
}

func TestScanNeedsAnIngestionRoot(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	require.NoError(t, f.store.Set(ctx, settings.IngestionRoot, ""))
	_, err := f.service.Scan(ctx)
	assert.ErrorIs(t, err, ErrIngestionRootNotSet)

	require.NoError(t, f.store.Set(ctx, settings.IngestionRoot, filepath.Join(f.modelRoot, "missing")))
	_, err = f.service.Scan(ctx)
	assert.ErrorIs(t, err, ErrRootMissing)
}

func TestImport(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	// Something already lives where the second request would go
	writeFile(t, filepath.Join(f.modelRoot, "Toys", "Robot", "old.stl"), "solid")
	writeFile(t, filepath.Join(f.ingestionRoot, "Drawer", "drawer.stl"), "solid drawer")

	results, err := f.service.Import(ctx, []ImportRequest{
		{Filepath: filepath.Join(f.ingestionRoot, "Kitchen_Spice_Rack"), Category: "Kitchen", IsFolder: true},
		{Filepath: filepath.Join(f.ingestionRoot, "robot_v2.3mf"), Category: "Toys"},
		{Filepath: filepath.Join(f.ingestionRoot, "Drawer"), Category: "../Escape", IsFolder: true},
		{Filepath: filepath.Join(f.modelRoot, "Toys"), Category: "Toys", IsFolder: true},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	rackTarget := filepath.Join(f.modelRoot, "Kitchen", "Kitchen_Spice_Rack")
	assert.True(t, results[0].Success, results[0].Error)
	assert.Equal(t, rackTarget, results[0].Target)
	assert.NotZero(t, results[0].ModelID)
	assert.True(t, fsutil.IsFile(filepath.Join(rackTarget, "rack.stl")))
	assert.False(t, fsutil.Exists(filepath.Join(f.ingestionRoot, "Kitchen_Spice_Rack")))

	var model models.Model
	require.NoError(t, f.db.First(&model, results[0].ModelID).Error)
	assert.Equal(t, "Kitchen", model.Category)
	assert.Equal(t, "Kitchen Spice Rack", model.Filename)

	assert.False(t, results[1].Success)
	assert.Contains(t, results[1].Error, ErrTargetExists.Error())
	assert.True(t, fsutil.IsFile(filepath.Join(f.ingestionRoot, "robot_v2.3mf")))

	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Error, "category")
	assert.True(t, fsutil.IsDir(filepath.Join(f.ingestionRoot, "Drawer")))

	assert.False(t, results[3].Success)
	assert.Equal(t, ErrOutsideIngestionRoot.Error(), results[3].Error)

	category, err := suggest.NewDBHints(f.db).Lookup(ctx, []string{"spice"})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", category)
}

func TestImportWrapsLooseFilesInAFolder(t *testing.T) {
	f := newFixture(t, Options{})

	results, err := f.service.Import(context.Background(), []ImportRequest{
		{Filepath: filepath.Join(f.ingestionRoot, "robot_v2.3mf"), Category: "Toys"},
	})
	require.NoError(t, err)
	require.True(t, results[0].Success, results[0].Error)

	target := filepath.Join(f.modelRoot, "Toys", "Robot")
	assert.Equal(t, target, results[0].Target)
	assert.True(t, fsutil.IsFile(filepath.Join(target, "robot_v2.3mf")))

	var files []models.ModelFile
	require.NoError(t, f.db.Where("model_id = ?", results[0].ModelID).Find(&files).Error)
	require.Len(t, files, 1)
	assert.Equal(t, "3mf", files[0].FileType)
}

func TestCategorizeNeedsAnAPIKey(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.service.StartCategorize(context.Background(), nil)
	assert.ErrorIs(t, err, suggest.ErrMissingAPIKey)
}

func TestCategorizeThroughAnOpenAICompatibleEndpoint(t *testing.T) {
	var prompt string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		prompt = body.Messages[0].Content

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant",` +
			`"content":"[{\"category\":\"Kitchen\",\"confidence\":\"high\"},{\"category\":\"Toys\",\"confidence\":\"medium\"}]"},"finish_reason":"stop"}]}`))
	}))
	t.Cleanup(server.Close)

	f := newFixture(t, Options{LLMProvider: "openai", LLMModel: "test-model", LLMBaseURL: server.URL + "/v1"})
	require.NoError(t, f.store.Set(context.Background(), settings.LLMAPIKey, "test-key"))

	items, err := f.service.Categorize(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, suggest.Suggestion{Category: "Kitchen", Confidence: suggest.High, Source: suggest.SourceLLM}, items[0].Suggestion)
	assert.Equal(t, suggest.Suggestion{Category: "Toys", Confidence: suggest.Medium, Source: suggest.SourceLLM}, items[1].Suggestion)
	assert.Contains(t, prompt, "Kitchen Spice Rack")
	assert.Contains(t, prompt, "Files: robot_v2.3mf")
	assert.False(t, f.service.CategorizeProgress().Active)
}
