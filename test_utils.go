package main

import (
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"os"
	"path/filepath"
	"print-vault/config"
	"print-vault/database"
	"testing"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	t.Setenv("LLM_API_KEY", "")

	c, err := config.Parse(defaultConfigData)
	require.NoError(t, err)

	ctx := newContext(c, database.NewTestDB(t), zaptest.NewLogger(t).Sugar())
	t.Cleanup(ctx.Watcher.Stop)
	return ctx
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

// createTempLibrary lays out a model root with two categories, a loose file and an ignored
// .DS_Store, plus an ingestion root holding one folder and one file.
func createTempLibrary(t *testing.T) (modelRoot, ingestionRoot string) {
	t.Helper()
	modelRoot = t.TempDir()
	ingestionRoot = t.TempDir()

	writeTestFile(t, filepath.Join(modelRoot, "Kitchen", "Spice Rack", "rack.stl"), "solid rack")
	writeTestFile(t, filepath.Join(modelRoot, "Kitchen", "Spice Rack", "rack.png"), "png")
	writeTestFile(t, filepath.Join(modelRoot, "Toys", "Dragon", "dragon.stl"), "solid dragon")
	writeTestFile(t, filepath.Join(modelRoot, "Toys", "Dragon", ".DS_Store"), "")
	writeTestFile(t, filepath.Join(modelRoot, "Toys", "robot.stl"), "solid robot")

	writeTestFile(t, filepath.Join(ingestionRoot, "Kitchen_Knife_Block", "block.stl"), "solid block")
	writeTestFile(t, filepath.Join(ingestionRoot, "toy_car.3mf"), "not really a zip")

	return modelRoot, ingestionRoot
}
