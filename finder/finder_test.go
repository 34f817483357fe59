package finder

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNoop(t *testing.T) {
	var tagger Tagger = Noop{}

	assert.False(t, tagger.SetTags(context.Background(), "/tmp/x", []string{"Toys"}))
	assert.Nil(t, tagger.GetTags(context.Background(), "/tmp/x"))
}

func TestCLIFailuresAreSwallowed(t *testing.T) {
	cli := NewCLI(filepath.Join(t.TempDir(), "no-such-tag-binary"), zaptest.NewLogger(t).Sugar())

	assert.False(t, cli.SetTags(context.Background(), t.TempDir(), []string{"Toys"}))
	assert.Nil(t, cli.GetTags(context.Background(), t.TempDir()))
}

func TestCLIParsesTagList(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	binary := filepath.Join(t.TempDir(), "tag")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\nprintf 'Toys\\n\\nPaid\\n'\n"), 0700))

	cli := NewCLI(binary, zaptest.NewLogger(t).Sugar())
	assert.True(t, cli.SetTags(context.Background(), t.TempDir(), []string{"Toys"}))
	assert.Equal(t, []string{"Toys", "Paid"}, cli.GetTags(context.Background(), t.TempDir()))
}
