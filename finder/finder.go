// Package finder mirrors categories onto macOS Finder tags. Everything here is best effort.
package finder

import (
	"context"
	"go.uber.org/zap"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

const commandTimeout = 10 * time.Second

type Tagger interface {
	SetTags(ctx context.Context, path string, tags []string) bool
	GetTags(ctx context.Context, path string) []string
}

type Noop struct{}

func (Noop) SetTags(context.Context, string, []string) bool { return false }

func (Noop) GetTags(context.Context, string) []string { return nil }

// CLI drives the `tag` command line tool (https://github.com/jdberry/tag).
type CLI struct {
	binary string
	log    *zap.SugaredLogger
}

// New returns a CLI tagger on macOS when the tag binary is installed and Noop otherwise.
func New(log *zap.SugaredLogger) Tagger {
	if runtime.GOOS != "darwin" {
		return Noop{}
	}

	binary, err := exec.LookPath("tag")

	if err != nil {
		log.Debug("tag binary not found, finder tags are disabled")
		return Noop{}
	}

	return NewCLI(binary, log)
}

func NewCLI(binary string, log *zap.SugaredLogger) *CLI {
	return &CLI{binary: binary, log: log}
}

// SetTags replaces the tags on path.
func (c *CLI) SetTags(ctx context.Context, path string, tags []string) bool {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, c.binary, "--set", strings.Join(tags, ","), path).CombinedOutput()

	if err != nil {
		c.log.Warnw("could not set finder tags", "path", path, "tags", tags, "error", err, "output", string(output))
		return false
	}

	return true
}

func (c *CLI) GetTags(ctx context.Context, path string) []string {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, c.binary, "--list", "--no-name", "--garrulous", path).Output()

	if err != nil {
		c.log.Warnw("could not read finder tags", "path", path, "error", err)
		return nil
	}

	var tags []string

	for _, line := range strings.Split(string(output), "\n") {
		if tag := strings.TrimSpace(line); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}
