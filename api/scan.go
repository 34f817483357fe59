package api

import (
	"context"
	"errors"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"net/http"
	"print-vault/scanner"
	"print-vault/settings"
	"strings"
)

var editableSettings = []any{
	settings.IngestionRoot,
	settings.LLMAPIKey,
	settings.CustomPrompt,
	settings.ModelRoot,
	settings.FileWatcherEnabled,
}

const maskedValue = "********"

func (s *Server) getSettings(c *gin.Context) {
	values, err := s.settings.All(c.Request.Context())

	if err != nil {
		s.fail(c, err)
		return
	}

	if values[settings.LLMAPIKey] != "" {
		values[settings.LLMAPIKey] = maskedValue
	}

	c.JSON(http.StatusOK, values)
}

func (s *Server) putSettings(c *gin.Context) {
	var values map[string]string

	if err := c.ShouldBindJSON(&values); err != nil {
		s.badRequest(c, err)
		return
	}

	for key := range values {
		if err := validation.Validate(key, validation.In(editableSettings...)); err != nil {
			s.badRequest(c, errors.New("unknown setting "+key))
			return
		}
	}

	ctx := c.Request.Context()
	restartWatcher := false

	for key, value := range values {
		if key == settings.LLMAPIKey && value == maskedValue {
			continue
		}

		if key == settings.FileWatcherEnabled {
			if err := s.watcher.SetEnabled(ctx, value == "true"); err != nil {
				s.fail(c, err)
				return
			}

			continue
		}

		if err := s.settings.Set(ctx, key, strings.TrimSpace(value)); err != nil {
			s.fail(c, err)
			return
		}

		restartWatcher = restartWatcher || key == settings.ModelRoot
	}

	if restartWatcher {
		if err := s.watcher.Restart(ctx); err != nil {
			s.fail(c, err)
			return
		}
	}

	s.getSettings(c)
}

type scanRequest struct {
	Directory string `json:"directory"`
	Mode      string `json:"mode"`
}

// startScan answers 202 straight away; progress is read from /scan/status.
func (s *Server) startScan(c *gin.Context) {
	var request scanRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		s.badRequest(c, err)
		return
	}

	mode, err := scanner.ParseMode(request.Mode)

	if err != nil {
		s.fail(c, err)
		return
	}

	directory := strings.TrimSpace(request.Directory)

	if directory == "" {
		if directory, err = s.settings.Get(c.Request.Context(), settings.ModelRoot); err != nil {
			s.fail(c, err)
			return
		}
	}

	if err := s.scanner.Start(context.WithoutCancel(c.Request.Context()), directory, mode); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusAccepted, s.scanner.Status())
}

func (s *Server) scanStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.scanner.Status())
}

func (s *Server) watcherStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.watcher.Status())
}

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

func (s *Server) toggleWatcher(c *gin.Context) {
	var request toggleRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		s.badRequest(c, err)
		return
	}

	if err := s.watcher.SetEnabled(c.Request.Context(), request.Enabled); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, s.watcher.Status())
}

func (s *Server) restartWatcher(c *gin.Context) {
	if err := s.watcher.Restart(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, s.watcher.Status())
}
