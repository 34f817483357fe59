package api

import (
	"errors"
	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"net/http"
	"print-vault/catalog"
	"print-vault/ingest"
	"print-vault/scanner"
	"print-vault/suggest"
	"print-vault/watcher"
	"strconv"
)

var errInvalidID = errors.New("invalid id")

type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	notFoundErrors = []error{catalog.ErrNotFound}

	conflictErrors = []error{scanner.ErrScanInProgress, suggest.ErrCategorizeInProgress}

	badRequestErrors = []error{
		errInvalidID,
		scanner.ErrInvalidRoot,
		scanner.ErrInvalidMode,
		scanner.ErrFolderOutsideRoot,
		watcher.ErrModelRootNotSet,
		ingest.ErrIngestionRootNotSet,
		ingest.ErrModelRootNotSet,
		ingest.ErrRootMissing,
		ingest.ErrOutsideIngestionRoot,
		suggest.ErrMissingAPIKey,
		suggest.ErrUnknownProvider,
		catalog.ErrModelRootNotSet,
		catalog.ErrCategoryRequired,
	}

	unprocessableErrors = []error{
		catalog.ErrSolePrimaryImage,
		catalog.ErrNotAnImage,
		catalog.ErrHiddenAsset,
		catalog.ErrTargetExists,
		ingest.ErrTargetExists,
	}
)

func statusFor(err error) int {
	var validationErrors validation.Errors

	switch {
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case isAny(err, unprocessableErrors):
		return http.StatusUnprocessableEntity
	case isAny(err, badRequestErrors), errors.As(err, &validationErrors):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		s.log.Errorw("request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)

	if err != nil || id == 0 {
		return 0, errInvalidID
	}

	return uint(id), nil
}
