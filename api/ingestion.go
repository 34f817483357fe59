package api

import (
	"errors"
	"github.com/gin-gonic/gin"
	"net/http"
	"print-vault/ingest"
)

func (s *Server) ingestionCategories(c *gin.Context) {
	categories, err := s.ingest.Categories(c.Request.Context())

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ingestionScan lists the ingestion root with fuzzy suggestions only, so it never costs an LLM call.
func (s *Server) ingestionScan(c *gin.Context) {
	items, err := s.ingest.Scan(c.Request.Context())

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

type categorizeRequest struct {
	Items []ingest.Item `json:"items"`
}

func (s *Server) startCategorize(c *gin.Context) {
	var request categorizeRequest

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			s.badRequest(c, err)
			return
		}
	}

	jobID, err := s.ingest.StartCategorize(c.Request.Context(), request.Items)

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

func (s *Server) categorizeStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.ingest.CategorizeProgress())
}

type importRequest struct {
	Items []ingest.ImportRequest `json:"items"`
}

func (s *Server) importItems(c *gin.Context) {
	var request importRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		s.badRequest(c, err)
		return
	}

	if len(request.Items) == 0 {
		s.badRequest(c, errors.New("nothing to import"))
		return
	}

	results, err := s.ingest.Import(c.Request.Context(), request.Items)

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
