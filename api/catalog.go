package api

import (
	"context"
	"github.com/gin-gonic/gin"
	"net/http"
)

func (s *Server) queue(c *gin.Context) {
	queue, err := s.catalog.Queue(c.Request.Context())

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"queue": queue})
}

func (s *Server) toggleFavorite(c *gin.Context) {
	id, err := idParam(c, "id")

	if err != nil {
		s.fail(c, err)
		return
	}

	favorited, err := s.catalog.ToggleFavorite(c.Request.Context(), id)

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}

func (s *Server) enqueue(c *gin.Context) {
	s.idAction(c, s.catalog.Enqueue)
}

func (s *Server) dequeue(c *gin.Context) {
	s.idAction(c, s.catalog.Dequeue)
}

type printedRequest struct {
	Rating int    `json:"rating"`
	Notes  string `json:"notes"`
}

func (s *Server) markPrinted(c *gin.Context) {
	id, err := idParam(c, "id")

	if err != nil {
		s.fail(c, err)
		return
	}

	var request printedRequest

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			s.badRequest(c, err)
			return
		}
	}

	printed, err := s.catalog.MarkPrinted(c.Request.Context(), id, request.Rating, request.Notes)

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, printed)
}

type tagRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) addTag(c *gin.Context) {
	id, err := idParam(c, "id")

	if err != nil {
		s.fail(c, err)
		return
	}

	var request tagRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		s.badRequest(c, err)
		return
	}

	tag, err := s.catalog.AddTag(c.Request.Context(), id, request.Name)

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}

func (s *Server) removeTag(c *gin.Context) {
	id, err := idParam(c, "id")

	if err != nil {
		s.fail(c, err)
		return
	}

	tagID, err := idParam(c, "tagId")

	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.catalog.RemoveTag(c.Request.Context(), id, tagID); err != nil {
		s.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type hideRequest struct {
	Hidden *bool `json:"hidden"`
}

// hideAsset hides by default; send {"hidden": false} to show the asset again.
func (s *Server) hideAsset(c *gin.Context) {
	id, err := idParam(c, "id")

	if err != nil {
		s.fail(c, err)
		return
	}

	var request hideRequest

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			s.badRequest(c, err)
			return
		}
	}

	hidden := request.Hidden == nil || *request.Hidden

	if err := s.catalog.SetHidden(c.Request.Context(), id, hidden); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "hidden": hidden})
}

func (s *Server) setPrimary(c *gin.Context) {
	id, err := idParam(c, "id")

	if err != nil {
		s.fail(c, err)
		return
	}

	if err := s.catalog.SetPrimary(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "primary": true})
}

type organizeRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
}

func (s *Server) organizeLoose(c *gin.Context) {
	id, err := idParam(c, "id")

	if err != nil {
		s.fail(c, err)
		return
	}

	var request organizeRequest

	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			s.badRequest(c, err)
			return
		}
	}

	model, err := s.catalog.OrganizeLoose(c.Request.Context(), id, request.Category, request.Name)

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, model)
}

func (s *Server) trashLoose(c *gin.Context) {
	s.idAction(c, s.catalog.TrashLoose)
}

// idAction runs action for the :id path parameter and answers 204.
func (s *Server) idAction(c *gin.Context, action func(ctx context.Context, id uint) error) {
	id, err := idParam(c, "id")

	if err != nil {
		s.fail(c, err)
		return
	}

	if err := action(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
