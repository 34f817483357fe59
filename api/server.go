// Package api is the HTTP surface over the scanner, watcher, ingestion and catalog services.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"print-vault/catalog"
	"print-vault/ingest"
	"print-vault/scanner"
	"print-vault/settings"
	"print-vault/watcher"
	"time"
)

type Server struct {
	settings *settings.Store
	scanner  *scanner.Scanner
	watcher  *watcher.Watcher
	ingest   *ingest.Service
	catalog  *catalog.Catalog
	log      *zap.SugaredLogger
}

type Dependencies struct {
	Settings *settings.Store
	Scanner  *scanner.Scanner
	Watcher  *watcher.Watcher
	Ingest   *ingest.Service
	Catalog  *catalog.Catalog
	Log      *zap.SugaredLogger
}

func NewServer(deps Dependencies) *Server {
	return &Server{
		settings: deps.Settings,
		scanner:  deps.Scanner,
		watcher:  deps.Watcher,
		ingest:   deps.Ingest,
		catalog:  deps.Catalog,
		log:      deps.Log,
	}
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(s.requestLogger(), gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.putSettings)

		api.POST("/scan", s.startScan)
		api.GET("/scan/status", s.scanStatus)

		api.GET("/watcher", s.watcherStatus)
		api.POST("/watcher/toggle", s.toggleWatcher)
		api.POST("/watcher/restart", s.restartWatcher)

		api.GET("/ingestion/categories", s.ingestionCategories)
		api.POST("/ingestion/scan", s.ingestionScan)
		api.POST("/ingestion/categorize", s.startCategorize)
		api.GET("/ingestion/categorize/status", s.categorizeStatus)
		api.POST("/ingestion/import", s.importItems)

		api.GET("/queue", s.queue)
		api.POST("/models/:id/favorite", s.toggleFavorite)
		api.POST("/models/:id/queue", s.enqueue)
		api.DELETE("/models/:id/queue", s.dequeue)
		api.POST("/models/:id/printed", s.markPrinted)
		api.POST("/models/:id/tags", s.addTag)
		api.DELETE("/models/:id/tags/:tagId", s.removeTag)

		api.POST("/assets/:id/hide", s.hideAsset)
		api.POST("/assets/:id/primary", s.setPrimary)

		api.POST("/loose/:id/organize", s.organizeLoose)
		api.DELETE("/loose/:id", s.trashLoose)
	}

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debugw("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
