package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muskan-shah-02/dokydoc/internal/middleware"
)

type RouterDeps struct {
	Documents  *DocumentHandler
	Analysis   *AnalysisHandler
	Components *CodeComponentHandler
	Links      *LinkHandler
	Validation *ValidationHandler
	JWTSecret  []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	// one AI-triggering request per second per caller and path
	aiLimit := middleware.RateLimit(time.Second)

	authGroup.POST("/documents/upload", deps.Documents.Upload)
	authGroup.GET("/documents", deps.Documents.List)
	authGroup.GET("/documents/:id", deps.Documents.Get)
	authGroup.DELETE("/documents/:id", deps.Documents.Delete)

	authGroup.POST("/documents/:id/analysis/run", aiLimit, deps.Analysis.Run)
	authGroup.GET("/documents/:id/analysis", deps.Analysis.Get)
	authGroup.GET("/documents/:id/analysis/consolidated", deps.Analysis.GetConsolidated)
	authGroup.POST("/documents/:id/analysis/consolidate", aiLimit, deps.Analysis.GenerateConsolidated)

	authGroup.POST("/code-components", deps.Components.Create)
	authGroup.GET("/code-components", deps.Components.List)
	authGroup.GET("/code-components/:id", deps.Components.Get)
	authGroup.DELETE("/code-components/:id", deps.Components.Delete)
	authGroup.POST("/code-components/:id/analyze", aiLimit, deps.Components.Analyze)

	authGroup.POST("/links", deps.Links.Create)
	authGroup.DELETE("/links", deps.Links.Delete)
	authGroup.GET("/documents/:id/links", deps.Links.ListByDocument)

	authGroup.POST("/validation/run-scan", aiLimit, deps.Validation.RunScan)
	authGroup.GET("/validation/mismatches", deps.Validation.ListMismatches)
}
