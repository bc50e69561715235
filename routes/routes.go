// Package routes wires the HTTP surface of the LawGuide AI service.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dacchu2004/lawGuide/handlers"
	"github.com/Dacchu2004/lawGuide/middleware"
	"github.com/Dacchu2004/lawGuide/retrieval"
	"github.com/Dacchu2004/lawGuide/translate"
)

// Deps bundles the collaborators the routes need.
type Deps struct {
	Answerer    handlers.QueryAnswerer
	Summarizer  handlers.Summarizer
	Retriever   retrieval.SectionRetriever
	Translator  translate.Translator
	SearchTopK  int
	RateLimiter *middleware.RateLimiter
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Middleware())
	}
	{
		api.POST("/answer", handlers.HandleAnswer(deps.Answerer))
		api.POST("/search-sections", handlers.HandleSearchSections(deps.Retriever, deps.Translator, deps.SearchTopK))
		api.POST("/summarize-section", handlers.HandleSummarizeSection(deps.Summarizer))
	}
}
