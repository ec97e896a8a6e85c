// Package api wires the evaluation HTTP endpoints.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ts-objective/internal/api/handlers"
	"ts-objective/internal/api/middleware"
)

type Deps struct {
	DataDir  string
	MaxSteps int
	Store    handlers.EvaluationStore
	Recorder handlers.Recorder
	// Gatherer backs /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
	Origins  []string
}

func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS(d.Origins...))
	router.Use(middleware.Logger(d.Logger))
	router.Use(middleware.ErrorHandler(d.Logger))

	evaluations := handlers.NewEvaluationHandler(d.DataDir, d.MaxSteps, d.Store, d.Recorder, d.Logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/algorithms", handlers.ListAlgorithms)
		v1.POST("/evaluations", evaluations.RunEvaluation)
		v1.POST("/evaluations/compare", evaluations.CompareEvaluations)
		v1.GET("/evaluations/:id", evaluations.GetEvaluation)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
