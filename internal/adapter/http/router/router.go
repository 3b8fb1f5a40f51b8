package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/orbitml/exoserve/internal/adapter/http/handler"
	"github.com/orbitml/exoserve/internal/adapter/http/middleware"
	"github.com/orbitml/exoserve/internal/domain/entity"
	"github.com/orbitml/exoserve/internal/domain/repository"
	"github.com/orbitml/exoserve/internal/infrastructure/config"
	"github.com/orbitml/exoserve/internal/usecase"
)

// Setup creates and configures the Gin router
func Setup(cfg *config.Config, registry repository.ModelRegistry, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())

	// Ignored raw input columns per dataset type
	ignored := make(map[entity.DatasetType][]string, len(cfg.Models))
	for dt, artifacts := range cfg.Models {
		ignored[entity.DatasetType(dt)] = artifacts.DropColumns
	}

	// Initialize usecases
	predictUC := usecase.NewPredictUsecase(registry, ignored, logger)

	// Initialize handlers
	predictHandler := handler.NewPredictHandler(predictUC)
	modelHandler := handler.NewModelHandler(predictUC)
	healthHandler := handler.NewHealthHandler(config.ServiceName, registry)

	// Health endpoints
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Serving endpoints
	router.POST("/predict", predictHandler.Predict)
	router.GET("/models", modelHandler.List)

	return router
}
