// cmd/relatorio/main.go
package main

import (
	"log"

	"rental-report-service/internal/api/handlers"
	"rental-report-service/internal/api/middleware"
	"rental-report-service/internal/api/responses"
	"rental-report-service/internal/config"
	"rental-report-service/internal/core/ingest"
	"rental-report-service/internal/core/report"
	"rental-report-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := responses.InitLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Falha ao iniciar o logger: ", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	reportService := report.NewService(ingest.NewLoader(), logger)
	reportHandler := handlers.NewReportHandler(reportService, cfg.MaxUploadBytes())

	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(logger))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/relatorio", reportHandler.HandleReport)
		apiV1.POST("/relatorio/exportar", reportHandler.HandleExport)
		apiV1.POST("/relatorio/exportar/:subrelatorio", reportHandler.HandleExportSubReport)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "relatorio-service"})
	})

	if cfg.MetricsEnabled {
		metrics.Init()
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	logger.Info("Relatório Service iniciado", zap.String("port", cfg.Port), zap.Bool("metrics", cfg.MetricsEnabled))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Falha ao iniciar o servidor de relatório", zap.Error(err))
	}
}
