package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"tcm-clinic/internal/ai"
	appsvc "tcm-clinic/internal/app"
	"tcm-clinic/internal/bootstrap"
	"tcm-clinic/internal/cache"
	"tcm-clinic/internal/platform/rabbitmq"
	"tcm-clinic/internal/repository"
	"tcm-clinic/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.LoadHTMLGlob("web/templates/*.html")

	recordRepo := repository.NewRecordRepository(app.Postgres)
	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	auditPublisher := rabbitmq.NewAuditPublisher(app.MQConn, app.Config.RabbitMQ.AuditEventQueue)
	generator := ai.NewGeminiClient(time.Duration(app.Config.Gemini.TimeoutSeconds) * time.Second)

	reportService := appsvc.NewReportService(
		recordRepo,
		generator,
		auditPublisher,
		historyCache,
		ai.GenerateConfig{
			BaseURL: app.Config.Gemini.BaseURL,
			APIKey:  app.Config.Gemini.APIKey,
			Model:   app.Config.Gemini.Model,
		},
		time.Duration(app.Config.Gemini.TimeoutSeconds)*time.Second,
		app.Log,
	)
	recordService := appsvc.NewRecordService(
		recordRepo,
		historyCache,
		auditPublisher,
		appsvc.NewSharedSecretPolicy(app.Config.Deletion.Password),
		app.Log,
	)

	recordHandler := handler.NewRecordHandler(reportService, recordService, app.Log)
	healthHandler := handler.NewHealthHandler(app)

	router.GET("/", recordHandler.Home)
	router.GET("/healthz", healthHandler.Check)
	router.POST("/generate_tcm_report", recordHandler.GenerateReport)
	router.GET("/history", recordHandler.History)
	router.GET("/download/:id", recordHandler.Download)
	router.POST("/delete_record/:id", recordHandler.Delete)

	return router
}
