package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "nomenclator/internal/app"
	"nomenclator/internal/bootstrap"
	"nomenclator/internal/cache"
	"nomenclator/internal/fieldblock"
	"nomenclator/internal/logging"
	"nomenclator/internal/platform/rabbitmq"
	"nomenclator/internal/repository"
	"nomenclator/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(logging.GinLogger(app.Logger.Named("http")), gin.Recovery())
	router.MaxMultipartMemory = app.Config.MaxUploadBytes()

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.StaticFile("/app.js", "web/app.js")
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(app.Metrics.Handler()))

	var groupCache appsvc.FieldGroupCache
	if app.Redis != nil {
		groupCache = cache.NewFieldGroupCache(
			app.Redis,
			time.Duration(app.Config.Redis.ParseCacheTTLSeconds)*time.Second,
		)
	}
	var publisher appsvc.RecordEventPublisher
	if app.MQConn != nil {
		publisher = rabbitmq.NewRecordEventPublisher(app.MQConn, app.Config.RabbitMQ.RecordEventQueue)
	}

	nomenclatureRepo := repository.NewNomenclatureRepository(app.DB)
	fieldService := appsvc.NewFieldService(
		fieldblock.NewParser(app.Logger.Named("parser")),
		groupCache,
		appsvc.FieldServiceOptions{
			UploadDir: app.Config.Upload.Dir,
			KeepFiles: app.Config.Upload.KeepFiles,
			MaxBytes:  app.Config.MaxUploadBytes(),
		},
		app.Metrics,
		app.Logger.Named("fields"),
	)
	nomenclatureService := appsvc.NewNomenclatureService(
		nomenclatureRepo,
		publisher,
		app.Metrics,
		app.Logger.Named("nomenclature"),
	)
	fieldHandler := handler.NewFieldHandler(fieldService)
	nomenclatureHandler := handler.NewNomenclatureHandler(nomenclatureService, app.Config.Export.Filename)

	v1 := router.Group("/api/v1")
	v1.POST("/fields/upload", fieldHandler.Upload)

	nomenclatureGroup := v1.Group("/nomenclatures")
	nomenclatureGroup.POST("/compose", nomenclatureHandler.Compose)
	nomenclatureGroup.POST("", nomenclatureHandler.Save)
	nomenclatureGroup.GET("", nomenclatureHandler.List)
	nomenclatureGroup.GET("/export", nomenclatureHandler.Export)

	// Paths used by earlier clients.
	router.POST("/upload", fieldHandler.Upload)
	router.POST("/save_nomenclature", nomenclatureHandler.Save)
	router.GET("/get_nomenclatures", nomenclatureHandler.List)
	router.GET("/export", nomenclatureHandler.Export)

	return router
}
