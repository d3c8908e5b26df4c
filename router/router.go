package router

import (
	controllers "webdl/controller"
	"webdl/web"

	"github.com/gin-gonic/gin"
)

func SetupRouter(h *controllers.Handler) *gin.Engine {

	r := gin.Default()
	r.SetHTMLTemplate(web.Templates())

	r.GET("/", h.IndexHandler)
	r.GET("/files", h.FileHandler)

	api := r.Group("/api")
	api.POST("/info", h.InfoHandler)
	api.POST("/download", h.DownloadHandler)
	api.POST("/bulk", h.BulkHandler)
	api.GET("/settings", h.GetSettingsHandler)
	api.POST("/settings", h.UpdateSettingsHandler)
	api.GET("/health", h.HealthHandler)

	r.GET("/ws/:request_id", h.WebSocketHandler)
	r.GET("/events/:request_id", h.SSEHandler)

	return r
}
