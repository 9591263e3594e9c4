package router

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ukaji3/jsonsheet-go/internal/handler"
	"github.com/ukaji3/jsonsheet-go/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
// maxUploadBytes caps import request bodies; zero disables the cap.
func Setup(
	sessionH *handler.SessionHandler,
	streamH *handler.StateStreamHandler,
	maxUploadBytes int64,
	logger *log.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.GET("/state", sessionH.State)
	v1.GET("/ws", streamH.Stream)

	v1.POST("/import", middleware.BodyLimit(maxUploadBytes), sessionH.Import)
	v1.POST("/import/cancel", sessionH.Cancel)
	v1.PUT("/search", sessionH.SetSearchTerms)
	v1.POST("/convert", sessionH.Convert)
	v1.POST("/clear", sessionH.Clear)
	v1.GET("/export", sessionH.Export)

	sheets := v1.Group("/sheets")
	sheets.GET("", sessionH.ListSheets)
	sheets.PUT("/active", sessionH.SelectSheet)
	sheets.GET("/:name", sessionH.GetSheet)

	return r
}
