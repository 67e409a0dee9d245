package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "querydraft/docs" // Swagger docs
)

// RequestLogger logs one line per request through zerolog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		ev.Str("component", "http").
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}

// corsConfig allows the listed origins, or every origin when the list is
// empty or contains "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Accept-Encoding", "Authorization", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowWebSockets:  true,
		MaxAge:           24 * time.Hour,
	}
	wildcard := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			wildcard = true
		}
	}
	if wildcard {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(h *Handlers, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), cors.New(corsConfig(corsOrigins)))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", h.HealthHandler)

	api := r.Group("/api")
	{
		api.POST("/sessions", h.CreateSessionHandler)
		api.GET("/sessions", h.ListSessionsHandler)

		s := api.Group("/sessions/:id")
		s.GET("", h.GetSessionHandler)
		s.DELETE("", h.DeleteSessionHandler)
		s.PUT("/dialect", h.SetDialectHandler)
		s.POST("/submit", h.SubmitHandler)
		s.POST("/undo", h.UndoHandler)
		s.GET("/history", h.HistoryHandler)
		s.GET("/events", h.EventsHandler)

		s.POST("/turns/:pos/regenerate", h.RegenerateHandler)
		s.POST("/turns/:pos/run", h.RunHandler)
		s.POST("/turns/:pos/confirm", h.ConfirmHandler)
		s.POST("/turns/:pos/reject", h.RejectHandler)
		s.POST("/turns/:pos/select", h.SelectHandler)
		s.POST("/turns/:pos/report", h.ReportHandler)
		s.GET("/turns/:pos/result", h.TurnResultHandler)

		s.POST("/results/:pos/show", h.ShowResultsHandler)
		s.POST("/results/close", h.CloseResultsHandler)

		api.POST("/sql/upload", h.UploadSQLFileHandler)
		api.GET("/sql/files", h.ListSQLFilesHandler)

		api.GET("/results/files", h.ListResultFilesHandler)
		api.GET("/results/file/:filename", h.GetResultFileHandler)

		api.GET("/feedback", h.ListFeedbackHandler)
	}

	return r
}
