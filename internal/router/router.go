package router

import (
	"html/template"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "leafdoc/docs" // registers the OpenAPI spec served under /swagger
	"leafdoc/internal/handler"
	"leafdoc/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Page    *handler.PageHandler
	Session *handler.SessionHandler
	Analyze *handler.AnalyzeHandler
	Health  *handler.HealthHandler
}

// Options holds the router settings taken from configuration.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	Templates      *template.Template
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, opts Options) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.SetHTMLTemplate(opts.Templates)
	r.MaxMultipartMemory = opts.MaxUploadBytes + (1 << 20)
	upload := middleware.BodyLimit(opts.MaxUploadBytes)

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Browser UI
	r.GET("/", h.Page.Index)
	r.POST("/upload", upload, h.Page.Upload)
	r.POST("/reset", h.Page.Reset)
	r.GET("/preview", h.Page.Preview)

	v1 := r.Group("/api/v1")

	v1.POST("/analyze", upload, h.Analyze.Analyze)

	sessions := v1.Group("/sessions")
	sessions.POST("", h.Session.Create)
	sessions.GET("/:id", h.Session.Get)
	sessions.POST("/:id/analyze", upload, h.Session.Analyze)
	sessions.POST("/:id/reset", h.Session.Reset)
	sessions.GET("/:id/preview", h.Session.Preview)
	sessions.DELETE("/:id", h.Session.Delete)

	return r
}
