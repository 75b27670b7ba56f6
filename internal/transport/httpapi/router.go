package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Lllllllleong/bloggerimageuploader/internal/apperr"
	"github.com/Lllllllleong/bloggerimageuploader/internal/models"
)

const (
	// RequestIDHeader carries the per-request id on responses.
	RequestIDHeader = "X-Request-ID"

	serviceName    = "Blogger Image Uploader API"
	serviceVersion = "1.0.0"
)

// Processor runs the post-to-image pipeline for one request.
type Processor interface {
	Process(ctx context.Context, req *models.ProcessRequest) (*models.ProcessResponse, error)
}

// ProcessorProvider returns the processor to use for a request. Serverless
// entry points resolve it lazily so configuration errors surface per request.
type ProcessorProvider func(ctx context.Context) (Processor, error)

// Options configures the router builder.
type Options struct {
	Processor   ProcessorProvider
	Environment string
	// Description overrides the default service description text.
	Description string
	Debug       bool
}

// NewRouter builds the gin engine serving the public API.
func NewRouter(opts Options) *gin.Engine {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.Use(corsMiddleware())
	engine.Use(requestIDMiddleware())
	engine.Use(loggingMiddleware())
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Error("Recovered from panic.", "panic", recovered, "requestId", requestID(c))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprint(recovered)})
	}))

	h := &handlers{
		processor:   opts.Processor,
		environment: opts.Environment,
		description: opts.Description,
	}
	engine.GET("/", h.describe)
	engine.GET("/api/hello", h.hello)
	engine.POST("/api/process", h.process)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed"})
	})
	return engine
}

// corsMiddleware sets the CORS headers on every response, with or without
// an Origin header, and answers preflight requests itself.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

const requestIDKey = "requestId"

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Info("HTTP request served.",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"requestId", requestID(c),
		)
	}
}

type handlers struct {
	processor   ProcessorProvider
	environment string
	description string
}

func (h *handlers) describe(c *gin.Context) {
	description := h.description
	if description == "" {
		description = "Serverless API to upload WordPress post images to Google Drive"
	}
	c.JSON(http.StatusOK, models.ServiceDescription{
		Name:        serviceName,
		Version:     serviceVersion,
		Description: description,
		Endpoints: map[string]string{
			"GET /":             "API documentation (this page)",
			"GET /api/hello":    "Test endpoint - returns Hello World",
			"POST /api/process": "Main endpoint - processes WordPress post images",
		},
		Usage: models.ServiceUsage{
			Endpoint: "/api/process",
			Method:   http.MethodPost,
			Body: map[string]string{
				"postUrl":  "WordPress post URL",
				"password": "API password (if configured)",
			},
		},
	})
}

func (h *handlers) hello(c *gin.Context) {
	c.JSON(http.StatusOK, models.HelloResponse{
		Message:     "Hello World",
		Status:      "API is working!",
		Timestamp:   time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Environment: h.environment,
	})
}

func (h *handlers) process(c *gin.Context) {
	ctx := c.Request.Context()

	processor, err := h.processor(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	var req models.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSON"})
		return
	}

	resp, err := processor.Process(ctx, &req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// writeError is the only place error kinds become status codes.
func writeError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	switch appErr.Kind {
	case apperr.KindValidation, apperr.KindUpstreamFetch:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: appErr.Message})
	case apperr.KindAuth:
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: appErr.Message, Message: appErr.Detail})
	case apperr.KindNoContent:
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: appErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}
}
