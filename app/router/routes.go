// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/medops/core-engine/app/dto"
	"github.com/medops/core-engine/app/handlers"
	"github.com/medops/core-engine/app/middleware"
	"github.com/medops/core-engine/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	registryHandler  handlers.RegistryHandlerInterface
	workspaceHandler handlers.WorkspaceHandlerInterface
	allowedOrigins   []string
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	registryHandler handlers.RegistryHandlerInterface,
	workspaceHandler handlers.WorkspaceHandlerInterface,
	allowedOrigins []string,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Core Engine API",
		ServerHeader: "core-engine",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		registryHandler:  registryHandler,
		workspaceHandler: workspaceHandler,
		allowedOrigins:   allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	api := r.app.Group("/api/v1")

	// Health and metrics are excluded from rate limiting
	api.Get("/health", r.healthCheck)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Registry endpoints: reference data and assignment persistence
	registry := api.Group("/registry")
	registry.Get("/clients", r.registryHandler.ListClients)
	registry.Get("/clients/:clientId/contracts", r.registryHandler.ListContracts)
	registry.Get("/contracts/:contractInternalId/operation-units", r.registryHandler.ListOperationUnits)
	registry.Get("/operation-units/:operationUnitInternalId/cags", r.registryHandler.ListAssignedCAGs)
	registry.Post("/cags/search", r.registryHandler.SearchCAGs)
	registry.Post("/cags/assign", r.registryHandler.AssignCAGs)
	registry.Put("/cags/status", r.registryHandler.UpdateCAGStatus)

	// Workspace endpoints: per-session selection, paging, search, and mutations
	workspaces := api.Group("/workspaces")
	workspaces.Post("/", r.workspaceHandler.CreateWorkspace)
	workspaces.Get("/:workspaceId", r.workspaceHandler.GetWorkspace)
	workspaces.Delete("/:workspaceId", r.workspaceHandler.DeleteWorkspace)

	workspaces.Put("/:workspaceId/cascade/client", r.workspaceHandler.SelectClient)
	workspaces.Put("/:workspaceId/cascade/contract", r.workspaceHandler.SelectContract)
	workspaces.Put("/:workspaceId/cascade/operation-unit", r.workspaceHandler.SelectOperationUnit)

	workspaces.Put("/:workspaceId/assigned/page", r.workspaceHandler.SetAssignedPage)
	workspaces.Post("/:workspaceId/assigned/refresh", r.workspaceHandler.RefreshAssigned)
	workspaces.Put("/:workspaceId/assigned/selection", r.workspaceHandler.SetAssignedSelection)
	workspaces.Put("/:workspaceId/assigned/selection/toggle", r.workspaceHandler.ToggleAssignedSelection)
	workspaces.Put("/:workspaceId/assigned/status", r.workspaceHandler.UpdateAssignedStatus)
	workspaces.Get("/:workspaceId/assigned/export", r.workspaceHandler.ExportAssigned)

	workspaces.Put("/:workspaceId/search/params", r.workspaceHandler.SetSearchParams)
	workspaces.Post("/:workspaceId/search", r.workspaceHandler.RunSearch)
	workspaces.Delete("/:workspaceId/search", r.workspaceHandler.ClearSearch)
	workspaces.Put("/:workspaceId/search/selection", r.workspaceHandler.SetSearchSelection)
	workspaces.Put("/:workspaceId/search/selection/toggle", r.workspaceHandler.ToggleSearchSelection)
	workspaces.Post("/:workspaceId/search/assign", r.workspaceHandler.AssignSelected)

	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 year
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.allowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == "/metrics"
		},
	}))

	// Prometheus request metrics
	r.app.Use(middleware.Metrics())

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "core-engine-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
