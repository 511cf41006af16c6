package main

import (
	"github.com/gin-gonic/gin"

	"sales-crm/internal/httpapi"
	"sales-crm/pkg/metrics"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers) {
	r.Use(metrics.Middleware())

	// public
	r.GET("/healthz", h.Health)
	r.GET("/metrics", metrics.Handler())

	h.Register(r)
}
