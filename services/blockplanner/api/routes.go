// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

// RegisterRoutes registers the /blockplanner endpoints on rg.
//
// Endpoints:
//
//	POST /v1/blockplanner/plan - Plan one or more interpretations
//	POST /v1/blockplanner/check - Evaluate a formula in a world
//	POST /v1/blockplanner/legal - Ask the physics about a relation
//	POST /v1/blockplanner/simulate - Run actions from a world
//	GET  /v1/blockplanner/worlds - List built-in worlds
//	GET  /v1/blockplanner/worlds/:name - Fetch a built-in world
//	GET  /v1/blockplanner/health - Health check
//	GET  /v1/blockplanner/ready - Readiness check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	bp := rg.Group("/blockplanner")
	{
		bp.POST("/plan", handlers.HandlePlan)
		bp.POST("/check", handlers.HandleCheck)
		bp.POST("/legal", handlers.HandleLegal)
		bp.POST("/simulate", handlers.HandleSimulate)

		bp.GET("/worlds", handlers.HandleListWorlds)
		bp.GET("/worlds/:name", handlers.HandleGetWorld)

		bp.GET("/health", handlers.HandleHealth)
		bp.GET("/ready", handlers.HandleReady)
	}
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// ServiceName names the otelgin server spans. Empty disables tracing
	// middleware.
	ServiceName string

	// RateLimit is requests per second across all clients. Zero disables
	// rate limiting.
	RateLimit float64
	Burst     int

	// Metrics serves /metrics when non-nil.
	Metrics http.Handler

	Logger *slog.Logger
}

// NewRouter builds the engine with recovery, tracing, request logging and
// rate limiting, then registers the routes under /v1.
func NewRouter(cfg RouterConfig, handlers *Handlers) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	router.Use(RequestLogger(logger))

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	v1 := router.Group("/v1")
	if cfg.RateLimit > 0 {
		v1.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)))
	}
	RegisterRoutes(v1, handlers)
	return router
}
