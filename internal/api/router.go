// Package api wires the HTTP routes and middleware of the mixdown service.
package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oszuidwest/zwfm-mixdown/internal/api/handlers"
	"github.com/oszuidwest/zwfm-mixdown/internal/config"
	"github.com/oszuidwest/zwfm-mixdown/internal/utils"
)

// SetupRouter configures and returns the main API router with all routes and middleware.
func SetupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	utils.InitializeValidators()

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(corsMiddleware(cfg))

	// Uploads up to the limit stay in memory.
	if cfg.Server.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/mixes", h.ListMixes)
		v1.POST("/mixes", h.CreateMix)
		v1.GET("/mixes/:id", h.GetMix)
		v1.GET("/mixes/:id/audio", h.GetMixAudio)

		v1.POST("/concatenations", h.CreateConcatenation)
		v1.POST("/speech", h.CreateSpeech)

		v1.GET("/assets", h.ListAssets)
		v1.GET("/assets/:id", h.GetAsset)

		v1.GET("/preview", h.GetPreview)
		v1.POST("/preview", h.StartPreview)
		v1.DELETE("/preview", h.StopPreview)
	}

	r.GET("/health", h.Health)

	return r
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// If no allowed origins are configured, disable CORS (secure by default)
		if cfg.Server.AllowedOrigins == "" {
			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}
			c.Next()
			return
		}

		if isAllowedOrigin(origin, cfg.Server.AllowedOrigins) {
			// Delete any existing CORS headers that might be set by proxies
			c.Writer.Header().Del("Access-Control-Allow-Origin")
			c.Writer.Header().Del("Access-Control-Allow-Headers")
			c.Writer.Header().Del("Access-Control-Allow-Methods")
			c.Writer.Header().Del("Access-Control-Expose-Headers")

			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")
			c.Writer.Header().Set("Access-Control-Expose-Headers", "Location, Content-Disposition, X-Mix-ID, X-Mix-Duration, X-Mix-Cached, X-Audio-Duration")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the origin is in the comma-separated list of allowed origins
func isAllowedOrigin(origin string, allowedOrigins string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range strings.Split(allowedOrigins, ",") {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}
	return false
}
