// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/reorder/internal/api/handlers"
	"github.com/andresuchdata/reorder/internal/api/middleware"
	"github.com/andresuchdata/reorder/internal/service"
)

type Services struct {
	ScheduleService *service.ScheduleService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.ScheduleService != nil {
		scheduleHandler := handlers.NewScheduleHandler(services.ScheduleService)

		apiGroup.POST("/demand/upload", scheduleHandler.UploadDemand)
		apiGroup.GET("/items", scheduleHandler.GetItems)

		scheduleGroup := apiGroup.Group("/schedules")
		{
			scheduleGroup.POST("/generate", scheduleHandler.GenerateAll)
			scheduleGroup.POST("/simulate", scheduleHandler.Simulate)
			scheduleGroup.GET("/:sku", scheduleHandler.GetSchedule)
			scheduleGroup.POST("/:sku/generate", scheduleHandler.GenerateForSKU)
			scheduleGroup.GET("/:sku/export", scheduleHandler.ExportSchedule)
			scheduleGroup.PUT("/:sku/completion", scheduleHandler.SetCompletion)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
