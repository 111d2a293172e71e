package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/config"
	"github.com/stemsi/sei-backend/internal/handler"
	"github.com/stemsi/sei-backend/internal/middleware"
	"github.com/stemsi/sei-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Health       *handler.HealthHandler
	Student      *handler.StudentHandler
	Checkin      *handler.CheckinHandler
	Intervention *handler.InterventionHandler
	Dashboard    *handler.DashboardHandler
	Risk         *handler.RiskHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// heavy throttles the re-scan and import endpoints; nil disables throttling.
func SetupRouter(handlers *Handlers, heavy *middleware.RateLimiter, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(response.AccessLog(log))
	router.Use(middleware.Metrics())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	throttle := func(c *gin.Context) { c.Next() }
	if heavy != nil {
		throttle = heavy.Middleware()
	}

	// ─── API v1 ────────────────────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())
	{
		students := api.Group("/students")
		{
			students.GET("", handlers.Student.ListStudents)
			students.POST("", handlers.Student.CreateStudent)
			students.POST("/import", throttle, handlers.Student.ImportStudents)
			students.GET("/:id", handlers.Student.GetStudent)
			students.PATCH("/:id/metrics", handlers.Student.UpdateMetrics)
		}

		checkins := api.Group("/checkins")
		{
			checkins.GET("", handlers.Checkin.ListCheckins)
			checkins.POST("", handlers.Checkin.SubmitCheckin)
			checkins.GET("/student/:student_id", handlers.Checkin.ListStudentCheckins)
		}

		interventions := api.Group("/interventions")
		{
			interventions.GET("", handlers.Intervention.ListInterventions)
			interventions.POST("", handlers.Intervention.CreateIntervention)
			interventions.GET("/:id", handlers.Intervention.GetIntervention)
			interventions.PATCH("/:id", handlers.Intervention.UpdateStatus)
			interventions.POST("/:id/complete", handlers.Intervention.CompleteIntervention)
		}

		followUps := api.Group("/followups")
		{
			followUps.GET("", handlers.Intervention.ListFollowUps)
			followUps.POST("", handlers.Intervention.CreateFollowUp)
		}

		api.GET("/dashboard", handlers.Dashboard.GetDashboardData)
		api.POST("/risk/rescan", throttle, handlers.Risk.Rescan)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	router.GET("/ws/v1/risk/stream", handlers.Risk.Stream)

	return router
}
