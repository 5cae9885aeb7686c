package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"turnapp/backend/config"
	"turnapp/backend/internal/api/handler"
	"turnapp/backend/internal/api/middleware"
	"turnapp/backend/pkg/jwt"
	"turnapp/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1（全部需要认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rdb, 100, time.Minute))
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))
	{
		// 班次模板模块
		shifts := v1.Group("/shifts")
		{
			shifts.GET("", h.Shift.ListShifts)
			shifts.GET("/:id", h.Shift.GetShift)
			shifts.POST("", middleware.RoleAuth("admin"), h.Shift.CreateShift)
			shifts.PUT("/:id", middleware.RoleAuth("admin"), h.Shift.UpdateShift)
			shifts.DELETE("/:id", middleware.RoleAuth("admin"), h.Shift.DeactivateShift)
		}

		// 可用时段偏好模块
		availability := v1.Group("/availability")
		{
			availability.GET("/users", h.Availability.ListAvailableUsers)
			availability.GET("/:id", h.Availability.GetPreference)
			availability.POST("", h.Availability.CreatePreference)
			availability.PUT("/:id", h.Availability.UpdatePreference)
			availability.DELETE("/:id", h.Availability.DeletePreference)
		}

		// 排班分配模块
		assignments := v1.Group("/assignments")
		{
			assignments.GET("", h.Assignment.ListAssignmentsByDate)
			assignments.GET("/:id", h.Assignment.GetAssignment)
			assignments.POST("", middleware.RoleAuth("admin"), h.Assignment.CreateAssignment)
			assignments.POST("/:id/cancel", h.Assignment.CancelAssignment)
			assignments.POST("/:id/complete", h.Assignment.CompleteAssignment)

			// 班内休息记录
			assignments.POST("/:id/breaks", h.Break.CreateBreak)
			assignments.GET("/:id/breaks", h.Break.ListBreaks)
		}
		v1.DELETE("/breaks/:id", h.Break.DeleteBreak)

		// 用户维度视图（用户实体归属外部微服务，此处仅为查询入口）
		users := v1.Group("/users")
		{
			users.GET("/:user_id/availability", h.Availability.ListUserPreferences)
			users.GET("/:user_id/assignments", h.Assignment.ListUserAssignments)
			users.GET("/:user_id/replacements", h.Replacement.ListUserReplacements)
		}

		// 排班计划模块
		schedules := v1.Group("/schedules")
		{
			schedules.GET("", h.Schedule.ListSchedules)
			schedules.GET("/:id", h.Schedule.GetSchedule)
			schedules.GET("/:id/consolidated", h.Schedule.GetConsolidatedSchedule)
			schedules.POST("", middleware.RoleAuth("admin"), h.Schedule.CreateSchedule)
			schedules.PUT("/:id", middleware.RoleAuth("admin"), h.Schedule.UpdateSchedule)
			schedules.DELETE("/:id", middleware.RoleAuth("admin"), h.Schedule.DeleteSchedule)
			schedules.POST("/:id/lines", middleware.RoleAuth("admin"), h.Schedule.AddLine)
			schedules.POST("/:id/lines/batch", middleware.RoleAuth("admin"), h.Schedule.AddLinesBatch)
			schedules.DELETE("/:id/lines/:line_id", middleware.RoleAuth("admin"), h.Schedule.RemoveLine)
			schedules.POST("/:id/publish", middleware.RoleAuth("admin"), h.Schedule.PublishSchedule)

			// 导出
			schedules.GET("/:id/export/excel", middleware.RoleAuth("admin"), h.Export.ExportScheduleExcel)
			schedules.GET("/:id/export/ics", h.Export.ExportScheduleICS)
		}

		// 替班请求模块
		replacements := v1.Group("/replacements")
		{
			replacements.GET("/pending", middleware.RoleAuth("admin"), h.Replacement.ListPendingReplacements)
			replacements.GET("/:id", h.Replacement.GetReplacement)
			replacements.POST("", h.Replacement.CreateReplacement)
			replacements.POST("/:id/approve", middleware.RoleAuth("admin"), h.Replacement.ApproveReplacement)
			replacements.POST("/:id/reject", middleware.RoleAuth("admin"), h.Replacement.RejectReplacement)
		}
	}

	return r
}
