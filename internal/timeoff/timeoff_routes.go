package timeoff

import (
	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"

	"go-workforce/internal/middleware"
	"go-workforce/internal/rbac"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer *casbin.Enforcer,
) {
	timeoff := r.Group("/timeoff")
	timeoff.Use(middleware.AuthMiddleware())
	{
		timeoff.POST("", rbac.Authorize(enforcer, "timeoff", "create"), handler.Create)
		timeoff.GET("", rbac.Authorize(enforcer, "timeoff", "read"), handler.GetAll)
		timeoff.GET("/:id", rbac.Authorize(enforcer, "timeoff", "read"), handler.GetByID)
		timeoff.PUT("/:id", rbac.Authorize(enforcer, "timeoff", "update"), handler.Update)
		timeoff.DELETE("/:id", rbac.Authorize(enforcer, "timeoff", "delete"), handler.Delete)
		timeoff.POST("/:id/submit", rbac.Authorize(enforcer, "timeoff", "update"), handler.Submit)
		timeoff.POST("/:id/vote", rbac.Authorize(enforcer, "timeoff", "vote"), handler.Vote)
	}
}
