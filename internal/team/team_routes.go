package team

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
	teams := r.Group("/teams")
	teams.Use(middleware.AuthMiddleware())
	{
		teams.POST("", rbac.Authorize(enforcer, "team", "create"), handler.Create)
		teams.GET("", rbac.Authorize(enforcer, "team", "read"), handler.GetAll)
		teams.GET("/:id", rbac.Authorize(enforcer, "team", "read"), handler.GetByID)
		teams.PUT("/:id", rbac.Authorize(enforcer, "team", "update"), handler.Update)
		teams.DELETE("/:id", rbac.Authorize(enforcer, "team", "delete"), handler.Delete)
		teams.POST("/:id/members", rbac.Authorize(enforcer, "team", "update"), handler.AddMember)
		teams.DELETE("/:id/members/:userId", rbac.Authorize(enforcer, "team", "update"), handler.RemoveMember)
	}
}
