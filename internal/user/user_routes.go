package user

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
	users := r.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.POST("", rbac.Authorize(enforcer, "user", "create"), handler.Create)
		users.GET("", rbac.Authorize(enforcer, "user", "read"), handler.GetAll)
		users.GET("/:id", rbac.Authorize(enforcer, "user", "read"), handler.GetByID)
		users.PUT("/:id", rbac.Authorize(enforcer, "user", "update"), handler.Update)
		users.DELETE("/:id", rbac.Authorize(enforcer, "user", "delete"), handler.Delete)
		users.POST("/:id/days-off", rbac.Authorize(enforcer, "user", "update"), handler.SetInitialDaysOff)
	}
}
