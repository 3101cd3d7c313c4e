package routes

import (
	"drive2u/internal/controllers"
	"drive2u/internal/middleware"

	"github.com/gin-gonic/gin"
)

func UserRoutes(r *gin.Engine) {
	users := r.Group("/users")
	users.Use(middleware.RequireAuth())
	{
		users.GET("/me", controllers.Me)
		users.DELETE("/me", controllers.DeleteAccount)
	}
}
