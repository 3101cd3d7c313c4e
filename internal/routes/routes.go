package routes

import (
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"drive2u/internal/config"
)

func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(ginlogger.SetLogger(), gin.Recovery())

	// Uploaded photos are served straight off disk.
	r.Static("/uploads", config.UploadDir())

	AuthRoutes(r)
	UserRoutes(r)
	TripRoutes(r)
	ReservationRoutes(r)

	return r
}
