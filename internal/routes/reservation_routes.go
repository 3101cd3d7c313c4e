package routes

import (
	"drive2u/internal/controllers"
	"drive2u/internal/middleware"

	"github.com/gin-gonic/gin"
)

func ReservationRoutes(r *gin.Engine) {
	reservations := r.Group("/reservations")
	reservations.Use(middleware.RequireAuth())
	{
		reservations.GET("", controllers.ListMyReservations)
		reservations.DELETE("/:reservationId/cancel", controllers.CancelReservation)
	}
}
