package routes

import (
	"drive2u/internal/controllers"
	"drive2u/internal/middleware"

	"github.com/gin-gonic/gin"
)

func TripRoutes(r *gin.Engine) {
	trips := r.Group("/trips")
	{
		trips.GET("", middleware.RequireAuth(), controllers.ListTrips)
		trips.POST("/:tripId/reserve", middleware.RequireAuth(), controllers.ReserveTrip)

		driver := trips.Group("")
		driver.Use(middleware.RequireAuthWithRole("driver"))
		{
			driver.POST("", controllers.CreateTrip)
			driver.GET("/mytrip", controllers.MyTrip)
			driver.PUT("/:tripId", controllers.UpdateTrip)
			driver.DELETE("/:tripId", controllers.DeleteTrip)
		}
	}
}
