package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"drive2u/internal/config"
	"drive2u/internal/middleware"
	"drive2u/internal/services"
)

func reservationSvc() *services.ReservationService {
	return services.NewReservationService(config.DB)
}

// ReserveTrip claims seats on a trip for the authenticated passenger.
// One pickup/drop point is required per requested seat.
func ReserveTrip(c *gin.Context) {
	tripID, ok := parseIDParam(c, "tripId")
	if !ok {
		return
	}

	var body struct {
		RequestedPlaces  int      `json:"requestedPlaces"`
		PickupDropPoints []string `json:"pickup_dropPoint"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	reservation, err := reservationSvc().Reserve(
		tripID,
		middleware.CurrentUserID(c),
		body.RequestedPlaces,
		body.PickupDropPoints,
	)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "reservation created successfully",
		"reservationId": reservation.ID,
	})
}

// CancelReservation releases the reservation's seats back to its trip.
func CancelReservation(c *gin.Context) {
	reservationID, ok := parseIDParam(c, "reservationId")
	if !ok {
		return
	}

	if err := reservationSvc().Cancel(reservationID, middleware.CurrentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "reservation cancelled successfully"})
}

// ListMyReservations returns the authenticated passenger's reservations.
func ListMyReservations(c *gin.Context) {
	reservations, err := reservationSvc().ListByPassenger(middleware.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if len(reservations) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "no reservations found for this user"})
		return
	}
	c.JSON(http.StatusOK, reservations)
}
