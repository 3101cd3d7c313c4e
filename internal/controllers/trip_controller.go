package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"drive2u/internal/config"
	"drive2u/internal/middleware"
	"drive2u/internal/models"
	"drive2u/internal/services"
)

// tripInput mirrors the request body of trip creation and update.
type tripInput struct {
	StartLocation   string  `json:"startLocation"`
	EndTrip         string  `json:"endTrip"`
	TimeTrip        string  `json:"timeTrip"`
	AvailablePlaces int     `json:"availablePlaces"`
	PriceTrip       float64 `json:"priceTrip"`
	Route           string  `json:"route"`
}

// TripResponse mirrors models.Trip but carries the route as a GeoJSON
// string for API output.
type TripResponse struct {
	ID              uint                 `json:"tripId"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt       `json:"-"`
	DriverID        uint                 `json:"driverId"`
	StartLocation   string               `json:"startLocation"`
	EndTrip         string               `json:"endTrip"`
	TimeTrip        string               `json:"timeTrip"`
	TotalPlaces     int                  `json:"totalPlaces"`
	AvailablePlaces int                  `json:"availablePlaces"`
	PriceTrip       float64              `json:"priceTrip"`
	IsFull          bool                 `json:"isFull"`
	Route           string               `json:"route,omitempty"`
	Reservations    []models.Reservation `json:"reservations,omitempty"`
}

func toTripResponse(trip models.Trip) TripResponse {
	route, err := services.DecodeRoute(trip.Route)
	if err != nil {
		logrus.WithError(err).WithField("trip_id", trip.ID).Warn("stored route geometry is unreadable")
	}
	return TripResponse{
		ID:              trip.ID,
		CreatedAt:       trip.CreatedAt,
		UpdatedAt:       trip.UpdatedAt,
		DriverID:        trip.DriverID,
		StartLocation:   trip.StartLocation,
		EndTrip:         trip.EndLocation,
		TimeTrip:        trip.DepartureTime,
		TotalPlaces:     trip.TotalSeats,
		AvailablePlaces: trip.AvailableSeats,
		PriceTrip:       trip.Price,
		IsFull:          trip.IsFull,
		Route:           route,
		Reservations:    trip.Reservations,
	}
}

func tripSvc() *services.TripService {
	return services.NewTripService(config.DB, config.SingleActiveTrip())
}

func toServiceInput(in tripInput) services.TripInput {
	return services.TripInput{
		StartLocation:  in.StartLocation,
		EndLocation:    in.EndTrip,
		DepartureTime:  in.TimeTrip,
		AvailableSeats: in.AvailablePlaces,
		Price:          in.PriceTrip,
		Route:          in.Route,
	}
}

// CreateTrip registers the authenticated driver's trip.
func CreateTrip(c *gin.Context) {
	var input tripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	trip, err := tripSvc().Create(middleware.CurrentUserID(c), toServiceInput(input))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "trip created successfully",
		"tripId":  trip.ID,
	})
}

// ListTrips returns open trips, optionally filtered by a minimum seat
// count and an exact start point.
func ListTrips(c *gin.Context) {
	var filter services.TripFilter
	if v := c.Query("availableSeats"); v != "" {
		minSeats, err := strconv.Atoi(v)
		if err != nil || minSeats <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "availableSeats must be a positive integer"})
			return
		}
		filter.MinSeats = minSeats
	}
	filter.StartLocation = c.Query("startPoint")
	filter.IncludeFull = c.Query("includeFull") == "true"

	trips, err := tripSvc().List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if len(trips) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "no trips available"})
		return
	}

	out := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		out = append(out, toTripResponse(trip))
	}
	c.JSON(http.StatusOK, out)
}

// MyTrip returns the authenticated driver's trip with its reservations.
func MyTrip(c *gin.Context) {
	trip, err := tripSvc().DriverTrip(middleware.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTripResponse(*trip))
}

// UpdateTrip rewrites a trip owned by the authenticated driver.
func UpdateTrip(c *gin.Context) {
	tripID, ok := parseIDParam(c, "tripId")
	if !ok {
		return
	}

	var input tripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	trip, err := tripSvc().Update(tripID, middleware.CurrentUserID(c), toServiceInput(input))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "trip updated successfully",
		"trip":    toTripResponse(*trip),
	})
}

// DeleteTrip removes a trip and all reservations referencing it.
func DeleteTrip(c *gin.Context) {
	tripID, ok := parseIDParam(c, "tripId")
	if !ok {
		return
	}

	if err := tripSvc().Delete(tripID, middleware.CurrentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip and associated reservations deleted successfully"})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}
