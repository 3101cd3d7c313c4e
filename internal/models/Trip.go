package models

import (
	"gorm.io/gorm"
)

// Trip is a driver's single ride offering with finite seats.
// AvailableSeats and IsFull are only ever changed together;
// IsFull is always recomputed as AvailableSeats == 0.
type Trip struct {
	gorm.Model

	DriverID       uint    `json:"driverId" gorm:"index"`
	StartLocation  string  `json:"startLocation"`
	EndLocation    string  `json:"endTrip"`
	DepartureTime  string  `json:"timeTrip"` // 24-hour HH:MM
	TotalSeats     int     `json:"totalPlaces"`
	AvailableSeats int     `json:"availablePlaces"`
	Price          float64 `json:"priceTrip"`
	IsFull         bool    `json:"isFull"`

	// Optional route geometry stored as WKB (LINESTRING, SRID 4326).
	// Clients submit and receive GeoJSON.
	Route []byte `gorm:"type:bytea" json:"-"`

	Reservations []Reservation `gorm:"foreignKey:TripID" json:"reservations,omitempty"`
}
