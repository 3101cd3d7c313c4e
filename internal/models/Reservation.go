package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

// StringList is a JSON-encoded text column. Used for per-seat
// pickup/drop points so the same schema works on Postgres and the
// sqlite test driver.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("unsupported type for StringList")
	}
}

// Reservation is a passenger's claim on seats of one trip.
// It references its Trip but never owns it; the only trip fields a
// reservation touches are the seat count and full flag.
type Reservation struct {
	gorm.Model
	TripID           uint       `json:"tripId" gorm:"index"`
	PassengerID      uint       `json:"passengerId" gorm:"index"`
	Seats            int        `json:"requestedPlaces"`
	PickupDropPoints StringList `json:"pickup_dropPoint" gorm:"type:text"`
}
