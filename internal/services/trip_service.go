package services

import (
	"encoding/binary"
	"errors"
	"regexp"

	logrus "github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"gorm.io/gorm"

	"drive2u/internal/models"
)

// timeFormatRegex validates 24-hour HH:MM departure times.
var timeFormatRegex = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// TripInput holds the client-supplied fields for creating or updating
// a trip. Route is an optional GeoJSON geometry string.
type TripInput struct {
	StartLocation  string
	EndLocation    string
	DepartureTime  string
	AvailableSeats int
	Price          float64
	Route          string
}

// TripFilter narrows ListTrips results. MinSeats of zero means no seat
// threshold; empty StartLocation means no location filter.
type TripFilter struct {
	MinSeats      int
	StartLocation string
	IncludeFull   bool
}

// TripService manages trip records: creation against the driver's
// vehicle capacity, owner-checked updates and deletes, and filtered
// listing. Deletes cascade to the trip's reservations.
type TripService struct {
	db *gorm.DB

	// singleActiveTrip enforces at most one trip per driver at
	// creation time. Exposed as a policy flag because product
	// variants disagree on the rule.
	singleActiveTrip bool
}

func NewTripService(db *gorm.DB, singleActiveTrip bool) *TripService {
	return &TripService{db: db, singleActiveTrip: singleActiveTrip}
}

func validateTripInput(in TripInput) error {
	if in.StartLocation == "" {
		return validationf("startLocation is required")
	}
	if in.EndLocation == "" {
		return validationf("endTrip is required")
	}
	if in.DepartureTime == "" {
		return validationf("timeTrip is required")
	}
	if !timeFormatRegex.MatchString(in.DepartureTime) {
		return validationf("timeTrip must be in HH:MM format")
	}
	if in.AvailableSeats <= 0 {
		return validationf("availablePlaces must be a positive integer")
	}
	if in.Price <= 0 {
		return validationf("priceTrip must be a positive number")
	}
	return nil
}

// encodeRoute parses an optional GeoJSON geometry and returns WKB bytes.
func encodeRoute(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, validationf("route is not valid GeoJSON: %v", err)
	}
	b, err := wkb.Marshal(g, binary.LittleEndian)
	if err != nil {
		return nil, validationf("route geometry could not be encoded: %v", err)
	}
	return b, nil
}

// DecodeRoute converts stored WKB bytes back into a GeoJSON string for
// API responses. Empty input yields an empty string.
func DecodeRoute(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// vehicleCapacity resolves the driver's vehicle capacity, verifying the
// user exists and actually holds the driver role.
func (s *TripService) vehicleCapacity(driverID uint) (int, error) {
	var user models.User
	if err := s.db.Preload("DriverInfo").First(&user, driverID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if user.Role != models.RoleDriver || user.DriverInfo == nil {
		return 0, ErrForbidden
	}
	if user.DriverInfo.Capacity <= 0 {
		return 0, validationf("vehicle capacity is not a positive integer")
	}
	return user.DriverInfo.Capacity, nil
}

// Create registers a new trip for the driver. The trip starts with
// AvailableSeats equal to the requested seat count and IsFull false.
func (s *TripService) Create(driverID uint, in TripInput) (*models.Trip, error) {
	if err := validateTripInput(in); err != nil {
		return nil, err
	}

	capacity, err := s.vehicleCapacity(driverID)
	if err != nil {
		return nil, err
	}
	if in.AvailableSeats > capacity {
		return nil, ErrCapacityExceeded
	}

	if s.singleActiveTrip {
		var count int64
		if err := s.db.Model(&models.Trip{}).Where("driver_id = ?", driverID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateActiveTrip
		}
	}

	route, err := encodeRoute(in.Route)
	if err != nil {
		return nil, err
	}

	trip := models.Trip{
		DriverID:       driverID,
		StartLocation:  in.StartLocation,
		EndLocation:    in.EndLocation,
		DepartureTime:  in.DepartureTime,
		TotalSeats:     in.AvailableSeats,
		AvailableSeats: in.AvailableSeats,
		Price:          in.Price,
		IsFull:         false,
		Route:          route,
	}
	if err := s.db.Create(&trip).Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"trip_id":   trip.ID,
		"driver_id": driverID,
		"seats":     trip.AvailableSeats,
	}).Info("trip created")
	return &trip, nil
}

// Update rewrites a trip's fields after the same validation as Create.
// Only the owning driver may update; IsFull is recomputed from the new
// seat count.
func (s *TripService) Update(tripID, driverID uint, in TripInput) (*models.Trip, error) {
	if err := validateTripInput(in); err != nil {
		return nil, err
	}

	var trip models.Trip
	if err := s.db.First(&trip, tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if trip.DriverID != driverID {
		return nil, ErrForbidden
	}

	capacity, err := s.vehicleCapacity(driverID)
	if err != nil {
		return nil, err
	}
	if in.AvailableSeats > capacity {
		return nil, ErrCapacityExceeded
	}

	route, err := encodeRoute(in.Route)
	if err != nil {
		return nil, err
	}

	trip.StartLocation = in.StartLocation
	trip.EndLocation = in.EndLocation
	trip.DepartureTime = in.DepartureTime
	trip.AvailableSeats = in.AvailableSeats
	trip.Price = in.Price
	trip.IsFull = in.AvailableSeats == 0
	trip.Route = route

	if err := s.db.Save(&trip).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

// Delete removes a trip and every reservation referencing it in one
// transaction, reservations first, so an interrupted delete never
// leaves a reservation pointing at a missing trip.
func (s *TripService) Delete(tripID, driverID uint) error {
	var trip models.Trip
	if err := s.db.First(&trip, tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if trip.DriverID != driverID {
		return ErrForbidden
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := removeTripReservations(tx, tripID); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.Trip{}, tripID).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"trip_id":   tripID,
		"driver_id": driverID,
	}).Info("trip deleted with its reservations")
	return nil
}

// List returns trips matching the filter. Full trips are excluded
// unless IncludeFull is set.
func (s *TripService) List(f TripFilter) ([]models.Trip, error) {
	query := s.db.Model(&models.Trip{})
	if !f.IncludeFull {
		query = query.Where("is_full = ?", false)
	}
	if f.MinSeats > 0 {
		query = query.Where("available_seats >= ?", f.MinSeats)
	}
	if f.StartLocation != "" {
		query = query.Where("start_location = ?", f.StartLocation)
	}

	var trips []models.Trip
	if err := query.Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

// DriverTrip returns the driver's trip together with its reservations.
func (s *TripService) DriverTrip(driverID uint) (*models.Trip, error) {
	var trip models.Trip
	err := s.db.Preload("Reservations").
		Where("driver_id = ?", driverID).
		First(&trip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &trip, nil
}

// Get fetches a single trip by id.
func (s *TripService) Get(tripID uint) (*models.Trip, error) {
	var trip models.Trip
	if err := s.db.First(&trip, tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &trip, nil
}
