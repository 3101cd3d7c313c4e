package services

import (
	"errors"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"drive2u/internal/models"
)

// ReservationService is the reservation ledger. Seat accounting is the
// one piece of shared mutable state in the system, so every mutation of
// a trip's available_seats/is_full pair happens in a single conditional
// UPDATE: the guard sits in the WHERE clause and is_full is recomputed
// from the same statement's arithmetic. Two concurrent reservations can
// therefore never both consume the last seat.
type ReservationService struct {
	db *gorm.DB
}

func NewReservationService(db *gorm.DB) *ReservationService {
	return &ReservationService{db: db}
}

// Reserve claims seats on a trip and records the reservation in the
// same transaction as the seat decrement. pickupDropPoints must carry
// exactly one point per requested seat.
func (s *ReservationService) Reserve(tripID, passengerID uint, seats int, pickupDropPoints []string) (*models.Reservation, error) {
	if seats <= 0 {
		return nil, validationf("requestedPlaces must be a positive integer")
	}
	if len(pickupDropPoints) != seats {
		return nil, validationf("pickup_dropPoint must contain exactly %d points", seats)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	// Decrement and full-flag recompute in one statement; both
	// assignments read the pre-update seat count, and the WHERE guard
	// rejects the update when not enough seats remain.
	res := tx.Model(&models.Trip{}).
		Where("id = ? AND available_seats >= ?", tripID, seats).
		Updates(map[string]interface{}{
			"available_seats": gorm.Expr("available_seats - ?", seats),
			"is_full":         gorm.Expr("(available_seats - ? = 0)", seats),
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		var count int64
		if err := s.db.Model(&models.Trip{}).Where("id = ?", tripID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrInsufficientSeats
	}

	reservation := models.Reservation{
		TripID:           tripID,
		PassengerID:      passengerID,
		Seats:            seats,
		PickupDropPoints: pickupDropPoints,
	}
	if err := tx.Create(&reservation).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": reservation.ID,
		"trip_id":        tripID,
		"passenger_id":   passengerID,
		"seats":          seats,
	}).Info("reservation created")
	return &reservation, nil
}

// Cancel releases a reservation's seats back to its trip and deletes
// the reservation, all in one transaction. Only the owning passenger
// may cancel.
func (s *ReservationService) Cancel(reservationID, passengerID uint) error {
	var reservation models.Reservation
	if err := s.db.First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if reservation.PassengerID != passengerID {
		return ErrForbidden
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	// The soft delete only matches live rows, so it doubles as the
	// guard: of two concurrent cancels of the same reservation exactly
	// one affects a row, and only that one restores the seats.
	res := tx.Delete(&models.Reservation{}, reservationID)
	if res.Error != nil {
		tx.Rollback()
		return res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return ErrNotFound
	}

	upd := tx.Model(&models.Trip{}).
		Where("id = ?", reservation.TripID).
		Updates(map[string]interface{}{
			"available_seats": gorm.Expr("available_seats + ?", reservation.Seats),
			"is_full":         gorm.Expr("(available_seats + ? = 0)", reservation.Seats),
		})
	if upd.Error != nil {
		tx.Rollback()
		return upd.Error
	}
	if upd.RowsAffected == 0 {
		// Reservation without a trip. Should not happen given cascade
		// deletion, but surface it rather than half-cancel.
		tx.Rollback()
		return ErrNotFound
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"reservation_id": reservationID,
		"trip_id":        reservation.TripID,
		"seats":          reservation.Seats,
	}).Info("reservation cancelled")
	return nil
}

// ListByPassenger returns all reservations made by one passenger.
func (s *ReservationService) ListByPassenger(passengerID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.db.Where("passenger_id = ?", passengerID).Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

// ListByTrip returns all reservations referencing one trip.
func (s *ReservationService) ListByTrip(tripID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := s.db.Where("trip_id = ?", tripID).Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}
