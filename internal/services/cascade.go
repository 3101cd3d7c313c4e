package services

import (
	"errors"

	logrus "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"drive2u/internal/models"
)

// Cascade helpers. The store has no foreign-key enforcement across
// these tables at the application level, so dependent records are
// removed explicitly, inside the caller's transaction, dependents
// before their referent.

// removeTripReservations deletes every reservation referencing tripID.
func removeTripReservations(tx *gorm.DB, tripID uint) error {
	return tx.Where("trip_id = ?", tripID).Delete(&models.Reservation{}).Error
}

// removeDriverTrips deletes all trips owned by driverID, cascading each
// trip's reservations first.
func removeDriverTrips(tx *gorm.DB, driverID uint) error {
	var trips []models.Trip
	if err := tx.Where("driver_id = ?", driverID).Find(&trips).Error; err != nil {
		return err
	}
	for _, trip := range trips {
		if err := removeTripReservations(tx, trip.ID); err != nil {
			return err
		}
		if err := tx.Delete(&models.Trip{}, trip.ID).Error; err != nil {
			return err
		}
	}
	return nil
}

// restorePassengerReservations cancels every reservation held by the
// passenger, returning the seats to each trip with the same atomic
// update the ledger uses.
func restorePassengerReservations(tx *gorm.DB, passengerID uint) error {
	var reservations []models.Reservation
	if err := tx.Where("passenger_id = ?", passengerID).Find(&reservations).Error; err != nil {
		return err
	}
	for _, r := range reservations {
		// Delete first: the soft delete matches only live rows, so a
		// reservation already cancelled elsewhere is skipped instead of
		// having its seats restored a second time.
		res := tx.Delete(&models.Reservation{}, r.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			continue
		}
		err := tx.Model(&models.Trip{}).
			Where("id = ?", r.TripID).
			Updates(map[string]interface{}{
				"available_seats": gorm.Expr("available_seats + ?", r.Seats),
				"is_full":         gorm.Expr("(available_seats + ? = 0)", r.Seats),
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// UserService removes accounts and keeps referential integrity while
// doing so: a driver's trips go with their reservations, a passenger's
// reservations give their seats back.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get loads a user with driver info, if any.
func (s *UserService) Get(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("DriverInfo").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Delete removes the account and everything that depends on it in one
// transaction.
func (s *UserService) Delete(userID uint) error {
	var user models.User
	if err := s.db.Preload("DriverInfo").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if user.Role == models.RoleDriver {
		if err := removeDriverTrips(tx, userID); err != nil {
			tx.Rollback()
			return err
		}
		if user.DriverInfo != nil {
			if err := tx.Delete(&models.DriverInfo{}, user.DriverInfo.ID).Error; err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	if err := restorePassengerReservations(tx, userID); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&models.User{}, userID).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"role":    user.Role,
	}).Info("account deleted")
	return nil
}
