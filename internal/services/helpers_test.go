package services

import (
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"drive2u/internal/models"
)

// openTestDB backs the services with a file-based sqlite database.
// sqlite allows a single writer, so the pool is capped at one
// connection; concurrent transactions queue instead of failing busy.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "drive2u_test.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(&models.User{}, &models.DriverInfo{}, &models.Trip{}, &models.Reservation{})
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return db
}

var userSeq int

func seedUser(t *testing.T, db *gorm.DB, role string, capacity int) *models.User {
	t.Helper()
	userSeq++

	user := models.User{
		Name:         "Test",
		SurName:      "User",
		UniversityID: fmt.Sprintf("100%05d", userSeq),
		Email:        fmt.Sprintf("user%d@uni.edu", userSeq),
		Password:     "irrelevant-hash",
		Phone:        "3001234567",
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if role == models.RoleDriver {
		info := models.DriverInfo{
			UserID:       user.ID,
			LicensePlate: fmt.Sprintf("ABC%03d", userSeq),
			Capacity:     capacity,
			Brand:        "Mazda",
			VehicleModel: "Three",
		}
		if err := db.Create(&info).Error; err != nil {
			t.Fatalf("seed driver info: %v", err)
		}
		user.DriverInfo = &info
	}
	return &user
}

func seedDriver(t *testing.T, db *gorm.DB, capacity int) *models.User {
	return seedUser(t, db, models.RoleDriver, capacity)
}

func seedPassenger(t *testing.T, db *gorm.DB) *models.User {
	return seedUser(t, db, models.RolePassenger, 0)
}

func validInput(seats int) TripInput {
	return TripInput{
		StartLocation:  "Campus Norte",
		EndLocation:    "Centro",
		DepartureTime:  "07:30",
		AvailableSeats: seats,
		Price:          4500,
	}
}

func seedTrip(t *testing.T, db *gorm.DB, driverID uint, seats int) *models.Trip {
	t.Helper()
	svc := NewTripService(db, false)
	trip, err := svc.Create(driverID, validInput(seats))
	if err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	return trip
}

func reloadTrip(t *testing.T, db *gorm.DB, id uint) *models.Trip {
	t.Helper()
	var trip models.Trip
	if err := db.First(&trip, id).Error; err != nil {
		t.Fatalf("reload trip %d: %v", id, err)
	}
	return &trip
}

// checkSeatConservation asserts the ledger invariant: available seats
// plus the seats held by active reservations equal the trip's original
// capacity.
func checkSeatConservation(t *testing.T, db *gorm.DB, tripID uint) {
	t.Helper()
	trip := reloadTrip(t, db, tripID)

	var reservations []models.Reservation
	if err := db.Where("trip_id = ?", tripID).Find(&reservations).Error; err != nil {
		t.Fatalf("load reservations: %v", err)
	}
	reserved := 0
	for _, r := range reservations {
		reserved += r.Seats
	}

	if trip.AvailableSeats+reserved != trip.TotalSeats {
		t.Errorf("seat conservation broken: available=%d reserved=%d total=%d",
			trip.AvailableSeats, reserved, trip.TotalSeats)
	}
	if trip.IsFull != (trip.AvailableSeats == 0) {
		t.Errorf("isFull=%v inconsistent with availableSeats=%d", trip.IsFull, trip.AvailableSeats)
	}
}
