package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"drive2u/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB initializes the database connection using environment
// variables and migrates the ride-sharing schema.
func InitDB() {
	// Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	host := Getenv("DB_HOST", "localhost")
	port := Getenv("DB_PORT", "5432")
	user := Getenv("DB_USER", "postgres")
	password := Getenv("DB_PASSWORD", "password")
	dbname := Getenv("DB_NAME", "drive2u")
	sslmode := Getenv("DB_SSLMODE", "disable")
	timezone := Getenv("DB_TIMEZONE", "UTC")

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbname, port, sslmode, timezone,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(&models.User{}, &models.DriverInfo{}, &models.Trip{}, &models.Reservation{})
	if err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	DB = db
}

// Getenv reads an environment variable or returns the provided default
func Getenv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// SingleActiveTrip reports whether a driver may hold only one trip at a
// time. On unless SINGLE_ACTIVE_TRIP is set to a false value; product
// variants disagree on the rule, so it stays configurable.
func SingleActiveTrip() bool {
	v, err := strconv.ParseBool(Getenv("SINGLE_ACTIVE_TRIP", "true"))
	if err != nil {
		return true
	}
	return v
}

// UploadDir is where profile and vehicle photos are written.
func UploadDir() string {
	return Getenv("UPLOAD_DIR", "./uploads")
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}
