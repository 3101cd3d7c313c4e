// internal/models/DriverInfo.go
package models

import "gorm.io/gorm"

// DriverInfo carries the vehicle details of a user with the driver role.
// Capacity bounds every trip the driver offers.
type DriverInfo struct {
	gorm.Model
	UserID          uint   `json:"user_id" gorm:"uniqueIndex"` // Foreign key to User
	LicensePlate    string `json:"licensePlate" gorm:"uniqueIndex"`
	Capacity        int    `json:"capacity"`
	Brand           string `json:"brand"`
	VehicleModel    string `json:"model"`
	VehiclePhotoURL string `json:"vehiclePhotoUrl"`
	SoatPhotoURL    string `json:"soatPhotoUrl"`
}
