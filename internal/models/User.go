package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name         string `json:"name"`
	SurName      string `json:"surName"`
	UniversityID string `json:"universityID" gorm:"uniqueIndex"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	Password     string `json:"-"`
	Phone        string `json:"phoneNumber"`
	Role         string `json:"role"` // "driver", "passenger"
	PhotoURL     string `json:"photoUrl"`

	// Present if and only if Role == "driver".
	DriverInfo *DriverInfo `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"driverInfo,omitempty"`
}

const (
	RoleDriver    = "driver"
	RolePassenger = "passenger"
)
