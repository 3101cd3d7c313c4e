package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	logrus "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"drive2u/internal/config"
	"drive2u/internal/middleware"
	"drive2u/internal/models"
	"drive2u/internal/services"
	"drive2u/internal/storage"
)

var (
	lettersRegex = regexp.MustCompile(`^[A-Za-z\s]+$`)
	numericRegex = regexp.MustCompile(`^[0-9]+$`)
	emailRegex   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// registerInput is bound from the multipart registration form. Photos
// arrive as separate file parts.
type registerInput struct {
	UserType     string `form:"userType"`
	Name         string `form:"name"`
	SurName      string `form:"surName"`
	UniversityID string `form:"universityID"`
	Email        string `form:"email"`
	PhoneNumber  string `form:"phoneNumber"`
	Password     string `form:"password"`

	// Driver-only vehicle fields.
	LicensePlate string `form:"licensePlate"`
	Capacity     string `form:"capacity"`
	Brand        string `form:"brand"`
	VehicleModel string `form:"model"`
}

func validateRegisterInput(in registerInput) error {
	if in.UserType != models.RoleDriver && in.UserType != models.RolePassenger {
		return errors.New("userType must be 'driver' or 'passenger'")
	}
	if in.Name == "" || !lettersRegex.MatchString(in.Name) {
		return errors.New("name is required and may only contain letters")
	}
	if in.SurName == "" || !lettersRegex.MatchString(in.SurName) {
		return errors.New("surName is required and may only contain letters")
	}
	if in.UniversityID == "" || !numericRegex.MatchString(in.UniversityID) {
		return errors.New("universityID is required and must be numeric")
	}
	if !emailRegex.MatchString(in.Email) {
		return errors.New("invalid email format")
	}
	if len(in.PhoneNumber) < 10 || !numericRegex.MatchString(in.PhoneNumber) {
		return errors.New("phoneNumber must be numeric with at least 10 digits")
	}
	if len(in.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

func validateDriverFields(in registerInput) (capacity int, err error) {
	if in.LicensePlate == "" {
		return 0, errors.New("licensePlate is required for drivers")
	}
	capacity, convErr := strconv.Atoi(in.Capacity)
	if convErr != nil || capacity <= 0 {
		return 0, errors.New("capacity must be a positive integer")
	}
	if in.Brand == "" || !lettersRegex.MatchString(in.Brand) {
		return 0, errors.New("brand is required and may only contain letters")
	}
	if in.VehicleModel == "" || !lettersRegex.MatchString(in.VehicleModel) {
		return 0, errors.New("model is required and may only contain letters")
	}
	return capacity, nil
}

// RegisterUser creates a passenger or driver account. Drivers must
// supply vehicle details; passengers must not.
func RegisterUser(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateRegisterInput(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userPhoto := formFile(c, "userPhoto")
	vehiclePhoto := formFile(c, "vehiclePhoto")
	soatPhoto := formFile(c, "soatPhoto")

	var capacity int
	if input.UserType == models.RolePassenger {
		if input.LicensePlate != "" || input.Capacity != "" || input.Brand != "" ||
			input.VehicleModel != "" || vehiclePhoto != nil || soatPhoto != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "a passenger cannot include vehicle information"})
			return
		}
	} else {
		var err error
		if capacity, err = validateDriverFields(input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var count int64
	config.DB.Model(&models.User{}).
		Where("email = ? OR university_id = ?", input.Email, input.UniversityID).
		Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "a user with this email or universityID already exists"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not hash password"})
		return
	}

	store, err := storage.New(config.UploadDir())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload storage unavailable"})
		return
	}
	var saved []string
	savePhoto := func(fh *multipart.FileHeader, label string) string {
		if fh == nil {
			return ""
		}
		url, saveErr := store.Save(fh, label)
		if saveErr != nil {
			logrus.WithError(saveErr).Warn("photo upload failed")
			return ""
		}
		saved = append(saved, url)
		return url
	}
	cleanup := func() {
		// Best effort; orphaned files are logged, never surfaced.
		for _, url := range saved {
			if rmErr := store.Remove(url); rmErr != nil {
				logrus.WithError(rmErr).Warn("could not remove orphaned upload")
			}
		}
	}

	user := models.User{
		Name:         input.Name,
		SurName:      input.SurName,
		UniversityID: input.UniversityID,
		Email:        input.Email,
		Password:     string(hashed),
		Phone:        input.PhoneNumber,
		Role:         input.UserType,
		PhotoURL:     savePhoto(userPhoto, "user"),
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		cleanup()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start transaction"})
		return
	}
	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		cleanup()
		respondCreateUserError(c, err)
		return
	}
	if input.UserType == models.RoleDriver {
		info := models.DriverInfo{
			UserID:          user.ID,
			LicensePlate:    input.LicensePlate,
			Capacity:        capacity,
			Brand:           input.Brand,
			VehicleModel:    input.VehicleModel,
			VehiclePhotoURL: savePhoto(vehiclePhoto, "vehicle"),
			SoatPhotoURL:    savePhoto(soatPhoto, "soat"),
		}
		if err := tx.Create(&info).Error; err != nil {
			tx.Rollback()
			cleanup()
			respondCreateUserError(c, err)
			return
		}
		user.DriverInfo = &info
	}
	if err := tx.Commit().Error; err != nil {
		cleanup()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not commit transaction"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "user registered successfully",
		"token":   token,
		"user":    user,
	})
}

func respondCreateUserError(c *gin.Context, err error) {
	if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
		c.JSON(http.StatusConflict, gin.H{"error": "email, universityID or licensePlate already in use"})
		return
	}
	logrus.WithError(err).Error("could not create user")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
}

func formFile(c *gin.Context, name string) *multipart.FileHeader {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return fh
}

// LoginUser checks credentials and issues a bearer token.
func LoginUser(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !emailRegex.MatchString(body.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email format"})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found or invalid credentials"})
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
}

// Me returns the authenticated user's profile.
func Me(c *gin.Context) {
	svc := services.NewUserService(config.DB)
	user, err := svc.Get(middleware.CurrentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteAccount removes the authenticated user. A driver's trips and
// those trips' reservations go with it; a passenger's reservations are
// cancelled so their seats return to the trips.
func DeleteAccount(c *gin.Context) {
	svc := services.NewUserService(config.DB)
	if err := svc.Delete(middleware.CurrentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted successfully"})
}
