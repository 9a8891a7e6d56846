package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-booking/forms"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInvalidCredentials = errors.New("invalid credentials")

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

type registerRequest struct {
	Name     string `json:"name" form:"name" validate:"notblank,max=255"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"min=8,max=72"`
	Role     string `json:"role" form:"role" validate:"oneof=admin staff"`
}

// Register -> creates a staff account, admin only
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if fe := forms.Validate(req); len(fe) > 0 {
		utils.RespondInvalid(c, fe)
		return
	}

	var existing int64
	if err := uc.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&existing).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	if existing > 0 {
		utils.RespondInvalid(c, forms.Field("email", "An account with this email already exists."))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	user := models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered", gin.H{
		"user_id": user.ID,
	})
}

// Login -> returns a JWT for the admin surface
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" form:"email" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}
	if err := c.ShouldBind(&input); err != nil {
		respondBindError(c, err)
		return
	}
	if fe := forms.Validate(input); len(fe) > 0 {
		utils.RespondInvalid(c, fe)
		return
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := uc.DB.Where("email = ?", email).First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.InfoLogger.Printf("Failed login for %s", email)
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":     token,
		"user_role": strings.ToLower(user.Role),
	})
}

// GetProfile -> the account behind the current token
func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
			return
		}
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}
