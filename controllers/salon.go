// controllers/salon.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

// CreateSalonInput defines the expected JSON structure for creating a salon
type CreateSalonInput struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	OpeningTime string `json:"openingTime" binding:"required"` // "09:00"
	ClosingTime string `json:"closingTime" binding:"required"` // "17:00"
}

type SalonController struct {
	salons repository.SalonRepository
	logger *slog.Logger
}

func NewSalonController(salons repository.SalonRepository, logger *slog.Logger) *SalonController {
	return &SalonController{salons: salons, logger: logger}
}

// List returns every salon with its active services
func (sc *SalonController) List(c *gin.Context) {
	salons, err := sc.salons.List(c.Request.Context())
	if err != nil {
		sc.logger.Error("list salons failed", "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch salons")
		return
	}
	c.JSON(http.StatusOK, gin.H{"salons": salons})
}

// Create registers a new salon and its operating window
func (sc *SalonController) Create(c *gin.Context) {
	var input CreateSalonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" && !utils.ValidatePhone(input.Phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number")
		return
	}
	if input.Email != "" && !utils.ValidateEmail(input.Email) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid email address")
		return
	}

	opening, err := utils.ParseClock(input.OpeningTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid opening time: "+err.Error())
		return
	}
	closing, err := utils.ParseClock(input.ClosingTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid closing time: "+err.Error())
		return
	}

	salon := models.Salon{
		Name:        strings.TrimSpace(input.Name),
		Address:     input.Address,
		Phone:       input.Phone,
		Email:       input.Email,
		OpeningTime: datatypes.Time(opening),
		ClosingTime: datatypes.Time(closing),
	}
	if err := salon.Validate(); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := sc.salons.Create(c.Request.Context(), &salon); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			utils.RespondWithError(c, http.StatusConflict, "Salon name already registered")
			return
		}
		sc.logger.Error("create salon failed", "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create salon")
		return
	}

	sc.logger.Info("salon created", "salon_id", salon.ID, "user_id", c.GetString("userId"))
	c.JSON(http.StatusCreated, salon)
}
