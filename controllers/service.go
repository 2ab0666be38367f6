// controllers/service.go
package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"min=0"`
	Duration    int     `json:"duration" binding:"required,min=1"` // in minutes
}

type ServiceController struct {
	salons   repository.SalonRepository
	services repository.ServiceRepository
	logger   *slog.Logger
}

func NewServiceController(salons repository.SalonRepository, services repository.ServiceRepository, logger *slog.Logger) *ServiceController {
	return &ServiceController{salons: salons, services: services, logger: logger}
}

// List retrieves the active services of a salon
func (sc *ServiceController) List(c *gin.Context) {
	salon, ok := sc.loadSalon(c)
	if !ok {
		return
	}

	services, err := sc.services.ListBySalon(c.Request.Context(), salon.ID)
	if err != nil {
		sc.logger.Error("list services failed", "salon_id", salon.ID, "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch services")
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// Create adds a bookable service to a salon
func (sc *ServiceController) Create(c *gin.Context) {
	salon, ok := sc.loadSalon(c)
	if !ok {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service := models.Service{
		SalonID:     salon.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Duration:    input.Duration,
		IsActive:    true,
	}

	// A service longer than the operating window could never be booked
	if err := service.FitsIn(salon); err != nil {
		utils.RespondWithError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := sc.services.Create(c.Request.Context(), &service); err != nil {
		sc.logger.Error("create service failed", "salon_id", salon.ID, "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}

	c.JSON(http.StatusCreated, service)
}

func (sc *ServiceController) loadSalon(c *gin.Context) (*models.Salon, bool) {
	salon, err := sc.salons.FindByNameOrID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
			return nil, false
		}
		sc.logger.Error("load salon failed", "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch salon")
		return nil, false
	}
	return salon, true
}
