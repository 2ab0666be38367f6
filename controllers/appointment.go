// controllers/appointment.go
package controllers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salonbook-backend/booking"
	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

// BookingInput mirrors the booking form: who, what, where and when
type BookingInput struct {
	Name     string `json:"name" binding:"required"`
	Service  string `json:"service" binding:"required"`
	Salon    string `json:"salon" binding:"required"`
	DateTime string `json:"dateTime" binding:"required"`
}

type AvailabilityInput struct {
	Service  string `json:"service" binding:"required"`
	Salon    string `json:"salon" binding:"required"`
	DateTime string `json:"dateTime" binding:"required"`
}

// ConfirmNextSlotInput is sent when the client accepts a proposed slot
type ConfirmNextSlotInput struct {
	BookingInput
	NextSlot string `json:"nextSlot" binding:"required"`
	Confirm  bool   `json:"confirm"`
}

type NextSlotQuery struct {
	Salon   string `form:"salon" binding:"required"`
	Service string `form:"service" binding:"required"`
	After   string `form:"after"`
}

type ListAppointmentsQuery struct {
	Salon  string `form:"salon"`
	Status string `form:"status"`
	From   string `form:"from"`
	To     string `form:"to"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type AppointmentController struct {
	engine       *booking.Engine
	appointments repository.AppointmentRepository
	salons       repository.SalonRepository
	logger       *slog.Logger
}

func NewAppointmentController(
	engine *booking.Engine,
	appointments repository.AppointmentRepository,
	salons repository.SalonRepository,
	logger *slog.Logger,
) *AppointmentController {
	return &AppointmentController{
		engine:       engine,
		appointments: appointments,
		salons:       salons,
		logger:       logger,
	}
}

// CheckAvailability answers whether a slot is free without booking it
func (ac *AppointmentController) CheckAvailability(c *gin.Context) {
	var input AvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	av, err := ac.engine.CheckAvailability(c.Request.Context(), booking.AvailabilityRequest{
		Salon:         input.Salon,
		Service:       input.Service,
		RequestedTime: input.DateTime,
	})
	if err != nil {
		ac.respondEngineError(c, err)
		return
	}

	zone := ac.engine.Zone()
	resp := gin.H{
		"available":     av.Available,
		"requestedTime": zone.Format(av.Start),
		"endTime":       zone.Format(av.End),
		"message":       av.Message,
		"nextAvailable": zone.FormatPtr(av.SuggestedNext),
		"suggestNext":   av.SuggestedNext != nil,
	}
	if !av.Available {
		resp["reason"] = av.Reason
		resp["noSlotFound"] = av.NoSlotFound()
	}
	c.JSON(http.StatusOK, resp)
}

// Book commits the requested slot
func (ac *AppointmentController) Book(c *gin.Context) {
	var input BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	res, err := ac.engine.BookAppointment(c.Request.Context(), booking.BookingRequest{
		Salon:         input.Salon,
		Service:       input.Service,
		Customer:      input.Name,
		RequestedTime: input.DateTime,
	})
	if err != nil {
		ac.respondEngineError(c, err)
		return
	}
	ac.respondResult(c, res)
}

// ConfirmNextSlot books a slot previously proposed by the server
func (ac *AppointmentController) ConfirmNextSlot(c *gin.Context) {
	var input ConfirmNextSlotInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if !input.Confirm {
		c.JSON(http.StatusOK, gin.H{
			"status":  "declined",
			"message": "Booking not confirmed",
		})
		return
	}

	res, err := ac.engine.ConfirmNextSlot(c.Request.Context(), booking.BookingRequest{
		Salon:         input.Salon,
		Service:       input.Service,
		Customer:      input.Name,
		RequestedTime: input.NextSlot,
	})
	if err != nil {
		ac.respondEngineError(c, err)
		return
	}
	ac.respondResult(c, res)
}

// NextSlot returns the earliest free slot at or after the given time
func (ac *AppointmentController) NextSlot(c *gin.Context) {
	var query NextSlotQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	slot, err := ac.engine.FindNextSlotFor(c.Request.Context(), query.Salon, query.Service, query.After)
	if err != nil {
		ac.respondEngineError(c, err)
		return
	}

	if slot == nil {
		c.JSON(http.StatusOK, gin.H{
			"nextAvailable": nil,
			"noSlotFound":   true,
			"message":       "No available slot within the search horizon",
		})
		return
	}

	zone := ac.engine.Zone()
	c.JSON(http.StatusOK, gin.H{
		"nextAvailable": zone.Format(slot.Start),
		"endTime":       zone.Format(slot.End),
		"noSlotFound":   false,
	})
}

// Get returns a single appointment
func (ac *AppointmentController) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID")
		return
	}

	appointment, err := ac.appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
			return
		}
		ac.logger.Error("get appointment failed", "appointment_id", id, "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch appointment")
		return
	}

	c.JSON(http.StatusOK, ac.present(appointment))
}

// List returns appointments filtered by salon, status and start window
func (ac *AppointmentController) List(c *gin.Context) {
	var query ListAppointmentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	zone := ac.engine.Zone()
	filter := repository.AppointmentFilter{
		Status: models.AppointmentStatus(query.Status),
		Limit:  clampLimit(query.Limit),
		Offset: max(query.Offset, 0),
	}

	if query.Salon != "" {
		salon, err := ac.salons.FindByNameOrID(ctx, query.Salon)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				utils.RespondWithError(c, http.StatusNotFound, "Salon not found")
				return
			}
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch salon")
			return
		}
		filter.SalonID = &salon.ID
	}

	for _, bound := range []struct {
		raw  string
		dest *time.Time
	}{{query.From, &filter.From}, {query.To, &filter.To}} {
		if bound.raw == "" {
			continue
		}
		t, err := zone.Normalize(bound.raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid date range: "+err.Error())
			return
		}
		*bound.dest = t
	}

	appointments, total, err := ac.appointments.List(ctx, filter)
	if err != nil {
		ac.logger.Error("list appointments failed", "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch appointments")
		return
	}

	out := make([]gin.H, 0, len(appointments))
	for i := range appointments {
		out = append(out, ac.present(&appointments[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"appointments": out,
		"total":        total,
		"limit":        filter.Limit,
		"offset":       filter.Offset,
	})
}

// Cancel frees the appointment's slot
func (ac *AppointmentController) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID")
		return
	}

	appointment, err := ac.appointments.Cancel(c.Request.Context(), id, time.Now())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		return
	case errors.Is(err, repository.ErrNotCancellable):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		ac.logger.Error("cancel appointment failed", "appointment_id", id, "err", err)
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel appointment")
		return
	}

	ac.logger.Info("appointment cancelled", "appointment_id", id, "user_id", c.GetString("userId"))
	c.JSON(http.StatusOK, gin.H{
		"message":     "Appointment cancelled",
		"appointment": ac.present(appointment),
	})
}

func (ac *AppointmentController) respondResult(c *gin.Context, res *booking.Result) {
	zone := ac.engine.Zone()

	if res.Status == booking.StatusSuccess {
		c.JSON(http.StatusCreated, gin.H{
			"status":      res.Status,
			"message":     res.Message,
			"appointment": ac.present(res.Appointment),
		})
		return
	}

	code := http.StatusConflict
	if res.Status == booking.StatusRejected {
		code = http.StatusUnprocessableEntity
	}
	c.JSON(code, gin.H{
		"status":            res.Status,
		"reason":            res.Reason,
		"message":           res.Message,
		"requestedTime":     zone.Format(res.Start),
		"nextAvailableSlot": zone.FormatPtr(res.SuggestedNext),
		"suggestNext":       res.SuggestedNext != nil,
		"noSlotFound":       res.NoSlotFound(),
	})
}

func (ac *AppointmentController) respondEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidTimeFormat), errors.Is(err, booking.ErrMissingCustomer):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, booking.ErrSalonNotFound), errors.Is(err, booking.ErrServiceNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		utils.RespondWithError(c, http.StatusGatewayTimeout, "Request timed out")
	default:
		ac.logger.Error("booking engine failed", "path", c.FullPath(), "err", err)
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Booking is temporarily unavailable")
	}
}

func (ac *AppointmentController) present(a *models.Appointment) gin.H {
	zone := ac.engine.Zone()
	return gin.H{
		"id":           a.ID,
		"salonId":      a.SalonID,
		"serviceId":    a.ServiceID,
		"customerName": a.CustomerName,
		"startTime":    zone.Format(a.StartTime),
		"endTime":      zone.Format(a.EndTime),
		"status":       a.Status,
		"cancelledAt":  zone.FormatPtr(a.CancelledAt),
	}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 200:
		return 200
	}
	return limit
}
