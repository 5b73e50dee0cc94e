package handlers

import (
	"net/http"

	"staybook/models"
	"staybook/services/reservation"
	"staybook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	Service reservation.ReservationService
}

func NewReservationHandler(svc reservation.ReservationService) *ReservationHandler {
	return &ReservationHandler{Service: svc}
}

func (h *ReservationHandler) CreateReservationHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid reservation request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	checkIn, checkOut, ok := parseStay(c, req.CheckInDate, req.CheckOutDate)
	if !ok {
		return
	}

	r, err := h.Service.Create(c.Request.Context(), reservation.CreateInput{
		AccommodationID: req.AccommodationID,
		GuestID:         req.GuestID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.NumberOfGuests,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Reservation created", "reservation": r})
}

func (h *ReservationHandler) ListReservationsHandler(c *gin.Context) {
	var (
		list []models.Reservation
		err  error
	)
	if status := c.Query("status"); status != "" {
		list, err = h.Service.ListByStatus(c.Request.Context(), models.ReservationStatus(status))
	} else {
		list, err = h.Service.ListAll(c.Request.Context())
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list})
}

func (h *ReservationHandler) GetReservationHandler(c *gin.Context) {
	r, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": r})
}

func (h *ReservationHandler) EditReservationHandler(c *gin.Context) {
	var req models.EditReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	checkIn, checkOut, ok := parseStay(c, req.CheckInDate, req.CheckOutDate)
	if !ok {
		return
	}

	r, err := h.Service.Edit(c.Request.Context(), c.Param("id"), reservation.EditInput{
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   req.NumberOfGuests,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation updated", "reservation": r})
}

func (h *ReservationHandler) ConfirmReservationHandler(c *gin.Context) {
	r, err := h.Service.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation confirmed", "reservation": r})
}

func (h *ReservationHandler) CancelReservationHandler(c *gin.Context) {
	r, err := h.Service.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled", "reservation": r})
}

func (h *ReservationHandler) DeleteReservationHandler(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted"})
}

func (h *ReservationHandler) ListByAccommodationHandler(c *gin.Context) {
	list, err := h.Service.ListByAccommodation(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list})
}

func (h *ReservationHandler) ListByGuestHandler(c *gin.Context) {
	list, err := h.Service.ListByGuest(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": list})
}

// AvailabilityHandler answers GET /api/accommodations/:id/availability?checkIn=&checkOut=.
func (h *ReservationHandler) AvailabilityHandler(c *gin.Context) {
	checkIn, checkOut, ok := parseStay(c, c.Query("checkIn"), c.Query("checkOut"))
	if !ok {
		return
	}
	available, err := h.Service.IsAvailable(c.Request.Context(), c.Param("id"), checkIn, checkOut)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accommodationId": c.Param("id"),
		"checkIn":         utils.FormatDate(checkIn),
		"checkOut":        utils.FormatDate(checkOut),
		"available":       available,
	})
}
