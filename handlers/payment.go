package handlers

import (
	"net/http"

	"staybook/models"
	"staybook/services/payment"
	"staybook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	Service payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: svc}
}

func (h *PaymentHandler) CreatePaymentHandler(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		getLogger(c).Warn("Invalid payment request", zap.Error(err))
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	p, err := h.Service.Create(c.Request.Context(), req.ReservationID, req.Amount, req.Method)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Payment created", "payment": p})
}

func (h *PaymentHandler) ListPaymentsHandler(c *gin.Context) {
	var (
		list []models.Payment
		err  error
	)
	if status := c.Query("status"); status != "" {
		list, err = h.Service.ListByStatus(c.Request.Context(), models.PaymentStatus(status))
	} else {
		list, err = h.Service.ListAll(c.Request.Context())
	}
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": list})
}

func (h *PaymentHandler) SummaryHandler(c *gin.Context) {
	summary, err := h.Service.Summary(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *PaymentHandler) GetPaymentHandler(c *gin.Context) {
	p, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

func (h *PaymentHandler) GetByReservationHandler(c *gin.Context) {
	p, err := h.Service.GetByReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

func (h *PaymentHandler) respond(c *gin.Context, message string, p *models.Payment, err error) {
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "payment": p})
}

func (h *PaymentHandler) ProcessPaymentHandler(c *gin.Context) {
	p, err := h.Service.Process(c.Request.Context(), c.Param("id"))
	h.respond(c, "Payment processed", p, err)
}

func (h *PaymentHandler) CompletePaymentHandler(c *gin.Context) {
	p, err := h.Service.Complete(c.Request.Context(), c.Param("id"))
	h.respond(c, "Payment completed", p, err)
}

func (h *PaymentHandler) FailPaymentHandler(c *gin.Context) {
	var req models.FailPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
			return
		}
	}
	p, err := h.Service.Fail(c.Request.Context(), c.Param("id"), req.Reason)
	h.respond(c, "Payment marked as failed", p, err)
}

func (h *PaymentHandler) RefundPaymentHandler(c *gin.Context) {
	p, err := h.Service.Refund(c.Request.Context(), c.Param("id"))
	h.respond(c, "Payment refunded", p, err)
}
