package handlers

import (
	"net/http"
	"time"

	"staybook/models"
	"staybook/services/availability"
	"staybook/utils"

	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	Service availability.CalendarService
}

func NewCalendarHandler(svc availability.CalendarService) *CalendarHandler {
	return &CalendarHandler{Service: svc}
}

// GetCalendarHandler returns the recorded entries of an accommodation, or the
// open/blocked projection of [start, end] when both query params are given.
func (h *CalendarHandler) GetCalendarHandler(c *gin.Context) {
	accommodationID := c.Param("id")
	start, end := c.Query("start"), c.Query("end")

	if start == "" && end == "" {
		entries, err := h.Service.ListByAccommodation(c.Request.Context(), accommodationID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"accommodationId": accommodationID, "entries": entries})
		return
	}

	from, to, ok := parseStay(c, start, end)
	if !ok {
		return
	}
	summary, err := h.Service.Summary(c.Request.Context(), accommodationID, from, to)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accommodationId": accommodationID,
		"start":           utils.FormatDate(summary.Start),
		"end":             utils.FormatDate(summary.End),
		"open":            formatDates(summary.Open),
		"blocked":         formatDates(summary.Blocked),
		"countOpen":       summary.CountOpen,
		"countBlocked":    summary.CountBlocked,
	})
}

func formatDates(days []time.Time) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, utils.FormatDate(d))
	}
	return out
}

func (h *CalendarHandler) BlockDateHandler(c *gin.Context) {
	date, err := utils.ParseDate(c.Param("date"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	var req models.BlockDateRequest
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
			return
		}
	}

	entry, err := h.Service.Block(c.Request.Context(), c.Param("id"), date, req.Reason)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Date blocked", "entry": entry})
}

func (h *CalendarHandler) UnblockDateHandler(c *gin.Context) {
	date, err := utils.ParseDate(c.Param("date"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid date", err.Error())
		return
	}
	if err := h.Service.Unblock(c.Request.Context(), c.Param("id"), date); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Date unblocked", "date": utils.FormatDate(date)})
}
