package handlers

import (
	"net/http"
	"time"

	"staybook/utils"

	"github.com/gin-gonic/gin"
)

// parseStay parses a check-in/check-out pair and writes a 400 on failure.
func parseStay(c *gin.Context, checkIn, checkOut string) (time.Time, time.Time, bool) {
	in, err := utils.ParseDate(checkIn)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid check-in date", err.Error())
		return time.Time{}, time.Time{}, false
	}
	out, err := utils.ParseDate(checkOut)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid check-out date", err.Error())
		return time.Time{}, time.Time{}, false
	}
	return in, out, true
}
