package pricing

import (
	"time"

	"staybook/utils"
)

// Nights returns the number of nights between check-in and check-out.
func Nights(checkIn, checkOut time.Time) int {
	return utils.DaysBetween(checkIn, checkOut)
}

// Price computes the total for a stay: nightly rate times nights, in minor units.
func Price(nightlyRate int64, checkIn, checkOut time.Time) int64 {
	return nightlyRate * int64(Nights(checkIn, checkOut))
}

// Quote breaks a price down for display.
type Quote struct {
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Nights      int    `json:"nights"`
	NightlyRate int64  `json:"nightlyRate"`
	Total       int64  `json:"total"`
}

func NewQuote(nightlyRate int64, checkIn, checkOut time.Time) Quote {
	return Quote{
		CheckIn:     utils.FormatDate(checkIn),
		CheckOut:    utils.FormatDate(checkOut),
		Nights:      Nights(checkIn, checkOut),
		NightlyRate: nightlyRate,
		Total:       Price(nightlyRate, checkIn, checkOut),
	}
}
