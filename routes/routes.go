package routes

import (
	"time"

	"staybook/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterReservationRoutes registers reservation lifecycle endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	{
		api.POST("", hb.Reservation.CreateReservationHandler)
		api.GET("", hb.Reservation.ListReservationsHandler)
		api.GET("/:id", hb.Reservation.GetReservationHandler)
		api.PUT("/:id", hb.Reservation.EditReservationHandler)
		api.POST("/:id/confirm", hb.Reservation.ConfirmReservationHandler)
		api.POST("/:id/cancel", hb.Reservation.CancelReservationHandler)
		api.DELETE("/:id", hb.Reservation.DeleteReservationHandler)
	}
	r.GET("/api/guests/:id/reservations", hb.Reservation.ListByGuestHandler)
}

// RegisterAccommodationRoutes registers per-accommodation availability and calendar endpoints.
func RegisterAccommodationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/accommodations/:id")
	{
		api.GET("/reservations", hb.Reservation.ListByAccommodationHandler)
		api.GET("/availability", hb.Reservation.AvailabilityHandler)
		api.GET("/calendar", hb.Calendar.GetCalendarHandler)
		api.PUT("/calendar/:date", hb.Calendar.BlockDateHandler)
		api.DELETE("/calendar/:date", hb.Calendar.UnblockDateHandler)
	}
}

// RegisterPaymentRoutes registers payment ledger endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.POST("", hb.Payment.CreatePaymentHandler)
		api.GET("", hb.Payment.ListPaymentsHandler)
		api.GET("/summary", hb.Payment.SummaryHandler)
		api.GET("/reservation/:id", hb.Payment.GetByReservationHandler)
		api.GET("/:id", hb.Payment.GetPaymentHandler)
		api.POST("/:id/process", hb.Payment.ProcessPaymentHandler)
		api.POST("/:id/complete", hb.Payment.CompletePaymentHandler)
		api.POST("/:id/fail", hb.Payment.FailPaymentHandler)
		api.POST("/:id/refund", hb.Payment.RefundPaymentHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health.HealthCheckHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterReservationRoutes(r, hb)
	RegisterAccommodationRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
}
