package handlers

// HandlerBundle groups the endpoint handlers registered by routes.
type HandlerBundle struct {
	Reservation *ReservationHandler
	Calendar    *CalendarHandler
	Payment     *PaymentHandler
	Health      *HealthHandler
}
