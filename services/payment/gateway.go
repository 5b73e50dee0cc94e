package payment

import (
	"context"
	"fmt"
	"strings"

	"staybook/models"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// Gateway moves money for a payment and returns the provider's reference.
type Gateway interface {
	Charge(ctx context.Context, p models.Payment) (string, error)
	Refund(ctx context.Context, p models.Payment) (string, error)
}

// StripeGateway charges through a confirmed PaymentIntent. stripe.Key must
// be set before use.
type StripeGateway struct {
	paymentMethod string
	logger        *zap.Logger
}

func NewStripeGateway(paymentMethod string, logger *zap.Logger) *StripeGateway {
	if paymentMethod == "" {
		paymentMethod = "pm_card_visa"
	}
	return &StripeGateway{paymentMethod: paymentMethod, logger: logger}
}

func (g *StripeGateway) Charge(ctx context.Context, p models.Payment) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(p.Amount),
		Currency:      stripe.String(strings.ToLower(p.Currency)),
		PaymentMethod: stripe.String(g.paymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("payment_id", p.ID)
	params.AddMetadata("reservation_id", p.ReservationID)
	// A retried Process must not charge twice.
	params.SetIdempotencyKey("charge-" + p.ID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent failed: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return pi.ID, fmt.Errorf("stripe payment intent %s ended in status %s", pi.ID, pi.Status)
	}
	g.logger.Info("Stripe charge succeeded", zap.String("paymentId", p.ID), zap.String("intent", pi.ID))
	return pi.ID, nil
}

// Refund refunds the PaymentIntent recorded on the payment. Payments settled
// outside Stripe (manual completion) have nothing to refund here.
func (g *StripeGateway) Refund(ctx context.Context, p models.Payment) (string, error) {
	if !strings.HasPrefix(p.TransactionReference, "pi_") {
		return "", nil
	}
	params := &stripe.RefundParams{PaymentIntent: stripe.String(p.TransactionReference)}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + p.ID)

	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe refund failed: %w", err)
	}
	g.logger.Info("Stripe refund issued", zap.String("paymentId", p.ID), zap.String("refund", r.ID))
	return r.ID, nil
}

// OfflineGateway settles without a provider. Used when no Stripe key is configured.
type OfflineGateway struct{}

func (OfflineGateway) Charge(_ context.Context, _ models.Payment) (string, error) {
	return "offline_" + uuid.New().String(), nil
}

func (OfflineGateway) Refund(_ context.Context, _ models.Payment) (string, error) {
	return "", nil
}
