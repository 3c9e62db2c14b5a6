// server/internal/payment/payment.go
package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/razorpay/razorpay-go/utils"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
)

// RazorpayConfirmer checks the checkout signature Razorpay returns on a
// successful payment against the account's key secret.
type RazorpayConfirmer struct {
	keySecret string
}

func NewRazorpayConfirmer(keySecret string) *RazorpayConfirmer {
	return &RazorpayConfirmer{keySecret: keySecret}
}

func (r *RazorpayConfirmer) Confirm(_ context.Context, p *models.PaymentConfirmation) error {
	if p == nil || p.OrderID == "" || p.PaymentID == "" || p.Signature == "" {
		return fmt.Errorf("%w: missing payment details", apperrors.ErrPaymentRequired)
	}
	if r.keySecret == "" {
		return fmt.Errorf("%w: payment verification is not configured", apperrors.ErrPaymentRequired)
	}

	params := map[string]interface{}{
		"razorpay_order_id":   p.OrderID,
		"razorpay_payment_id": p.PaymentID,
	}
	if !utils.VerifyPaymentSignature(params, strings.ToLower(p.Signature), r.keySecret) {
		return fmt.Errorf("%w: signature mismatch for order %s", apperrors.ErrPaymentRequired, p.OrderID)
	}
	return nil
}

// PassThrough accepts every request. Only for local development.
type PassThrough struct{}

func (PassThrough) Confirm(context.Context, *models.PaymentConfirmation) error {
	return nil
}
