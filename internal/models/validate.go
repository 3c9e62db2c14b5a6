// server/internal/models/validate.go
package models

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"shipment-tracking-api-server/internal/apperrors"
)

var trackingCodePattern = regexp.MustCompile(`^TRK\d{6}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("trackingcode", func(fl validator.FieldLevel) bool {
		return trackingCodePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("shipmentstatus", func(fl validator.FieldLevel) bool {
		return ShipmentStatus(fl.Field().String()).Valid()
	})
	return v
}

func IsTrackingCode(s string) bool {
	return trackingCodePattern.MatchString(s)
}

func validationError(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
}

// Validate checks field rules and the timeline invariants of a shipment.
func (s *Shipment) Validate() error {
	if err := validate.Struct(s); err != nil {
		return validationError(err)
	}

	rank := s.Status.Rank()
	if rank >= StatusInTransit.Rank() && s.TransitDate == nil {
		return validationError(fmt.Errorf("status %s without transitDate", s.Status))
	}
	if rank >= StatusDelivered.Rank() && s.DeliveryDate == nil {
		return validationError(fmt.Errorf("status %s without deliveryDate", s.Status))
	}
	if s.DeliveryDate != nil && s.TransitDate == nil {
		return validationError(fmt.Errorf("deliveryDate set without transitDate"))
	}
	if s.TransitDate != nil && s.TransitDate.Before(s.CreatedAt) {
		return validationError(fmt.Errorf("transitDate before createdAt"))
	}
	if s.TransitDate != nil && s.DeliveryDate != nil && s.DeliveryDate.Before(*s.TransitDate) {
		return validationError(fmt.Errorf("deliveryDate before transitDate"))
	}
	return nil
}

func (n *NewShipment) Validate() error {
	if err := validate.Struct(n); err != nil {
		return validationError(err)
	}
	return nil
}

func (d *Driver) Validate() error {
	if err := validate.Struct(d); err != nil {
		return validationError(err)
	}
	return nil
}

func (u *User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return validationError(err)
	}
	return nil
}
