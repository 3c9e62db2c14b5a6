// server/internal/services/shipment_service.go
package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/logger"
	"shipment-tracking-api-server/internal/metrics"
	"shipment-tracking-api-server/internal/models"
)

const (
	createAttempts  = 3
	casAttempts     = 3
	recentShipments = 5
	maxProofBytes   = 10 << 20
)

var proofExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

type ShipmentDeps struct {
	Shipments ShipmentRepository
	Drivers   DriverRepository
	Gate      *Gate
	Issuer    *Issuer
	Payments  PaymentConfirmer
	Notifier  Notifier
	Proofs    ProofStore
}

type ShipmentService struct {
	shipments ShipmentRepository
	drivers   DriverRepository
	gate      *Gate
	issuer    *Issuer
	payments  PaymentConfirmer
	notifier  Notifier
	proofs    ProofStore
	now       func() time.Time
}

func NewShipmentService(d ShipmentDeps) *ShipmentService {
	return &ShipmentService{
		shipments: d.Shipments,
		drivers:   d.Drivers,
		gate:      d.Gate,
		issuer:    d.Issuer,
		payments:  d.Payments,
		notifier:  d.Notifier,
		proofs:    d.Proofs,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

type RecipientUpdate struct {
	Name  *string
	Phone *string
	Email *string
}

// AdminShipmentUpdate is the combined status and driver edit of the admin console.
type AdminShipmentUpdate struct {
	Status   *string
	DriverID *string
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// Create registers a new pending shipment for the caller once payment is confirmed.
func (s *ShipmentService) Create(ctx context.Context, caller models.Caller, in models.NewShipment, payment *models.PaymentConfirmation) (*models.Shipment, error) {
	if _, err := s.gate.Authorize(ctx, caller, OpCreateShipment); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.payments.Confirm(ctx, payment); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := s.issuer.Issue(ctx)
		if err != nil {
			return nil, err
		}

		shipment := &models.Shipment{
			TrackingCode:       code,
			OwnerID:            caller.ID,
			Status:             models.StatusPending,
			Origin:             strings.TrimSpace(in.Origin),
			Destination:        strings.TrimSpace(in.Destination),
			PackageName:        strings.TrimSpace(in.PackageName),
			PackageDescription: strings.TrimSpace(in.PackageDescription),
			Weight:             in.Weight,
			Dimensions:         strings.TrimSpace(in.Dimensions),
			PackageType:        in.PackageType,
			DeliverySpeed:      in.DeliverySpeed,
			RecipientName:      strings.TrimSpace(in.RecipientName),
			RecipientPhone:     strings.TrimSpace(in.RecipientPhone),
			RecipientEmail:     strings.TrimSpace(in.RecipientEmail),
		}
		if err := shipment.Validate(); err != nil {
			return nil, err
		}

		err = s.shipments.Create(ctx, shipment)
		if errors.Is(err, apperrors.ErrDuplicateTrackingCode) {
			metrics.TrackingCodeCollisionsTotal.Inc()
			logger.Warn("tracking code taken at insert, reissuing", "code", code, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		metrics.ShipmentsCreatedTotal.Inc()
		logger.Info("shipment created", "trackingCode", shipment.TrackingCode, "owner", caller.ID)
		return shipment, nil
	}
	return nil, fmt.Errorf("%w: insert kept colliding", apperrors.ErrIssuanceExhausted)
}

func (s *ShipmentService) Get(ctx context.Context, caller models.Caller, id string) (*models.Shipment, error) {
	shipment, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.AuthorizeShipment(ctx, caller, OpViewShipment, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *ShipmentService) ListMine(ctx context.Context, caller models.Caller, f models.ShipmentFilter) ([]models.Shipment, error) {
	if _, err := s.gate.Authorize(ctx, caller, OpListOwnShipments); err != nil {
		return nil, err
	}
	f.OwnerID = caller.ID
	return s.shipments.List(ctx, f)
}

func (s *ShipmentService) ListAll(ctx context.Context, caller models.Caller, f models.ShipmentFilter) ([]models.Shipment, error) {
	if _, err := s.gate.Authorize(ctx, caller, OpListAllShipments); err != nil {
		return nil, err
	}
	return s.shipments.List(ctx, f)
}

// Stats summarises the caller's shipments, or every shipment when all is set.
func (s *ShipmentService) Stats(ctx context.Context, caller models.Caller, all bool) (*models.DashboardStats, error) {
	op, owner := OpViewOwnStats, caller.ID
	if all {
		op, owner = OpViewAllStats, ""
	}
	if _, err := s.gate.Authorize(ctx, caller, op); err != nil {
		return nil, err
	}

	counts, err := s.shipments.CountByStatus(ctx, owner)
	if err != nil {
		return nil, err
	}
	recent, err := s.shipments.List(ctx, models.ShipmentFilter{OwnerID: owner, Limit: recentShipments})
	if err != nil {
		return nil, err
	}
	return &models.DashboardStats{Counts: counts, Recent: recent}, nil
}

// UpdateRecipient edits the recipient contact details. Owners may do this for
// their own shipments; package fields stay as created.
func (s *ShipmentService) UpdateRecipient(ctx context.Context, caller models.Caller, id string, in RecipientUpdate) (*models.Shipment, error) {
	current, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.AuthorizeShipment(ctx, caller, OpUpdateRecipient, current); err != nil {
		return nil, err
	}

	u := models.ShipmentUpdate{
		RecipientName:  trimmed(in.Name),
		RecipientPhone: trimmed(in.Phone),
		RecipientEmail: trimmed(in.Email),
	}
	return s.mutate(ctx, current, func(*models.Shipment) (models.ShipmentUpdate, error) {
		return u, nil
	})
}

func (s *ShipmentService) UpdateStatus(ctx context.Context, caller models.Caller, id, status string) (*models.Shipment, error) {
	return s.AdminUpdate(ctx, caller, id, AdminShipmentUpdate{Status: &status})
}

// AssignDriver binds driverID to the shipment; an empty driverID clears it.
// The driver's availability is not checked and one driver may serve several
// shipments at once.
func (s *ShipmentService) AssignDriver(ctx context.Context, caller models.Caller, id, driverID string) (*models.Shipment, error) {
	return s.AdminUpdate(ctx, caller, id, AdminShipmentUpdate{DriverID: &driverID})
}

// AdminUpdate applies a status change and a driver assignment in one write.
func (s *ShipmentService) AdminUpdate(ctx context.Context, caller models.Caller, id string, in AdminShipmentUpdate) (*models.Shipment, error) {
	op := OpUpdateStatus
	if in.Status == nil {
		op = OpAssignDriver
	}
	if _, err := s.gate.Authorize(ctx, caller, op); err != nil {
		return nil, err
	}
	if in.Status != nil && in.DriverID != nil {
		if _, err := s.gate.Authorize(ctx, caller, OpAssignDriver); err != nil {
			return nil, err
		}
	}

	var target models.ShipmentStatus
	if in.Status != nil {
		st, err := models.ParseShipmentStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		target = st
	}

	driverID := trimmed(in.DriverID)
	if driverID != nil && *driverID != "" {
		if _, err := s.drivers.GetByID(ctx, *driverID); err != nil {
			return nil, fmt.Errorf("assign driver: %w", err)
		}
	}

	current, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, current, func(cur *models.Shipment) (models.ShipmentUpdate, error) {
		var u models.ShipmentUpdate
		if target != "" {
			var err error
			if u, err = ApplyStatus(cur, target, s.now()); err != nil {
				return u, err
			}
		}
		if driverID != nil {
			u.DriverID = driverID
		}
		return u, nil
	})
}

// AttachDeliveryProof stores a proof-of-delivery photo and records it on a
// delivered shipment.
func (s *ShipmentService) AttachDeliveryProof(ctx context.Context, caller models.Caller, id string, file io.Reader, contentType string) (*models.Shipment, error) {
	if _, err := s.gate.Authorize(ctx, caller, OpAttachProof); err != nil {
		return nil, err
	}
	if s.proofs == nil {
		return nil, fmt.Errorf("%w: proof storage is not configured", apperrors.ErrStoreUnavailable)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: delivery proof must be an image, got %q", apperrors.ErrValidation, contentType)
	}

	current, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusDelivered {
		return nil, fmt.Errorf("%w: shipment %s is %s, not delivered", apperrors.ErrInvalidStatus, current.TrackingCode, current.Status)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxProofBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read delivery proof: %w", err)
	}
	if len(data) == 0 || len(data) > maxProofBytes {
		return nil, fmt.Errorf("%w: delivery proof must be between 1 byte and %d bytes", apperrors.ErrValidation, maxProofBytes)
	}
	sum := sha256.Sum256(data)

	ext, ok := proofExtensions[contentType]
	if !ok {
		ext = ".img"
	}
	objectKey := fmt.Sprintf("delivery-proofs/%s/%s%s", current.TrackingCode, uuid.New().String(), ext)

	url, err := s.proofs.UploadFile(ctx, bytes.NewReader(data), objectKey, contentType)
	if err != nil {
		return nil, err
	}

	proof := &models.DeliveryProof{
		PhotoURL:   url,
		PhotoHash:  hex.EncodeToString(sum[:]),
		FileType:   contentType,
		UploadedBy: caller.ID,
		CreatedAt:  s.now(),
	}
	return s.mutate(ctx, current, func(*models.Shipment) (models.ShipmentUpdate, error) {
		return models.ShipmentUpdate{DeliveryProof: proof}, nil
	})
}

// mutate writes the update built from the latest shipment state with a
// version check, re-reading and rebuilding when another writer got there first.
func (s *ShipmentService) mutate(ctx context.Context, current *models.Shipment, build func(cur *models.Shipment) (models.ShipmentUpdate, error)) (*models.Shipment, error) {
	id := current.ID.Hex()
	for attempt := 0; attempt < casAttempts; attempt++ {
		if attempt > 0 {
			var err error
			if current, err = s.shipments.GetByID(ctx, id); err != nil {
				return nil, err
			}
		}

		u, err := build(current)
		if err != nil {
			return nil, err
		}
		if u.IsEmpty() {
			return current, nil
		}

		next := *current
		u.Apply(&next)
		if err := next.Validate(); err != nil {
			return nil, err
		}

		updated, err := s.shipments.Update(ctx, id, current.Version, u)
		if errors.Is(err, apperrors.ErrConflict) {
			logger.Debug("shipment changed concurrently, retrying", "id", id, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}

		s.updated(current, updated)
		return updated, nil
	}
	return nil, fmt.Errorf("shipment %s: %w", id, apperrors.ErrConflict)
}

func (s *ShipmentService) updated(before, after *models.Shipment) {
	if before.Status != after.Status {
		metrics.StatusTransitionsTotal.WithLabelValues(string(before.Status), string(after.Status)).Inc()
		logger.Info("shipment status changed", "trackingCode", after.TrackingCode, "from", before.Status, "to", after.Status)
	}
	if s.notifier != nil {
		s.notifier.NotifyShipmentUpdated(after.OwnerID, after)
	}
}
