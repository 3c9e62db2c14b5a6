package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipment-tracking-api-server/internal/apperrors"
	"shipment-tracking-api-server/internal/models"
)

var testNow = time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

type memShipments struct {
	mu        sync.Mutex
	byID      map[string]models.Shipment
	conflicts int
	now       time.Time
}

func newMemShipments() *memShipments {
	return &memShipments{byID: map[string]models.Shipment{}, now: testNow.Add(-time.Hour)}
}

func (m *memShipments) Create(_ context.Context, s *models.Shipment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.TrackingCode == s.TrackingCode {
			return fmt.Errorf("%s: %w", s.TrackingCode, apperrors.ErrDuplicateTrackingCode)
		}
	}
	s.ID = primitive.NewObjectID()
	m.now = m.now.Add(time.Second)
	s.CreatedAt, s.UpdatedAt, s.Version = m.now, m.now, 1
	m.byID[s.ID.Hex()] = *s
	return nil
}

func (m *memShipments) GetByID(_ context.Context, id string) (*models.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("shipment %q: %w", id, apperrors.ErrNotFound)
	}
	return &s, nil
}

func (m *memShipments) GetByTrackingCode(_ context.Context, code string) (*models.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.TrackingCode == code {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("tracking code %q: %w", code, apperrors.ErrNotFound)
}

func (m *memShipments) TrackingCodeExists(ctx context.Context, code string) (bool, error) {
	_, err := m.GetByTrackingCode(ctx, code)
	return err == nil, nil
}

// Update mimics the conditional write. conflicts makes the next n calls lose
// the race to a concurrent writer.
func (m *memShipments) Update(_ context.Context, id string, version int64, u models.ShipmentUpdate) (*models.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("shipment %q: %w", id, apperrors.ErrNotFound)
	}
	if m.conflicts > 0 {
		m.conflicts--
		s.Version++
		m.byID[id] = s
		return nil, fmt.Errorf("shipment %q: %w", id, apperrors.ErrConflict)
	}
	if s.Version != version {
		return nil, fmt.Errorf("shipment %q: %w", id, apperrors.ErrConflict)
	}
	u.Apply(&s)
	s.UpdatedAt = testNow
	s.Version++
	m.byID[id] = s
	return &s, nil
}

func (m *memShipments) List(_ context.Context, f models.ShipmentFilter) ([]models.Shipment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Shipment{}
	for _, s := range m.byID {
		if f.OwnerID != "" && s.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			hay := strings.ToLower(s.TrackingCode + " " + s.PackageName + " " + s.Destination + " " + s.RecipientName)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memShipments) CountByStatus(_ context.Context, ownerID string) (models.StatusCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c models.StatusCounts
	for _, s := range m.byID {
		if ownerID == "" || s.OwnerID == ownerID {
			c.Add(s.Status, 1)
		}
	}
	return c, nil
}

type memDrivers struct {
	mu   sync.Mutex
	byID map[string]models.Driver
}

func newMemDrivers() *memDrivers {
	return &memDrivers{byID: map[string]models.Driver{}}
}

func (m *memDrivers) Create(_ context.Context, d *models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = primitive.NewObjectID()
	d.CreatedAt, d.UpdatedAt = testNow, testNow
	m.byID[d.ID.Hex()] = *d
	return nil
}

func (m *memDrivers) GetByID(_ context.Context, id string) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("driver %q: %w", id, apperrors.ErrNotFound)
	}
	return &d, nil
}

func (m *memDrivers) List(_ context.Context, f models.DriverFilter) ([]models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Driver{}
	for _, d := range m.byID {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memDrivers) Update(_ context.Context, id string, u models.DriverUpdate) (*models.Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("driver %q: %w", id, apperrors.ErrNotFound)
	}
	u.Apply(&d)
	m.byID[id] = d
	return &d, nil
}

func (m *memDrivers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("driver %q: %w", id, apperrors.ErrNotFound)
	}
	delete(m.byID, id)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	byID map[string]models.User
}

func newMemUsers(admins ...string) *memUsers {
	m := &memUsers{byID: map[string]models.User{}}
	for _, id := range admins {
		m.byID[id] = models.User{ID: id, Role: models.RoleAdmin}
	}
	return m
}

func (m *memUsers) EnsureProfile(_ context.Context, c models.Caller) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[c.ID]
	if !ok {
		u = models.User{ID: c.ID, Email: c.Email, Role: models.RoleUser, CreatedAt: testNow}
		m.byID[c.ID] = u
	}
	return &u, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, p models.ProfileUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, apperrors.ErrNotFound)
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	m.byID[id] = u
	return &u, nil
}

type stubGeocoder struct {
	coords models.Coordinates
	err    error
	block  bool
}

func (g stubGeocoder) Resolve(ctx context.Context, _ string) (models.Coordinates, error) {
	if g.block {
		<-ctx.Done()
		return models.Coordinates{}, ctx.Err()
	}
	return g.coords, g.err
}

type stubPayments struct {
	err error
}

func (p stubPayments) Confirm(context.Context, *models.PaymentConfirmation) error {
	return p.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) NotifyShipmentUpdated(ownerID string, s *models.Shipment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ownerID+":"+string(s.Status))
}

type memProofs struct {
	keys []string
}

func (p *memProofs) UploadFile(_ context.Context, file io.Reader, key, _ string) (string, error) {
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}
	p.keys = append(p.keys, key)
	return "https://cdn.example.com/" + key, nil
}

var (
	owner    = models.Caller{ID: "owner-1", Email: "owner@example.com"}
	stranger = models.Caller{ID: "stranger-1"}
	admin    = models.Caller{ID: "admin-1"}
)

type fixture struct {
	shipments *memShipments
	drivers   *memDrivers
	users     *memUsers
	notifier  *recordingNotifier
	proofs    *memProofs
	gate      *Gate
	svc       *ShipmentService
	tracking  *TrackingService
	driverSvc *DriverService
	projector *Projector
}

func newFixture() *fixture {
	f := &fixture{
		shipments: newMemShipments(),
		drivers:   newMemDrivers(),
		users:     newMemUsers(admin.ID),
		notifier:  &recordingNotifier{},
		proofs:    &memProofs{},
	}
	f.gate = NewGate(f.users)
	f.svc = NewShipmentService(ShipmentDeps{
		Shipments: f.shipments,
		Drivers:   f.drivers,
		Gate:      f.gate,
		Issuer:    NewIssuer(f.shipments, 10),
		Payments:  stubPayments{},
		Notifier:  f.notifier,
		Proofs:    f.proofs,
	})
	f.svc.now = func() time.Time { return testNow }
	f.projector = NewProjector(stubGeocoder{coords: models.Coordinates{Lat: 39.78, Lng: -89.65}}, time.Second)
	f.tracking = NewTrackingService(f.shipments, f.drivers, f.gate, f.projector)
	f.driverSvc = NewDriverService(f.drivers, f.gate)
	return f
}

func springfield() models.NewShipment {
	return models.NewShipment{
		Origin:         "Shelbyville",
		Destination:    "Springfield",
		PackageName:    "Donuts",
		Weight:         1.5,
		Dimensions:     "30x20x10",
		PackageType:    "perishable",
		DeliverySpeed:  "same_day",
		RecipientName:  "Homer Simpson",
		RecipientPhone: "555-0113",
		RecipientEmail: "homer@example.com",
	}
}

func testDriver() models.Driver {
	return models.Driver{
		Name:          "Otto Mann",
		Email:         "otto@example.com",
		Phone:         "555-0142",
		LicenseNumber: "BUS-1",
		VehicleType:   "van",
	}
}
