package handlers

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"shipment-tracking-api-server/internal/models"
	"shipment-tracking-api-server/internal/services"
)

type mockShipments struct {
	mock.Mock
}

func (m *mockShipments) shipment(args mock.Arguments) (*models.Shipment, error) {
	s, _ := args.Get(0).(*models.Shipment)
	return s, args.Error(1)
}

func (m *mockShipments) Create(ctx context.Context, caller models.Caller, in models.NewShipment, payment *models.PaymentConfirmation) (*models.Shipment, error) {
	return m.shipment(m.Called(ctx, caller, in, payment))
}

func (m *mockShipments) Get(ctx context.Context, caller models.Caller, id string) (*models.Shipment, error) {
	return m.shipment(m.Called(ctx, caller, id))
}

func (m *mockShipments) ListMine(ctx context.Context, caller models.Caller, f models.ShipmentFilter) ([]models.Shipment, error) {
	args := m.Called(ctx, caller, f)
	list, _ := args.Get(0).([]models.Shipment)
	return list, args.Error(1)
}

func (m *mockShipments) ListAll(ctx context.Context, caller models.Caller, f models.ShipmentFilter) ([]models.Shipment, error) {
	args := m.Called(ctx, caller, f)
	list, _ := args.Get(0).([]models.Shipment)
	return list, args.Error(1)
}

func (m *mockShipments) Stats(ctx context.Context, caller models.Caller, all bool) (*models.DashboardStats, error) {
	args := m.Called(ctx, caller, all)
	st, _ := args.Get(0).(*models.DashboardStats)
	return st, args.Error(1)
}

func (m *mockShipments) UpdateRecipient(ctx context.Context, caller models.Caller, id string, in services.RecipientUpdate) (*models.Shipment, error) {
	return m.shipment(m.Called(ctx, caller, id, in))
}

func (m *mockShipments) UpdateStatus(ctx context.Context, caller models.Caller, id, status string) (*models.Shipment, error) {
	return m.shipment(m.Called(ctx, caller, id, status))
}

func (m *mockShipments) AssignDriver(ctx context.Context, caller models.Caller, id, driverID string) (*models.Shipment, error) {
	return m.shipment(m.Called(ctx, caller, id, driverID))
}

func (m *mockShipments) AdminUpdate(ctx context.Context, caller models.Caller, id string, in services.AdminShipmentUpdate) (*models.Shipment, error) {
	return m.shipment(m.Called(ctx, caller, id, in))
}

func (m *mockShipments) AttachDeliveryProof(ctx context.Context, caller models.Caller, id string, file io.Reader, contentType string) (*models.Shipment, error) {
	data, _ := io.ReadAll(file)
	return m.shipment(m.Called(ctx, caller, id, string(data), contentType))
}

type mockTracking struct {
	mock.Mock
}

func (m *mockTracking) Lookup(ctx context.Context, caller models.Caller, code string) (*services.TrackingView, error) {
	args := m.Called(ctx, caller, code)
	v, _ := args.Get(0).(*services.TrackingView)
	return v, args.Error(1)
}

func (m *mockTracking) ViewShipment(ctx context.Context, caller models.Caller, id string) (*services.TrackingView, error) {
	args := m.Called(ctx, caller, id)
	v, _ := args.Get(0).(*services.TrackingView)
	return v, args.Error(1)
}

type mockDrivers struct {
	mock.Mock
}

func (m *mockDrivers) driver(args mock.Arguments) (*models.Driver, error) {
	d, _ := args.Get(0).(*models.Driver)
	return d, args.Error(1)
}

func (m *mockDrivers) Create(ctx context.Context, caller models.Caller, d models.Driver) (*models.Driver, error) {
	return m.driver(m.Called(ctx, caller, d))
}

func (m *mockDrivers) Get(ctx context.Context, caller models.Caller, id string) (*models.Driver, error) {
	return m.driver(m.Called(ctx, caller, id))
}

func (m *mockDrivers) List(ctx context.Context, caller models.Caller, f models.DriverFilter) ([]models.Driver, error) {
	args := m.Called(ctx, caller, f)
	list, _ := args.Get(0).([]models.Driver)
	return list, args.Error(1)
}

func (m *mockDrivers) Update(ctx context.Context, caller models.Caller, id string, u models.DriverUpdate) (*models.Driver, error) {
	return m.driver(m.Called(ctx, caller, id, u))
}

func (m *mockDrivers) Delete(ctx context.Context, caller models.Caller, id string) error {
	return m.Called(ctx, caller, id).Error(0)
}

type mockProfiles struct {
	mock.Mock
}

func (m *mockProfiles) Get(ctx context.Context, caller models.Caller) (*models.User, error) {
	args := m.Called(ctx, caller)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockProfiles) Update(ctx context.Context, caller models.Caller, in models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, caller, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type staticTokens map[string]models.Caller

func (s staticTokens) Parse(token string) (models.Caller, error) {
	c, ok := s[token]
	if !ok {
		return models.Caller{}, io.ErrUnexpectedEOF
	}
	return c, nil
}
