package testfixtures

import (
	"log/slog"
	"testing"

	"github.com/example/meeting-rooms/internal/application"
	"github.com/example/meeting-rooms/internal/storeadapter"
)

// ServiceFactory assists tests with constructing application services on top of
// a migrated SQLite harness.
type ServiceFactory struct {
	Harness *SQLiteHarness
	Logger  *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory opens a fresh harness seeded with the default reference data.
func NewServiceFactory(tb testing.TB, opts ...ServiceFactoryOption) *ServiceFactory {
	tb.Helper()

	factory := &ServiceFactory{Logger: DiscardLogger()}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Harness == nil {
		factory.Harness = NewSQLiteHarness(tb)
		factory.Harness.SeedReferenceData(tb, nil, nil)
	}
	if factory.Logger == nil {
		factory.Logger = DiscardLogger()
	}
	return factory
}

// WithHarness reuses an existing harness instead of opening a new one.
func WithHarness(harness *SQLiteHarness) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Harness = harness
	}
}

// WithLogger overrides the logger handed to services.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// NewReservationService wires a reservation service to the harness storage.
func (f *ServiceFactory) NewReservationService() *application.ReservationService {
	storage := f.Harness.Storage
	return application.NewReservationServiceWithLogger(
		storeadapter.NewReservationStore(storage.Reservations),
		storeadapter.NewRoomCatalog(storage.Rooms),
		storeadapter.NewUserDirectory(storage.Users),
		storage,
		f.Harness.Location,
		f.Logger,
	)
}
