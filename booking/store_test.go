package booking

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"salonbook-backend/models"
	"salonbook-backend/repository"
)

var ist = MustZone("IST", "+05:30")

// at builds an instant on 2030-01-14 (a Monday) in the business zone.
func at(day, hour, minute int) time.Time {
	return time.Date(2030, time.January, day, hour, minute, 0, 0, ist.Location())
}

// memStore is an in-memory Store that rejects overlapping occupying
// appointments at insert, like the repository does.
type memStore struct {
	mu           sync.Mutex
	salons       []*models.Salon
	services     []*models.Service
	appointments []models.Appointment

	listErr error

	// The first staleReads calls to ListOccupying wait for each other and
	// then all report an empty snapshot.
	staleReads int
	staleWG    sync.WaitGroup
}

func newMemStore() *memStore {
	return &memStore{}
}

func (m *memStore) addSalon(name string, open, close time.Duration) *models.Salon {
	s := &models.Salon{
		ID:          uuid.New(),
		Name:        name,
		OpeningTime: datatypes.Time(open),
		ClosingTime: datatypes.Time(close),
	}
	m.salons = append(m.salons, s)
	return s
}

func (m *memStore) addService(salon *models.Salon, name string, minutes int) *models.Service {
	s := &models.Service{ID: uuid.New(), SalonID: salon.ID, Name: name, Duration: minutes, IsActive: true}
	m.services = append(m.services, s)
	return s
}

func (m *memStore) book(salon *models.Salon, service *models.Service, start time.Time, status models.AppointmentStatus) models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := models.Appointment{
		ID:           uuid.New(),
		SalonID:      salon.ID,
		ServiceID:    service.ID,
		CustomerName: "existing",
		StartTime:    start,
		EndTime:      start.Add(service.Length()),
		Status:       status,
	}
	m.appointments = append(m.appointments, a)
	return a
}

func (m *memStore) stale(n int) {
	m.staleReads = n
	m.staleWG.Add(n)
}

func (m *memStore) FindSalon(ctx context.Context, ref string) (*models.Salon, error) {
	for _, s := range m.salons {
		if strings.EqualFold(s.Name, ref) || s.ID.String() == ref {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) FindService(ctx context.Context, ref string, salonID uuid.UUID) (*models.Service, error) {
	for _, s := range m.services {
		if s.SalonID == salonID && (strings.EqualFold(s.Name, ref) || s.ID.String() == ref) {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memStore) ListOccupying(ctx context.Context, salonID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	m.mu.Lock()
	if m.listErr != nil {
		m.mu.Unlock()
		return nil, m.listErr
	}
	if m.staleReads > 0 {
		m.staleReads--
		m.mu.Unlock()
		m.staleWG.Done()
		m.staleWG.Wait()
		return nil, nil
	}
	defer m.mu.Unlock()

	var out []models.Appointment
	for _, a := range m.appointments {
		if a.SalonID != salonID || !a.Status.Occupying() {
			continue
		}
		if a.StartTime.Before(to) && a.EndTime.After(from) {
			// Hand back UTC like the database does.
			a.StartTime = a.StartTime.UTC()
			a.EndTime = a.EndTime.UTC()
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *memStore) InsertAppointment(ctx context.Context, appointment *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot := intervalOf(appointment)
	for i := range m.appointments {
		a := &m.appointments[i]
		if a.SalonID == appointment.SalonID && a.Status.Occupying() && slot.Overlaps(intervalOf(a)) {
			return repository.ErrSlotTaken
		}
	}
	appointment.ID = uuid.New()
	if appointment.Status == "" {
		appointment.Status = models.AppointmentStatusScheduled
	}
	m.appointments = append(m.appointments, *appointment)
	return nil
}

func (m *memStore) occupying() []models.Appointment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, a := range m.appointments {
		if a.Status.Occupying() {
			out = append(out, a)
		}
	}
	return out
}

type fixture struct {
	store   *memStore
	salon   *models.Salon
	service *models.Service
	engine  *Engine
}

// newFixture sets up "Elegant Cuts" (09:00-17:00) with a 30 minute
// "Haircut" and an engine whose clock reads now.
func newFixture(t *testing.T, now time.Time, opts ...Option) *fixture {
	t.Helper()
	store := newMemStore()
	salon := store.addSalon("Elegant Cuts", 9*time.Hour, 17*time.Hour)
	service := store.addService(salon, "Haircut", 30)

	opts = append([]Option{
		WithClock(func() time.Time { return now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	engine, err := New(store, ist, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return &fixture{store: store, salon: salon, service: service, engine: engine}
}
