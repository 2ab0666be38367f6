package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salonbook-backend/models"
)

type AppointmentFilter struct {
	SalonID *uuid.UUID
	Status  models.AppointmentStatus
	// From and To bound StartTime; zero values leave that side open.
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

type AppointmentRepository interface {
	// Insert creates the appointment and returns ErrSlotTaken when another
	// occupying appointment of the salon overlaps it.
	Insert(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	// ListOccupying returns scheduled or confirmed appointments of the salon
	// whose [start, end) intersects [from, to), ordered by start.
	ListOccupying(ctx context.Context, salonID uuid.UUID, from, to time.Time) ([]models.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.AppointmentStatus, cancelledAt *time.Time) error
	Cancel(ctx context.Context, id uuid.UUID, at time.Time) (*models.Appointment, error)
	// CompleteEnded marks every occupying appointment that ended at or
	// before now as completed and returns how many were updated.
	CompleteEnded(ctx context.Context, now time.Time) (int64, error)
}

// Instants are stored in UTC so that both drivers compare them the same way.
type GormAppointmentRepository struct {
	db *gorm.DB
}

func NewGormAppointmentRepository(db *gorm.DB) *GormAppointmentRepository {
	return &GormAppointmentRepository{db: db}
}

// Insert re-checks the interval inside a serializable transaction before
// creating the row, so two overlapping appointments with different starts
// cannot both commit. The unique index still catches identical starts.
func (r *GormAppointmentRepository) Insert(ctx context.Context, appointment *models.Appointment) error {
	appointment.StartTime = appointment.StartTime.UTC()
	appointment.EndTime = appointment.EndTime.UTC()

	occupying := appointment.Status == "" || appointment.Status.Occupying()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !occupying {
			return tx.Create(appointment).Error
		}
		var overlapping int64
		err := tx.Model(&models.Appointment{}).
			Where("salon_id = ?", appointment.SalonID).
			Where("status IN ?", models.OccupyingStatuses).
			Where("start_time < ? AND end_time > ?", appointment.EndTime, appointment.StartTime).
			Count(&overlapping).Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return ErrSlotTaken
		}
		return tx.Create(appointment).Error
	}, r.insertTxOptions()...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSlotTaken), isUniqueViolation(err), isSerializationFailure(err):
		return ErrSlotTaken
	}
	return err
}

// insertTxOptions asks postgres for SERIALIZABLE so the overlap read and the
// insert conflict across transactions. sqlite runs on a single connection,
// which already serializes writers.
func (r *GormAppointmentRepository) insertTxOptions() []*sql.TxOptions {
	if r.db.Dialector.Name() == "postgres" {
		return []*sql.TxOptions{{Isolation: sql.LevelSerializable}}
	}
	return nil
}

func (r *GormAppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *GormAppointmentRepository) ListOccupying(
	ctx context.Context,
	salonID uuid.UUID,
	from, to time.Time,
) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Where("status IN ?", models.OccupyingStatuses).
		Where("start_time < ? AND end_time > ?", to.UTC(), from.UTC()).
		Order("start_time ASC").
		Find(&appointments).Error
	return appointments, err
}

func (r *GormAppointmentRepository) List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, int64, error) {
	var (
		appointments []models.Appointment
		total        int64
	)

	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if filter.SalonID != nil {
		q = q.Where("salon_id = ?", *filter.SalonID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		q = q.Where("start_time >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		q = q.Where("start_time < ?", filter.To.UTC())
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	if err := q.Order("start_time ASC").Find(&appointments).Error; err != nil {
		return nil, 0, err
	}

	return appointments, total, nil
}

func (r *GormAppointmentRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status models.AppointmentStatus,
	cancelledAt *time.Time,
) error {
	update := map[string]any{
		"status": status,
	}
	if cancelledAt != nil {
		update["cancelled_at"] = cancelledAt.UTC()
	}
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(update)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Cancel moves a pending or occupying appointment to cancelled, which frees
// its slot for new bookings.
func (r *GormAppointmentRepository) Cancel(ctx context.Context, id uuid.UUID, at time.Time) (*models.Appointment, error) {
	cancellable := []models.AppointmentStatus{
		models.AppointmentStatusPending,
		models.AppointmentStatusScheduled,
		models.AppointmentStatusConfirmed,
	}
	at = at.UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, cancellable).
		Updates(map[string]any{
			"status":       models.AppointmentStatusCancelled,
			"cancelled_at": at,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	appointment, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotCancellable
	}
	return appointment, nil
}

func (r *GormAppointmentRepository) CompleteEnded(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("status IN ? AND end_time <= ?", models.OccupyingStatuses, now.UTC()).
		Update("status", models.AppointmentStatusCompleted)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
