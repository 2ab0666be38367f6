package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salonbook-backend/models"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *models.Service) error
	ListBySalon(ctx context.Context, salonID uuid.UUID) ([]models.Service, error)
	// FindByNameOrID only matches active services of the given salon.
	FindByNameOrID(ctx context.Context, ref string, salonID uuid.UUID) (*models.Service, error)
}

type GormServiceRepository struct {
	db *gorm.DB
}

func NewGormServiceRepository(db *gorm.DB) *GormServiceRepository {
	return &GormServiceRepository{db: db}
}

func (r *GormServiceRepository) Create(ctx context.Context, service *models.Service) error {
	return translate(r.db.WithContext(ctx).Create(service).Error)
}

func (r *GormServiceRepository) ListBySalon(ctx context.Context, salonID uuid.UUID) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND is_active = ?", salonID, true).
		Order("name ASC").
		Find(&services).Error
	return services, err
}

func (r *GormServiceRepository) FindByNameOrID(ctx context.Context, ref string, salonID uuid.UUID) (*models.Service, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	q := r.db.WithContext(ctx).Where("salon_id = ? AND is_active = ?", salonID, true)
	if id, err := uuid.Parse(ref); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("LOWER(name) = ?", strings.ToLower(ref))
	}

	var s models.Service
	if err := q.First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}
