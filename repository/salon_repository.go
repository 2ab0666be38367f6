package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"salonbook-backend/models"
)

type SalonRepository interface {
	Create(ctx context.Context, salon *models.Salon) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Salon, error)
	// FindByNameOrID accepts either a UUID or a case-insensitive name.
	FindByNameOrID(ctx context.Context, ref string) (*models.Salon, error)
	List(ctx context.Context) ([]models.Salon, error)
	Count(ctx context.Context) (int64, error)
}

type GormSalonRepository struct {
	db *gorm.DB
}

func NewGormSalonRepository(db *gorm.DB) *GormSalonRepository {
	return &GormSalonRepository{db: db}
}

func (r *GormSalonRepository) Create(ctx context.Context, salon *models.Salon) error {
	return translate(r.db.WithContext(ctx).Create(salon).Error)
}

func (r *GormSalonRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Salon, error) {
	var s models.Salon
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormSalonRepository) FindByNameOrID(ctx context.Context, ref string) (*models.Salon, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	if id, err := uuid.Parse(ref); err == nil {
		return r.GetByID(ctx, id)
	}
	var s models.Salon
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(ref)).
		First(&s).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormSalonRepository) List(ctx context.Context) ([]models.Salon, error) {
	var salons []models.Salon
	err := r.db.WithContext(ctx).
		Preload("Services", "is_active = ?", true).
		Order("name ASC").
		Find(&salons).Error
	return salons, err
}

func (r *GormSalonRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Salon{}).Count(&n).Error
	return n, err
}
