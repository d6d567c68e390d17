package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coursehub/platform/internal/model"
)

const maxListLimit = 100

type pgCourseRepository struct {
	db *gorm.DB
}

func NewPGCourseRepository(db *gorm.DB) CourseRepository {
	return &pgCourseRepository{db: db}
}

func (r *pgCourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *pgCourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *pgCourseRepository) List(ctx context.Context, filter model.CourseFilter) ([]model.Course, error) {
	q := r.db.WithContext(ctx).Where("published = ?", true)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var courses []model.Course
	err := q.Order("created_at DESC").
		Limit(clampLimit(filter.Limit)).
		Offset(filter.Offset).
		Find(&courses).Error
	return courses, err
}

type pgEnquiryRepository struct {
	db *gorm.DB
}

func NewPGEnquiryRepository(db *gorm.DB) EnquiryRepository {
	return &pgEnquiryRepository{db: db}
}

func (r *pgEnquiryRepository) Create(ctx context.Context, enquiry *model.Enquiry) error {
	return r.db.WithContext(ctx).Create(enquiry).Error
}

func (r *pgEnquiryRepository) List(ctx context.Context, limit, offset int) ([]model.Enquiry, error) {
	var enquiries []model.Enquiry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&enquiries).Error
	return enquiries, err
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
