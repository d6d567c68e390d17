package repository

import (
	"context"

	"github.com/google/uuid"

	"coursehub/platform/internal/model"
)

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	List(ctx context.Context, filter model.CourseFilter) ([]model.Course, error)
}

type EnquiryRepository interface {
	Create(ctx context.Context, enquiry *model.Enquiry) error
	List(ctx context.Context, limit, offset int) ([]model.Enquiry, error)
}
