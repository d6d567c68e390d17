package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coursehub/platform/internal/model"
	"coursehub/platform/internal/repository"
)

type CreateCourseInput struct {
	Title       string
	Slug        string
	Category    string
	Description string
	PriceCents  int64
	Published   bool
}

type CourseService interface {
	List(ctx context.Context, filter model.CourseFilter) ([]model.Course, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Course, error)
	Create(ctx context.Context, createdBy uuid.UUID, in CreateCourseInput) (*model.Course, error)
}

type courseService struct {
	courseRepo repository.CourseRepository
}

func NewCourseService(courseRepo repository.CourseRepository) CourseService {
	return &courseService{courseRepo: courseRepo}
}

func (s *courseService) List(ctx context.Context, filter model.CourseFilter) ([]model.Course, error) {
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	courses, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *courseService) Get(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

func (s *courseService) Create(ctx context.Context, createdBy uuid.UUID, in CreateCourseInput) (*model.Course, error) {
	course := &model.Course{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(in.Title),
		Slug:        strings.ToLower(strings.TrimSpace(in.Slug)),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Published:   in.Published,
		CreatedBy:   createdBy,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

var _ CourseService = (*courseService)(nil)
