package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"coursehub/platform/internal/model"
	"coursehub/platform/internal/repository"
)

type SubmitEnquiryInput struct {
	CourseID *uuid.UUID
	Name     string
	Email    string
	Phone    string
	Message  string
}

type EnquiryService interface {
	Submit(ctx context.Context, in SubmitEnquiryInput) (*model.Enquiry, error)
	List(ctx context.Context, limit, offset int) ([]model.Enquiry, error)
}

type enquiryService struct {
	enquiryRepo repository.EnquiryRepository
	limiter     RateLimiter
}

func NewEnquiryService(enquiryRepo repository.EnquiryRepository, limiter RateLimiter) EnquiryService {
	return &enquiryService{enquiryRepo: enquiryRepo, limiter: limiter}
}

func (s *enquiryService) Submit(ctx context.Context, in SubmitEnquiryInput) (*model.Enquiry, error) {
	email := normalizeEmail(in.Email)
	if err := s.limiter.Allow(ctx, email); err != nil {
		return nil, err
	}

	enquiry := &model.Enquiry{
		ID:       uuid.New(),
		CourseID: in.CourseID,
		Name:     in.Name,
		Email:    email,
		Phone:    in.Phone,
		Message:  in.Message,
	}
	if err := s.enquiryRepo.Create(ctx, enquiry); err != nil {
		return nil, fmt.Errorf("create enquiry: %w", err)
	}
	return enquiry, nil
}

func (s *enquiryService) List(ctx context.Context, limit, offset int) ([]model.Enquiry, error) {
	enquiries, err := s.enquiryRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	return enquiries, nil
}

var _ EnquiryService = (*enquiryService)(nil)
