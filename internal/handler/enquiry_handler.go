package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursehub/platform/internal/service"
	"coursehub/platform/pkg/response"
)

type EnquiryHandler struct {
	enquiryService service.EnquiryService
	logger         *zap.Logger
}

func NewEnquiryHandler(enquiryService service.EnquiryService, logger *zap.Logger) *EnquiryHandler {
	return &EnquiryHandler{enquiryService: enquiryService, logger: logger}
}

type SubmitEnquiryRequest struct {
	CourseID string `json:"course_id" binding:"omitempty,uuid"`
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,e164"`
	Message  string `json:"message" binding:"required,max=2000"`
}

type ListEnquiriesQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

func (h *EnquiryHandler) Submit(c *gin.Context) {
	var req SubmitEnquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	in := service.SubmitEnquiryInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if req.CourseID != "" {
		id, err := uuid.Parse(req.CourseID)
		if err != nil {
			response.BadRequest(c, "invalid course id")
			return
		}
		in.CourseID = &id
	}

	enquiry, err := h.enquiryService.Submit(c.Request.Context(), in)
	if err != nil {
		if !writeError(c, h.logger, err) {
			internalError(c, h.logger, "failed to submit enquiry", err)
		}
		return
	}

	response.Created(c, enquiry)
}

func (h *EnquiryHandler) List(c *gin.Context) {
	var q ListEnquiriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Validation(c, err)
		return
	}

	enquiries, err := h.enquiryService.List(c.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		internalError(c, h.logger, "failed to list enquiries", err)
		return
	}

	response.Success(c, enquiries)
}
