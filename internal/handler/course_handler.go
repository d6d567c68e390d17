package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursehub/platform/internal/model"
	"coursehub/platform/internal/service"
	"coursehub/platform/pkg/response"
)

type CourseHandler struct {
	courseService service.CourseService
	logger        *zap.Logger
}

func NewCourseHandler(courseService service.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courseService: courseService, logger: logger}
}

type ListCoursesQuery struct {
	Category string `form:"category" binding:"omitempty,max=64"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"required,max=200"`
	Category    string `json:"category" binding:"required,max=64"`
	Description string `json:"description" binding:"max=10000"`
	PriceCents  int64  `json:"price_cents" binding:"min=0"`
	Published   bool   `json:"published"`
}

func (h *CourseHandler) List(c *gin.Context) {
	var q ListCoursesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Validation(c, err)
		return
	}

	courses, err := h.courseService.List(c.Request.Context(), model.CourseFilter{
		Category: q.Category,
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		internalError(c, h.logger, "failed to list courses", err)
		return
	}

	response.Success(c, courses)
}

func (h *CourseHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid course id")
		return
	}

	course, err := h.courseService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCourseNotFound) {
			response.NotFound(c, "course not found")
			return
		}
		internalError(c, h.logger, "failed to load course", err)
		return
	}

	response.Success(c, course)
}

func (h *CourseHandler) Create(c *gin.Context) {
	p, err := principalFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Validation(c, err)
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), p.UserID, service.CreateCourseInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Category:    req.Category,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Published:   req.Published,
	})
	if err != nil {
		internalError(c, h.logger, "failed to create course", err)
		return
	}

	response.Created(c, course)
}
