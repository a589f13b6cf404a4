package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/service"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// ScheduleHandler exposes lesson and live session endpoints.
type ScheduleHandler struct {
	schedule *service.ScheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// Lessons godoc
// @Summary List lessons of a class
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *ScheduleHandler) Lessons(c *gin.Context) {
	lessons, err := h.schedule.Lessons(c.Request.Context(), sessionFromContext(c), c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, nil)
}

// CreateLesson godoc
// @Summary Create a lesson
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.LessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *ScheduleHandler) CreateLesson(c *gin.Context) {
	var req service.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.schedule.CreateLesson(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// UpdateLesson godoc
// @Summary Update a lesson
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Param payload body service.LessonRequest true "Lesson payload"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [patch]
func (h *ScheduleHandler) UpdateLesson(c *gin.Context) {
	var req service.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.schedule.UpdateLesson(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// DeleteLesson godoc
// @Summary Delete a lesson
// @Tags Schedule
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /lessons/{id} [delete]
func (h *ScheduleHandler) DeleteLesson(c *gin.Context) {
	if err := h.schedule.DeleteLesson(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Lives godoc
// @Summary List live sessions of a class
// @Tags Schedule
// @Produce json
// @Security BearerAuth
// @Param classId query string false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /lives [get]
func (h *ScheduleHandler) Lives(c *gin.Context) {
	lives, err := h.schedule.Lives(c.Request.Context(), sessionFromContext(c), c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lives, nil)
}

// CreateLive godoc
// @Summary Schedule a live session
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.LiveRequest true "Live session payload"
// @Success 201 {object} response.Envelope
// @Router /lives [post]
func (h *ScheduleHandler) CreateLive(c *gin.Context) {
	var req service.LiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	live, err := h.schedule.CreateLive(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, live)
}

// UpdateLive godoc
// @Summary Reschedule a live session
// @Tags Schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Live session ID"
// @Param payload body service.LiveRequest true "Live session payload"
// @Success 200 {object} response.Envelope
// @Router /lives/{id} [patch]
func (h *ScheduleHandler) UpdateLive(c *gin.Context) {
	var req service.LiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	live, err := h.schedule.UpdateLive(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, live, nil)
}

// DeleteLive godoc
// @Summary Cancel a live session
// @Tags Schedule
// @Security BearerAuth
// @Param id path string true "Live session ID"
// @Success 204
// @Router /lives/{id} [delete]
func (h *ScheduleHandler) DeleteLive(c *gin.Context) {
	if err := h.schedule.DeleteLive(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
