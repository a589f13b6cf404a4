package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/service"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// StudentHandler exposes the roster screen's endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

type rosterPayload struct {
	Students []models.Student     `json:"students"`
	Filter   models.StudentFilter `json:"filter"`
}

// List godoc
// @Summary List students under the saved filter
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, filter, err := h.students.List(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rosterPayload{Students: students, Filter: filter}, nil)
}

// Search godoc
// @Summary Run a new roster search, persisting the filter
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.StudentFilter true "Search filter"
// @Success 200 {object} response.Envelope
// @Router /students/search [post]
func (h *StudentHandler) Search(c *gin.Context) {
	var filter models.StudentFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	filter.Email = strings.TrimSpace(filter.Email)
	students, saved, err := h.students.Search(c.Request.Context(), sessionFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rosterPayload{Students: students, Filter: saved}, nil)
}

// Page godoc
// @Summary Move the persisted roster filter to another page
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param page query int true "Page"
// @Success 200 {object} response.Envelope
// @Router /students/page [get]
func (h *StudentHandler) Page(c *gin.Context) {
	students, filter, err := h.students.Page(c.Request.Context(), sessionFromContext(c), intQuery(c, "page", 1))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rosterPayload{Students: students, Filter: filter}, nil)
}

// Watch godoc
// @Summary Watch the roster under the saved filter as server-sent events
// @Tags Students
// @Produce text/event-stream
// @Security BearerAuth
// @Router /students/watch [get]
func (h *StudentHandler) Watch(c *gin.Context) {
	snapshot, sub, err := h.students.Watch(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamWatch(c, snapshot, sub)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Ban godoc
// @Summary Ban a student (no-op when already banned)
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/ban [patch]
func (h *StudentHandler) Ban(c *gin.Context) {
	student, err := h.students.Ban(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Unban godoc
// @Summary Unban a student (no-op when already active)
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/unban [patch]
func (h *StudentHandler) Unban(c *gin.Context) {
	student, err := h.students.Unban(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
