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

// TeacherHandler exposes teacher approval and assignment endpoints.
type TeacherHandler struct {
	teachers *service.TeacherService
}

// NewTeacherHandler constructs TeacherHandler.
func NewTeacherHandler(teachers *service.TeacherService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers}
}

func teacherFilterFromQuery(c *gin.Context) models.TeacherFilter {
	var filter models.TeacherFilter
	filter.Status = models.ApprovalStatus(c.Query("status"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if active := c.Query("active"); active == "true" || active == "false" {
		v := active == "true"
		filter.Active = &v
	}
	filter.Page = intQuery(c, "page", 1)
	filter.PageSize = intQuery(c, "limit", 20)
	return filter
}

// List godoc
// @Summary List teachers
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param status query string false "Approval status"
// @Param search query string false "Search by name or email"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.teachers.List(c.Request.Context(), sessionFromContext(c), teacherFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// Watch godoc
// @Summary Watch the teacher list as server-sent events
// @Tags Teachers
// @Produce text/event-stream
// @Security BearerAuth
// @Router /teachers/watch [get]
func (h *TeacherHandler) Watch(c *gin.Context) {
	snapshot, sub := h.teachers.Watch(c.Request.Context(), sessionFromContext(c), teacherFilterFromQuery(c))
	streamWatch(c, snapshot, sub)
}

// Get godoc
// @Summary Get teacher detail
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [get]
func (h *TeacherHandler) Get(c *gin.Context) {
	teacher, err := h.teachers.Get(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Approve godoc
// @Summary Approve a pending teacher
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/approve [patch]
func (h *TeacherHandler) Approve(c *gin.Context) {
	teacher, err := h.teachers.Approve(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Reject godoc
// @Summary Reject a pending teacher
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/reject [patch]
func (h *TeacherHandler) Reject(c *gin.Context) {
	teacher, err := h.teachers.Reject(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// SetActive godoc
// @Summary Activate or deactivate a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param payload body object true "{\"isActive\": bool}"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/active [patch]
func (h *TeacherHandler) SetActive(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "isActive is required"))
		return
	}
	teacher, err := h.teachers.SetActive(c.Request.Context(), sessionFromContext(c), c.Param("id"), *req.IsActive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Assignments godoc
// @Summary List a teacher's assignments
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments [get]
func (h *TeacherHandler) Assignments(c *gin.Context) {
	assignments, err := h.teachers.Assignments(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Assign godoc
// @Summary Assign a grade and subjects to a teacher
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param payload body service.AssignmentRequest true "Assignment"
// @Success 201 {object} response.Envelope
// @Router /teachers/{id}/assignments [post]
func (h *TeacherHandler) Assign(c *gin.Context) {
	var req service.AssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.teachers.Assign(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// RemoveAssignment godoc
// @Summary Remove an assignment from a teacher
// @Tags Teachers
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 204
// @Router /teachers/{id}/assignments/{assignmentId} [delete]
func (h *TeacherHandler) RemoveAssignment(c *gin.Context) {
	if err := h.teachers.RemoveAssignment(c.Request.Context(), sessionFromContext(c), c.Param("id"), c.Param("assignmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
