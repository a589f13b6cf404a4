package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/service"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// TaxonomyHandler exposes the grade/subject/stream hierarchy.
type TaxonomyHandler struct {
	taxonomy *service.TaxonomyService
}

// NewTaxonomyHandler constructs TaxonomyHandler.
func NewTaxonomyHandler(taxonomy *service.TaxonomyService) *TaxonomyHandler {
	return &TaxonomyHandler{taxonomy: taxonomy}
}

// Grades godoc
// @Summary List grades
// @Tags Taxonomy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *TaxonomyHandler) Grades(c *gin.Context) {
	grades, err := h.taxonomy.Grades(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// WatchGrades godoc
// @Summary Watch grades as server-sent events
// @Tags Taxonomy
// @Produce text/event-stream
// @Security BearerAuth
// @Router /grades/watch [get]
func (h *TaxonomyHandler) WatchGrades(c *gin.Context) {
	snapshot, sub := h.taxonomy.WatchGrades(c.Request.Context(), sessionFromContext(c))
	streamWatch(c, snapshot, sub)
}

// Subjects godoc
// @Summary List subjects of a grade
// @Tags Taxonomy
// @Produce json
// @Security BearerAuth
// @Param gradeId query string false "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *TaxonomyHandler) Subjects(c *gin.Context) {
	subjects, err := h.taxonomy.Subjects(c.Request.Context(), sessionFromContext(c), c.Query("gradeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// CreateSubject godoc
// @Summary Create a subject under a grade, creating the grade if needed
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateChildRequest true "Grade number and name"
// @Success 201 {object} response.Envelope
// @Router /subjects [post]
func (h *TaxonomyHandler) CreateSubject(c *gin.Context) {
	var req service.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.taxonomy.CreateSubject(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// RenameSubject godoc
// @Summary Rename a subject
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Param payload body service.RenameRequest true "New name"
// @Success 200 {object} response.Envelope
// @Router /subjects/{id} [patch]
func (h *TaxonomyHandler) RenameSubject(c *gin.Context) {
	var req service.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.taxonomy.RenameSubject(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// DeleteSubject godoc
// @Summary Delete a subject
// @Tags Taxonomy
// @Security BearerAuth
// @Param id path string true "Subject ID"
// @Success 204
// @Router /subjects/{id} [delete]
func (h *TaxonomyHandler) DeleteSubject(c *gin.Context) {
	if err := h.taxonomy.DeleteSubject(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Streams godoc
// @Summary List streams of a grade
// @Tags Taxonomy
// @Produce json
// @Security BearerAuth
// @Param gradeId query string false "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /streams [get]
func (h *TaxonomyHandler) Streams(c *gin.Context) {
	streams, err := h.taxonomy.Streams(c.Request.Context(), sessionFromContext(c), c.Query("gradeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, streams, nil)
}

// CreateStream godoc
// @Summary Create a stream under a grade, creating the grade if needed
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateChildRequest true "Grade number and name"
// @Success 201 {object} response.Envelope
// @Router /streams [post]
func (h *TaxonomyHandler) CreateStream(c *gin.Context) {
	var req service.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	stream, err := h.taxonomy.CreateStream(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stream)
}

// RenameStream godoc
// @Summary Rename a stream
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Stream ID"
// @Param payload body service.RenameRequest true "New name"
// @Success 200 {object} response.Envelope
// @Router /streams/{id} [patch]
func (h *TaxonomyHandler) RenameStream(c *gin.Context) {
	var req service.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	stream, err := h.taxonomy.RenameStream(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stream, nil)
}

// DeleteStream godoc
// @Summary Delete a stream
// @Tags Taxonomy
// @Security BearerAuth
// @Param id path string true "Stream ID"
// @Success 204
// @Router /streams/{id} [delete]
func (h *TaxonomyHandler) DeleteStream(c *gin.Context) {
	if err := h.taxonomy.DeleteStream(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// StreamSubjects godoc
// @Summary List subjects attached to a stream
// @Tags Taxonomy
// @Produce json
// @Security BearerAuth
// @Param streamId query string false "Stream ID"
// @Success 200 {object} response.Envelope
// @Router /stream-subjects [get]
func (h *TaxonomyHandler) StreamSubjects(c *gin.Context) {
	subjects, err := h.taxonomy.StreamSubjects(c.Request.Context(), sessionFromContext(c), c.Query("streamId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// CreateStreamSubject godoc
// @Summary Attach a subject to a stream
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateStreamSubjectRequest true "Stream and name"
// @Success 201 {object} response.Envelope
// @Router /stream-subjects [post]
func (h *TaxonomyHandler) CreateStreamSubject(c *gin.Context) {
	var req service.CreateStreamSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.taxonomy.CreateStreamSubject(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// RenameStreamSubject godoc
// @Summary Rename a stream subject
// @Tags Taxonomy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Stream subject ID"
// @Param payload body service.RenameRequest true "New name"
// @Success 200 {object} response.Envelope
// @Router /stream-subjects/{id} [patch]
func (h *TaxonomyHandler) RenameStreamSubject(c *gin.Context) {
	var req service.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.taxonomy.RenameStreamSubject(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// DeleteStreamSubject godoc
// @Summary Detach a subject from its stream
// @Tags Taxonomy
// @Security BearerAuth
// @Param id path string true "Stream subject ID"
// @Success 204
// @Router /stream-subjects/{id} [delete]
func (h *TaxonomyHandler) DeleteStreamSubject(c *gin.Context) {
	if err := h.taxonomy.DeleteStreamSubject(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
