package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/models"
	"github.com/noah-isme/edu-admin-gateway/internal/service"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// ResultHandler exposes the result report feeds and the export pipeline.
type ResultHandler struct {
	results *service.ResultService
	exports *service.ExportService
}

// NewResultHandler constructs ResultHandler.
func NewResultHandler(results *service.ResultService, exports *service.ExportService) *ResultHandler {
	return &ResultHandler{results: results, exports: exports}
}

func resultFilterFromQuery(c *gin.Context) models.ResultFilter {
	return models.ResultFilter{
		StudentID: c.Query("studentId"),
		PaperID:   c.Query("paperId"),
		GradeID:   c.Query("gradeId"),
		Page:      intQuery(c, "page", 0),
		Limit:     intQuery(c, "limit", 0),
	}
}

// Rows godoc
// @Summary Teacher-scope result report rows
// @Tags Results
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Student ID"
// @Param paperId query string false "Paper ID"
// @Param gradeId query string false "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /results [get]
func (h *ResultHandler) Rows(c *gin.Context) {
	rows, err := h.results.Rows(c.Request.Context(), sessionFromContext(c), resultFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// AdminRows godoc
// @Summary Platform-wide result report rows
// @Tags Results
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Student ID"
// @Param paperId query string false "Paper ID"
// @Param gradeId query string false "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /results/admin [get]
func (h *ResultHandler) AdminRows(c *gin.Context) {
	rows, err := h.results.AdminRows(c.Request.Context(), sessionFromContext(c), resultFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// RequestExport godoc
// @Summary Queue a report export
// @Tags Results
// @Produce json
// @Security BearerAuth
// @Param format query string true "csv or pdf"
// @Param admin query bool false "Export the platform-wide feed"
// @Success 202 {object} response.Envelope
// @Router /results/exports [post]
func (h *ResultHandler) RequestExport(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	job, err := h.exports.Request(
		c.Request.Context(),
		sessionFromContext(c),
		c.Query("admin") == "true",
		resultFilterFromQuery(c),
		models.ExportFormat(c.Query("format")),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ExportStatus godoc
// @Summary Get the state of one export job
// @Tags Results
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /results/exports/{id} [get]
func (h *ResultHandler) ExportStatus(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	job, err := h.exports.Job(sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a rendered export via its signed token
// @Tags Results
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200
// @Router /results/exports/download [get]
func (h *ResultHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, name, err := h.exports.Download(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
