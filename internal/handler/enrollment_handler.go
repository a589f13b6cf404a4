package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/service"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// EnrollmentHandler exposes the enrollment request inbox.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Pending godoc
// @Summary List pending enrollment requests
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) Pending(c *gin.Context) {
	requests, err := h.enrollments.Pending(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Watch godoc
// @Summary Watch the pending inbox as server-sent events
// @Tags Enrollments
// @Produce text/event-stream
// @Security BearerAuth
// @Router /enrollments/watch [get]
func (h *EnrollmentHandler) Watch(c *gin.Context) {
	snapshot, sub := h.enrollments.WatchPending(c.Request.Context(), sessionFromContext(c))
	streamWatch(c, snapshot, sub)
}

// Approve godoc
// @Summary Approve an enrollment request
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/approve [patch]
func (h *EnrollmentHandler) Approve(c *gin.Context) {
	request, err := h.enrollments.Approve(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Reject godoc
// @Summary Reject an enrollment request
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/reject [patch]
func (h *EnrollmentHandler) Reject(c *gin.Context) {
	request, err := h.enrollments.Reject(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
