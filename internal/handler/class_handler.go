package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/service"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// ClassHandler exposes class management endpoints.
type ClassHandler struct {
	classes *service.ClassService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes *service.ClassService) *ClassHandler {
	return &ClassHandler{classes: classes}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param gradeId query string false "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.classes.List(c.Request.Context(), sessionFromContext(c), c.Query("gradeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Get godoc
// @Summary Get class detail
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.classes.Get(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create a class
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.ClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.classes.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update a class
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Param payload body service.ClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [patch]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.classes.Update(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete a class and its schedule
// @Tags Classes
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 204
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.classes.Delete(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
