package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/service"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// PaperHandler exposes paper and question authoring endpoints.
type PaperHandler struct {
	papers *service.PaperService
}

// NewPaperHandler constructs PaperHandler.
func NewPaperHandler(papers *service.PaperService) *PaperHandler {
	return &PaperHandler{papers: papers}
}

// List godoc
// @Summary List papers with derived status
// @Tags Papers
// @Produce json
// @Security BearerAuth
// @Param gradeId query string false "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /papers [get]
func (h *PaperHandler) List(c *gin.Context) {
	papers, err := h.papers.List(c.Request.Context(), sessionFromContext(c), c.Query("gradeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, papers, nil)
}

// Get godoc
// @Summary Get paper detail
// @Tags Papers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Paper ID"
// @Success 200 {object} response.Envelope
// @Router /papers/{id} [get]
func (h *PaperHandler) Get(c *gin.Context) {
	paper, err := h.papers.Get(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, paper, nil)
}

// View godoc
// @Summary Resolve the authoring modal state from ?action=&id=
// @Tags Papers
// @Produce json
// @Security BearerAuth
// @Param action query string false "create, update or view"
// @Param id query string false "Paper ID for update/view"
// @Success 200 {object} response.Envelope
// @Router /papers/view [get]
func (h *PaperHandler) View(c *gin.Context) {
	state, err := viewStateFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload := gin.H{"state": state}
	if state.RequiresID() {
		paper, err := h.papers.Get(c.Request.Context(), sessionFromContext(c), state.ID)
		if err != nil {
			response.Error(c, err)
			return
		}
		payload["paper"] = paper
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// Create godoc
// @Summary Create a paper
// @Tags Papers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PaperRequest true "Paper payload"
// @Success 201 {object} response.Envelope
// @Router /papers [post]
func (h *PaperHandler) Create(c *gin.Context) {
	var req service.PaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	paper, err := h.papers.Create(c.Request.Context(), sessionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, paper)
}

// Update godoc
// @Summary Update paper metadata
// @Tags Papers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Paper ID"
// @Param payload body service.PaperRequest true "Paper payload"
// @Success 200 {object} response.Envelope
// @Router /papers/{id} [patch]
func (h *PaperHandler) Update(c *gin.Context) {
	var req service.PaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	paper, err := h.papers.Update(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, paper, nil)
}

// Publish godoc
// @Summary Publish a complete paper
// @Tags Papers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Paper ID"
// @Success 200 {object} response.Envelope
// @Router /papers/{id}/publish [patch]
func (h *PaperHandler) Publish(c *gin.Context) {
	paper, err := h.papers.Publish(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, paper, nil)
}

// Delete godoc
// @Summary Delete a paper and its questions
// @Tags Papers
// @Security BearerAuth
// @Param id path string true "Paper ID"
// @Success 204
// @Router /papers/{id} [delete]
func (h *PaperHandler) Delete(c *gin.Context) {
	if err := h.papers.Delete(c.Request.Context(), sessionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Questions godoc
// @Summary List questions of a paper
// @Tags Papers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Paper ID"
// @Success 200 {object} response.Envelope
// @Router /papers/{id}/questions [get]
func (h *PaperHandler) Questions(c *gin.Context) {
	questions, err := h.papers.Questions(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, questions, nil)
}

// CreateQuestion godoc
// @Summary Author a question on an unpublished paper
// @Tags Papers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Paper ID"
// @Param payload body service.CreateQuestionRequest true "Question payload"
// @Success 201 {object} response.Envelope
// @Router /papers/{id}/questions [post]
func (h *PaperHandler) CreateQuestion(c *gin.Context) {
	var req service.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	question, err := h.papers.CreateQuestion(c.Request.Context(), sessionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, question)
}

// UpdateQuestion godoc
// @Summary Rewrite a question on an unpublished paper
// @Tags Papers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Paper ID"
// @Param questionId path string true "Question ID"
// @Param payload body service.UpdateQuestionRequest true "Question payload"
// @Success 200 {object} response.Envelope
// @Router /papers/{id}/questions/{questionId} [patch]
func (h *PaperHandler) UpdateQuestion(c *gin.Context) {
	var req service.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	question, err := h.papers.UpdateQuestion(c.Request.Context(), sessionFromContext(c), c.Param("id"), c.Param("questionId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, question, nil)
}

// DeleteQuestion godoc
// @Summary Remove a question from an unpublished paper
// @Tags Papers
// @Security BearerAuth
// @Param id path string true "Paper ID"
// @Param questionId path string true "Question ID"
// @Success 204
// @Router /papers/{id}/questions/{questionId} [delete]
func (h *PaperHandler) DeleteQuestion(c *gin.Context) {
	if err := h.papers.DeleteQuestion(c.Request.Context(), sessionFromContext(c), c.Param("id"), c.Param("questionId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
