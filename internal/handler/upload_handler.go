package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/upstream"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// UploadHandler forwards multipart image uploads to the backend.
type UploadHandler struct {
	uploads *upstream.UploadClient
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads *upstream.UploadClient) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// UploadImage godoc
// @Summary Upload an image and get back {url, publicId}
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "image file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "read uploaded file"))
		return
	}
	defer file.Close()

	sess := sessionFromContext(c)
	result, err := h.uploads.UploadImage(c.Request.Context(), sess.UserID, header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
