package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/service"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
	"github.com/noah-isme/edu-admin-gateway/pkg/response"
)

// AuthHandler exposes the sign-in flow.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignIn godoc
// @Summary Admin sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.SignInRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/sign-in [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req service.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.auth.SignIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// VerifyOTP godoc
// @Summary Complete the OTP challenge
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.VerifyOTPRequest true "OTP code"
// @Success 200 {object} response.Envelope
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req service.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.auth.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SignOut godoc
// @Summary Sign out
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /auth/sign-out [post]
func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.auth.SignOut(c.Request.Context(), sessionFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Current session identity
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	sess, err := h.auth.Me(c.Request.Context(), sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sess, nil)
}
