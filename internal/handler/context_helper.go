package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-admin-gateway/internal/middleware"
	"github.com/noah-isme/edu-admin-gateway/internal/models"
	appErrors "github.com/noah-isme/edu-admin-gateway/pkg/errors"
)

func sessionFromContext(c *gin.Context) *models.Session {
	return middleware.Session(c)
}

// viewStateFromQuery parses the ?action=&id= pair the admin screens encode
// their modal state in.
func viewStateFromQuery(c *gin.Context) (models.ViewState, error) {
	state := models.ViewState{
		Action: models.ViewAction(strings.TrimSpace(c.Query("action"))),
		ID:     strings.TrimSpace(c.Query("id")),
	}
	if !state.Valid() {
		return state, appErrors.Clone(appErrors.ErrValidation, "unknown action")
	}
	if state.RequiresID() && state.ID == "" {
		return state, appErrors.Clone(appErrors.ErrValidation, "action requires an id")
	}
	return state, nil
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
