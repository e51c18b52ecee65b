package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Great2008/reads/internal/app"
)

type ProfileHandler struct {
	users *app.UserService
}

func NewProfileHandler(users *app.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

func (h *ProfileHandler) Profile(c *gin.Context) {
	user, err := h.users.Profile(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *ProfileHandler) Stats(c *gin.Context) {
	stats, err := h.users.Stats(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
