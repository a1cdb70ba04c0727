package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"template-tester-server/internal/app"
	"template-tester-server/internal/transport/http/response"
)

type UserHandler struct {
	userService *app.UserService
}

func NewUserHandler(userService *app.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")

	users, err := h.userService.SearchByDisplayName(query)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "search query is required")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "user search failed")
		return
	}

	response.OK(c, users)
}
