// internal/api/handlers/user_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"container-yard-api-server/internal/api/middleware"
	"container-yard-api-server/internal/apperr"
	"container-yard-api-server/internal/auth"
)

type UserHandler struct {
	Service *auth.Service
}

func (h *UserHandler) Login(c *gin.Context) {
	var req auth.LoginInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	result, err := h.Service.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// currentUserID is the subject of the verified token.
func currentUserID(c *gin.Context) (string, error) {
	claims := middleware.Claims(c)
	if claims == nil {
		return "", apperr.Unauthorized("authentication required")
	}
	return claims.UserID, nil
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := h.Service.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req auth.ProfileInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.Service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Service.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.Service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req auth.CreateUserInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.Service.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req auth.UpdateUserInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.Service.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, err := currentUserID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Service.DeleteUser(c.Request.Context(), actorID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
