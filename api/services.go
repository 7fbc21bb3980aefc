package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type usernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// TokenGenerator exchanges a free-form display name for an identity token.
// The token carries the player id used inside game rooms; it is identity
// plumbing, not authentication.
func (s *Server) TokenGenerator(c *gin.Context) {
	var data usernameRequest

	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
		return
	}

	token, payload, err := s.tokenMaker.CreateToken(data.Username, 24*time.Hour)

	if err != nil {
		s.logger.Error("error creating token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse(ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, successResponse("Auth data", gin.H{
		"id":       payload.ID.String(),
		"username": payload.Username,
		"token":    token,
	}))
}

// GetTokenData echoes the verified token payload, letting a client
// re-validate a stored token before reconnecting.
func (s *Server) GetTokenData(c *gin.Context) {
	payload, ok := GetPayload(c)

	if !ok {
		c.JSON(http.StatusInternalServerError, errorResponse(ErrorMessage500))
		return
	}

	c.JSON(http.StatusOK, successResponse("success", payload))
}

type checkRoomRequest struct {
	RoomID string `uri:"id" binding:"required"`
}

// CheckRoom reports whether a room currently exists and who is in it, so a
// lobby page can verify a code before opening a websocket. Rooms only exist
// while they have members.
func (s *Server) CheckRoom(c *gin.Context) {
	var data checkRoomRequest

	if err := c.ShouldBindUri(&data); err != nil {
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
		return
	}

	snapshot, ok := s.manager.RoomSnapshot(data.RoomID)

	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("room not found"))
		return
	}

	c.JSON(http.StatusOK, successResponse("room data", snapshot))
}
