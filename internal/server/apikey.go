package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ActivateAPIKey(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	outcome, err := s.apiKeySvc.Activate(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}
