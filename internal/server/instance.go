package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	instancedomain "github.com/orsta/orsta/internal/instance/domain"
)

type createInstanceRequest struct {
	CountryCode string `json:"country_code"`
	PhoneNumber string `json:"phone_number"`
}

func (s *Server) ListInstances(c *gin.Context) {
	userID, err := s.resolveUserID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	instances, err := s.instanceSvc.List(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"instances": instances})
}

func (s *Server) CreateInstance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	instance, err := s.instanceSvc.Create(c.Request.Context(), instancedomain.CreateInstanceRequest{
		UserID:      user.ID,
		CountryCode: req.CountryCode,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, instance)
}

func (s *Server) ActivateInstance(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.instanceSvc.Activate(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "active"})
}

func (s *Server) DeactivateInstance(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.instanceSvc.Deactivate(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "inactive"})
}

// resolveUserID honors an explicit user_id query parameter and falls back
// to the session user.
func (s *Server) resolveUserID(c *gin.Context) (snowflake.ID, error) {
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		return parseID(raw)
	}
	user, ok := currentUser(c)
	if !ok {
		return 0, ErrUnauthorized
	}
	return user.ID, nil
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil {
		return 0, ErrInvalidRequest
	}
	return id, nil
}
