package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) BillingSummary(c *gin.Context) {
	userID, err := s.resolveUserID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.billingSvc.Summary(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (s *Server) BillingAccount(c *gin.Context) {
	userID, err := s.resolveUserID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	account, err := s.billingSvc.AccountSummary(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}
