package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pantrysense/pantrysense/pkg/db/pagination"
)

type authCodeRequest struct {
	Code string `json:"code"`
}

// Authenticate exchanges an authorization code for tokens. The tokens
// are persisted by the client so subsequent requests stay logged in.
func (s *Server) Authenticate(c *gin.Context) {
	var req authCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		AbortWithError(c, newValidationError("code", "invalid_code", "authorization code is required"))
		return
	}

	resp, err := s.retail.ExchangeCode(c.Request.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "authenticated", "expires_in": resp.ExpiresIn})
}

func (s *Server) Logout(c *gin.Context) {
	if err := s.retail.ClearTokens(); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) AuthStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": s.retail.IsAuthenticated()})
}

func (s *Server) ListRemoteReceipts(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	query = query.Normalize()

	page, err := s.retail.Receipts(c.Request.Context(), query.Offset, query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) GetRemoteReceipt(c *gin.Context) {
	detail, err := s.retail.Receipt(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) GetRemoteReceiptPDF(c *gin.Context) {
	url, err := s.retail.ReceiptPDF(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
