package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	productdomain "github.com/pantrysense/pantrysense/internal/product/domain"
)

func (s *Server) GetProduct(c *gin.Context) {
	var query struct {
		Refresh bool `form:"refresh,default=false"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.Product(c.Request.Context(), strings.TrimSpace(c.Param("id")), query.Refresh)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProductByWebshopID(c *gin.Context) {
	var query struct {
		Refresh bool `form:"refresh,default=false"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.productSvc.ProductByWebshopID(c.Request.Context(), strings.TrimSpace(c.Param("id")), query.Refresh)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProductByBarcode(c *gin.Context) {
	resp, err := s.productSvc.ProductByBarcode(c.Request.Context(), strings.TrimSpace(c.Param("code")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) SearchCatalog(c *gin.Context) {
	var query struct {
		Q    string `form:"q" binding:"required,min=1"`
		Page int    `form:"page,default=0" binding:"min=0"`
		Size int    `form:"size,default=20" binding:"min=1,max=100"`
		Sort string `form:"sort,default=RELEVANCE"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, newValidationError("q", "invalid_q", "search query is required"))
		return
	}

	resp, err := s.productSvc.Search(c.Request.Context(), productdomain.SearchRequest{
		Query: query.Q,
		Page:  query.Page,
		Size:  query.Size,
		Sort:  query.Sort,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProductsBatch resolves up to 50 comma-separated product ids,
// serving from the cache where possible.
func (s *Server) GetProductsBatch(c *gin.Context) {
	var query struct {
		IDs string `form:"ids" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, newValidationError("ids", "invalid_ids", "ids is required"))
		return
	}

	resp, err := s.productSvc.Batch(c.Request.Context(), strings.Split(query.IDs, ","))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProductCacheStats(c *gin.Context) {
	resp, err := s.productSvc.CacheStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) PurgeProductCache(c *gin.Context) {
	resp, err := s.productSvc.PurgeExpired(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
