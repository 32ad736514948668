package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	analyticsdomain "github.com/pantrysense/pantrysense/internal/analytics/domain"
)

func (s *Server) GetSummary(c *gin.Context) {
	resp, err := s.analyticsSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetSpendingOverTime(c *gin.Context) {
	var query struct {
		Granularity string `form:"granularity,default=month"`
		StartDate   string `form:"start_date"`
		EndDate     string `form:"end_date"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startDate, err := parseOptionalTime(query.StartDate, false)
	if err != nil {
		AbortWithError(c, newValidationError("start_date", "invalid_start_date", "invalid start_date"))
		return
	}
	endDate, err := parseOptionalTime(query.EndDate, true)
	if err != nil {
		AbortWithError(c, newValidationError("end_date", "invalid_end_date", "invalid end_date"))
		return
	}

	resp, err := s.analyticsSvc.SpendingOverTime(c.Request.Context(), analyticsdomain.SpendingOverTimeRequest{
		Granularity: query.Granularity,
		StartDate:   startDate,
		EndDate:     endDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetStoreAnalytics(c *gin.Context) {
	var query struct {
		Limit int `form:"limit,default=20" binding:"min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.analyticsSvc.StoreAnalytics(c.Request.Context(), query.Limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type productAnalyticsQuery struct {
	Limit     int    `form:"limit,default=50" binding:"min=1,max=200"`
	SortBy    string `form:"sort_by,default=total_spending" binding:"oneof=product_name total_quantity purchase_count total_spending average_price"`
	SortOrder string `form:"sort_order,default=desc" binding:"oneof=asc desc"`
}

func (s *Server) GetProductAnalytics(c *gin.Context) {
	var query productAnalyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.analyticsSvc.ProductAnalytics(c.Request.Context(), analyticsdomain.ProductAnalyticsRequest{
		Limit:     query.Limit,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) SearchProductAnalytics(c *gin.Context) {
	var query struct {
		productAnalyticsQuery
		Q string `form:"q" binding:"required,min=1"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, newValidationError("q", "invalid_q", "search term is required"))
		return
	}

	resp, err := s.analyticsSvc.ProductAnalytics(c.Request.Context(), analyticsdomain.ProductAnalyticsRequest{
		Limit:     query.Limit,
		Search:    strings.TrimSpace(query.Q),
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetSavingsAnalytics(c *gin.Context) {
	resp, err := s.analyticsSvc.SavingsAnalytics(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetReceiptsList(c *gin.Context) {
	var query struct {
		Offset    int    `form:"offset,default=0" binding:"min=0"`
		Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
		SortBy    string `form:"sort_by,default=transaction_moment" binding:"oneof=transaction_moment store_name item_count discount_total total_amount"`
		SortOrder string `form:"sort_order,default=desc" binding:"oneof=asc desc"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.analyticsSvc.ReceiptList(c.Request.Context(), analyticsdomain.ReceiptListRequest{
		Offset:    query.Offset,
		Limit:     query.Limit,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetReceiptDetail(c *gin.Context) {
	resp, err := s.analyticsSvc.ReceiptDetail(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
