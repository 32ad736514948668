package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	forecastdomain "github.com/pantrysense/pantrysense/internal/forecast/domain"
)

type patternQuery struct {
	DecayRate        float64 `form:"decay_rate,default=0.02" binding:"min=0.001,max=0.1"`
	MinPurchases     int     `form:"min_purchases,default=3" binding:"min=1,max=10"`
	MaxAvgInterval   float64 `form:"max_avg_interval,default=60" binding:"min=7,max=180"`
	MaxDaysSinceLast float64 `form:"max_days_since_last,default=90" binding:"min=14,max=365"`
}

func (q patternQuery) options() forecastdomain.PatternOptions {
	return forecastdomain.PatternOptions{
		DecayRate:          q.DecayRate,
		MinPurchases:       q.MinPurchases,
		MaxAvgIntervalDays: q.MaxAvgInterval,
		MaxDaysSinceLast:   q.MaxDaysSinceLast,
	}
}

func (s *Server) GetConsumptionPatterns(c *gin.Context) {
	var query patternQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.forecastSvc.ConsumptionPatterns(c.Request.Context(), query.options())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetShoppingList(c *gin.Context) {
	var query struct {
		patternQuery
		DaysAhead     int     `form:"days_ahead,default=4" binding:"min=1,max=30"`
		MinConfidence float64 `form:"min_confidence,default=0.3" binding:"min=0,max=1"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.forecastSvc.ShoppingList(c.Request.Context(), forecastdomain.ShoppingListOptions{
		PatternOptions: query.options(),
		DaysAhead:      query.DaysAhead,
		MinConfidence:  &query.MinConfidence,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetProductConsumptionDetail(c *gin.Context) {
	var query struct {
		DecayRate float64 `form:"decay_rate,default=0.02" binding:"min=0.001,max=0.1"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		AbortWithError(c, newValidationError("name", "invalid_name", "product name is required"))
		return
	}

	resp, err := s.forecastSvc.ProductDetail(c.Request.Context(), name, query.DecayRate)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
