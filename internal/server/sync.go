package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	analyticsservice "github.com/pantrysense/pantrysense/internal/analytics/service"
)

const (
	syncLockKey = "sync:lock"
	syncLockTTL = 30 * time.Minute
)

// RunSync pulls new receipts from the retail API. Concurrent runs are
// rejected while the redis lock is held; without redis configured the
// lock always succeeds.
func (s *Server) RunSync(c *gin.Context) {
	var query struct {
		Full bool `form:"full,default=false"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()

	token, acquired, err := s.locker.TryLock(ctx, syncLockKey, syncLockTTL)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !acquired {
		AbortWithError(c, ErrConflict)
		return
	}
	defer func() {
		_ = s.locker.Release(ctx, syncLockKey, token)
	}()

	result, err := s.syncSvc.Run(ctx, query.Full)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Fresh receipts invalidate the cached analytics summary.
	if result.SyncedCount > 0 {
		_ = s.respCache.Invalidate(ctx, analyticsservice.SummaryCacheKey)
	}

	c.JSON(http.StatusOK, result)
}
