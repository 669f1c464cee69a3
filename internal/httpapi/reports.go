package httpapi

import (
	"errors"
	"net/http"
	"time"

	"dispatch-voice/internal/reporting"
	"dispatch-voice/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CallsReport summarizes calls started in [from, to). Both bounds are RFC 3339.
func (h Handlers) CallsReport(c *gin.Context) {
	if h.Reports == nil {
		notConfigured(c, "reporting")
		return
	}
	from, errFrom := time.Parse(time.RFC3339, c.Query("from"))
	to, errTo := time.Parse(time.RFC3339, c.Query("to"))
	if errFrom != nil || errTo != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "from and to must be RFC3339 timestamps"})
		return
	}

	out, err := h.Reports.CallsSummary(c.Request.Context(), reporting.CallsSummaryRequest{
		Range: reporting.TimeRange{From: from.UTC(), To: to.UTC()},
	})
	if err != nil {
		if errors.Is(err, reporting.ErrInvalidRequest) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "to must be after from"})
			return
		}
		logger.FromGin(c).Error("calls report failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, out)
}
