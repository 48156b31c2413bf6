package delivery

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Gargooie/Order-Management-API/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	useCase usecase.ReportUseCase
	log     *logrus.Logger
}

func NewReportHandler(uc usecase.ReportUseCase, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ReportHandler) RegisterRoutes(router gin.IRouter) {
	reports := router.Group("/reports")
	{
		reports.GET("/top-products", h.TopProducts)
	}
}

func (h *ReportHandler) TopProducts(c *gin.Context) {
	from, ok := timeQuery(c, h.log, "from")
	if !ok {
		return
	}
	to, ok := timeQuery(c, h.log, "to")
	if !ok {
		return
	}

	n := 0
	if nStr := c.Query("n"); nStr != "" {
		parsed, err := strconv.Atoi(nStr)
		if err != nil || parsed <= 0 {
			h.log.Warnf("Invalid n query parameter: %s", nStr)
			ErrorResponse(c, http.StatusBadRequest, "Query parameter n must be a positive integer")
			return
		}
		n = parsed
	}

	report, err := h.useCase.TopProducts(c.Request.Context(), from, to, n)
	if err != nil {
		h.log.Warnf("Failed to build top products report: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to build report: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Report built successfully", report)
}

// timeQuery parses an optional RFC 3339 query parameter, zero when absent.
func timeQuery(c *gin.Context, log *logrus.Logger, param string) (time.Time, bool) {
	value := c.Query(param)
	if value == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.Warnf("Invalid %s query parameter: %s", param, value)
		ErrorResponse(c, http.StatusBadRequest, "Query parameter "+param+" must be an RFC 3339 timestamp")
		return time.Time{}, false
	}
	return parsed, true
}
