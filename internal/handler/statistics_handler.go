package handler

import (
	"net/http"

	"stocktrack/internal/middleware"
	"stocktrack/internal/service"
	"stocktrack/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	db                *gorm.DB
	secret            []byte
}

func NewStatisticsHandler(statisticsService service.StatisticsService, db *gorm.DB, secret []byte) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, db: db, secret: secret}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/statistics", middleware.RequireAuth(h.db, h.secret), h.GetDashboard)
}

// GetDashboard handles GET /api/statistics, the aggregate view dashboards
// poll for freshness. Always recomputed from the store.
// @Summary      Dashboard statistics
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.DashboardStatistics}
// @Failure      500  {object}  response.Response
// @Router       /api/statistics [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.statisticsService.GetDashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to compute statistics"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
