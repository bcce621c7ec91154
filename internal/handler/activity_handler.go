package handler

import (
	"net/http"
	"time"

	"stocktrack/internal/middleware"
	"stocktrack/internal/service"
	"stocktrack/pkg/pagination"
	"stocktrack/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ActivityHandler struct {
	activityService service.ActivityService
	db              *gorm.DB
	secret          []byte
}

func NewActivityHandler(activityService service.ActivityService, db *gorm.DB, secret []byte) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, db: db, secret: secret}
}

// RegisterRoutes binds the audit trail endpoints. Reading the trail is
// admin-only.
func (h *ActivityHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/activity-logs")
	group.Use(middleware.RequireAuth(h.db, h.secret), middleware.RequireAdmin())
	{
		group.GET("", h.ListActivity)
		group.GET("/export", h.ExportCSV)
	}
}

// ListActivity handles GET /api/activity-logs
// @Summary      Get activity log
// @Description  Retrieves the audit trail, newest first
// @Tags         activity
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/activity-logs [get]
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.activityService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve activity logs: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// ExportCSV handles GET /api/activity-logs/export, streaming the full trail
// as an RFC 4180 CSV download named after the current date.
// @Summary      Export activity log as CSV
// @Tags         activity
// @Security     BearerAuth
// @Produce      text/csv
// @Success      200
// @Failure      500  {object}  response.Response
// @Router       /api/activity-logs/export [get]
func (h *ActivityHandler) ExportCSV(c *gin.Context) {
	filename := h.activityService.ExportFilename(time.Now())
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.activityService.WriteCSV(c.Request.Context(), c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to export activity logs"))
		return
	}
}
