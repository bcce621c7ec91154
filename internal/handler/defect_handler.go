package handler

import (
	"net/http"

	"stocktrack/internal/middleware"
	"stocktrack/internal/service"
	"stocktrack/pkg/pagination"
	"stocktrack/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DefectHandler struct {
	defectService service.DefectService
	db            *gorm.DB
	secret        []byte
}

func NewDefectHandler(defectService service.DefectService, db *gorm.DB, secret []byte) *DefectHandler {
	return &DefectHandler{defectService: defectService, db: db, secret: secret}
}

// RegisterRoutes binds the defective-item log endpoints; any authenticated
// user may log and manage defects.
func (h *DefectHandler) RegisterRoutes(router *gin.RouterGroup) {
	defects := router.Group("/api/defects")
	defects.Use(middleware.RequireAuth(h.db, h.secret))
	{
		defects.GET("", h.ListDefects)
		defects.GET("/:id", h.GetDefectByID)
		defects.POST("", h.CreateDefect)
		defects.PUT("/:id", h.UpdateDefect)
		defects.DELETE("/:id", h.DeleteDefect)
	}
}

// ListDefects handles GET /api/defects
// @Summary      List defect logs
// @Tags         defects
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/defects [get]
func (h *DefectHandler) ListDefects(c *gin.Context) {
	params := pagination.Parse(c)

	defects, total, err := h.defectService.ListDefects(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch defect logs"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"defects": defects,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// GetDefectByID handles GET /api/defects/:id
// @Summary      Get defect log
// @Tags         defects
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Defect log ID"
// @Success      200  {object}  response.Response{data=service.DefectResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/defects/{id} [get]
func (h *DefectHandler) GetDefectByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid defect log id"))
		return
	}

	defect, err := h.defectService.GetDefectByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, defect))
}

// CreateDefect handles POST /api/defects
// @Summary      Log defective units
// @Description  Captures the item name at log time; the snapshot survives item rename or deletion
// @Tags         defects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDefectRequest  true  "Create Defect Payload"
// @Success      201      {object}  response.Response{data=service.DefectResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/defects [post]
func (h *DefectHandler) CreateDefect(c *gin.Context) {
	var req service.CreateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.CurrentUser(c)
	defect, err := h.defectService.CreateDefect(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, defect))
}

// UpdateDefect handles PUT /api/defects/:id
// @Summary      Update defect status and notes
// @Tags         defects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                          true  "Defect log ID"
// @Param        payload  body      service.UpdateDefectRequest  true  "Update Defect Payload"
// @Success      200      {object}  response.Response{data=service.DefectResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/defects/{id} [put]
func (h *DefectHandler) UpdateDefect(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid defect log id"))
		return
	}

	var req service.UpdateDefectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	actor, _ := middleware.CurrentUser(c)
	defect, err := h.defectService.UpdateDefect(c.Request.Context(), actor, id, req)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, defect))
}

// DeleteDefect handles DELETE /api/defects/:id
// @Summary      Delete defect log
// @Tags         defects
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Defect log ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/defects/{id} [delete]
func (h *DefectHandler) DeleteDefect(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid defect log id"))
		return
	}

	actor, _ := middleware.CurrentUser(c)
	if err := h.defectService.DeleteDefect(c.Request.Context(), actor, id); err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Defect log deleted successfully"))
}
