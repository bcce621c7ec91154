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

type InventoryHandler struct {
	inventoryService service.InventoryService
	db               *gorm.DB
	secret           []byte
}

func NewInventoryHandler(inventoryService service.InventoryService, db *gorm.DB, secret []byte) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, db: db, secret: secret}
}

// RegisterRoutes binds the stock item endpoints; any authenticated user may
// mutate inventory.
func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/api/items")
	items.Use(middleware.RequireAuth(h.db, h.secret))
	{
		items.GET("", h.ListItems)
		items.GET("/:id", h.GetItemByID)
		items.POST("", h.CreateItem)
		items.PUT("/:id", h.UpdateItem)
		items.DELETE("/:id", h.DeleteItem)
	}
}

// ListItems handles GET /api/items
// @Summary      List inventory items
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Search by item name"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/items [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	items, total, err := h.inventoryService.ListItems(c.Request.Context(), params.Page, params.Limit, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch items"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// GetItemByID handles GET /api/items/:id
// @Summary      Get inventory item
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response{data=service.ItemResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/items/{id} [get]
func (h *InventoryHandler) GetItemByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	item, err := h.inventoryService.GetItemByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// CreateItem handles POST /api/items
// @Summary      Create inventory item
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateItemRequest  true  "Create Item Payload"
// @Success      201      {object}  response.Response{data=service.ItemResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/items [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	actor, _ := middleware.CurrentUser(c)
	item, err := h.inventoryService.CreateItem(c.Request.Context(), actor, req)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// UpdateItem handles PUT /api/items/:id
// @Summary      Update inventory item
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Item ID"
// @Param        payload  body      service.UpdateItemRequest  true  "Update Item Payload"
// @Success      200      {object}  response.Response{data=service.ItemResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/items/{id} [put]
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	actor, _ := middleware.CurrentUser(c)
	item, err := h.inventoryService.UpdateItem(c.Request.Context(), actor, id, req)
	if err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteItem handles DELETE /api/items/:id
// @Summary      Delete inventory item
// @Description  Fails with a conflict when defect records still reference the item
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/items/{id} [delete]
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item id"))
		return
	}

	actor, _ := middleware.CurrentUser(c)
	if err := h.inventoryService.DeleteItem(c.Request.Context(), actor, id); err != nil {
		c.JSON(statusForError(err), response.Error(statusForError(err), err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Item deleted successfully"))
}
