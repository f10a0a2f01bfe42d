package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"go.uber.org/zap"

	"github.com/indra474/flower-project/internal/catalog"
	"github.com/indra474/flower-project/internal/models"
	"github.com/indra474/flower-project/internal/shop"
	"github.com/indra474/flower-project/internal/utils"
)

type flowerInput struct {
	Name     string `form:"name" json:"name" binding:"required,max=100"`
	Category string `form:"category" json:"category" binding:"required"`
	Price    string `form:"price" json:"price" binding:"required"`
	Image    string `form:"image" json:"image" binding:"max=255"`
}

func (in flowerInput) flower() (*models.Flower, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return nil, err
	}
	return &models.Flower{
		Name:     strings.TrimSpace(in.Name),
		Category: models.Category(in.Category),
		Price:    price.Round(2),
		Image:    in.Image,
	}, nil
}

// GET /admin/flowers
func (h *Handler) AdminFlowers(c *gin.Context) {
	filter := catalog.Filter{
		Category: models.Category(c.Query("category")),
		Search:   c.Query("q"),
	}

	flowers, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		h.serverError(c, "failed to list flowers", err)
		return
	}
	h.render(c, http.StatusOK, "admin_flowers", gin.H{"flowers": flowers, "categories": models.Categories})
}

// POST /admin/flowers
func (h *Handler) AdminCreateFlower(c *gin.Context) {
	var in flowerInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flower, err := in.flower()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}

	if err := h.catalog.Create(c.Request.Context(), flower); err != nil {
		h.flowerError(c, err)
		return
	}

	h.log.Info("flower created", zap.Uint("flower_id", flower.ID), zap.String("name", flower.Name))
	c.JSON(http.StatusCreated, gin.H{"flower": flower})
}

// PUT /admin/flowers/:id
func (h *Handler) AdminUpdateFlower(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": catalog.ErrNotFound.Error()})
		return
	}

	var in flowerInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flower, err := in.flower()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}
	flower.ID = id

	ctx := c.Request.Context()
	if err := h.catalog.Update(ctx, flower); err != nil {
		h.flowerError(c, err)
		return
	}

	updated, err := h.catalog.Get(ctx, id)
	if err != nil {
		h.flowerError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flower": updated})
}

// DELETE /admin/flowers/:id
func (h *Handler) AdminDeleteFlower(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": catalog.ErrNotFound.Error()})
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		h.flowerError(c, err)
		return
	}

	h.log.Info("flower deleted", zap.Uint("flower_id", id))
	c.Status(http.StatusNoContent)
}

func (h *Handler) flowerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrInvalidCategory), errors.Is(err, catalog.ErrNegativePrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrInUse):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.serverError(c, "flower update failed", err)
	}
}

func orderFilter(c *gin.Context) shop.OrderFilter {
	return shop.OrderFilter{
		OrderType: models.OrderType(c.Query("order_type")),
		Category:  models.Category(c.Query("category")),
		Search:    c.Query("q"),
	}
}

// adminOrderRow is one line of the staff order list.
type adminOrderRow struct {
	models.Order
	Category   models.Category `json:"category"`
	Photo      string          `json:"photo"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// GET /admin/orders
func (h *Handler) AdminOrders(c *gin.Context) {
	orders, err := h.history.Search(c.Request.Context(), orderFilter(c))
	if err != nil {
		h.serverError(c, "failed to list orders", err)
		return
	}

	rows := make([]adminOrderRow, len(orders))
	for i, o := range orders {
		rows[i] = adminOrderRow{Order: o, Category: o.Flower.Category, Photo: o.Flower.Image, TotalPrice: o.Total()}
	}
	h.render(c, http.StatusOK, "admin_orders", gin.H{"orders": rows})
}

// GET /admin/orders/export
func (h *Handler) AdminExportOrders(c *gin.Context) {
	orders, err := h.history.Search(c.Request.Context(), orderFilter(c))
	if err != nil {
		h.serverError(c, "failed to list orders", err)
		return
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		h.serverError(c, "failed to create excel sheet", err)
		return
	}

	headers := []string{
		"ID", "Customer", "Phone", "Email", "Address", "OrderType", "PaymentMethod",
		"Flower", "Category", "Quantity", "UnitPrice", "Total", "CreatedAt",
	}
	headerRow := sheet.AddRow()
	for _, hdr := range headers {
		headerRow.AddCell().SetValue(hdr)
	}

	for _, o := range orders {
		row := sheet.AddRow()

		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.CustomerName)
		row.AddCell().SetValue(o.Phone)
		row.AddCell().SetValue(o.Email)
		row.AddCell().SetValue(o.Address)
		row.AddCell().SetValue(string(o.OrderType))
		row.AddCell().SetValue(o.PaymentMethod)
		row.AddCell().SetValue(o.Flower.Name)
		row.AddCell().SetValue(string(o.Flower.Category))
		row.AddCell().SetValue(o.Quantity)
		row.AddCell().SetValue(o.UnitPrice.StringFixed(2))
		row.AddCell().SetValue(o.Total().StringFixed(2))
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Expires", "0")

	if err := file.Write(c.Writer); err != nil {
		h.log.Error("failed to write excel file", zap.Error(err))
	}
}
