package shop

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/indra474/flower-project/internal/models"
)

type OrderHistory struct {
	db *gorm.DB
}

func NewOrderHistory(db *gorm.DB) *OrderHistory {
	return &OrderHistory{db: db}
}

// List returns every order of the user, newest first.
func (h *OrderHistory) List(ctx context.Context, userID uint) ([]models.Order, error) {
	return h.ListPage(ctx, userID, 0, 0)
}

// ListPage is List limited to one page. A size of 0 disables paging.
func (h *OrderHistory) ListPage(ctx context.Context, userID uint, page, size int) ([]models.Order, error) {
	q := h.db.WithContext(ctx).
		Preload("Flower").
		Where("user_id = ?", userID).
		Order("id DESC")

	if size > 0 {
		if page < 1 {
			page = 1
		}
		q = q.Limit(size).Offset((page - 1) * size)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// OrderFilter narrows the staff order list. Empty fields match everything.
type OrderFilter struct {
	OrderType models.OrderType
	Category  models.Category
	// Search matches customer name, flower name or order type.
	Search string
}

// Search lists orders of every user, newest first.
func (h *OrderHistory) Search(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	q := h.db.WithContext(ctx).
		Preload("Flower").
		Joins("JOIN flowers ON flowers.id = orders.flower_id").
		Order("orders.id DESC")

	if f.OrderType != "" {
		q = q.Where("orders.order_type = ?", f.OrderType)
	}
	if f.Category != "" {
		q = q.Where("flowers.category = ?", f.Category)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where(
			"LOWER(orders.customer_name) LIKE ? OR LOWER(flowers.name) LIKE ? OR LOWER(orders.order_type) LIKE ?",
			like, like, like,
		)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}
	return orders, nil
}
