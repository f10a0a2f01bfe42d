package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/indra474/flower-project/internal/models"
)

// Cart is a user's cart lines with the flowers loaded, plus their total.
type Cart struct {
	Lines []models.CartLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

type CartManager struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCartManager(db *gorm.DB, log *zap.Logger) *CartManager {
	return &CartManager{db: db, log: log}
}

// Add puts one more of the flower into the user's cart, creating the line
// with quantity 1 when it is not there yet.
func (m *CartManager) Add(ctx context.Context, userID, flowerID uint) error {
	tx := m.db.WithContext(ctx)

	if err := findFlower(tx, flowerID); err != nil {
		return err
	}

	line := models.CartLine{UserID: userID, FlowerID: flowerID, Quantity: 1}
	err := tx.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "flower_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_lines.quantity + 1"),
				"updated_at": time.Now(),
			}),
		}).
		Create(&line).Error
	if err != nil {
		return fmt.Errorf("add flower %d to cart: %w", flowerID, err)
	}

	m.log.Debug("cart line added", zap.Uint("user_id", userID), zap.Uint("flower_id", flowerID))
	return nil
}

// Remove deletes the user's line for the flower. Removing a missing line is not an error.
func (m *CartManager) Remove(ctx context.Context, userID, flowerID uint) error {
	err := m.db.WithContext(ctx).
		Where("user_id = ? AND flower_id = ?", userID, flowerID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return fmt.Errorf("remove flower %d from cart: %w", flowerID, err)
	}
	return nil
}

func (m *CartManager) List(ctx context.Context, userID uint) (*Cart, error) {
	var lines []models.CartLine
	err := m.db.WithContext(ctx).
		Preload("Flower").
		Where("user_id = ?", userID).
		Order("id").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	return &Cart{Lines: lines, Total: models.SumCartLines(lines)}, nil
}

// BuyNow empties the user's cart and leaves exactly one line for the flower
// with quantity 1. Whatever was in the cart before is discarded.
func (m *CartManager) BuyNow(ctx context.Context, userID, flowerID uint) error {
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findFlower(tx, flowerID); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartLine{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}

		line := models.CartLine{UserID: userID, FlowerID: flowerID, Quantity: 1}
		if err := tx.Omit(clause.Associations).Create(&line).Error; err != nil {
			return fmt.Errorf("create buy-now line: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Info("cart replaced by buy now", zap.Uint("user_id", userID), zap.Uint("flower_id", flowerID))
	return nil
}

func findFlower(tx *gorm.DB, flowerID uint) error {
	var f models.Flower
	if err := tx.Select("id").First(&f, flowerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFlowerNotFound
		}
		return fmt.Errorf("find flower %d: %w", flowerID, err)
	}
	return nil
}
