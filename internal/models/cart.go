package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one flower in a user's cart. (UserID, FlowerID) is unique.
type CartLine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_flower" json:"user_id"`
	FlowerID  uint      `gorm:"not null;uniqueIndex:idx_cart_user_flower" json:"flower_id"`
	Flower    Flower    `gorm:"constraint:OnDelete:CASCADE" json:"flower"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Total is quantity times the current flower price.
func (l CartLine) Total() decimal.Decimal {
	return l.Flower.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SumCartLines adds up the line totals.
func SumCartLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}
