package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryFlower    Category = "flower"
	CategoryShopPlant Category = "shopplant"
	CategoryWedding   Category = "wedding"
	CategoryWorkshop  Category = "workshop"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFlower, CategoryShopPlant, CategoryWedding, CategoryWorkshop}

func (c Category) Valid() bool {
	switch c {
	case CategoryFlower, CategoryShopPlant, CategoryWedding, CategoryWorkshop:
		return true
	}
	return false
}

type Flower struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"not null;index" json:"name"`
	Category  Category        `gorm:"type:varchar(20);not null;index" json:"category"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Image     string          `json:"image,omitempty"` // optional
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
