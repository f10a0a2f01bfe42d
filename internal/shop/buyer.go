package shop

import (
	"strings"

	"github.com/indra474/flower-project/internal/models"
)

// BuyerDetails is the payment form. It is copied onto every order placed
// from the same submission.
type BuyerDetails struct {
	Name          string           `form:"name" json:"name" validate:"required,max=100"`
	Phone         string           `form:"phone" json:"phone" validate:"required,max=30"`
	Email         string           `form:"email" json:"email" validate:"omitempty,email,max=254"`
	Address       string           `form:"address" json:"address" validate:"required_if=OrderType delivery,max=255"`
	OrderType     models.OrderType `form:"order_type" json:"order_type" validate:"oneof=delivery pickup"`
	PaymentMethod string           `form:"payment_method" json:"payment_method" validate:"required,max=50"`
}

func (b *BuyerDetails) normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Phone = strings.TrimSpace(b.Phone)
	b.Email = strings.TrimSpace(b.Email)
	b.Address = strings.TrimSpace(b.Address)
	b.PaymentMethod = strings.TrimSpace(b.PaymentMethod)
	b.OrderType = models.OrderType(strings.ToLower(strings.TrimSpace(string(b.OrderType))))
	if b.OrderType == "" {
		b.OrderType = models.OrderTypeDelivery
	}
}

func (b BuyerDetails) order(userID uint, line models.CartLine) models.Order {
	return models.Order{
		UserID:        userID,
		FlowerID:      line.FlowerID,
		Quantity:      line.Quantity,
		UnitPrice:     line.Flower.Price,
		CustomerName:  b.Name,
		Phone:         b.Phone,
		Email:         b.Email,
		Address:       b.Address,
		OrderType:     b.OrderType,
		PaymentMethod: b.PaymentMethod,
	}
}
