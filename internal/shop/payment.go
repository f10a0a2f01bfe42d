package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/indra474/flower-project/internal/models"
	"github.com/indra474/flower-project/internal/utils"
)

// Checkout is what the payment form shows: the resolved lines and their total.
type Checkout struct {
	Lines []models.CartLine `json:"items"`
	Total decimal.Decimal   `json:"total"`
}

// Receipt describes one successful payment submission.
type Receipt struct {
	UserID uint            `json:"user_id"`
	Buyer  BuyerDetails    `json:"buyer"`
	Orders []models.Order  `json:"orders"`
	Total  decimal.Decimal `json:"total"`
}

func (r Receipt) OrderIDs() []uint {
	ids := make([]uint, len(r.Orders))
	for i, o := range r.Orders {
		ids[i] = o.ID
	}
	return ids
}

// Notifier is told about every committed payment.
type Notifier interface {
	OrderPlaced(ctx context.Context, receipt Receipt) error
}

// PaymentOrchestrator turns the selected cart lines into orders.
//
// A selection moves from the checkout step to the payment form, and a valid
// form submission places the orders. Any guard failure sends the shopper back
// to the cart and leaves the database untouched.
type PaymentOrchestrator struct {
	db       *gorm.DB
	log      *zap.Logger
	validate *validator.Validate
	notifier Notifier
}

func NewPaymentOrchestrator(db *gorm.DB, log *zap.Logger, notifier Notifier) *PaymentOrchestrator {
	return &PaymentOrchestrator{
		db:       db,
		log:      log,
		validate: utils.NewValidator(),
		notifier: notifier,
	}
}

// Prepare resolves the session selection for the payment form.
func (o *PaymentOrchestrator) Prepare(ctx context.Context, userID uint, sess Session) (*Checkout, error) {
	ids := sess.Selection()
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}

	lines, err := resolve(o.db.WithContext(ctx), userID, ids)
	if err != nil {
		return nil, err
	}

	return &Checkout{Lines: lines, Total: models.SumCartLines(lines)}, nil
}

// Place creates one order per selected line and removes those lines from the
// cart in a single transaction. The session is only updated after commit.
func (o *PaymentOrchestrator) Place(ctx context.Context, userID uint, sess Session, buyer BuyerDetails) (*Receipt, error) {
	ids := sess.Selection()
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}

	buyer.normalize()

	var orders []models.Order
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := resolve(tx, userID, ids)
		if err != nil {
			return err
		}

		if err := o.validate.Struct(buyer); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidBuyer, err)
		}

		lineIDs := make([]uint, 0, len(lines))
		orders = make([]models.Order, 0, len(lines))
		for _, line := range lines {
			order := buyer.order(userID, line)
			if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
				return fmt.Errorf("create order for cart line %d: %w", line.ID, err)
			}
			order.Flower = line.Flower

			orders = append(orders, order)
			lineIDs = append(lineIDs, line.ID)
		}

		res := tx.Where("user_id = ? AND id IN ?", userID, lineIDs).Delete(&models.CartLine{})
		if res.Error != nil {
			return fmt.Errorf("delete paid cart lines: %w", res.Error)
		}
		if res.RowsAffected != int64(len(lineIDs)) {
			// Another request paid for or removed some of these lines meanwhile.
			return ErrSelectionNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidBuyer) && !IsAbort(err) {
			o.log.Error("payment transaction failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	receipt := &Receipt{UserID: userID, Buyer: buyer, Orders: orders, Total: SumOrders(orders)}

	sess.SetLastOrders(receipt.OrderIDs())
	sess.ClearSelection()

	o.log.Info("orders placed",
		zap.Uint("user_id", userID),
		zap.Uints("order_ids", receipt.OrderIDs()),
		zap.String("total", receipt.Total.StringFixed(2)),
	)

	if o.notifier != nil {
		if err := o.notifier.OrderPlaced(ctx, *receipt); err != nil {
			o.log.Warn("order notification failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}

	return receipt, nil
}

// Confirmation loads the orders of the last successful payment in this session.
func (o *PaymentOrchestrator) Confirmation(ctx context.Context, userID uint, sess Session) ([]models.Order, error) {
	ids := sess.LastOrders()
	if len(ids) == 0 {
		return []models.Order{}, nil
	}

	var orders []models.Order
	err := o.db.WithContext(ctx).
		Preload("Flower").
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("id").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("load confirmation orders: %w", err)
	}
	return orders, nil
}

// resolve returns the selected lines that belong to the user. Lines owned by
// someone else are silently dropped.
func resolve(tx *gorm.DB, userID uint, ids []uint) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := tx.Preload("Flower").
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("id").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("resolve selection: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrSelectionNotFound
	}
	return lines, nil
}

func SumOrders(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total())
	}
	return total
}
