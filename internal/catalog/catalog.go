package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/indra474/flower-project/internal/models"
)

var (
	ErrNotFound        = errors.New("flower not found")
	ErrInvalidCategory = errors.New("invalid category")
	ErrNegativePrice   = errors.New("price must not be negative")
	// ErrInUse is returned when deleting a flower that orders still reference.
	ErrInUse = errors.New("flower has orders")
)

// Filter narrows the staff flower list.
type Filter struct {
	Category models.Category
	Search   string
}

type Service interface {
	ListByCategory(ctx context.Context, category models.Category) ([]models.Flower, error)
	Get(ctx context.Context, id uint) (*models.Flower, error)
	List(ctx context.Context, filter Filter) ([]models.Flower, error)
	Create(ctx context.Context, flower *models.Flower) error
	Update(ctx context.Context, flower *models.Flower) error
	Delete(ctx context.Context, id uint) error
}

type catalogService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) Service {
	return &catalogService{db: db}
}

func (s *catalogService) ListByCategory(ctx context.Context, category models.Category) ([]models.Flower, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	return s.List(ctx, Filter{Category: category})
}

func (s *catalogService) Get(ctx context.Context, id uint) (*models.Flower, error) {
	var f models.Flower
	if err := s.db.WithContext(ctx).First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get flower %d: %w", id, err)
	}
	return &f, nil
}

// List returns flowers ordered by id.
func (s *catalogService) List(ctx context.Context, filter Filter) ([]models.Flower, error) {
	q := s.db.WithContext(ctx).Model(&models.Flower{})

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var flowers []models.Flower
	if err := q.Order("id").Find(&flowers).Error; err != nil {
		return nil, fmt.Errorf("list flowers: %w", err)
	}
	return flowers, nil
}

func (s *catalogService) Create(ctx context.Context, flower *models.Flower) error {
	if err := validateFlower(flower); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(flower).Error; err != nil {
		return fmt.Errorf("create flower: %w", err)
	}
	return nil
}

func (s *catalogService) Update(ctx context.Context, flower *models.Flower) error {
	if err := validateFlower(flower); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Model(&models.Flower{ID: flower.ID}).
		Select("name", "category", "price", "image").
		Updates(flower)
	if res.Error != nil {
		return fmt.Errorf("update flower %d: %w", flower.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *catalogService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orders int64
		if err := tx.Model(&models.Order{}).Where("flower_id = ?", id).Count(&orders).Error; err != nil {
			return fmt.Errorf("count orders of flower %d: %w", id, err)
		}
		if orders > 0 {
			return ErrInUse
		}

		if err := tx.Where("flower_id = ?", id).Delete(&models.CartLine{}).Error; err != nil {
			return fmt.Errorf("delete cart lines of flower %d: %w", id, err)
		}

		res := tx.Delete(&models.Flower{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete flower %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func validateFlower(f *models.Flower) error {
	if !f.Category.Valid() {
		return ErrInvalidCategory
	}
	if f.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}
