package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/indra474/flower-project/internal/models"
)

const categoryKeyPrefix = "flowers:category:"

// cachedService keeps category listings in Redis. Any staff write drops
// every category key, since an update may move a flower between categories.
type cachedService struct {
	next        Service
	redisClient *redis.Client
	cacheTTL    time.Duration
	log         *zap.Logger
}

func NewCachedService(next Service, redisClient *redis.Client, ttl time.Duration, log *zap.Logger) Service {
	return &cachedService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    ttl,
		log:         log,
	}
}

func (s *cachedService) ListByCategory(ctx context.Context, category models.Category) ([]models.Flower, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	key := categoryKeyPrefix + string(category)

	val, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		var flowers []models.Flower
		if err := json.Unmarshal([]byte(val), &flowers); err == nil {
			return flowers, nil
		}
	} else if err != redis.Nil {
		s.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}

	flowers, err := s.next.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(flowers); err == nil {
		if err := s.redisClient.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
			s.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return flowers, nil
}

func (s *cachedService) Get(ctx context.Context, id uint) (*models.Flower, error) {
	return s.next.Get(ctx, id)
}

func (s *cachedService) List(ctx context.Context, filter Filter) ([]models.Flower, error) {
	return s.next.List(ctx, filter)
}

func (s *cachedService) Create(ctx context.Context, flower *models.Flower) error {
	if err := s.next.Create(ctx, flower); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *cachedService) Update(ctx context.Context, flower *models.Flower) error {
	if err := s.next.Update(ctx, flower); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *cachedService) Delete(ctx context.Context, id uint) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *cachedService) invalidate(ctx context.Context) {
	keys := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		keys[i] = categoryKeyPrefix + string(c)
	}

	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
