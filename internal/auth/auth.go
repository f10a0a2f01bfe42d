package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/indra474/flower-project/internal/models"
	"github.com/indra474/flower-project/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
)

type RegisterInput struct {
	Username  string `form:"username" json:"username" validate:"required,max=150"`
	Password  string `form:"password" json:"-" validate:"required,min=8,max=72"`
	Email     string `form:"email" json:"email" validate:"omitempty,email"`
	FirstName string `form:"first_name" json:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" json:"last_name" validate:"max=150"`
	Phone     string `form:"phone" json:"phone" validate:"max=30"`
	Address   string `form:"address" json:"address" validate:"max=255"`
}

// Claims are the OIDC ID token claims used to provision a user.
type Claims struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone_number"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	validate   *validator.Validate
	bcryptCost int
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{
		db:         db,
		log:        log,
		validate:   utils.NewValidator(),
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost is used by tests to keep hashing fast.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Address:      in.Address,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", user.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrUsernameTaken
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		// The unique index still catches a concurrent registration of the same name.
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return &user, nil
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

func (s *Service) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

// UpsertOIDCUser returns the user linked to the subject, creating it on first login.
func (s *Service) UpsertOIDCUser(ctx context.Context, claims Claims) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("oidc_subject = ?", claims.Sub).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find oidc user: %w", err)
	}

	sub := claims.Sub
	first, last, _ := strings.Cut(claims.Name, " ")
	user = models.User{
		Username:    "oidc:" + claims.Sub,
		Email:       claims.Email,
		FirstName:   first,
		LastName:    last,
		Phone:       claims.Phone,
		OIDCSubject: &sub,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create oidc user: %w", err)
	}

	s.log.Info("oidc user provisioned", zap.Uint("user_id", user.ID))
	return &user, nil
}
