// Package testutil holds the database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/indra474/flower-project/internal/db"
	"github.com/indra474/flower-project/internal/models"
)

// NewDB opens a private in-memory SQLite database with the schema applied.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to connect test database")
	require.NoError(t, db.Migrate(conn), "failed to auto-migrate models")

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return conn
}

func CreateFlower(t testing.TB, conn *gorm.DB, name string, category models.Category, price string) models.Flower {
	t.Helper()

	f := models.Flower{Name: name, Category: category, Price: decimal.RequireFromString(price)}
	require.NoError(t, conn.Create(&f).Error)
	return f
}

func CreateUser(t testing.TB, conn *gorm.DB, username, password string, staff bool) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		FirstName:    username,
		IsStaff:      staff,
	}
	require.NoError(t, conn.Create(&u).Error)
	return u
}

// DBSuite gives every test method a fresh database.
type DBSuite struct {
	suite.Suite
	DB *gorm.DB
}

func (s *DBSuite) SetupTest() {
	s.DB = NewDB(s.T())
}

func (s *DBSuite) CountRows(model interface{}, query string, args ...interface{}) int64 {
	var n int64
	s.Require().NoError(s.DB.Model(model).Where(query, args...).Count(&n).Error)
	return n
}
