// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"ShopAssist/models"
	"ShopAssist/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open returns a migrated in-memory database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	db, err := database.Open(context.Background(), database.Options{
		Driver:   "sqlite",
		DSN:      dsn,
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SeedUser inserts a customer with the given id.
func SeedUser(t testing.TB, db *gorm.DB, id uint, email string) *models.User {
	t.Helper()
	u := &models.User{ID: id, FirstName: "Test", LastName: fmt.Sprintf("User%d", id), Email: email, Country: "United States"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %d: %v", id, err)
	}
	return u
}

// Count returns the number of rows of model's table.
func Count(t testing.TB, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}
