package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"tradewatch/internal/infrastructure/persistence/sql/model"
)

func setupCache(t *testing.T) *KVCache {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cache.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.KVEntry{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewKVCache(db)
}

func TestSetGetDelete(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	if _, found, err := cache.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = (%t, %v)", found, err)
	}

	if err := cache.Set(ctx, "resolve:ticker:AAPL", "42", 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value, found, err := cache.Get(ctx, "resolve:ticker:AAPL")
	if err != nil || !found || value != "42" {
		t.Fatalf("Get() = (%q, %t, %v)", value, found, err)
	}

	// Overwrite in place.
	if err := cache.Set(ctx, "resolve:ticker:AAPL", "43", 0); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}
	value, _, err = cache.Get(ctx, "resolve:ticker:AAPL")
	if err != nil || value != "43" {
		t.Fatalf("Get() after overwrite = (%q, %v)", value, err)
	}

	if err := cache.Delete(ctx, "resolve:ticker:AAPL"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, found, err := cache.Get(ctx, "resolve:ticker:AAPL"); err != nil || found {
		t.Fatalf("Get() after delete = (%t, %v)", found, err)
	}
}

func TestExpiredEntryIsEvictedOnRead(t *testing.T) {
	cache := setupCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "short-lived", "v", time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, found, err := cache.Get(ctx, "short-lived"); err != nil || found {
		t.Fatalf("Get(expired) = (%t, %v), want miss", found, err)
	}
}
