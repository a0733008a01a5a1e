package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	apperrors "github.com/megaskyshop/storefront/src/common/errors"
)

func setupTestDB(t *testing.T) (*Database, string) {
	t.Helper()
	persistPath := filepath.Join(t.TempDir(), "shopd.db")
	database, err := New(Config{Driver: DriverSQLite, PersistPath: persistPath})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	return database, persistPath
}

func TestDatabase_SettingsCRUD(t *testing.T) {
	database, _ := setupTestDB(t)
	defer database.Shutdown()
	ctx := context.Background()

	if _, err := database.GetSetting(ctx, "storage"); !errors.Is(err, apperrors.ErrSettingNotFound) {
		t.Fatalf("expected setting not found, got %v", err)
	}

	if err := database.SetSetting(ctx, "storage", `{"local":{}}`); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := database.SetSetting(ctx, "storage", `{"s3":{}}`); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	value, err := database.GetSetting(ctx, "storage")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if value != `{"s3":{}}` {
		t.Fatalf("value = %q, want the updated value", value)
	}

	all, err := database.GetAllSettings(ctx)
	if err != nil {
		t.Fatalf("get all failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 setting, got %d", len(all))
	}

	if err := database.DeleteSetting(ctx, "storage"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := database.GetSetting(ctx, "storage"); !errors.Is(err, apperrors.ErrSettingNotFound) {
		t.Fatalf("expected setting not found after delete, got %v", err)
	}
}

func TestDatabase_PersistAndReload(t *testing.T) {
	database, persistPath := setupTestDB(t)
	ctx := context.Background()

	if err := database.SetSetting(ctx, "jwt_secret", "s3cr3t"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := database.Shutdown(); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	// Second shutdown is a no-op
	if err := database.Shutdown(); err != nil {
		t.Fatalf("second shutdown failed: %v", err)
	}

	reloaded, err := New(Config{Driver: DriverSQLite, PersistPath: persistPath, LoadOnStart: true})
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer reloaded.Shutdown()

	value, err := reloaded.GetSetting(ctx, "jwt_secret")
	if err != nil {
		t.Fatalf("get after reload failed: %v", err)
	}
	if value != "s3cr3t" {
		t.Fatalf("value = %q, want s3cr3t", value)
	}
}

func TestDatabase_ConcurrentAccess(t *testing.T) {
	database, _ := setupTestDB(t)
	defer database.Shutdown()
	ctx := context.Background()

	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			if i%2 == 0 {
				done <- database.SetSetting(ctx, "k", "v")
				return
			}
			_, err := database.GetSetting(ctx, "k")
			if errors.Is(err, apperrors.ErrSettingNotFound) {
				err = nil
			}
			done <- err
		}(i)
	}
	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent access failed: %v", err)
		}
	}
}

func TestDialectFor(t *testing.T) {
	sqlite, err := DialectFor("")
	if err != nil || sqlite.Name() != DriverSQLite || sqlite.Placeholder(2) != "?" {
		t.Fatalf("unexpected default dialect: %v, %v", sqlite, err)
	}

	pg, err := DialectFor(DriverPostgres)
	if err != nil {
		t.Fatalf("postgres dialect: %v", err)
	}
	if pg.DriverName() != "pgx" || pg.Placeholder(2) != "$2" {
		t.Fatalf("unexpected postgres dialect: %s %s", pg.DriverName(), pg.Placeholder(2))
	}

	if _, err := DialectFor("mysql"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestNew_PostgresRequiresDSN(t *testing.T) {
	_, err := New(Config{Driver: DriverPostgres})
	if !errors.Is(err, apperrors.ErrDatabaseConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
}
