// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/alrehab/agriexport-go/internal/model"
	"github.com/alrehab/agriexport-go/internal/store"
)

func setupLockoutTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE login_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ip_address TEXT NOT NULL,
			device_id TEXT NOT NULL,
			email TEXT NOT NULL,
			success INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("failed to create login_attempts table: %v", err)
	}

	return db
}

func TestLoginProtection_NotLockedInitially(t *testing.T) {
	db := setupLockoutTestDB(t)
	lp := NewLoginProtection(db)
	ctx := context.Background()

	locked, _ := lp.IsLocked(ctx, "10.0.0.1", "device-1")
	if locked {
		t.Error("fresh identity should not be locked")
	}
	if got := lp.RemainingAttempts(ctx, "10.0.0.1", "device-1"); got != model.MaxLoginAttempts {
		t.Errorf("RemainingAttempts = %d, want %d", got, model.MaxLoginAttempts)
	}
}

func TestLoginProtection_LocksAfterMaxFailures(t *testing.T) {
	db := setupLockoutTestDB(t)
	lp := NewLoginProtection(db)
	ctx := context.Background()

	for i := 0; i < model.MaxLoginAttempts-1; i++ {
		if lockedNow := lp.RecordFailedAttempt(ctx, "10.0.0.1", "device-1", "admin@example.com"); lockedNow {
			t.Fatalf("locked after %d failures, want %d", i+1, model.MaxLoginAttempts)
		}
	}

	if lockedNow := lp.RecordFailedAttempt(ctx, "10.0.0.1", "device-1", "admin@example.com"); !lockedNow {
		t.Fatal("expected lock after max failures")
	}

	locked, remaining := lp.IsLocked(ctx, "10.0.0.1", "device-1")
	if !locked {
		t.Error("identity should be locked")
	}
	if remaining <= 0 || remaining > model.LoginLockoutWindow {
		t.Errorf("remaining = %v, want within (0, %v]", remaining, model.LoginLockoutWindow)
	}
	if got := lp.RemainingAttempts(ctx, "10.0.0.1", "device-1"); got != 0 {
		t.Errorf("RemainingAttempts = %d, want 0", got)
	}
}

func TestLoginProtection_IdentitiesAreIndependent(t *testing.T) {
	db := setupLockoutTestDB(t)
	lp := NewLoginProtection(db)
	ctx := context.Background()

	for i := 0; i < model.MaxLoginAttempts; i++ {
		lp.RecordFailedAttempt(ctx, "10.0.0.1", "device-1", "admin@example.com")
	}

	// Same IP, different device
	if locked, _ := lp.IsLocked(ctx, "10.0.0.1", "device-2"); locked {
		t.Error("different device on same IP should not be locked")
	}
	// Different IP, same device
	if locked, _ := lp.IsLocked(ctx, "10.0.0.2", "device-1"); locked {
		t.Error("different IP with same device should not be locked")
	}
}

func TestLoginProtection_SuccessClearsFailures(t *testing.T) {
	db := setupLockoutTestDB(t)
	lp := NewLoginProtection(db)
	ctx := context.Background()

	for i := 0; i < model.MaxLoginAttempts; i++ {
		lp.RecordFailedAttempt(ctx, "10.0.0.1", "device-1", "admin@example.com")
	}

	lp.RecordSuccessfulLogin(ctx, "10.0.0.1", "device-1", "admin@example.com")

	if locked, _ := lp.IsLocked(ctx, "10.0.0.1", "device-1"); locked {
		t.Error("identity should be unlocked after a successful login")
	}
	if got := lp.RemainingAttempts(ctx, "10.0.0.1", "device-1"); got != model.MaxLoginAttempts {
		t.Errorf("RemainingAttempts = %d, want %d", got, model.MaxLoginAttempts)
	}

	// Successful attempt row is kept for the audit trail
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM login_attempts WHERE success = 1").Scan(&count); err != nil {
		t.Fatalf("failed to count attempts: %v", err)
	}
	if count != 1 {
		t.Errorf("successful attempt count = %d, want 1", count)
	}
}

func TestLoginProtection_OldFailuresAgeOut(t *testing.T) {
	db := setupLockoutTestDB(t)
	lp := NewLoginProtection(db)
	ctx := context.Background()

	// Failures older than the window must not count toward lockout
	for i := 0; i < model.MaxLoginAttempts; i++ {
		_, err := db.Exec(`
			INSERT INTO login_attempts (ip_address, device_id, email, success, created_at)
			VALUES ('10.0.0.1', 'device-1', 'admin@example.com', 0, datetime('now', '-1 hour'))
		`)
		if err != nil {
			t.Fatalf("failed to insert old attempt: %v", err)
		}
	}

	if locked, _ := lp.IsLocked(ctx, "10.0.0.1", "device-1"); locked {
		t.Error("stale failures should not lock the identity")
	}
}

func TestLoginProtection_RemainingLockoutReflectsElapsedTime(t *testing.T) {
	db := setupLockoutTestDB(t)
	lp := NewLoginProtection(db)
	queries := store.New(db)
	ctx := context.Background()

	// Five failures ten minutes ago: two thirds of the window elapsed
	backdated := time.Now().Add(-10 * time.Minute)
	for i := 0; i < model.MaxLoginAttempts; i++ {
		_, err := queries.CreateLoginAttempt(ctx, store.CreateLoginAttemptParams{
			IPAddress: "10.0.0.1",
			DeviceID:  "device-1",
			Email:     "admin@example.com",
			CreatedAt: backdated,
		})
		if err != nil {
			t.Fatalf("failed to insert backdated attempt: %v", err)
		}
	}

	locked, remaining := lp.IsLocked(ctx, "10.0.0.1", "device-1")
	if !locked {
		t.Fatal("identity should be locked")
	}
	want := model.LoginLockoutWindow - 10*time.Minute
	if remaining < want-time.Minute || remaining > want+time.Minute {
		t.Errorf("remaining = %v, want about %v", remaining, want)
	}
}

func TestLoginProtection_IsLockedPrunesExpiredAttempts(t *testing.T) {
	db := setupLockoutTestDB(t)
	lp := NewLoginProtection(db)
	ctx := context.Background()

	_, err := db.Exec(`
		INSERT INTO login_attempts (ip_address, device_id, email, success, created_at)
		VALUES ('10.0.0.9', 'device-9', 'old@example.com', 0, datetime('now', '-48 hours'))
	`)
	if err != nil {
		t.Fatalf("failed to insert expired attempt: %v", err)
	}

	lp.IsLocked(ctx, "10.0.0.1", "device-1")

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM login_attempts").Scan(&count); err != nil {
		t.Fatalf("failed to count attempts: %v", err)
	}
	if count != 0 {
		t.Errorf("attempt count after prune = %d, want 0", count)
	}
}

func TestLoginProtection_FailsOpenOnStorageError(t *testing.T) {
	db := setupLockoutTestDB(t)
	lp := NewLoginProtection(db)
	_ = db.Close()

	if locked, _ := lp.IsLocked(context.Background(), "10.0.0.1", "device-1"); locked {
		t.Error("storage errors must fail open")
	}
}
