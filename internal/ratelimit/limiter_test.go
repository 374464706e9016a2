package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alrehab/agriexport-go/internal/store"
)

func testQueries(t *testing.T) *store.Queries {
	t.Helper()

	f, err := os.CreateTemp("", "ratelimit-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return store.New(db)
}

func TestCheckAllowsUnderLimit(t *testing.T) {
	l := New(testQueries(t))
	ctx := context.Background()
	limit := Limit{Endpoint: "test", Window: time.Minute, Max: 3}

	for i := 0; i < 3; i++ {
		res := l.Check(ctx, "1.2.3.4", limit)
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		want := limit.Max - int64(i) - 1
		if res.Remaining != want {
			t.Errorf("request %d: Remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}
}

func TestCheckBlocksOverLimit(t *testing.T) {
	l := New(testQueries(t))
	ctx := context.Background()
	limit := Limit{Endpoint: "test", Window: time.Minute, Max: 2}

	l.Check(ctx, "1.2.3.4", limit)
	l.Check(ctx, "1.2.3.4", limit)

	res := l.Check(ctx, "1.2.3.4", limit)
	if res.Allowed {
		t.Error("third request should be blocked")
	}
	if res.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", res.Remaining)
	}
	if res.ResetAt.Before(time.Now()) {
		t.Error("ResetAt should be in the future")
	}
}

func TestCheckIsolatesIdentifiers(t *testing.T) {
	l := New(testQueries(t))
	ctx := context.Background()
	limit := Limit{Endpoint: "test", Window: time.Minute, Max: 1}

	l.Check(ctx, "1.2.3.4", limit)
	if res := l.Check(ctx, "1.2.3.4", limit); res.Allowed {
		t.Error("second request from same identifier should be blocked")
	}
	if res := l.Check(ctx, "5.6.7.8", limit); !res.Allowed {
		t.Error("request from different identifier should be allowed")
	}
}

func TestCheckIsolatesEndpoints(t *testing.T) {
	l := New(testQueries(t))
	ctx := context.Background()

	a := Limit{Endpoint: "a", Window: time.Minute, Max: 1}
	b := Limit{Endpoint: "b", Window: time.Minute, Max: 1}

	l.Check(ctx, "1.2.3.4", a)
	if res := l.Check(ctx, "1.2.3.4", a); res.Allowed {
		t.Error("endpoint a should be exhausted")
	}
	if res := l.Check(ctx, "1.2.3.4", b); !res.Allowed {
		t.Error("endpoint b should still be fresh")
	}
}

func TestCheckResetsExpiredWindow(t *testing.T) {
	q := testQueries(t)
	l := New(q)
	ctx := context.Background()
	limit := Limit{Endpoint: "test", Window: time.Minute, Max: 1}

	l.Check(ctx, "1.2.3.4", limit)
	if res := l.Check(ctx, "1.2.3.4", limit); res.Allowed {
		t.Fatal("window should be exhausted")
	}

	// Age the stored window past its expiry
	past := time.Now().Add(-2 * time.Minute)
	err := q.ResetRateLimit(ctx, store.ResetRateLimitParams{
		Identifier:  "1.2.3.4",
		Endpoint:    "test",
		WindowStart: past,
		ExpiresAt:   past.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("ResetRateLimit: %v", err)
	}

	res := l.Check(ctx, "1.2.3.4", limit)
	if !res.Allowed {
		t.Error("request after window expiry should be allowed")
	}
	if res.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", res.Remaining)
	}
}

func TestCheckPrunesExpiredWindows(t *testing.T) {
	q := testQueries(t)
	l := New(q)
	ctx := context.Background()
	limit := Limit{Endpoint: "test", Window: time.Minute, Max: 5}

	// A long-expired window left behind by another identifier
	past := time.Now().Add(-time.Hour)
	err := q.ResetRateLimit(ctx, store.ResetRateLimitParams{
		Identifier:  "9.9.9.9",
		Endpoint:    "test",
		WindowStart: past,
		ExpiresAt:   past.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("ResetRateLimit: %v", err)
	}

	// Starting a fresh window sweeps the stale row
	l.Check(ctx, "1.2.3.4", limit)

	_, err = q.GetRateLimit(ctx, store.GetRateLimitParams{Identifier: "9.9.9.9", Endpoint: "test"})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("stale window lookup: err = %v, want ErrNoRows", err)
	}
}

func TestCheckFailsOpenOnStorageError(t *testing.T) {
	f, err := os.CreateTemp("", "ratelimit-closed-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	defer os.Remove(dbPath)

	db, err := store.NewDB(dbPath)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	q := store.New(db)
	db.Close()

	l := New(q)
	res := l.Check(context.Background(), "1.2.3.4", Limit{Endpoint: "test", Window: time.Minute, Max: 1})
	if !res.Allowed {
		t.Error("storage failure should fail open")
	}
}

func TestPresets(t *testing.T) {
	if LimitAPI.Max != 60 || LimitAPI.Window != time.Minute {
		t.Errorf("LimitAPI = %+v, want 60/min", LimitAPI)
	}
	if LimitAuth.Max != 10 || LimitAuth.Window != time.Minute {
		t.Errorf("LimitAuth = %+v, want 10/min", LimitAuth)
	}
	if LimitContactForm.Max != 5 || LimitContactForm.Window != 24*time.Hour {
		t.Errorf("LimitContactForm = %+v, want 5/24h", LimitContactForm)
	}
}
