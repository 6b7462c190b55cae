package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "studio_credits"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get missing: err = %v, want ErrKeyNotFound", err)
	}
	if err := kv.Set(ctx, "studio_credits", "120"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, "studio_credits", "60"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, err := kv.Get(ctx, "studio_credits")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "60" {
		t.Fatalf("Get = %q, want 60", got)
	}
	if err := kv.Delete(ctx, "studio_credits"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := kv.Get(ctx, "studio_credits"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("Get after delete: err = %v", err)
	}
	if err := kv.Delete(ctx, "never-set"); err != nil {
		t.Fatalf("Delete missing key should be a no-op: %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	exerciseKV(t, NewMemoryKV())
}

func TestBoltKV(t *testing.T) {
	kv, err := OpenBoltKV(filepath.Join(t.TempDir(), "studio.bolt"))
	if err != nil {
		t.Fatalf("OpenBoltKV: %v", err)
	}
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestSQLiteKV(t *testing.T) {
	kv, err := OpenSQLiteKV(context.Background(), filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteKV: %v", err)
	}
	defer kv.Close()
	exerciseKV(t, kv)
}

func TestBoltKVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.bolt")
	kv, err := OpenBoltKV(path)
	if err != nil {
		t.Fatalf("OpenBoltKV: %v", err)
	}
	if err := kv.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_ = kv.Close()

	kv, err = OpenBoltKV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv.Close()
	if got, err := kv.Get(context.Background(), "k"); err != nil || got != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}
}

func TestOpenFileRejectsUnknownDriver(t *testing.T) {
	if _, _, err := OpenFile(context.Background(), "redis", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestQuotaRefusesOversizedWrites(t *testing.T) {
	ctx := context.Background()
	q := NewQuota(NewMemoryKV(), 20)

	if err := q.Set(ctx, "a", "123456789"); err != nil { // 10 bytes
		t.Fatalf("Set a: %v", err)
	}
	if err := q.Set(ctx, "b", "1234567890123"); !errors.Is(err, ErrCapacityExceeded) { // 14 bytes
		t.Fatalf("Set b: err = %v, want ErrCapacityExceeded", err)
	}
	if _, err := q.Get(ctx, "b"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("refused write must not land: %v", err)
	}
	// Replacing a key only counts the difference.
	if err := q.Set(ctx, "a", "1234567890123456789"); err != nil { // 20 bytes
		t.Fatalf("Set a larger: %v", err)
	}
	if q.Used() != 20 {
		t.Fatalf("Used = %d, want 20", q.Used())
	}
	if err := q.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := q.Set(ctx, "b", "1234567890123"); err != nil {
		t.Fatalf("Set b after delete: %v", err)
	}
}

func TestQuotaLearnsExistingSizes(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryKV()
	_ = inner.Set(ctx, "old", "0123456789") // 13 bytes
	q := NewQuota(inner, 20)
	if err := q.Set(ctx, "old", "01234567890123456"); err != nil { // 20 bytes replaces 13
		t.Fatalf("Set: %v", err)
	}
	if err := q.Set(ctx, "x", "y"); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}
