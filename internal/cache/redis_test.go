package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"go-jewelry-pos/internal/config"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), config.RedisConfig{Enabled: true, Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStoreGetSet(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	var got payload
	ok, err := store.Get(ctx, "stock:view:2026-10-17", &got)
	if err != nil || ok {
		t.Fatalf("miss = %v, %v", ok, err)
	}

	if err := store.Set(ctx, "stock:view:2026-10-17", payload{N: 5}, time.Minute); err != nil {
		t.Fatal(err)
	}
	ok, err = store.Get(ctx, "stock:view:2026-10-17", &got)
	if err != nil || !ok || got.N != 5 {
		t.Fatalf("Get = %v, %v, %+v", ok, err, got)
	}

	mr.FastForward(time.Minute)
	if ok, _ := store.Get(ctx, "stock:view:2026-10-17", &got); ok {
		t.Error("entry should have expired")
	}

	mr.Set("stock:view:broken", "{not json")
	if _, err := store.Get(ctx, "stock:view:broken", &got); err == nil {
		t.Error("undecodable value should fail")
	}
}

func TestRedisStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, mr := newRedisStore(t)

	// more than one scan batch
	for i := 0; i < 250; i++ {
		if err := store.Set(ctx, fmt.Sprintf("stock:view:%03d", i), payload{N: i}, time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	store.Set(ctx, "gold:price", payload{N: 1}, time.Hour)
	store.Set(ctx, "promo:slides", payload{N: 2}, time.Hour)

	if err := store.DeletePrefix(ctx, "stock:view:"); err != nil {
		t.Fatal(err)
	}
	if keys := mr.Keys(); len(keys) != 2 {
		t.Fatalf("keys left = %v", keys)
	}

	if err := store.Delete(ctx); err != nil {
		t.Errorf("empty delete: %v", err)
	}
	if err := store.Delete(ctx, "gold:price"); err != nil {
		t.Fatal(err)
	}
	var p payload
	if ok, _ := store.Get(ctx, "gold:price", &p); ok {
		t.Error("gold:price should be gone")
	}
	if ok, _ := store.Get(ctx, "promo:slides", &p); !ok {
		t.Error("promo:slides should survive")
	}
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisStore(ctx, config.RedisConfig{Addr: addr}); err == nil {
		t.Fatal("expected ping failure")
	}
}
