package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetGet(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	if err := ms.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := ms.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != "v" {
		t.Errorf("Get = (%q, %v), want (%q, true)", got, ok, "v")
	}
}

func TestMemoryStore_GetExpired(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	if err := ms.Set(ctx, "k", "v", -time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, ok, err := ms.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected expired key to be absent")
	}
}

func TestMemoryStore_SetNXClaimsOnce(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	claimed, err := ms.SetNX(ctx, "webhook:t1:completed", "1", time.Minute)
	if err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	if !claimed {
		t.Error("first SetNX should claim the key")
	}

	claimed, err = ms.SetNX(ctx, "webhook:t1:completed", "1", time.Minute)
	if err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	if claimed {
		t.Error("second SetNX should not claim the key")
	}
}

func TestMemoryStore_SetNXReclaimsExpired(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	if _, err := ms.SetNX(ctx, "k", "1", -time.Second); err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	claimed, err := ms.SetNX(ctx, "k", "2", time.Minute)
	if err != nil {
		t.Fatalf("SetNX: %v", err)
	}
	if !claimed {
		t.Error("SetNX should reclaim an expired key")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	if err := ms.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := ms.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, ok, _ := ms.Get(ctx, "k")
	if ok {
		t.Error("expected deleted key to be absent")
	}
}
