package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("test")

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "v" {
		t.Errorf("got %q", got)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_MissingKey(t *testing.T) {
	c := NewMemory("")
	_, err := c.Get(context.Background(), "nope")
	if !IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemory_TTLExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory("")

	if err := c.Set(ctx, "k", "v", 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatalf("value must exist before TTL, got %v", err)
	}

	time.Sleep(40 * time.Millisecond)
	if _, err := c.Get(ctx, "k"); !IsNotFound(err) {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestMemory_DeleteMissingIsNoError(t *testing.T) {
	c := NewMemory("")
	if err := c.Delete(context.Background(), "nope"); err != nil {
		t.Errorf("Delete on missing key: %v", err)
	}
}
