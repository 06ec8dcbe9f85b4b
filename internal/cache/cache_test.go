package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemory(0)
	ctx := context.Background()

	if _, found := c.Get(ctx, "missing"); found {
		t.Error("empty cache reported a hit")
	}

	c.Set(ctx, "greeting", []byte("hello"), time.Minute)
	got, found := c.Get(ctx, "greeting")
	if !found {
		t.Fatal("stored key not found")
	}
	if string(got) != "hello" {
		t.Errorf("value = %q, want hello", got)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 set", stats)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemory(0)
	ctx := context.Background()

	c.Set(ctx, "blink", []byte("gone"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get(ctx, "blink"); found {
		t.Error("expired entry still served")
	}
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	c := NewMemory(0)
	ctx := context.Background()

	c.Set(ctx, StatsPrefix+"summary", []byte("a"), time.Minute)
	c.Set(ctx, CampaignStatsKey("c1"), []byte("b"), time.Minute)
	c.Set(ctx, "other:key", []byte("c"), time.Minute)

	c.DeletePrefix(ctx, StatsPrefix)

	if _, found := c.Get(ctx, StatsPrefix+"summary"); found {
		t.Error("summary survived prefix delete")
	}
	if _, found := c.Get(ctx, CampaignStatsKey("c1")); found {
		t.Error("campaign stats survived prefix delete")
	}
	if _, found := c.Get(ctx, "other:key"); !found {
		t.Error("unrelated key was deleted")
	}
}

func TestMemoryCacheJanitorEvicts(t *testing.T) {
	c := NewMemory(20 * time.Millisecond).(*memoryCache)
	defer c.Stop()
	ctx := context.Background()

	c.Set(ctx, "short", []byte("x"), 5*time.Millisecond)
	c.Set(ctx, "long", []byte("y"), time.Hour)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Stats().CurrentSize == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if size := c.Stats().CurrentSize; size != 1 {
		t.Errorf("size after janitor = %d, want 1", size)
	}
	if c.Stats().Evictions == 0 {
		t.Error("janitor recorded no evictions")
	}
}

func TestNoopCache(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()

	c.Set(ctx, "anything", []byte("x"), time.Minute)
	if _, found := c.Get(ctx, "anything"); found {
		t.Error("noop cache stored a value")
	}
}
