package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "material:"), mr
}

func waitForKey(t *testing.T, helper *CacheHelper, key string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ok, err := helper.Exists(context.Background(), key); err == nil && ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("key %q never appeared in cache", key)
}

func TestCacheHelper_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	value := map[string]string{"title": "Algebra"}
	if err := helper.Set(ctx, "owner:user-1", value, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got map[string]string
	if err := helper.Get(ctx, "owner:user-1", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got["title"] != "Algebra" {
		t.Errorf("Expected cached title 'Algebra', got %q", got["title"])
	}
}

func TestCacheHelper_GetMiss(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	var dest map[string]string
	if err := helper.Get(ctx, "owner:missing", &dest); err != ErrCacheNotFound {
		t.Errorf("Expected ErrCacheNotFound for a cold key, got %v", err)
	}
}

func TestCacheHelper_CacheOrExecute_SecondReadSkipsFetch(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return map[string]string{"title": "Physics"}, nil
	}

	var first map[string]string
	if err := helper.CacheOrExecute(ctx, "owner:user-1", &first, time.Minute, fetch); err != nil {
		t.Fatalf("First CacheOrExecute failed: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("Expected 1 fetch on cold cache, got %d", fetches)
	}

	// Population happens off the request path
	waitForKey(t, helper, "owner:user-1")

	var second map[string]string
	if err := helper.CacheOrExecute(ctx, "owner:user-1", &second, time.Minute, fetch); err != nil {
		t.Fatalf("Second CacheOrExecute failed: %v", err)
	}
	if fetches != 1 {
		t.Errorf("Second read within the TTL should not fetch, got %d fetches", fetches)
	}
	if second["title"] != "Physics" {
		t.Errorf("Expected cached value, got %q", second["title"])
	}
}

func TestCacheHelper_CacheOrExecute_ExpiredEntryRefetches(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t)

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return map[string]string{"n": "v"}, nil
	}

	var dest map[string]string
	if err := helper.CacheOrExecute(ctx, "owner:user-1", &dest, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute failed: %v", err)
	}
	waitForKey(t, helper, "owner:user-1")

	mr.FastForward(2 * time.Minute)

	if err := helper.CacheOrExecute(ctx, "owner:user-1", &dest, time.Minute, fetch); err != nil {
		t.Fatalf("CacheOrExecute after expiry failed: %v", err)
	}
	if fetches != 2 {
		t.Errorf("Expired entry should trigger a refetch, got %d fetches", fetches)
	}
}

func TestCacheHelper_NilClientDegradesToAlwaysFetch(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "material:")

	var dest map[string]string
	if err := helper.Get(ctx, "owner:user-1", &dest); err != ErrCacheNotAvailable {
		t.Errorf("Expected ErrCacheNotAvailable without a client, got %v", err)
	}
	if err := helper.Set(ctx, "owner:user-1", map[string]string{}, time.Minute); err != nil {
		t.Errorf("Set without a client should be a no-op, got %v", err)
	}

	fetches := 0
	fetch := func() (interface{}, error) {
		fetches++
		return map[string]string{"n": "v"}, nil
	}

	for i := 0; i < 2; i++ {
		if err := helper.CacheOrExecute(ctx, "owner:user-1", &dest, time.Minute, fetch); err != nil {
			t.Fatalf("CacheOrExecute without a client failed: %v", err)
		}
	}
	if fetches != 2 {
		t.Errorf("Without a client every read must fetch, got %d fetches", fetches)
	}
}

func TestCacheHelper_InvalidatePattern(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t)

	for _, key := range []string{"owner:user-1", "owner:user-1:page:2", "owner:user-2"} {
		if err := helper.Set(ctx, key, "x", time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "owner:user-1*"); err != nil {
		t.Fatalf("InvalidatePattern failed: %v", err)
	}

	if ok, _ := helper.Exists(ctx, "owner:user-1"); ok {
		t.Error("owner:user-1 should be invalidated")
	}
	if ok, _ := helper.Exists(ctx, "owner:user-1:page:2"); ok {
		t.Error("owner:user-1:page:2 should be invalidated")
	}
	if ok, _ := helper.Exists(ctx, "owner:user-2"); !ok {
		t.Error("owner:user-2 should survive the invalidation")
	}
}

func TestCacheManager_InvalidateOwner(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cm := NewCacheManager(client)

	for _, helper := range []*CacheHelper{cm.Material, cm.Document, cm.Exam} {
		for _, key := range []string{"owner:user-1", "owner:user-1:page:2", "owner:user-2"} {
			if err := helper.Set(ctx, key, "x", time.Minute); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
		}
	}
	for _, key := range []string{"id:user-1", "id:user-2"} {
		if err := cm.Profile.Set(ctx, key, "x", time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := cm.InvalidateOwner(ctx, "user-1"); err != nil {
		t.Fatalf("InvalidateOwner failed: %v", err)
	}

	for _, helper := range []*CacheHelper{cm.Material, cm.Document, cm.Exam} {
		for _, key := range []string{"owner:user-1", "owner:user-1:page:2"} {
			if ok, _ := helper.Exists(ctx, key); ok {
				t.Errorf("%s%s should be invalidated", helper.prefix, key)
			}
		}
		if ok, _ := helper.Exists(ctx, "owner:user-2"); !ok {
			t.Errorf("%sowner:user-2 should survive", helper.prefix)
		}
	}
	if ok, _ := cm.Profile.Exists(ctx, "id:user-1"); ok {
		t.Error("Deleted owner's profile entry should be invalidated")
	}
	if ok, _ := cm.Profile.Exists(ctx, "id:user-2"); !ok {
		t.Error("Other profile entries should survive")
	}
}
