package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matijazezelj/assetutil/pkg/models"
)

type fakeRedis struct {
	data    map[string]string
	gets    int
	hits    int
	failAll bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.gets++
	if f.failAll {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	f.hits++
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.failAll {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.failAll {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestCachedCollection_ReadThrough(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewCachedCollection[models.Asset](NewMemoryCollection[models.Asset](), rdb, "asset", time.Minute, nil)

	_ = c.Put(ctx, asset("a", "web"))

	if _, err := c.Get(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, ok := rdb.data["asset:a"]; !ok {
		t.Fatal("miss did not fill the cache")
	}
	got, err := c.Get(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if rdb.hits != 1 {
		t.Errorf("hits = %d, want 1", rdb.hits)
	}
	if got.Name != "web" {
		t.Errorf("cached name = %q", got.Name)
	}
}

func TestCachedCollection_PutInvalidates(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewCachedCollection[models.Asset](NewMemoryCollection[models.Asset](), rdb, "asset", time.Minute, nil)

	_ = c.Put(ctx, asset("a", "web"))
	_, _ = c.Get(ctx, "a")
	_ = c.Put(ctx, asset("a", "api"))

	got, _ := c.Get(ctx, "a")
	if got.Name != "api" {
		t.Errorf("stale read after put: %q", got.Name)
	}

	_ = c.Delete(ctx, "a")
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
}

func TestCachedCollection_CacheDown(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	rdb.failAll = true
	c := NewCachedCollection[models.Asset](NewMemoryCollection[models.Asset](), rdb, "asset", time.Minute, nil)

	if err := c.Put(ctx, asset("a", "web")); err != nil {
		t.Fatalf("Put with cache down: %v", err)
	}
	if _, err := c.Get(ctx, "a"); err != nil {
		t.Fatalf("Get with cache down: %v", err)
	}
	list, err := c.List(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("List = %v, %v", list, err)
	}
}
