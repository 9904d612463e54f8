package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/matijazezelj/assetutil/pkg/models"
)

// Runs only against a live server: ASSETUTIL_TEST_POSTGRES_DSN=postgres://...
func TestPostgresCollection(t *testing.T) {
	dsn := os.Getenv("ASSETUTIL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ASSETUTIL_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	table := "assets_test"
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		t.Fatal(err)
	}
	c, err := NewPostgresCollection[models.Asset](ctx, pool, table)
	if err != nil {
		t.Fatal(err)
	}

	_ = c.Put(ctx, asset("a", "a"))
	_ = c.Put(ctx, asset("b", "b"))
	_ = c.Put(ctx, asset("a", "renamed"))

	list, err := c.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[0].Name != "renamed" {
		t.Errorf("list = %+v", list)
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
}
