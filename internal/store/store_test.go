package store

import (
	"context"
	"errors"
	"testing"

	"github.com/matijazezelj/assetutil/pkg/models"
)

func testSQLiteDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup
	return db
}

// collections returns one fresh asset collection per backend.
func collections(t *testing.T) map[string]Collection[models.Asset] {
	t.Helper()
	sqliteColl, err := NewSQLiteCollection[models.Asset](context.Background(), testSQLiteDB(t), TableAssets)
	if err != nil {
		t.Fatalf("creating sqlite collection: %v", err)
	}
	return map[string]Collection[models.Asset]{
		"memory": NewMemoryCollection[models.Asset](),
		"sqlite": sqliteColl,
	}
}

func asset(id, name string) models.Asset {
	return models.Asset{
		ID:            id,
		Name:          name,
		Type:          "server",
		Status:        models.AssetActive,
		Location:      "eu-west-1",
		Configuration: map[string]any{"cpu": "4"},
	}
}

func TestCollection_PutGet(t *testing.T) {
	ctx := context.Background()
	for name, c := range collections(t) {
		t.Run(name, func(t *testing.T) {
			if err := c.Put(ctx, asset("a1", "web")); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := c.Get(ctx, "a1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Name != "web" || got.Configuration["cpu"] != "4" {
				t.Errorf("got %+v", got)
			}
		})
	}
}

func TestCollection_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, c := range collections(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get err = %v, want ErrNotFound", err)
			}
			if err := c.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Delete err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestCollection_OrderPreservedOnReplace(t *testing.T) {
	ctx := context.Background()
	for name, c := range collections(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"a", "b", "c"} {
				if err := c.Put(ctx, asset(id, id)); err != nil {
					t.Fatal(err)
				}
			}
			if err := c.Put(ctx, asset("a", "renamed")); err != nil {
				t.Fatal(err)
			}

			list, err := c.List(ctx)
			if err != nil {
				t.Fatal(err)
			}
			var ids []string
			for _, a := range list {
				ids = append(ids, a.ID)
			}
			if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
				t.Errorf("order = %v, want [a b c]", ids)
			}
			if list[0].Name != "renamed" {
				t.Errorf("replaced name = %q", list[0].Name)
			}
		})
	}
}

func TestCollection_Delete(t *testing.T) {
	ctx := context.Background()
	for name, c := range collections(t) {
		t.Run(name, func(t *testing.T) {
			_ = c.Put(ctx, asset("a", "a"))
			_ = c.Put(ctx, asset("b", "b"))
			if err := c.Delete(ctx, "a"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			list, _ := c.List(ctx)
			if len(list) != 1 || list[0].ID != "b" {
				t.Errorf("after delete: %+v", list)
			}
			// Re-inserting goes to the end.
			_ = c.Put(ctx, asset("a", "a"))
			list, _ = c.List(ctx)
			if list[len(list)-1].ID != "a" {
				t.Errorf("re-inserted record not last: %+v", list)
			}
		})
	}
}

func TestCollection_EmptyListNotNil(t *testing.T) {
	for name, c := range collections(t) {
		list, err := c.List(context.Background())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if list == nil {
			t.Errorf("%s: List returned nil slice", name)
		}
	}
}

func TestMemoryCollection_CopiesMaps(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCollection[models.Asset]()
	a := asset("a", "a")
	_ = c.Put(ctx, a)

	a.Configuration["cpu"] = "64"
	got, _ := c.Get(ctx, "a")
	if got.Configuration["cpu"] != "4" {
		t.Error("stored record shares caller's map")
	}

	got.Configuration["cpu"] = "128"
	again, _ := c.Get(ctx, "a")
	if again.Configuration["cpu"] != "4" {
		t.Error("returned record shares stored map")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestSQLiteDB_TableCounts(t *testing.T) {
	ctx := context.Background()
	db := testSQLiteDB(t)
	c, err := NewSQLiteCollection[models.Asset](ctx, db, TableAssets)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Init(ctx, TableDependencies); err != nil {
		t.Fatal(err)
	}
	_ = c.Put(ctx, asset("a", "a"))
	_ = c.Put(ctx, asset("b", "b"))

	counts, err := db.TableCounts(ctx, TableAssets, TableDependencies)
	if err != nil {
		t.Fatal(err)
	}
	if counts[TableAssets] != 2 || counts[TableDependencies] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestSQLiteDB_RejectsBadTableName(t *testing.T) {
	db := testSQLiteDB(t)
	if err := db.Init(context.Background(), "assets; DROP TABLE x"); err == nil {
		t.Error("expected error for invalid table name")
	}
}

func TestOpenSQLite_File(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/nested/inventory.db"
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewSQLiteCollection[models.Asset](ctx, db, TableAssets)
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Put(ctx, asset("a", "a"))
	db.Close() //nolint:errcheck // reopened below

	db, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close() //nolint:errcheck // test cleanup
	c, _ = NewSQLiteCollection[models.Asset](ctx, db, TableAssets)
	if _, err := c.Get(ctx, "a"); err != nil {
		t.Errorf("record did not survive reopen: %v", err)
	}
}
