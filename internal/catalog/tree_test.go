package catalog

import (
	"testing"

	"github.com/google/uuid"

	"phonestore/internal/models"
)

func TestBuildTreeAndFlatten(t *testing.T) {
	phones := uuid.New()
	laptops := uuid.New()
	flat := []models.Category{
		{ID: phones, Name: "Smartphones"},
		{ID: uuid.New(), Name: "Apple", ParentID: &phones, Level: 1},
		{ID: laptops, Name: "Laptops"},
		{ID: uuid.New(), Name: "Samsung", ParentID: &phones, Level: 1},
		{ID: uuid.New(), Name: "Dell", ParentID: &laptops, Level: 1},
	}

	tree := BuildTree(flat)
	if len(tree) != 2 {
		t.Fatalf("roots: got %d, want 2", len(tree))
	}
	if tree[0].Name != "Smartphones" || len(tree[0].Children) != 2 {
		t.Errorf("first root: got %q with %d children", tree[0].Name, len(tree[0].Children))
	}
	if tree[0].Children[0].Name != "Apple" || tree[0].Children[1].Name != "Samsung" {
		t.Errorf("children order not preserved: %q, %q", tree[0].Children[0].Name, tree[0].Children[1].Name)
	}
	if tree[1].Name != "Laptops" || len(tree[1].Children) != 1 {
		t.Errorf("second root: got %q with %d children", tree[1].Name, len(tree[1].Children))
	}

	got := Flatten(tree)
	want := []string{"Smartphones", "Apple", "Samsung", "Laptops", "Dell"}
	if len(got) != len(want) {
		t.Fatalf("flatten: got %d items, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("flatten[%d]: got %q, want %q", i, got[i].Name, name)
		}
		if got[i].Children != nil {
			t.Errorf("flatten[%d]: children should be cleared", i)
		}
	}
}

func TestBuildTreeDropsOrphans(t *testing.T) {
	missing := uuid.New()
	flat := []models.Category{
		{ID: uuid.New(), Name: "Root"},
		{ID: uuid.New(), Name: "Orphan", ParentID: &missing, Level: 1},
	}
	tree := BuildTree(flat)
	if len(tree) != 1 || len(tree[0].Children) != 0 {
		t.Errorf("expected only the root, got %+v", tree)
	}
}
