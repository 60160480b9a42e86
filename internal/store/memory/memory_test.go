package memory

import (
	"context"
	"errors"
	"testing"

	"silosremeco/backend/internal/domain"
	"silosremeco/backend/internal/store"
)

func TestSeededListingIsSortedNumerically(t *testing.T) {
	s := NewSeeded()

	items, err := s.ListItemsByCategory(context.Background(), domain.CategoryAerial)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"8", "12", "16", "24", "30"}
	if len(items) != len(want) {
		t.Fatalf("expected %d aerial items, got %d", len(want), len(items))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, items[i].Name)
		}
	}
}

func TestGetItemByNameNotFound(t *testing.T) {
	s := NewSeeded()

	_, err := s.GetItemByName(context.Background(), "does-not-exist")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeededCatalogIsFullyPriced(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	prefs, err := s.GetPreferences(ctx)
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}
	for _, category := range domain.Categories() {
		items, err := s.ListItemsByCategory(ctx, category)
		if err != nil {
			t.Fatalf("list %s: %v", category, err)
		}
		for _, item := range items {
			if _, ok := prefs.PriceMaps[category][item.Name]; !ok {
				t.Fatalf("item %s/%s has no base price", category, item.Name)
			}
		}
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	item, err := s.GetItemByName(ctx, "8")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	item.Options["45"] = "mutated"

	prefs, _ := s.GetPreferences(ctx)
	prefs.PriceMaps[domain.CategoryAerial]["8"] = 1

	again, _ := s.GetItemByName(ctx, "8")
	if again.Options["45"] == "mutated" {
		t.Fatalf("item options leaked through returned copy")
	}
	fresh, _ := s.GetPreferences(ctx)
	if fresh.PriceMaps[domain.CategoryAerial]["8"] == 1 {
		t.Fatalf("price map leaked through returned copy")
	}
}

func TestMissingPreferences(t *testing.T) {
	s := New(nil, nil)

	_, err := s.GetPreferences(context.Background())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
