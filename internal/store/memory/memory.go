package memory

import (
	"context"
	"maps"
	"strings"
	"sync"

	"silosremeco/backend/internal/domain"
	"silosremeco/backend/internal/store"
)

type Store struct {
	mu          sync.RWMutex
	itemsByName map[string]domain.CatalogItem
	preferences *domain.PricingPreferences
}

func New(items []domain.CatalogItem, prefs *domain.PricingPreferences) *Store {
	byName := make(map[string]domain.CatalogItem, len(items))
	for _, item := range items {
		byName[item.Name] = copyItem(item)
	}
	return &Store{itemsByName: byName, preferences: copyPreferences(prefs)}
}

// NewSeeded returns a store with the demo catalog used when no database is configured.
func NewSeeded() *Store {
	cone := map[string]string{
		"45": "Cono inferior a 45°",
		"55": "Cono inferior a 55°",
	}

	items := []domain.CatalogItem{
		{ID: 1, Name: "8", Category: string(domain.CategoryAerial), Description: "Silo aéreo de 8 toneladas", ImageURL: "/img/silos/aereo-8.webp", ImageURLSmall: "/img/silos/aereo-8-sm.webp", HasOptions: true, Options: cone},
		{ID: 2, Name: "12", Category: string(domain.CategoryAerial), Description: "Silo aéreo de 12 toneladas", ImageURL: "/img/silos/aereo-12.webp", ImageURLSmall: "/img/silos/aereo-12-sm.webp", HasOptions: true, Options: cone},
		{ID: 3, Name: "16", Category: string(domain.CategoryAerial), Description: "Silo aéreo de 16 toneladas", ImageURL: "/img/silos/aereo-16.webp", ImageURLSmall: "/img/silos/aereo-16-sm.webp", HasOptions: true, Options: cone},
		{ID: 4, Name: "24", Category: string(domain.CategoryAerial), Description: "Silo aéreo de 24 toneladas", ImageURL: "/img/silos/aereo-24.webp", ImageURLSmall: "/img/silos/aereo-24-sm.webp", HasOptions: true, Options: cone},
		{ID: 5, Name: "30", Category: string(domain.CategoryAerial), Description: "Silo aéreo de 30 toneladas", ImageURL: "/img/silos/aereo-30.webp", ImageURLSmall: "/img/silos/aereo-30-sm.webp"},
		{ID: 6, Name: "4", Category: string(domain.CategoryFeeder), Description: "Comedero tolva de 4 toneladas", ImageURL: "/img/silos/comedero-4.webp", ImageURLSmall: "/img/silos/comedero-4-sm.webp"},
		{ID: 7, Name: "6", Category: string(domain.CategoryFeeder), Description: "Comedero tolva de 6 toneladas", ImageURL: "/img/silos/comedero-6.webp", ImageURLSmall: "/img/silos/comedero-6-sm.webp"},
		{ID: 8, Name: "10", Category: string(domain.CategoryFeeder), Description: "Comedero tolva de 10 toneladas", ImageURL: "/img/silos/comedero-10.webp", ImageURLSmall: "/img/silos/comedero-10-sm.webp"},
		{ID: 9, Name: "Autoconsumo", Category: string(domain.CategoryFeeder), Description: "Comedero de autoconsumo para terneros", ImageURL: "/img/silos/autoconsumo.webp", ImageURLSmall: "/img/silos/autoconsumo-sm.webp"},
	}

	prefs := &domain.PricingPreferences{
		CompanyID: "remeco",
		PriceMaps: map[domain.Category]map[string]float64{
			domain.CategoryAerial: {"8": 3150, "12": 4280, "16": 5390, "24": 7460, "30": 9120},
			domain.CategoryFeeder: {"4": 1850, "6": 2340, "10": 3270, "Autoconsumo": 1420},
		},
		ExchangeRate:            1150,
		TaxPercentage:           21,
		DefaultMarkupPercentage: 20,
		OptionSurcharges:        map[string]float64{"45": 0, "55": 8},
		FiberBaseCost:           380,
		FiberBaseItems:          []string{"8", "12", "16"},
	}

	return New(items, prefs)
}

func (s *Store) GetItemByName(_ context.Context, name string) (*domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.itemsByName[name]
	if !exists {
		return nil, store.ErrNotFound
	}
	copied := copyItem(item)
	return &copied, nil
}

func (s *Store) ListItemsByCategory(_ context.Context, category domain.Category) ([]domain.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.CatalogItem, 0, len(s.itemsByName))
	for _, item := range s.itemsByName {
		if strings.EqualFold(item.Category, string(category)) {
			items = append(items, copyItem(item))
		}
	}
	store.SortItems(items)
	return items, nil
}

func (s *Store) GetPreferences(_ context.Context) (*domain.PricingPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.preferences == nil {
		return nil, store.ErrNotFound
	}
	return copyPreferences(s.preferences), nil
}

// PutItem inserts or replaces an item, standing in for an administrative edit.
func (s *Store) PutItem(item domain.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.itemsByName[item.Name] = copyItem(item)
}

// SetPreferences overwrites the preferences record wholesale.
func (s *Store) SetPreferences(prefs *domain.PricingPreferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences = copyPreferences(prefs)
}

func copyItem(item domain.CatalogItem) domain.CatalogItem {
	item.Options = maps.Clone(item.Options)
	return item
}

func copyPreferences(prefs *domain.PricingPreferences) *domain.PricingPreferences {
	if prefs == nil {
		return nil
	}
	copied := *prefs
	copied.PriceMaps = make(map[domain.Category]map[string]float64, len(prefs.PriceMaps))
	for category, prices := range prefs.PriceMaps {
		copied.PriceMaps[category] = maps.Clone(prices)
	}
	copied.OptionSurcharges = maps.Clone(prefs.OptionSurcharges)
	copied.FiberBaseItems = append([]string(nil), prefs.FiberBaseItems...)
	return &copied
}
