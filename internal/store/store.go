package store

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"silosremeco/backend/internal/domain"
)

var ErrNotFound = errors.New("not found")

type Repository interface {
	GetItemByName(ctx context.Context, name string) (*domain.CatalogItem, error)
	ListItemsByCategory(ctx context.Context, category domain.Category) ([]domain.CatalogItem, error)
	GetPreferences(ctx context.Context) (*domain.PricingPreferences, error)
}

// SortItems orders items by name: when both names start with an integer they
// compare numerically, otherwise lexicographically.
func SortItems(items []domain.CatalogItem) {
	slices.SortStableFunc(items, func(a, b domain.CatalogItem) int {
		return CompareNames(a.Name, b.Name)
	})
}

func CompareNames(a, b string) int {
	numA, okA := leadingInt(a)
	numB, okB := leadingInt(b)
	if okA && okB {
		switch {
		case numA < numB:
			return -1
		case numA > numB:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// leadingInt reads an optionally signed integer prefix, ignoring leading
// whitespace, the way catalog names like "12 toneladas" are entered.
func leadingInt(s string) (int64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
