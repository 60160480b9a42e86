//go:build integration

package postgres

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"silosremeco/backend/internal/domain"
	"silosremeco/backend/internal/store"
)

const testSchema = `
CREATE TABLE silos (
	id bigint PRIMARY KEY,
	name text NOT NULL UNIQUE,
	image_url text,
	image_url_sm text,
	silo_type text NOT NULL,
	description text,
	has_options boolean DEFAULT false,
	options jsonb
);

CREATE TABLE preferences_web (
	company_id text PRIMARY KEY,
	dollar_quote numeric,
	default_markup numeric,
	iva_percentage numeric,
	feeder_silos jsonb,
	airbase_silos jsonb,
	cone_base_45 numeric,
	cone_base_55 numeric,
	fiber_base_cost numeric,
	has_fiber_base text[]
);

INSERT INTO silos (id, name, silo_type, description, has_options, options) VALUES
	(1, '12', 'aereos', 'Silo aéreo 12 t', true, '{"45": "Cono 45°", "55": "Cono 55°"}'),
	(2, '8', 'aereos', 'Silo aéreo 8 t', false, NULL),
	(3, '100', 'aereos', 'Silo aéreo 100 t', false, NULL),
	(4, '6', 'comederos', 'Comedero 6 t', false, NULL);

INSERT INTO preferences_web VALUES
	('remeco', 850, 20, 21, '{"6": 100}', '{"8": 200, "12": 300, "100": 900}', 5, 10, 40, ARRAY['8','12']);
`

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("silos"),
		tcpostgres.WithUsername("silos"),
		tcpostgres.WithPassword("silos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	s, err := New(ctx, connStr, "remeco")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if _, err := s.db.ExecContext(ctx, testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	t.Run("item by name", func(t *testing.T) {
		item, err := s.GetItemByName(ctx, "12")
		if err != nil {
			t.Fatalf("get item: %v", err)
		}
		if item.Category != "aereos" || !item.HasOptions {
			t.Fatalf("unexpected item %+v", item)
		}
		if got := item.Options["55"]; got != "Cono 55°" {
			t.Fatalf("expected option 55 detail, got %q", got)
		}

		if _, err := s.GetItemByName(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("listing is numeric-aware", func(t *testing.T) {
		items, err := s.ListItemsByCategory(ctx, domain.CategoryAerial)
		if err != nil {
			t.Fatalf("list items: %v", err)
		}
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		got := []string{items[0].Name, items[1].Name, items[2].Name}
		if want := []string{"8", "12", "100"}; !slices.Equal(got, want) {
			t.Fatalf("expected order %v, got %v", want, got)
		}
		if len(items[0].Options) != 0 {
			t.Fatalf("expected no options for 8, got %v", items[0].Options)
		}
	})

	t.Run("preferences", func(t *testing.T) {
		prefs, err := s.GetPreferences(ctx)
		if err != nil {
			t.Fatalf("get preferences: %v", err)
		}
		if prefs.CompanyID != "remeco" {
			t.Fatalf("unexpected company %q", prefs.CompanyID)
		}
		if prefs.ExchangeRate != 850 || prefs.TaxPercentage != 21 || prefs.DefaultMarkupPercentage != 20 {
			t.Fatalf("unexpected scalars %+v", prefs)
		}
		if prefs.PriceMaps[domain.CategoryFeeder]["6"] != 100 || prefs.PriceMaps[domain.CategoryAerial]["100"] != 900 {
			t.Fatalf("unexpected price maps %v", prefs.PriceMaps)
		}
		if got := prefs.OptionSurcharges[OptionCone55]; got != 10 {
			t.Fatalf("expected cone 55 surcharge 10, got %v", got)
		}
		if want := []string{"8", "12"}; !slices.Equal(prefs.FiberBaseItems, want) {
			t.Fatalf("expected fiber base items %v, got %v", want, prefs.FiberBaseItems)
		}
	})

	t.Run("unknown company", func(t *testing.T) {
		other := &Store{db: s.db, companyID: "nobody"}
		if _, err := other.GetPreferences(ctx); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
