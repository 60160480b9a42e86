package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"silosremeco/backend/internal/domain"
	"silosremeco/backend/internal/store"
)

// Option keys used by the catalog for the cone angle surcharges.
const (
	OptionCone45 = "45"
	OptionCone55 = "55"
)

type Store struct {
	db        *sql.DB
	companyID string
}

func New(ctx context.Context, databaseURL string, companyID string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(12)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, companyID: companyID}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const itemColumns = `id, name, COALESCE(image_url, ''), COALESCE(image_url_sm, ''), silo_type,
		COALESCE(description, ''), COALESCE(has_options, false), COALESCE(options, '{}'::jsonb)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (domain.CatalogItem, error) {
	var (
		item    domain.CatalogItem
		options []byte
	)
	if err := row.Scan(&item.ID, &item.Name, &item.ImageURL, &item.ImageURLSmall, &item.Category, &item.Description, &item.HasOptions, &options); err != nil {
		return domain.CatalogItem{}, err
	}
	if err := decodeJSON(options, &item.Options); err != nil {
		return domain.CatalogItem{}, fmt.Errorf("silo %q options: %w", item.Name, err)
	}
	return item, nil
}

func (s *Store) GetItemByName(ctx context.Context, name string) (*domain.CatalogItem, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM silos
		WHERE name = $1
	`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListItemsByCategory(ctx context.Context, category domain.Category) ([]domain.CatalogItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM silos
		WHERE silo_type = $1
		ORDER BY name
	`, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.CatalogItem, 0, 16)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	store.SortItems(items)
	return items, nil
}

func (s *Store) GetPreferences(ctx context.Context) (*domain.PricingPreferences, error) {
	var (
		prefs        domain.PricingPreferences
		feeder       []byte
		aerial       []byte
		cone45       float64
		cone55       float64
		fiberBaseFor []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT company_id,
			COALESCE(dollar_quote, 0)::float8,
			COALESCE(default_markup, 0)::float8,
			COALESCE(iva_percentage, 0)::float8,
			COALESCE(feeder_silos, '{}'::jsonb),
			COALESCE(airbase_silos, '{}'::jsonb),
			COALESCE(cone_base_45, 0)::float8,
			COALESCE(cone_base_55, 0)::float8,
			COALESCE(fiber_base_cost, 0)::float8,
			COALESCE(to_jsonb(has_fiber_base), '[]'::jsonb)
		FROM preferences_web
		WHERE company_id = $1
	`, s.companyID).Scan(
		&prefs.CompanyID,
		&prefs.ExchangeRate,
		&prefs.DefaultMarkupPercentage,
		&prefs.TaxPercentage,
		&feeder,
		&aerial,
		&cone45,
		&cone55,
		&prefs.FiberBaseCost,
		&fiberBaseFor,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	feederPrices := map[string]float64{}
	if err := decodeJSON(feeder, &feederPrices); err != nil {
		return nil, fmt.Errorf("feeder_silos: %w", err)
	}
	aerialPrices := map[string]float64{}
	if err := decodeJSON(aerial, &aerialPrices); err != nil {
		return nil, fmt.Errorf("airbase_silos: %w", err)
	}
	if err := decodeJSON(fiberBaseFor, &prefs.FiberBaseItems); err != nil {
		return nil, fmt.Errorf("has_fiber_base: %w", err)
	}

	prefs.PriceMaps = map[domain.Category]map[string]float64{
		domain.CategoryFeeder: feederPrices,
		domain.CategoryAerial: aerialPrices,
	}
	prefs.OptionSurcharges = map[string]float64{
		OptionCone45: cone45,
		OptionCone55: cone55,
	}
	return &prefs, nil
}

func decodeJSON(raw []byte, dest any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
