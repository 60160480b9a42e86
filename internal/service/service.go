package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"silosremeco/backend/internal/cache"
	"silosremeco/backend/internal/domain"
	"silosremeco/backend/internal/logger"
	"silosremeco/backend/internal/pricing"
	"silosremeco/backend/internal/store"
)

var ErrUnknownCategory = errors.New("unknown category")

type PreferencesProvider interface {
	GetPreferences(ctx context.Context) (*domain.PricingPreferences, error)
}

type Option func(*Service)

func WithCatalogCache(c cache.CatalogCache, ttl time.Duration) Option {
	return func(s *Service) {
		if c != nil {
			s.catalogCache = c
		}
		if ttl > 0 {
			s.catalogTTL = ttl
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

type Service struct {
	repo         store.Repository
	preferences  PreferencesProvider
	calculator   *pricing.Calculator
	catalogCache cache.CatalogCache
	catalogTTL   time.Duration
	log          logrus.FieldLogger
}

func New(repo store.Repository, preferences PreferencesProvider, calculator *pricing.Calculator, opts ...Option) *Service {
	if preferences == nil {
		preferences = repo
	}
	if calculator == nil {
		calculator = pricing.New(pricing.Options{ApplyTax: true})
	}

	s := &Service{
		repo:         repo,
		preferences:  preferences,
		calculator:   calculator,
		catalogCache: cache.NoopCatalogCache{},
		catalogTTL:   5 * time.Minute,
		log:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "service")
	return s
}

func (s *Service) Calculator() *pricing.Calculator {
	return s.calculator
}

func (s *Service) Categories() []domain.Category {
	return domain.Categories()
}

// PricingView fetches the item and the preferences in force concurrently and
// prices the item. It never fails: any fetch error is logged and yields an
// empty view.
func (s *Service) PricingView(ctx context.Context, itemName string) domain.PricingView {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return domain.PricingView{}
	}

	var (
		item    *domain.CatalogItem
		prefs   *domain.PricingPreferences
		itemErr error
		g       errgroup.Group
	)
	g.Go(func() error {
		item, itemErr = s.repo.GetItemByName(ctx, itemName)
		if itemErr != nil {
			return fmt.Errorf("item lookup: %w", itemErr)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		prefs, err = s.preferences.GetPreferences(ctx)
		if err != nil {
			return fmt.Errorf("preferences lookup: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		notFound := errors.Is(itemErr, store.ErrNotFound)
		entry := s.log.WithField("item", itemName).WithError(err)
		if notFound {
			entry.Info("catalog item not found")
		} else {
			entry.Warn("pricing view degraded")
		}
		return domain.PricingView{NotFound: notFound}
	}

	view := domain.PricingView{Item: item, Preferences: prefs}
	if item == nil || prefs == nil {
		return view
	}

	price := s.calculator.FinalPrice(itemName, prefs, *item)
	view.Price = &price
	if !pricing.Available(price) {
		s.log.WithFields(logrus.Fields{"item": itemName, "category": item.Category}).Warn("item has no displayable price")
		return view
	}

	view.Options = s.optionQuotes(price, *item, prefs)
	if prefs.OffersFiberBase(item.Name) {
		if fiber := s.calculator.AccessoryPrice(prefs); pricing.Available(fiber) {
			view.FiberBase = &fiber
		}
	}
	return view
}

func (s *Service) optionQuotes(price float64, item domain.CatalogItem, prefs *domain.PricingPreferences) []domain.OptionQuote {
	options := item.SelectableOptions()
	if len(options) == 0 {
		return nil
	}

	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, store.CompareNames)

	quotes := make([]domain.OptionQuote, 0, len(keys))
	for _, key := range keys {
		optionPrice := pricing.OptionPrice(price, key, prefs)
		if !pricing.Available(optionPrice) {
			continue
		}
		quotes = append(quotes, domain.OptionQuote{Key: key, Detail: options[key], Price: optionPrice})
	}
	return quotes
}

// ListCategory returns the items of a category sorted for display.
func (s *Service) ListCategory(ctx context.Context, rawCategory string) ([]domain.CatalogItem, error) {
	category, ok := domain.ParseCategory(rawCategory)
	if !ok {
		return nil, ErrUnknownCategory
	}

	cached, ok, err := s.catalogCache.Get(ctx, category)
	if err != nil {
		s.log.WithField("category", category).WithError(err).Warn("catalog cache read failed")
	} else if ok {
		return cached, nil
	}

	items, err := s.repo.ListItemsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", category, err)
	}

	if err := s.catalogCache.Set(ctx, category, items, s.catalogTTL); err != nil {
		s.log.WithField("category", category).WithError(err).Warn("catalog cache write failed")
	}
	return items, nil
}
