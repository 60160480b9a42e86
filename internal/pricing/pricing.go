package pricing

import (
	"errors"
	"math"

	"silosremeco/backend/internal/domain"
)

var (
	ErrNoPreferences   = errors.New("pricing preferences unavailable")
	ErrUnknownCategory = errors.New("unknown item category")
	ErrItemNotPriced   = errors.New("item not priced")
)

// Stage transforms a local-currency price using the preferences in force.
type Stage func(price float64, prefs *domain.PricingPreferences) float64

// Convert turns a reference-currency amount into local currency.
func Convert(price float64, prefs *domain.PricingPreferences) float64 {
	return price * prefs.ExchangeRate
}

// DeductTax reduces a tax-inclusive price to its net base.
func DeductTax(price float64, prefs *domain.PricingPreferences) float64 {
	return price * (100 - prefs.TaxPercentage) / 100
}

// ApplyMarkup adds the default markup. Zero or negative markup leaves the price as is.
func ApplyMarkup(price float64, prefs *domain.PricingPreferences) float64 {
	if prefs.DefaultMarkupPercentage > 0 {
		return price * (1 + prefs.DefaultMarkupPercentage/100)
	}
	return price
}

type Options struct {
	ApplyTax bool
}

type Calculator struct {
	stages []Stage
}

func New(opts Options) *Calculator {
	stages := []Stage{Convert}
	if opts.ApplyTax {
		stages = append(stages, DeductTax)
	}
	stages = append(stages, ApplyMarkup)
	return &Calculator{stages: stages}
}

// NewWithStages builds a calculator from an explicit stage list.
func NewWithStages(stages ...Stage) *Calculator {
	return &Calculator{stages: append([]Stage(nil), stages...)}
}

func (c *Calculator) run(basePrice float64, prefs *domain.PricingPreferences) float64 {
	price := basePrice
	for _, stage := range c.stages {
		price = stage(price, prefs)
	}
	return price
}

// FinalPrice returns the display price for itemName in local currency. It never
// fails: missing preferences or an unrecognized category give 0, and a name
// absent from a recognized category's price map gives NaN.
func (c *Calculator) FinalPrice(itemName string, prefs *domain.PricingPreferences, item domain.CatalogItem) float64 {
	price, _ := c.Quote(itemName, prefs, item)
	return price
}

// Quote is FinalPrice with the reason behind a degenerate result.
func (c *Calculator) Quote(itemName string, prefs *domain.PricingPreferences, item domain.CatalogItem) (float64, error) {
	if prefs == nil {
		return 0, ErrNoPreferences
	}
	category, ok := domain.ParseCategory(item.Category)
	if !ok {
		return 0, ErrUnknownCategory
	}
	basePrice, ok := prefs.PriceMaps[category][itemName]
	if !ok {
		return math.NaN(), ErrItemNotPriced
	}
	return c.run(basePrice, prefs), nil
}

// AccessoryPrice prices the fiber base add-on through the same stages as items.
func (c *Calculator) AccessoryPrice(prefs *domain.PricingPreferences) float64 {
	if prefs == nil {
		return 0
	}
	return c.run(prefs.FiberBaseCost, prefs)
}

// OptionPrice applies the surcharge configured for optionKey to basePrice.
func OptionPrice(basePrice float64, optionKey string, prefs *domain.PricingPreferences) float64 {
	if prefs == nil {
		return 0
	}
	surcharge, ok := prefs.OptionSurcharges[optionKey]
	if !ok {
		return math.NaN()
	}
	return basePrice * (1 + surcharge/100)
}

// Available reports whether price can be shown to a customer.
func Available(price float64) bool {
	return !math.IsNaN(price) && !math.IsInf(price, 0) && price > 0
}
