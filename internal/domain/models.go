package domain

import "strings"

type Category string

const (
	CategoryAerial Category = "aereos"
	CategoryFeeder Category = "comederos"
)

var categoryAliases = map[string]Category{
	"aereos":    CategoryAerial,
	"aerial":    CategoryAerial,
	"comederos": CategoryFeeder,
	"feeder":    CategoryFeeder,
}

// Categories lists the recognized item classes in display order.
func Categories() []Category {
	return []Category{CategoryAerial, CategoryFeeder}
}

// ParseCategory maps a stored silo_type (or its English alias) onto the closed
// category set.
func ParseCategory(raw string) (Category, bool) {
	category, ok := categoryAliases[strings.ToLower(strings.TrimSpace(raw))]
	return category, ok
}

type CatalogItem struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Category      string            `json:"silo_type"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"image_url,omitempty"`
	ImageURLSmall string            `json:"image_url_sm,omitempty"`
	HasOptions    bool              `json:"has_options"`
	Options       map[string]string `json:"options"`
}

// SelectableOptions returns the option map only when the flag and the map agree.
func (i CatalogItem) SelectableOptions() map[string]string {
	if !i.HasOptions || len(i.Options) == 0 {
		return nil
	}
	return i.Options
}

type PricingPreferences struct {
	CompanyID               string                          `json:"company_id"`
	PriceMaps               map[Category]map[string]float64 `json:"price_maps"`
	ExchangeRate            float64                         `json:"dollar_quote"`
	TaxPercentage           float64                         `json:"iva_percentage"`
	DefaultMarkupPercentage float64                         `json:"default_markup"`
	OptionSurcharges        map[string]float64              `json:"option_surcharges"`
	FiberBaseCost           float64                         `json:"fiber_base_cost"`
	FiberBaseItems          []string                        `json:"has_fiber_base"`
}

func (p *PricingPreferences) OffersFiberBase(itemName string) bool {
	if p == nil || p.FiberBaseCost <= 0 {
		return false
	}
	for _, name := range p.FiberBaseItems {
		if name == itemName {
			return true
		}
	}
	return false
}

type OptionQuote struct {
	Key    string  `json:"key"`
	Detail string  `json:"detail"`
	Price  float64 `json:"price"`
}

// PricingView is what the catalog facade hands to the rendering layer. A nil
// Price, or one that is not positive, means "price unavailable".
type PricingView struct {
	Price       *float64            `json:"price"`
	Item        *CatalogItem        `json:"item"`
	Preferences *PricingPreferences `json:"preferences"`
	NotFound    bool                `json:"-"`
	Options     []OptionQuote       `json:"options,omitempty"`
	FiberBase   *float64            `json:"fiber_base_price,omitempty"`
}

type ContactRequest struct {
	Name           string `json:"nombre" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"telefono" validate:"required"`
	Message        string `json:"mensaje" validate:"required"`
	RecaptchaToken string `json:"recaptchaToken" validate:"required"`
	FormToken      string `json:"formToken" validate:"required"`
}

type ContactTokenResponse struct {
	FormToken string `json:"form_token"`
	ExpiresAt string `json:"expires_at"`
}
