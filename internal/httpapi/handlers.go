package httpapi

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"silosremeco/backend/internal/contact"
	"silosremeco/backend/internal/domain"
	"silosremeco/backend/internal/pricing"
	"silosremeco/backend/internal/service"
	"silosremeco/backend/internal/sitemap"
)

const contactFailureMessage = "Error al enviar el mensaje."

type optionResponse struct {
	Key          string  `json:"key"`
	Detail       string  `json:"detail"`
	Price        float64 `json:"price"`
	PriceDisplay string  `json:"price_display"`
}

type itemResponse struct {
	Item             *domain.CatalogItem `json:"item"`
	Price            *float64            `json:"price"`
	PriceDisplay     string              `json:"price_display"`
	PriceAvailable   bool                `json:"price_available"`
	Options          []optionResponse    `json:"options"`
	FiberBasePrice   *float64            `json:"fiber_base_price,omitempty"`
	FiberBaseDisplay string              `json:"fiber_base_display,omitempty"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	category, ok := domain.ParseCategory(r.PathValue("category"))
	if !ok {
		a.writeError(w, http.StatusNotFound, service.ErrUnknownCategory)
		return
	}

	items, err := a.catalog.ListCategory(r.Context(), string(category))
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if items == nil {
		items = []domain.CatalogItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "items": items})
}

func (a *API) handleItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	category, ok := domain.ParseCategory(r.PathValue("category"))
	if !ok {
		a.writeError(w, http.StatusNotFound, service.ErrUnknownCategory)
		return
	}
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		a.writeError(w, http.StatusBadRequest, errors.New("item name required"))
		return
	}

	view := a.catalog.PricingView(r.Context(), name)
	if view.NotFound {
		a.writeError(w, http.StatusNotFound, errors.New("item not found"))
		return
	}
	if view.Item != nil {
		if itemCategory, ok := domain.ParseCategory(view.Item.Category); !ok || itemCategory != category {
			a.writeError(w, http.StatusNotFound, errors.New("item not found"))
			return
		}
	}

	writeJSON(w, http.StatusOK, a.itemResponse(view))
}

// itemResponse never carries a non-finite number: JSON cannot encode NaN, so
// such prices become null and render as the zero display.
func (a *API) itemResponse(view domain.PricingView) itemResponse {
	resp := itemResponse{Item: view.Item, Options: []optionResponse{}}

	price := math.NaN()
	if view.Price != nil {
		price = *view.Price
	}
	if !math.IsNaN(price) && !math.IsInf(price, 0) {
		resp.Price = &price
	}
	resp.PriceDisplay = a.formatter.Format(price)
	resp.PriceAvailable = pricing.Available(price)

	for _, option := range view.Options {
		resp.Options = append(resp.Options, optionResponse{
			Key:          option.Key,
			Detail:       option.Detail,
			Price:        option.Price,
			PriceDisplay: a.formatter.Format(option.Price),
		})
	}

	if view.FiberBase != nil {
		fiber := *view.FiberBase
		resp.FiberBasePrice = &fiber
		resp.FiberBaseDisplay = a.formatter.Format(fiber)
	}
	return resp
}

func (a *API) handleSitemap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	body, err := sitemap.Build(r.Context(), a.siteURL, a.catalog, a.log)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (a *API) handleContactToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	resp, err := a.contact.IssueToken()
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.contactLimiter.Allow(clientKey(r)) {
		a.writeError(w, http.StatusTooManyRequests, errTooManyRequests)
		return
	}

	req, err := readContactRequest(r)
	if err != nil {
		a.log.WithError(err).Info("contact body rejected")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": contactFailureMessage})
		return
	}

	if _, err := a.contact.Submit(r.Context(), req, clientKey(r)); err != nil {
		payload := map[string]any{"error": contactFailureMessage}
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			payload["fields"] = verr.Fields
		}
		writeJSON(w, http.StatusBadRequest, payload)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func readContactRequest(r *http.Request) (domain.ContactRequest, error) {
	var req domain.ContactRequest
	contentType := strings.ToLower(r.Header.Get("Content-Type"))

	if strings.Contains(contentType, "application/json") {
		err := decodeJSON(r, &req)
		return req, err
	}

	if strings.Contains(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return req, err
		}
	} else if err := r.ParseForm(); err != nil {
		return req, err
	}

	req.Name = r.PostFormValue("nombre")
	req.Email = r.PostFormValue("email")
	req.Phone = r.PostFormValue("telefono")
	req.Message = r.PostFormValue("mensaje")
	req.RecaptchaToken = r.PostFormValue("recaptchaToken")
	req.FormToken = r.PostFormValue("formToken")
	return req, nil
}
