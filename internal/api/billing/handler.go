package billing

import (
	"context"
	"errors"
	"time"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/infra/shopify"

	"gorm.io/gorm"
)

// ChargeAPI is the slice of the Shopify admin API billing needs.
type ChargeAPI interface {
	CreateRecurringCharge(ctx context.Context, shop, token string, charge shopify.NewCharge) (*shopify.RecurringCharge, error)
	GetRecurringCharge(ctx context.Context, shop, token string, id int64) (*shopify.RecurringCharge, error)
	ActivateRecurringCharge(ctx context.Context, shop, token string, id int64) (*shopify.RecurringCharge, error)
	CancelRecurringCharge(ctx context.Context, shop, token string, id int64) error
}

type TokenOpener interface {
	Open(sealed string) (string, error)
}

type Plan struct {
	Name      string
	Price     float64
	TrialDays int
	Test      bool
}

type Handler struct {
	DB      *gorm.DB
	Shopify ChargeAPI
	Tokens  TokenOpener
	Plan    Plan
	AppURL  string
	APIKey  string
	Now     func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var errNotInstalled = errors.New("shop has no access token")

func (h *Handler) accessToken(shop *shops.Shop) (string, error) {
	if shop.AccessToken == nil || *shop.AccessToken == "" {
		return "", apperr.Internal("Shop is not installed", errNotInstalled)
	}
	token, err := h.Tokens.Open(*shop.AccessToken)
	if err != nil {
		return "", apperr.Internal("Failed to read shop credentials", err)
	}
	return token, nil
}

func (h *Handler) loadShop(ctx context.Context, domain string) (*shops.Shop, error) {
	if domain == "" {
		return nil, apperr.Unauthorized("Missing session")
	}
	shop, err := shops.FindByDomain(ctx, h.DB, domain)
	if errors.Is(err, shops.ErrShopNotFound) {
		return nil, apperr.NotFound("Shop not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load shop", err)
	}
	return shop, nil
}
