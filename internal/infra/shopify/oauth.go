package shopify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// OAuth drives the offline-token install flow for a shop.
type OAuth struct {
	APIKey      string
	APISecret   string
	Scopes      []string
	RedirectURL string
	HTTP        *http.Client
	BaseURL     func(shop string) string
}

func NewOAuth(apiKey, apiSecret, scopes, redirectURL string) *OAuth {
	return &OAuth{
		APIKey:      apiKey,
		APISecret:   apiSecret,
		Scopes:      splitScopes(scopes),
		RedirectURL: redirectURL,
		BaseURL:     ShopOrigin,
	}
}

func splitScopes(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (o *OAuth) config(shop string) *oauth2.Config {
	origin := o.BaseURL(shop)
	return &oauth2.Config{
		ClientID:     o.APIKey,
		ClientSecret: o.APISecret,
		Scopes:       o.Scopes,
		RedirectURL:  o.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   origin + "/admin/oauth/authorize",
			TokenURL:  origin + "/admin/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (o *OAuth) AuthCodeURL(shop, state string) string {
	return o.config(shop).AuthCodeURL(state)
}

// Exchange trades the callback code for an offline access token and the
// granted scope.
func (o *OAuth) Exchange(ctx context.Context, shop, code string) (string, string, error) {
	if o.HTTP != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.HTTP)
	}
	tok, err := o.config(shop).Exchange(ctx, code)
	if err != nil {
		return "", "", fmt.Errorf("shopify oauth exchange: %w", err)
	}
	scope, _ := tok.Extra("scope").(string)
	return tok.AccessToken, scope, nil
}
