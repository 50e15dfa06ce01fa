package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/infra/shopify"
	"shopnotes-app/internal/logger"
	"shopnotes-app/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const stateCookie = "shopify_oauth_state"

type TokenExchanger interface {
	AuthCodeURL(shop, state string) string
	Exchange(ctx context.Context, shop, code string) (token, scope string, err error)
}

type TokenSealer interface {
	Seal(plaintext string) (string, error)
}

type Handler struct {
	DB           *gorm.DB
	OAuth        TokenExchanger
	Tokens       TokenSealer
	APIKey       string
	APISecret    string
	SecureCookie bool
	Now          func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /auth/install?shop=
func (h *Handler) Install(c *gin.Context) {
	if err := validation.Var("shop", c.Query("shop"), "required,shopdomain"); err != nil {
		apperr.Respond(c, err)
		return
	}
	shop, _ := shops.NormalizeDomain(c.Query("shop"))

	state, err := randomState()
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to generate state", err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 300, "/auth", "", h.SecureCookie, true)
	c.Redirect(http.StatusFound, h.OAuth.AuthCodeURL(shop, state))
}

// GET /auth/callback?code=&shop=&state=&hmac=&timestamp=
func (h *Handler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithComponent("auth")

	if !shopify.VerifyQuery(c.Request.URL.Query(), h.APISecret) {
		apperr.Respond(c, apperr.Unauthorized("Invalid callback signature"))
		return
	}

	shop, err := shops.NormalizeDomain(c.Query("shop"))
	if err != nil {
		apperr.Respond(c, apperr.Validation("Invalid shop"))
		return
	}
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		apperr.Respond(c, apperr.Validation("Missing code/state"))
		return
	}
	cookieState, err := c.Cookie(stateCookie)
	if err != nil || cookieState != state {
		apperr.Respond(c, apperr.Validation("Invalid oauth state"))
		return
	}

	token, scope, err := h.OAuth.Exchange(ctx, shop, code)
	if err != nil {
		apperr.Respond(c, apperr.Upstream("Failed to exchange code", err))
		return
	}
	sealed, err := h.Tokens.Seal(token)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to store credentials", err))
		return
	}

	record, err := shops.EnsureShop(ctx, h.DB, shop)
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create shop", err))
		return
	}
	if err := shops.MarkInstalled(ctx, h.DB, record.ID, sealed, scope, h.now()); err != nil {
		apperr.Respond(c, apperr.Internal("Failed to store credentials", err))
		return
	}

	log.Info("app installed", "shop", shop, "scope", scope)
	c.SetCookie(stateCookie, "", -1, "/auth", "", h.SecureCookie, true)
	c.Redirect(http.StatusFound, shopify.ShopOrigin(shop)+"/admin/apps/"+h.APIKey)
}
