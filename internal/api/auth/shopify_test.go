package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"shopnotes-app/database"
	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/infra/secrets"
	"shopnotes-app/internal/infra/shopify"
	"shopnotes-app/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	apiKey    = "test-key"
	apiSecret = "test-secret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeOAuth struct {
	token string
	err   error
}

func (f *fakeOAuth) AuthCodeURL(shop, state string) string {
	return "https://" + shop + "/admin/oauth/authorize?state=" + state
}

func (f *fakeOAuth) Exchange(_ context.Context, _, code string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return f.token, "read_customers", nil
}

func setup(t *testing.T, oauth *fakeOAuth) (*gorm.DB, *gin.Engine, *secrets.Box) {
	t.Helper()
	db := testutil.NewDB(t, database.Models()...)
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	box, err := secrets.NewBox(key)
	require.NoError(t, err)

	h := &Handler{DB: db, OAuth: oauth, Tokens: box, APIKey: apiKey, APISecret: apiSecret}
	r := gin.New()
	r.GET("/auth/install", h.Install)
	r.GET("/auth/callback", h.Callback)
	return db, r, box
}

func signedCallback(shop, state string) string {
	q := url.Values{}
	q.Set("shop", shop)
	q.Set("code", "abc")
	q.Set("state", state)
	q.Set("timestamp", "1700000000")
	q.Set("hmac", shopify.SignQuery(q, apiSecret))
	return "/auth/callback?" + q.Encode()
}

func TestInstall_RedirectsWithState(t *testing.T) {
	_, r, _ := setup(t, &fakeOAuth{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/install?shop=Demo.myshopify.com", nil))

	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "demo.myshopify.com", loc.Host)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stateCookie, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, loc.Query().Get("state"))
}

func TestInstall_RejectsBadShop(t *testing.T) {
	_, r, _ := setup(t, &fakeOAuth{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/install?shop=evil.com", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_StoresEncryptedToken(t *testing.T) {
	db, r, box := setup(t, &fakeOAuth{token: "shpat_new"})

	req := httptest.NewRequest(http.MethodGet, signedCallback("demo.myshopify.com", "st"), nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "st"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://demo.myshopify.com/admin/apps/test-key", w.Header().Get("Location"))

	shop, err := shops.FindByDomain(context.Background(), db, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, plans.Free, shop.Plan)
	assert.Equal(t, "read_customers", shop.Scope)
	require.NotNil(t, shop.AccessToken)
	assert.NotEqual(t, "shpat_new", *shop.AccessToken)
	plain, err := box.Open(*shop.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "shpat_new", plain)
	require.NotNil(t, shop.InstalledAt)
	assert.WithinDuration(t, time.Now(), *shop.InstalledAt, time.Minute)
}

func TestCallback_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		cookie string
		oauth  *fakeOAuth
		code   int
	}{
		{"bad hmac", "/auth/callback?shop=demo.myshopify.com&code=abc&state=st&hmac=00", "st", &fakeOAuth{}, http.StatusUnauthorized},
		{"state mismatch", signedCallback("demo.myshopify.com", "st"), "other", &fakeOAuth{}, http.StatusBadRequest},
		{"exchange fails", signedCallback("demo.myshopify.com", "st"), "st", &fakeOAuth{err: errors.New("boom")}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, r, _ := setup(t, tt.oauth)
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req.AddCookie(&http.Cookie{Name: stateCookie, Value: tt.cookie})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			var n int64
			db.Model(&shops.Shop{}).Count(&n)
			assert.Zero(t, n)
		})
	}
}
