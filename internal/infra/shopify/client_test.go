package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient("2024-10")
	c.HTTP = srv.Client()
	c.BaseURL = func(string) string { return srv.URL }
	return c
}

func TestCancelRecurringCharge_AcceptsOKAndNoContent(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		var gotPath, gotToken, gotMethod string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotToken = r.Header.Get("X-Shopify-Access-Token")
			w.WriteHeader(status)
		})

		err := c.CancelRecurringCharge(context.Background(), "demo.myshopify.com", "shpat_x", 12345)
		require.NoError(t, err)
		assert.Equal(t, http.MethodDelete, gotMethod)
		assert.Equal(t, "/admin/api/2024-10/recurring_application_charges/12345.json", gotPath)
		assert.Equal(t, "shpat_x", gotToken)
	}
}

func TestCancelRecurringCharge_OtherStatusIsError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":"nope"}`))
	})

	err := c.CancelRecurringCharge(context.Background(), "demo.myshopify.com", "shpat_x", 1)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
	assert.Contains(t, se.Body, "nope")
}

func TestCreateRecurringCharge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]NewCharge
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Pro", body["recurring_application_charge"].Name)
		assert.Equal(t, 7, body["recurring_application_charge"].TrialDays)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"recurring_application_charge":{"id":777,"name":"Pro","price":"4.99","status":"pending","confirmation_url":"https://demo.myshopify.com/admin/charges/777/confirm"}}`))
	})

	ch, err := c.CreateRecurringCharge(context.Background(), "demo.myshopify.com", "tok", NewCharge{
		Name: "Pro", Price: "4.99", ReturnURL: "https://app.example/api/billing/confirm", TrialDays: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(777), ch.ID)
	assert.Equal(t, "pending", ch.Status)
	assert.Contains(t, ch.ConfirmationURL, "/charges/777/confirm")
}

func TestGetRecurringCharge_DecodesDates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recurring_application_charge":{"id":5,"status":"active","trial_ends_on":"2024-01-08","billing_on":"2024-02-07T00:00:00Z"}}`))
	})

	ch, err := c.GetRecurringCharge(context.Background(), "demo.myshopify.com", "tok", 5)
	require.NoError(t, err)
	require.NotNil(t, ParseDate(ch.TrialEndsOn))
	assert.Equal(t, "2024-01-08", ParseDate(ch.TrialEndsOn).Format("2006-01-02"))
	assert.Equal(t, 7, ParseDate(ch.BillingOn).Day())
	assert.Nil(t, ParseDate(nil))
}

func TestNormalizeChargeStatus(t *testing.T) {
	assert.Equal(t, "active", NormalizeChargeStatus("ACTIVE"))
	assert.Equal(t, "canceled", NormalizeChargeStatus("cancelled"))
	assert.Equal(t, "canceled", NormalizeChargeStatus("EXPIRED"))
	assert.Equal(t, "pending", NormalizeChargeStatus(" pending "))
	assert.Equal(t, "none", NormalizeChargeStatus(""))
	assert.True(t, IsTerminated("FROZEN"))
	assert.False(t, IsTerminated("accepted"))
}
