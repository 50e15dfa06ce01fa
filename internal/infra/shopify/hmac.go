package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifyWebhook checks X-Shopify-Hmac-Sha256: base64(HMAC-SHA256(body, secret)).
func VerifyWebhook(body []byte, header, secret string) bool {
	if header == "" || secret == "" {
		return false
	}
	got, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// SignWebhook produces the header value Shopify would send for body.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifyQuery checks the hex "hmac" parameter Shopify appends to OAuth and
// app-launch redirects. The message is every other parameter sorted by key
// and joined as k=v with "&".
func VerifyQuery(q url.Values, secret string) bool {
	got := q.Get("hmac")
	if got == "" || secret == "" {
		return false
	}
	want := SignQuery(q, secret)
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}

func SignQuery(q url.Values, secret string) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		if k == "hmac" || k == "signature" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.Join(q[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}
