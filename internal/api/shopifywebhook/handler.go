package shopifywebhook

import (
	"errors"
	"io"
	"net/http"
	"time"

	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/infra/cache"
	"shopnotes-app/internal/infra/shopify"
	"shopnotes-app/internal/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	TopicAppUninstalled      = "app/uninstalled"
	TopicSubscriptionsUpdate = "app_subscriptions/update"
	TopicShopRedact          = "shop/redact"
	TopicCustomersRedact     = "customers/redact"
	TopicCustomersDataReq    = "customers/data_request"

	maxBodyBytes = 1 << 20
)

type Handler struct {
	DB     *gorm.DB
	Secret string
	Dedupe cache.Deduper
	Now    func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Receive verifies and dispatches one Shopify webhook delivery. A 500 makes
// Shopify retry; everything else is acknowledged with 200.
func (h *Handler) Receive(c *gin.Context) {
	log := logger.WithComponent("webhooks")

	payload, err := readBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	if !shopify.VerifyWebhook(payload, c.GetHeader("X-Shopify-Hmac-Sha256"), h.Secret) {
		log.Warn("webhook signature verification failed", "topic", c.GetHeader("X-Shopify-Topic"))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Signature verification failed"})
		return
	}

	topic := c.GetHeader("X-Shopify-Topic")
	webhookID := c.GetHeader("X-Shopify-Webhook-Id")
	domain, err := shops.NormalizeDomain(c.GetHeader("X-Shopify-Shop-Domain"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop domain"})
		return
	}
	c.Set("shop", domain)
	log = log.With("topic", topic, "shop", domain, "webhook_id", webhookID)

	ctx := c.Request.Context()
	first, err := h.Dedupe.FirstSeen(ctx, webhookID)
	if err != nil {
		// Processing twice is safer than dropping a delivery.
		log.Warn("webhook dedupe unavailable", "error", err)
		first = true
	}
	if !first {
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	var handleErr error
	switch topic {
	case TopicAppUninstalled:
		handleErr = h.handleAppUninstalled(c, domain)
	case TopicSubscriptionsUpdate:
		handleErr = h.handleSubscriptionUpdate(c, domain, payload)
	case TopicShopRedact:
		handleErr = h.handleShopRedact(c, domain)
	case TopicCustomersRedact, TopicCustomersDataReq:
		// Contacts are merchant-entered; nothing is keyed by Shopify customer.
		log.Info("privacy webhook acknowledged")
	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	if handleErr != nil {
		if err := h.Dedupe.Forget(ctx, webhookID); err != nil {
			log.Warn("failed to release webhook id", "error", err)
		}
		var bad *badPayloadError
		if errors.As(handleErr, &bad) {
			log.Warn("webhook payload rejected", "error", handleErr)
			c.JSON(http.StatusBadRequest, gin.H{"error": bad.Error()})
			return
		}
		log.Error("webhook processing failed", "error", handleErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

type badPayloadError struct{ msg string }

func (e *badPayloadError) Error() string { return e.msg }

func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
