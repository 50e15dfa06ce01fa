// Package reconcile repairs drift between local subscriptions and Shopify
// charges, for example when a cancellation webhook was never delivered.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"shopnotes-app/internal/domain/billing"
	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/infra/shopify"
	"shopnotes-app/internal/logger"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type ChargeGetter interface {
	GetRecurringCharge(ctx context.Context, shop, token string, id int64) (*shopify.RecurringCharge, error)
}

type TokenOpener interface {
	Open(sealed string) (string, error)
}

type Result struct {
	Checked    int64 `json:"checked"`
	Canceled   int64 `json:"canceled"`
	Downgraded int64 `json:"downgraded"`
	Failed     int64 `json:"failed"`
}

type Reconciler struct {
	DB          *gorm.DB
	Charges     ChargeGetter
	Tokens      TokenOpener
	Concurrency int
	Now         func() time.Time
}

type activeRow struct {
	ShopID        uint    `gorm:"column:shop_id"`
	Domain        string  `gorm:"column:domain"`
	AccessToken   *string `gorm:"column:access_token"`
	ShopifySubGID string  `gorm:"column:shopify_sub_gid"`
}

var errNoToken = errors.New("shop has no access token")

// Run checks every ACTIVE subscription against Shopify, then aligns every PRO
// shop. Per-shop failures are counted and logged; only a failure to list rows
// aborts the run.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	log := logger.WithComponent("reconcile")
	var res Result

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	limit := r.Concurrency
	if limit < 1 {
		limit = 4
	}

	var rows []activeRow
	err := r.DB.WithContext(ctx).Table("subscriptions").
		Select("subscriptions.shop_id, shops.domain, shops.access_token, subscriptions.shopify_sub_gid").
		Joins("JOIN shops ON shops.id = subscriptions.shop_id").
		Where("subscriptions.status = ?", billing.StatusActive).
		Scan(&rows).Error
	if err != nil {
		return res, fmt.Errorf("list active subscriptions: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, row := range rows {
		row := row
		g.Go(func() error {
			atomic.AddInt64(&res.Checked, 1)
			canceled, err := r.checkCharge(gctx, row, now())
			if err != nil {
				atomic.AddInt64(&res.Failed, 1)
				log.Warn("charge check failed", "shop", row.Domain, "error", err)
				return nil
			}
			if canceled {
				atomic.AddInt64(&res.Canceled, 1)
				log.Info("subscription canceled remotely", "shop", row.Domain)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	var proShops []shops.Shop
	if err := r.DB.WithContext(ctx).Where("plan = ?", plans.Pro).Find(&proShops).Error; err != nil {
		return res, fmt.Errorf("list pro shops: %w", err)
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, s := range proShops {
		s := s
		g.Go(func() error {
			changed, err := billing.EnsurePlanAlignedWithSubscription(gctx, r.DB, s.Domain, now())
			if err != nil {
				atomic.AddInt64(&res.Failed, 1)
				log.Warn("plan alignment failed", "shop", s.Domain, "error", err)
				return nil
			}
			if changed {
				atomic.AddInt64(&res.Downgraded, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	log.Info("reconcile finished",
		"checked", res.Checked,
		"canceled", res.Canceled,
		"downgraded", res.Downgraded,
		"failed", res.Failed,
	)
	return res, nil
}

func (r *Reconciler) checkCharge(ctx context.Context, row activeRow, now time.Time) (bool, error) {
	if row.AccessToken == nil || *row.AccessToken == "" {
		return false, errNoToken
	}
	chargeID, err := billing.ChargeIDFromGID(row.ShopifySubGID)
	if err != nil {
		return false, err
	}
	token, err := r.Tokens.Open(*row.AccessToken)
	if err != nil {
		return false, fmt.Errorf("open token: %w", err)
	}

	charge, err := r.Charges.GetRecurringCharge(ctx, row.Domain, token, chargeID)
	if err != nil {
		return false, err
	}
	if !shopify.IsTerminated(charge.Status) {
		return false, nil
	}
	return billing.MarkCanceledRemotely(ctx, r.DB, row.ShopID, now)
}
