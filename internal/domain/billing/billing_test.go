package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func setupDB(t *testing.T) *gorm.DB {
	return testutil.NewDB(t, &shops.Shop{}, &Subscription{})
}

func seedShop(t *testing.T, db *gorm.DB, domain string, plan plans.Plan, sub *Subscription) shops.Shop {
	t.Helper()
	shop := shops.Shop{Domain: domain, Plan: plan}
	require.NoError(t, db.Create(&shop).Error)
	if sub != nil {
		sub.ShopID = shop.ID
		require.NoError(t, db.Create(sub).Error)
	}
	return shop
}

func reloadShop(t *testing.T, db *gorm.DB, id uint) shops.Shop {
	t.Helper()
	var shop shops.Shop
	require.NoError(t, db.First(&shop, id).Error)
	return shop
}

func reloadSub(t *testing.T, db *gorm.DB, shopID uint) Subscription {
	t.Helper()
	var sub Subscription
	require.NoError(t, db.Where("shop_id = ?", shopID).First(&sub).Error)
	return sub
}

// ---------- accessUntil ----------

func TestComputeAccessUntil(t *testing.T) {
	tests := []struct {
		name string
		sub  Subscription
		now  time.Time
		want time.Time
	}{
		{
			name: "second period",
			sub:  Subscription{CreatedAt: date(2024, 1, 1)},
			now:  date(2024, 2, 15),
			want: date(2024, 3, 1),
		},
		{
			name: "first period",
			sub:  Subscription{CreatedAt: date(2024, 1, 1)},
			now:  date(2024, 1, 10),
			want: date(2024, 1, 31),
		},
		{
			name: "exact period boundary starts the next period",
			sub:  Subscription{CreatedAt: date(2024, 1, 1)},
			now:  date(2024, 1, 31),
			want: date(2024, 3, 1),
		},
		{
			name: "future trial wins",
			sub:  Subscription{CreatedAt: date(2024, 1, 1), TrialEndsAt: ptr(date(2024, 3, 20))},
			now:  date(2024, 2, 15),
			want: date(2024, 3, 20),
		},
		{
			name: "trial inside the period is ignored",
			sub:  Subscription{CreatedAt: date(2024, 1, 1), TrialEndsAt: ptr(date(2024, 1, 8))},
			now:  date(2024, 2, 15),
			want: date(2024, 3, 1),
		},
		{
			name: "clock before creation counts as day zero",
			sub:  Subscription{CreatedAt: date(2024, 1, 1)},
			now:  date(2023, 12, 31),
			want: date(2024, 1, 31),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ComputeAccessUntil(tt.now, tt.sub)),
				"got %s", ComputeAccessUntil(tt.now, tt.sub))
		})
	}
}

// ---------- GIDs ----------

func TestChargeIDFromGID(t *testing.T) {
	id, err := ChargeIDFromGID("gid://shopify/RecurringApplicationCharge/29532029")
	require.NoError(t, err)
	assert.Equal(t, int64(29532029), id)

	for _, bad := range []string{
		"",
		"29532029",
		"gid://shopify/RecurringApplicationCharge/",
		"gid://shopify/RecurringApplicationCharge/12ab",
		"gid://shopify/RecurringApplicationCharge/-4",
		"gid://shopify/AppSubscription/29532029",
		"gid://other/RecurringApplicationCharge/1",
	} {
		_, err := ChargeIDFromGID(bad)
		assert.ErrorIs(t, err, ErrMalformedGID, bad)
	}
}

func TestParseGID_AppSubscription(t *testing.T) {
	resource, id, err := ParseGID("gid://shopify/AppSubscription/77")
	require.NoError(t, err)
	assert.Equal(t, ResourceAppSubscription, resource)
	assert.Equal(t, int64(77), id)
	assert.Equal(t, "gid://shopify/RecurringApplicationCharge/77", ChargeGID(77))
}

// ---------- Entitles ----------

func TestSubscription_Entitles(t *testing.T) {
	now := date(2024, 2, 15)
	var missing *Subscription
	assert.False(t, missing.Entitles(now))
	assert.True(t, (&Subscription{Status: StatusActive}).Entitles(now))
	assert.False(t, (&Subscription{Status: StatusCanceled}).Entitles(now))
	assert.False(t, (&Subscription{Status: StatusCanceled, AccessUntil: ptr(date(2024, 2, 1))}).Entitles(now))
	assert.True(t, (&Subscription{Status: StatusCanceled, AccessUntil: ptr(date(2024, 3, 1))}).Entitles(now))
}

// ---------- Guard ----------

func TestEnsurePlanAligned(t *testing.T) {
	now := date(2024, 2, 15)
	tests := []struct {
		name        string
		plan        plans.Plan
		sub         *Subscription
		wantPlan    plans.Plan
		wantChanged bool
	}{
		{"pro without subscription", plans.Pro, nil, plans.Free, true},
		{"pro with active subscription", plans.Pro, &Subscription{Status: StatusActive}, plans.Pro, false},
		{"pro canceled without window", plans.Pro, &Subscription{Status: StatusCanceled}, plans.Free, true},
		{"pro canceled window passed", plans.Pro, &Subscription{Status: StatusCanceled, AccessUntil: ptr(date(2024, 2, 1))}, plans.Free, true},
		{"pro canceled still in grace", plans.Pro, &Subscription{Status: StatusCanceled, AccessUntil: ptr(date(2024, 3, 1))}, plans.Pro, false},
		{"free canceled stays free", plans.Free, &Subscription{Status: StatusCanceled}, plans.Free, false},
		{"free active is left alone", plans.Free, &Subscription{Status: StatusActive}, plans.Free, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupDB(t)
			shop := seedShop(t, db, "demo.myshopify.com", tt.plan, tt.sub)

			changed, err := EnsurePlanAlignedWithSubscription(context.Background(), db, shop.Domain, now)
			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantPlan, reloadShop(t, db, shop.ID).Plan)
		})
	}
}

func TestEnsurePlanAligned_Idempotent(t *testing.T) {
	db := setupDB(t)
	shop := seedShop(t, db, "demo.myshopify.com", plans.Pro, &Subscription{Status: StatusCanceled})
	ctx := context.Background()
	now := date(2024, 2, 15)

	changed, err := EnsurePlanAlignedWithSubscription(ctx, db, shop.Domain, now)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = EnsurePlanAlignedWithSubscription(ctx, db, shop.Domain, now)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, plans.Free, reloadShop(t, db, shop.ID).Plan)
}

func TestEnsurePlanAligned_MissingShop(t *testing.T) {
	db := setupDB(t)
	changed, err := EnsurePlanAlignedWithSubscription(context.Background(), db, "ghost.myshopify.com", time.Now())
	assert.NoError(t, err)
	assert.False(t, changed)
}

// ---------- Downgrade ----------

func TestDowngradeShopToFreeByDomain(t *testing.T) {
	db := setupDB(t)
	shop := seedShop(t, db, "demo.myshopify.com", plans.Pro, &Subscription{Status: StatusActive, CreatedAt: date(2024, 1, 1)})
	other := seedShop(t, db, "other.myshopify.com", plans.Pro, &Subscription{Status: StatusActive})

	require.NoError(t, DowngradeShopToFreeByDomain(context.Background(), db, shop.Domain))

	assert.Equal(t, plans.Free, reloadShop(t, db, shop.ID).Plan)
	sub := reloadSub(t, db, shop.ID)
	assert.Equal(t, StatusCanceled, sub.Status)
	assert.Nil(t, sub.AccessUntil)
	assert.False(t, sub.Entitles(time.Now()))

	assert.Equal(t, plans.Pro, reloadShop(t, db, other.ID).Plan)
	assert.Equal(t, StatusActive, reloadSub(t, db, other.ID).Status)
}

func TestDowngradeShopToFreeByDomain_MissingShop(t *testing.T) {
	db := setupDB(t)
	assert.NoError(t, DowngradeShopToFreeByDomain(context.Background(), db, "ghost.myshopify.com"))
}

func TestDowngradeShopToFreeByDomain_RollsBackOnPartialFailure(t *testing.T) {
	db := setupDB(t)
	shop := seedShop(t, db, "demo.myshopify.com", plans.Pro, &Subscription{Status: StatusActive})

	boom := errors.New("subscriptions table unavailable")
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_subscriptions", func(tx *gorm.DB) {
		if tx.Statement.Table == "subscriptions" {
			_ = tx.AddError(boom)
		}
	}))

	err := DowngradeShopToFreeByDomain(context.Background(), db, shop.Domain)
	require.ErrorIs(t, err, boom)

	require.NoError(t, db.Callback().Update().Remove("test:fail_subscriptions"))
	assert.Equal(t, plans.Pro, reloadShop(t, db, shop.ID).Plan, "plan update must roll back with the failed cancel")
	assert.Equal(t, StatusActive, reloadSub(t, db, shop.ID).Status)
}

// ---------- Activate / remote cancel ----------

func TestActivate_UpsertsAndPromotes(t *testing.T) {
	db := setupDB(t)
	shop := seedShop(t, db, "demo.myshopify.com", plans.Free, &Subscription{
		Status:      StatusCanceled,
		CreatedAt:   date(2023, 6, 1),
		AccessUntil: ptr(date(2023, 7, 1)),
	})
	now := date(2024, 1, 1)

	sub, err := Activate(context.Background(), db, shop.ID, ActivateParams{
		ChargeID:    4242,
		Name:        "Pro",
		Price:       4.99,
		TrialEndsAt: ptr(date(2024, 1, 8)),
	}, now)
	require.NoError(t, err)

	assert.Equal(t, plans.Pro, reloadShop(t, db, shop.ID).Plan)
	stored := reloadSub(t, db, shop.ID)
	assert.Equal(t, sub.ID, stored.ID)
	assert.Equal(t, StatusActive, stored.Status)
	assert.Equal(t, "gid://shopify/RecurringApplicationCharge/4242", stored.ShopifySubGID)
	assert.True(t, now.Equal(stored.CreatedAt))
	assert.Nil(t, stored.AccessUntil)

	var count int64
	db.Model(&Subscription{}).Where("shop_id = ?", shop.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMarkCanceledRemotely(t *testing.T) {
	db := setupDB(t)
	shop := seedShop(t, db, "demo.myshopify.com", plans.Pro, &Subscription{Status: StatusActive, CreatedAt: date(2024, 1, 1)})
	ctx := context.Background()

	changed, err := MarkCanceledRemotely(ctx, db, shop.ID, date(2024, 2, 15))
	require.NoError(t, err)
	assert.True(t, changed)

	sub := reloadSub(t, db, shop.ID)
	assert.Equal(t, StatusCanceled, sub.Status)
	require.NotNil(t, sub.AccessUntil)
	assert.True(t, date(2024, 3, 1).Equal(*sub.AccessUntil))
	assert.Equal(t, plans.Pro, reloadShop(t, db, shop.ID).Plan)

	changed, err = MarkCanceledRemotely(ctx, db, shop.ID, date(2024, 2, 20))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCancelLocally_AlreadyCanceled(t *testing.T) {
	db := setupDB(t)
	sub := &Subscription{Status: StatusActive, CreatedAt: date(2024, 1, 1)}
	shop := seedShop(t, db, "demo.myshopify.com", plans.Pro, sub)
	ctx := context.Background()

	require.NoError(t, CancelLocally(ctx, db, sub.ID, date(2024, 3, 1)))

	err := CancelLocally(ctx, db, sub.ID, date(2024, 4, 1))
	assert.ErrorIs(t, err, ErrNotActive)

	stored := reloadSub(t, db, shop.ID)
	require.NotNil(t, stored.AccessUntil)
	assert.True(t, date(2024, 3, 1).Equal(*stored.AccessUntil))
}
