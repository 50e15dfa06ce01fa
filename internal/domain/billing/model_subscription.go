package billing

import (
	"time"

	"shopnotes-app/internal/domain/shops"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusCanceled Status = "CANCELED"
)

type Subscription struct {
	ID     uint        `gorm:"primaryKey"`
	ShopID uint        `gorm:"not null;uniqueIndex:idx_subscriptions_shop_id"`
	Shop   *shops.Shop `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Status        Status `gorm:"type:varchar(10);not null;default:'ACTIVE';index"`
	ShopifySubGID string `gorm:"column:shopify_sub_gid"`
	Name          string
	Price         float64

	// CreatedAt anchors the 30-day billing periods; it is reset on every activation.
	CreatedAt   time.Time
	TrialEndsAt *time.Time `gorm:"column:trial_ends_at"`
	GraceEndsAt *time.Time `gorm:"column:grace_ends_at"`
	AccessUntil *time.Time `gorm:"column:access_until"`
	RenewsAt    *time.Time `gorm:"column:renews_at"`
	UpdatedAt   time.Time
}

// Entitles reports whether the subscription still grants paid features at now:
// ACTIVE always does, CANCELED only while accessUntil lies in the future.
func (s *Subscription) Entitles(now time.Time) bool {
	if s == nil {
		return false
	}
	switch s.Status {
	case StatusActive:
		return true
	case StatusCanceled:
		return s.AccessUntil != nil && now.Before(*s.AccessUntil)
	default:
		return false
	}
}
