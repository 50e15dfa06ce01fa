package shop

import (
	"time"

	"shopnotes-app/internal/domain/usage"
)

type MeResponse struct {
	Shop    ShopDTO    `json:"shop"`
	Billing BillingDTO `json:"billing"`
	Access  AccessDTO  `json:"access"`
}

/* ---------- SHOP ---------- */

type ShopDTO struct {
	ID          uint       `json:"id"`
	Domain      string     `json:"domain"`
	Plan        string     `json:"plan"`
	Scope       string     `json:"scope"`
	InstalledAt *time.Time `json:"installedAt"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Subscription *SubscriptionDTO `json:"subscription"`
	Trial        *TrialDTO        `json:"trial"`
}

type SubscriptionDTO struct {
	Status      string     `json:"status"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	ChargeID    *int64     `json:"chargeId"`
	CreatedAt   time.Time  `json:"createdAt"`
	AccessUntil *time.Time `json:"accessUntil"`
	GraceEndsAt *time.Time `json:"graceEndsAt"`
	RenewsAt    *time.Time `json:"renewsAt"`
}

type TrialDTO struct {
	EndsAt   *time.Time `json:"endsAt"`
	DaysLeft int        `json:"daysLeft"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State           string       `json:"state"` // pro|trial|grace|free
	Plan            string       `json:"plan"`
	Capabilities    []string     `json:"capabilities"`
	Usage           usage.Report `json:"usage"`
	VersionsPerNote int          `json:"versionsPerNote"`
}
