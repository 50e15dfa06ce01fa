package shops

import (
	"time"

	"shopnotes-app/internal/domain/plans"
)

type Shop struct {
	ID     uint       `gorm:"primaryKey"`
	Domain string     `gorm:"not null;uniqueIndex:idx_shops_domain"`
	Plan   plans.Plan `gorm:"type:varchar(10);not null;default:'FREE'"`

	// Offline admin API token, encrypted at rest.
	AccessToken *string `gorm:"column:access_token;type:text"`
	Scope       string

	InstalledAt   *time.Time
	UninstalledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
