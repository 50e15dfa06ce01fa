package mentions

import (
	"time"

	"shopnotes-app/internal/domain/shops"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomMention is a shop-defined @-mention target offered by the editor.
type CustomMention struct {
	ID     string      `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID uint        `gorm:"not null;uniqueIndex:idx_custom_mentions_shop_label,priority:1" json:"-"`
	Shop   *shops.Shop `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Label string `gorm:"not null;uniqueIndex:idx_custom_mentions_shop_label,priority:2" json:"label"`
	Value string `json:"value"`

	CreatedAt time.Time `json:"createdAt"`
}

func (m *CustomMention) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
