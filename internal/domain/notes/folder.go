package notes

import (
	"time"

	"shopnotes-app/internal/domain/shops"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Folder struct {
	ID     string      `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID uint        `gorm:"not null;index" json:"-"`
	Shop   *shops.Shop `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Name      string    `gorm:"not null" json:"name"`
	SortIndex int       `gorm:"not null;default:0" json:"sortIndex"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f *Folder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
