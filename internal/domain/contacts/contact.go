package contacts

import (
	"time"

	"shopnotes-app/internal/domain/shops"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ContactFolder struct {
	ID     string      `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID uint        `gorm:"not null;index" json:"-"`
	Shop   *shops.Shop `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Contact struct {
	ID     string      `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID uint        `gorm:"not null;index" json:"-"`
	Shop   *shops.Shop `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	FolderID *string        `gorm:"type:uuid;index" json:"folderId"`
	Folder   *ContactFolder `gorm:"constraint:OnDelete:SET NULL;" json:"-"`

	Name    string `gorm:"not null" json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Notes   string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (f *ContactFolder) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
