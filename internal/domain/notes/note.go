package notes

import (
	"time"

	"shopnotes-app/internal/domain/shops"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Note struct {
	ID     string      `gorm:"type:uuid;primaryKey" json:"id"`
	ShopID uint        `gorm:"not null;index" json:"-"`
	Shop   *shops.Shop `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	FolderID *string `gorm:"type:uuid;index" json:"folderId"`
	Folder   *Folder `gorm:"constraint:OnDelete:SET NULL;" json:"-"`

	Title   string `gorm:"not null;default:''" json:"title"`
	Content string `gorm:"type:text" json:"content"`
	Pinned  bool   `gorm:"not null;default:false" json:"pinned"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
