package notes

import (
	"errors"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/app/http/middleware"
	"shopnotes-app/internal/domain/notes"
	"shopnotes-app/internal/domain/shops"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func shopNotesQuery(db *gorm.DB, shopID uint) *gorm.DB {
	return db.Model(&notes.Note{}).Where("shop_id = ?", shopID)
}

func shopFoldersQuery(db *gorm.DB, shopID uint) *gorm.DB {
	return db.Model(&notes.Folder{}).Where("shop_id = ?", shopID)
}

func mustShop(c *gin.Context) (*shops.Shop, bool) {
	shop := middleware.CurrentShop(c)
	if shop == nil {
		apperr.Respond(c, apperr.Unauthorized("Missing session"))
		return nil, false
	}
	return shop, true
}

func findNote(db *gorm.DB, shopID uint, id string) (*notes.Note, error) {
	var n notes.Note
	err := shopNotesQuery(db, shopID).Where("id = ?", id).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Note not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load note", err)
	}
	return &n, nil
}

// ensureFolder checks that folderID (when set) belongs to the shop.
func ensureFolder(db *gorm.DB, shopID uint, folderID *string) error {
	if folderID == nil || *folderID == "" {
		return nil
	}
	var n int64
	if err := shopFoldersQuery(db, shopID).Where("id = ?", *folderID).Count(&n).Error; err != nil {
		return apperr.Internal("Failed to load folder", err)
	}
	if n == 0 {
		return apperr.Validation("Folder not found")
	}
	return nil
}
