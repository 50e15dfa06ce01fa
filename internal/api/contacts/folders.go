package contacts

import (
	"errors"
	"net/http"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/domain/contacts"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) ListFolders(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	folders := make([]contacts.ContactFolder, 0)
	if err := shopContactFoldersQuery(h.DB.WithContext(c.Request.Context()), shop.ID).
		Order("name ASC").Find(&folders).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load folders", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

func (h *Handler) CreateFolder(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	var req ContactFolderInput
	if !bind(c, &req) {
		return
	}
	f := contacts.ContactFolder{ShopID: shop.ID, Name: req.Name}
	if err := h.DB.WithContext(c.Request.Context()).Create(&f).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create folder", err))
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) UpdateFolder(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	var req ContactFolderInput
	if !bind(c, &req) {
		return
	}
	db := h.DB.WithContext(c.Request.Context())
	var f contacts.ContactFolder
	err := shopContactFoldersQuery(db, shop.ID).Where("id = ?", c.Param("id")).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.NotFound("Folder not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load folder", err))
		return
	}
	if err := db.Model(&f).Update("name", req.Name).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to update folder", err))
		return
	}
	c.JSON(http.StatusOK, f)
}

// DeleteFolder keeps the contacts and moves them out of the folder.
func (h *Handler) DeleteFolder(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var f contacts.ContactFolder
		err := shopContactFoldersQuery(tx, shop.ID).Where("id = ?", c.Param("id")).First(&f).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Folder not found")
		}
		if err != nil {
			return err
		}
		if err := shopContactsQuery(tx, shop.ID).
			Where("folder_id = ?", f.ID).
			Update("folder_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&f).Error
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			apperr.Respond(c, err)
			return
		}
		apperr.Respond(c, apperr.Internal("Failed to delete folder", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
