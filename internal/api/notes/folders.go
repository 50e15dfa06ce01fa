package notes

import (
	"errors"
	"net/http"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/domain/notes"
	"shopnotes-app/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func (h *Handler) ListFolders(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	folders := make([]notes.Folder, 0)
	if err := shopFoldersQuery(h.DB.WithContext(c.Request.Context()), shop.ID).
		Order("sort_index ASC").Order("created_at ASC").
		Find(&folders).Error; err != nil {
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
	var req FolderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Malformed JSON"))
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		apperr.Respond(c, err)
		return
	}

	f := notes.Folder{ShopID: shop.ID, Name: req.Name, SortIndex: req.SortIndex}
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
	var req FolderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Malformed JSON"))
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		apperr.Respond(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var f notes.Folder
	err := shopFoldersQuery(db, shop.ID).Where("id = ?", c.Param("id")).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.NotFound("Folder not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load folder", err))
		return
	}

	if err := db.Model(&f).Updates(map[string]interface{}{
		"name":       req.Name,
		"sort_index": req.SortIndex,
	}).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to update folder", err))
		return
	}
	f.Name, f.SortIndex = req.Name, req.SortIndex
	c.JSON(http.StatusOK, f)
}

// DeleteFolder keeps the notes and moves them to the root.
func (h *Handler) DeleteFolder(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var f notes.Folder
		err := shopFoldersQuery(tx, shop.ID).Where("id = ?", c.Param("id")).First(&f).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Folder not found")
		}
		if err != nil {
			return err
		}
		if err := shopNotesQuery(tx, shop.ID).
			Where("folder_id = ?", f.ID).
			Update("folder_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&f).Error
	})
	if err != nil {
		respondTxError(c, err, "Failed to delete folder")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
