package contacts

import (
	"errors"
	"net/http"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/app/http/middleware"
	"shopnotes-app/internal/domain/contacts"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

func shopContactsQuery(db *gorm.DB, shopID uint) *gorm.DB {
	return db.Model(&contacts.Contact{}).Where("shop_id = ?", shopID)
}

func shopContactFoldersQuery(db *gorm.DB, shopID uint) *gorm.DB {
	return db.Model(&contacts.ContactFolder{}).Where("shop_id = ?", shopID)
}

func mustShop(c *gin.Context) (*shops.Shop, bool) {
	shop := middleware.CurrentShop(c)
	if shop == nil {
		apperr.Respond(c, apperr.Unauthorized("Missing session"))
		return nil, false
	}
	return shop, true
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apperr.Respond(c, apperr.Validation("Malformed JSON"))
		return false
	}
	if err := validation.ValidateStruct(req); err != nil {
		apperr.Respond(c, err)
		return false
	}
	return true
}

func (h *Handler) checkFolder(db *gorm.DB, shopID uint, folderID *string) error {
	if folderID == nil || *folderID == "" {
		return nil
	}
	var n int64
	if err := shopContactFoldersQuery(db, shopID).Where("id = ?", *folderID).Count(&n).Error; err != nil {
		return apperr.Internal("Failed to load folder", err)
	}
	if n == 0 {
		return apperr.Validation("Folder not found")
	}
	return nil
}

// ------------------------------
// GET /api/contacts?folderId=&q=
// ------------------------------
func (h *Handler) ListContacts(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	q := shopContactsQuery(h.DB.WithContext(c.Request.Context()), shop.ID)
	if folderID := c.Query("folderId"); folderID != "" {
		q = q.Where("folder_id = ?", folderID)
	}
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR company LIKE ?", like, like, like)
	}

	out := make([]contacts.Contact, 0)
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load contacts", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": out})
}

func (h *Handler) GetContact(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	var ct contacts.Contact
	err := shopContactsQuery(h.DB.WithContext(c.Request.Context()), shop.ID).
		Where("id = ?", c.Param("id")).First(&ct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.NotFound("Contact not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load contact", err))
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *Handler) CreateContact(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	var req ContactInput
	if !bind(c, &req) {
		return
	}
	db := h.DB.WithContext(c.Request.Context())
	if err := h.checkFolder(db, shop.ID, req.FolderID); err != nil {
		apperr.Respond(c, err)
		return
	}

	ct := contacts.Contact{
		ShopID:   shop.ID,
		FolderID: req.FolderID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Notes:    req.Notes,
	}
	if err := db.Create(&ct).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create contact", err))
		return
	}
	c.JSON(http.StatusCreated, ct)
}

// UpdateContact replaces every editable field.
func (h *Handler) UpdateContact(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	var req ContactInput
	if !bind(c, &req) {
		return
	}
	db := h.DB.WithContext(c.Request.Context())

	var ct contacts.Contact
	err := shopContactsQuery(db, shop.ID).Where("id = ?", c.Param("id")).First(&ct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Respond(c, apperr.NotFound("Contact not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load contact", err))
		return
	}
	if err := h.checkFolder(db, shop.ID, req.FolderID); err != nil {
		apperr.Respond(c, err)
		return
	}

	var folderID interface{}
	if req.FolderID != nil && *req.FolderID != "" {
		folderID = *req.FolderID
	}
	if err := db.Model(&ct).Updates(map[string]interface{}{
		"name":      req.Name,
		"email":     req.Email,
		"phone":     req.Phone,
		"company":   req.Company,
		"notes":     req.Notes,
		"folder_id": folderID,
	}).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to update contact", err))
		return
	}
	if err := db.First(&ct, "id = ?", ct.ID).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load contact", err))
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *Handler) DeleteContact(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	res := shopContactsQuery(h.DB.WithContext(c.Request.Context()), shop.ID).
		Where("id = ?", c.Param("id")).
		Delete(&contacts.Contact{})
	if res.Error != nil {
		apperr.Respond(c, apperr.Internal("Failed to delete contact", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.NotFound("Contact not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
