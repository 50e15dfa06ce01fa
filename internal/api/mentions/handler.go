package mentions

import (
	"net/http"
	"strings"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/app/http/middleware"
	"shopnotes-app/internal/domain/mentions"
	"shopnotes-app/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MentionInput struct {
	Label string `json:"label" validate:"required,max=80"`
	Value string `json:"value" validate:"max=500"`
}

type Handler struct {
	DB *gorm.DB
}

func (h *Handler) List(c *gin.Context) {
	shop := middleware.CurrentShop(c)
	if shop == nil {
		apperr.Respond(c, apperr.Unauthorized("Missing session"))
		return
	}
	out := make([]mentions.CustomMention, 0)
	if err := h.DB.WithContext(c.Request.Context()).
		Where("shop_id = ?", shop.ID).
		Order("label ASC").
		Find(&out).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load mentions", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"mentions": out})
}

// Create is gated by the customMentions quota, which is zero on FREE.
func (h *Handler) Create(c *gin.Context) {
	shop := middleware.CurrentShop(c)
	if shop == nil {
		apperr.Respond(c, apperr.Unauthorized("Missing session"))
		return
	}
	var req MentionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Malformed JSON"))
		return
	}
	req.Label = strings.TrimSpace(req.Label)
	if err := validation.ValidateStruct(req); err != nil {
		apperr.Respond(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	var n int64
	if err := db.Model(&mentions.CustomMention{}).
		Where("shop_id = ? AND label = ?", shop.ID, req.Label).
		Count(&n).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create mention", err))
		return
	}
	if n > 0 {
		apperr.Respond(c, apperr.Validation("A mention with this label already exists"))
		return
	}

	m := mentions.CustomMention{ShopID: shop.ID, Label: req.Label, Value: req.Value}
	if err := db.Create(&m).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create mention", err))
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) Delete(c *gin.Context) {
	shop := middleware.CurrentShop(c)
	if shop == nil {
		apperr.Respond(c, apperr.Unauthorized("Missing session"))
		return
	}
	res := h.DB.WithContext(c.Request.Context()).
		Where("shop_id = ? AND id = ?", shop.ID, c.Param("id")).
		Delete(&mentions.CustomMention{})
	if res.Error != nil {
		apperr.Respond(c, apperr.Internal("Failed to delete mention", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		apperr.Respond(c, apperr.NotFound("Mention not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
