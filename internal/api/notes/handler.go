package notes

import (
	"errors"
	"net/http"
	"strconv"

	"shopnotes-app/internal/apperr"
	"shopnotes-app/internal/app/http/middleware"
	"shopnotes-app/internal/domain/notes"
	"shopnotes-app/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB *gorm.DB
}

// ------------------------------
// GET /api/notes?folderId=&q=
// ------------------------------
func (h *Handler) ListNotes(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}

	q := shopNotesQuery(h.DB.WithContext(c.Request.Context()), shop.ID)
	if folderID := c.Query("folderId"); folderID != "" {
		q = q.Where("folder_id = ?", folderID)
	}
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	out := make([]notes.Note, 0)
	if err := q.Order("pinned DESC").Order("updated_at DESC").Find(&out).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load notes", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": out})
}

func (h *Handler) GetNote(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	n, err := findNote(h.DB.WithContext(c.Request.Context()), shop.ID, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// ------------------------------
// POST /api/notes  (quota checked by middleware)
// ------------------------------
func (h *Handler) CreateNote(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	var req NoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Malformed JSON"))
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		apperr.Respond(c, err)
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	if err := ensureFolder(db, shop.ID, req.FolderID); err != nil {
		apperr.Respond(c, err)
		return
	}

	n := notes.Note{
		ShopID:   shop.ID,
		FolderID: req.FolderID,
		Title:    req.Title,
		Content:  req.Content,
		Pinned:   req.Pinned,
	}
	if err := db.Create(&n).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to create note", err))
		return
	}
	c.JSON(http.StatusCreated, n)
}

// ------------------------------
// PUT /api/notes/:id
// Title/content edits snapshot the previous text first.
// ------------------------------
func (h *Handler) UpdateNote(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Validation("Malformed JSON"))
		return
	}
	if err := validation.ValidateStruct(req); err != nil {
		apperr.Respond(c, err)
		return
	}
	keep := middleware.CurrentPolicy(c).Limits.VersionsPerNote

	var updated notes.Note
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		n, err := findNote(tx, shop.ID, c.Param("id"))
		if err != nil {
			return err
		}

		textChanged := (req.Title != nil && *req.Title != n.Title) ||
			(req.Content != nil && *req.Content != n.Content)
		if textChanged {
			if _, err := notes.SnapshotVersion(tx, n, keep); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{}
		if req.Title != nil {
			updates["title"] = *req.Title
		}
		if req.Content != nil {
			updates["content"] = *req.Content
		}
		if req.Pinned != nil {
			updates["pinned"] = *req.Pinned
		}
		if req.ClearFolder {
			updates["folder_id"] = nil
		} else if req.FolderID != nil {
			if err := ensureFolder(tx, shop.ID, req.FolderID); err != nil {
				return err
			}
			updates["folder_id"] = *req.FolderID
		}

		if len(updates) > 0 {
			if err := tx.Model(n).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.First(&updated, "id = ?", n.ID).Error
	})
	if err != nil {
		respondTxError(c, err, "Failed to update note")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteNote(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		n, err := findNote(tx, shop.ID, c.Param("id"))
		if err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", n.ID).Delete(&notes.NoteVersion{}).Error; err != nil {
			return err
		}
		return tx.Delete(n).Error
	})
	if err != nil {
		respondTxError(c, err, "Failed to delete note")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ------------------------------
// GET /api/notes/:id/versions
// ------------------------------
func (h *Handler) ListVersions(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	db := h.DB.WithContext(c.Request.Context())
	n, err := findNote(db, shop.ID, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	versions := make([]notes.NoteVersion, 0)
	if err := db.Where("note_id = ?", n.ID).Order("version DESC").Find(&versions).Error; err != nil {
		apperr.Respond(c, apperr.Internal("Failed to load versions", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

// ------------------------------
// POST /api/notes/:id/versions/:version/restore
// The current text is snapshotted, so a restore can itself be undone.
// ------------------------------
func (h *Handler) RestoreVersion(c *gin.Context) {
	shop, ok := mustShop(c)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("version"))
	if err != nil || number < 1 {
		apperr.Respond(c, apperr.Validation("Invalid version"))
		return
	}
	keep := middleware.CurrentPolicy(c).Limits.VersionsPerNote

	var restored notes.Note
	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		n, err := findNote(tx, shop.ID, c.Param("id"))
		if err != nil {
			return err
		}

		var v notes.NoteVersion
		err = tx.Where("note_id = ? AND version = ?", n.ID, number).First(&v).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Version not found")
		}
		if err != nil {
			return err
		}

		if _, err := notes.SnapshotVersion(tx, n, keep); err != nil {
			return err
		}
		if err := tx.Model(n).Updates(map[string]interface{}{
			"title":   v.Title,
			"content": v.Content,
		}).Error; err != nil {
			return err
		}
		return tx.First(&restored, "id = ?", n.ID).Error
	})
	if err != nil {
		respondTxError(c, err, "Failed to restore version")
		return
	}
	c.JSON(http.StatusOK, restored)
}

// respondTxError passes AppErrors raised inside a transaction through and
// wraps anything else as a 500.
func respondTxError(c *gin.Context, err error, msg string) {
	if _, ok := apperr.As(err); ok {
		apperr.Respond(c, err)
		return
	}
	apperr.Respond(c, apperr.Internal(msg, err))
}
