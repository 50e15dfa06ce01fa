package notes

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteVersion struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID string `gorm:"type:uuid;not null;uniqueIndex:idx_note_versions_note_version,priority:1" json:"noteId"`
	Note   *Note  `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	ShopID uint   `gorm:"not null;index" json:"-"`

	Version int    `gorm:"not null;uniqueIndex:idx_note_versions_note_version,priority:2" json:"version"`
	Title   string `json:"title"`
	Content string `gorm:"type:text" json:"content"`

	CreatedAt time.Time `json:"createdAt"`
}

func (v *NoteVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// SnapshotVersion stores the note's current title/content as the next version
// and prunes the oldest versions beyond keep. Call it inside the transaction
// that overwrites the note.
func SnapshotVersion(tx *gorm.DB, note *Note, keep int) (*NoteVersion, error) {
	var last int
	if err := tx.Model(&NoteVersion{}).
		Where("note_id = ?", note.ID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&last).Error; err != nil {
		return nil, fmt.Errorf("read last version: %w", err)
	}

	v := NoteVersion{
		NoteID:  note.ID,
		ShopID:  note.ShopID,
		Version: last + 1,
		Title:   note.Title,
		Content: note.Content,
	}
	if err := tx.Create(&v).Error; err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}

	if keep > 0 {
		cutoff := v.Version - keep
		if err := tx.Where("note_id = ? AND version <= ?", note.ID, cutoff).
			Delete(&NoteVersion{}).Error; err != nil {
			return nil, fmt.Errorf("prune versions: %w", err)
		}
	}
	return &v, nil
}
