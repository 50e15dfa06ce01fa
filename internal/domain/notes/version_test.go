package notes

import (
	"testing"

	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSnapshotVersion_NumbersAndPrunes(t *testing.T) {
	db := testutil.NewDB(t, &shops.Shop{}, &Folder{}, &Note{}, &NoteVersion{})
	shop := shops.Shop{Domain: "demo.myshopify.com"}
	require.NoError(t, db.Create(&shop).Error)

	note := Note{ShopID: shop.ID, Title: "v0", Content: "<p>draft</p>"}
	require.NoError(t, db.Create(&note).Error)
	assert.NotEmpty(t, note.ID)

	for i := 1; i <= 4; i++ {
		err := db.Transaction(func(tx *gorm.DB) error {
			v, err := SnapshotVersion(tx, &note, 3)
			if err != nil {
				return err
			}
			assert.Equal(t, i, v.Version)
			return nil
		})
		require.NoError(t, err)
	}

	var versions []NoteVersion
	require.NoError(t, db.Where("note_id = ?", note.ID).Order("version ASC").Find(&versions).Error)
	require.Len(t, versions, 3)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, 4, versions[2].Version)
	assert.Equal(t, "<p>draft</p>", versions[2].Content)
}
