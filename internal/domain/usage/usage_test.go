package usage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"shopnotes-app/internal/domain/contacts"
	"shopnotes-app/internal/domain/mentions"
	"shopnotes-app/internal/domain/notes"
	"shopnotes-app/internal/domain/plans"
	"shopnotes-app/internal/domain/shops"
	"shopnotes-app/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) (*gorm.DB, shops.Shop) {
	db := testutil.NewDB(t,
		&shops.Shop{},
		&notes.Folder{}, &notes.Note{},
		&contacts.ContactFolder{}, &contacts.Contact{},
		&mentions.CustomMention{},
	)
	shop := shops.Shop{Domain: "demo.myshopify.com", Plan: plans.Free}
	require.NoError(t, db.Create(&shop).Error)
	return db, shop
}

func TestCompute(t *testing.T) {
	db, shop := setupDB(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&notes.Note{ShopID: shop.ID, Title: fmt.Sprint(i)}).Error)
	}
	require.NoError(t, db.Create(&contacts.Contact{ShopID: shop.ID, Name: "Ada"}).Error)

	other := shops.Shop{Domain: "other.myshopify.com"}
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, db.Create(&notes.Note{ShopID: other.ID}).Error)

	report, err := Compute(context.Background(), db, shop.ID, plans.Free)
	require.NoError(t, err)
	assert.Equal(t, Counter{Used: 3, Limit: 50}, report[plans.ResourceNotes])
	assert.Equal(t, Counter{Used: 1, Limit: 25}, report[plans.ResourceContacts])
	assert.Equal(t, Counter{Used: 0, Limit: 0}, report[plans.ResourceCustomMentions])
	assert.Len(t, report, len(plans.Resources))
}

func TestCheck(t *testing.T) {
	db, shop := setupDB(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&notes.Folder{ShopID: shop.ID, Name: fmt.Sprint(i)}).Error)
	}

	err := Check(ctx, db, shop.ID, plans.Free, plans.ResourceFolders)
	var limitErr *LimitError
	require.True(t, errors.As(err, &limitErr))
	assert.Equal(t, plans.ResourceFolders, limitErr.Resource)
	assert.Equal(t, int64(5), limitErr.Usage[plans.ResourceFolders].Used)
	assert.Contains(t, limitErr.Message(), "5 folders")

	assert.NoError(t, Check(ctx, db, shop.ID, plans.Pro, plans.ResourceFolders))
	assert.NoError(t, Check(ctx, db, shop.ID, plans.Free, plans.ResourceNotes))

	err = Check(ctx, db, shop.ID, plans.Free, plans.ResourceCustomMentions)
	require.True(t, errors.As(err, &limitErr))
	assert.Contains(t, limitErr.Message(), "does not include")
}

func TestCount_UnknownResource(t *testing.T) {
	db, shop := setupDB(t)
	_, err := Count(context.Background(), db, shop.ID, plans.Resource("widgets"))
	assert.Error(t, err)
}
