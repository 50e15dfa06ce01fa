package shops

import (
	"context"
	"testing"
	"time"

	"shopnotes-app/internal/domain/plans"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Shop{}))
	return db
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"demo.myshopify.com", "demo.myshopify.com", false},
		{"https://Demo-Store.myshopify.com/admin", "demo-store.myshopify.com", false},
		{"  demo.myshopify.com  ", "demo.myshopify.com", false},
		{"demo.example.com", "", true},
		{"-demo.myshopify.com", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeDomain(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDomain)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsureShop_CreatesOnceOnFree(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := EnsureShop(ctx, db, "demo.myshopify.com")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, plans.Free, first.Plan)

	require.NoError(t, db.Model(&Shop{}).Where("id = ?", first.ID).Update("plan", plans.Pro).Error)

	second, err := EnsureShop(ctx, db, "demo.myshopify.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, plans.Pro, second.Plan)

	var count int64
	db.Model(&Shop{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFindByDomain_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := FindByDomain(context.Background(), db, "missing.myshopify.com")
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestMarkInstalled(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	shop, err := EnsureShop(ctx, db, "demo.myshopify.com")
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, MarkInstalled(ctx, db, shop.ID, "sealed-token", "read_customers", now))

	got, err := FindByDomain(ctx, db, "demo.myshopify.com")
	require.NoError(t, err)
	require.NotNil(t, got.AccessToken)
	assert.Equal(t, "sealed-token", *got.AccessToken)
	assert.Equal(t, "read_customers", got.Scope)
	require.NotNil(t, got.InstalledAt)
	assert.Nil(t, got.UninstalledAt)
}
