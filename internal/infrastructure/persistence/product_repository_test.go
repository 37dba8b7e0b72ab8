package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/catalog"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/shared"
)

// newMockDB creates a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

var productColumns = []string{
	"id", "created_at", "updated_at", "organization_id",
	"marketplace", "sku", "external_id", "title", "brand", "category",
	"image_url", "price", "currency", "inventory_quantity", "status", "synced_at",
}

func productRow(rows *sqlmock.Rows, id, orgID uuid.UUID, createdAt time.Time, marketplace, sku string) *sqlmock.Rows {
	return rows.AddRow(
		id, createdAt, createdAt, orgID,
		marketplace, sku, "EXT-"+sku, "Title "+sku, "Acme", "Clothing",
		"", decimal.NewFromFloat(19.99), "USD", int64(5), "active", createdAt,
	)
}

func TestGormProductRepository_Get(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB, 25)

		orgID := uuid.New()
		productID := uuid.New()
		rows := productRow(sqlmock.NewRows(productColumns), productID, orgID, time.Now(), "amazon", "SKU-1")

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE organization_id = \$1 AND sku = \$2 ORDER BY marketplace ASC,.* LIMIT .*`).
			WillReturnRows(rows)

		product, err := repo.Get(context.Background(), orgID, "SKU-1")
		require.NoError(t, err)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, "SKU-1", product.SKU)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing sku", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB, 25)

		mock.ExpectQuery(`SELECT \* FROM "products"`).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.Get(context.Background(), uuid.New(), "missing")
		assert.Nil(t, product)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_List(t *testing.T) {
	t.Run("full page carries a next cursor", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB, 25)

		orgID := uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows(productColumns)
		productRow(rows, uuid.New(), orgID, now, "amazon", "SKU-1")
		productRow(rows, uuid.New(), orgID, now.Add(-time.Minute), "walmart", "SKU-2")
		productRow(rows, uuid.New(), orgID, now.Add(-2*time.Minute), "amazon", "SKU-3")

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE organization_id = \$1 ORDER BY created_at DESC, id DESC LIMIT .*`).
			WillReturnRows(rows)

		page, err := repo.List(context.Background(), orgID, catalog.ListQuery{
			ListOptions: shared.ListOptions{Limit: 2},
		})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.NotEmpty(t, page.NextCursor, "an extra fetched row signals more pages")

		cursor, err := shared.DecodeCursor(page.NextCursor)
		require.NoError(t, err)
		assert.Equal(t, page.Items[1].ID, cursor.ID, "cursor points at the last returned row")
	})

	t.Run("marketplace filter narrows the returned page", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB, 25)

		orgID := uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows(productColumns)
		productRow(rows, uuid.New(), orgID, now, "amazon", "SKU-1")
		productRow(rows, uuid.New(), orgID, now.Add(-time.Minute), "walmart", "SKU-2")

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE organization_id = \$1 ORDER BY created_at DESC, id DESC LIMIT .*`).
			WillReturnRows(rows)

		page, err := repo.List(context.Background(), orgID, catalog.ListQuery{
			Marketplace: "walmart",
			ListOptions: shared.ListOptions{Limit: 10},
		})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "SKU-2", page.Items[0].SKU)
		assert.Empty(t, page.NextCursor)
	})

	t.Run("rejects a malformed cursor", func(t *testing.T) {
		gormDB, _, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB, 25)

		_, err := repo.List(context.Background(), uuid.New(), catalog.ListQuery{
			ListOptions: shared.ListOptions{Limit: 10, Cursor: "not-a-cursor!!"},
		})
		assert.Error(t, err)
	})
}

func TestGormProductRepository_Upsert(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB, 25)

	product, err := catalog.NewProduct(uuid.New(), "amazon", "SKU-1")
	require.NoError(t, err)
	product.ApplySnapshot(catalog.Snapshot{
		ExternalID:        "B001",
		Title:             "Title",
		Price:             decimal.NewFromFloat(19.99),
		Currency:          "USD",
		InventoryQuantity: 5,
	})

	mock.ExpectExec(`INSERT INTO "products" .* ON CONFLICT \("organization_id","marketplace","sku"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), product))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_BatchUpsertChunks(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB, 2)

	orgID := uuid.New()
	products := make([]*catalog.Product, 0, 3)
	for _, sku := range []string{"SKU-1", "SKU-2", "SKU-3"} {
		p, err := catalog.NewProduct(orgID, "walmart", sku)
		require.NoError(t, err)
		p.ApplySnapshot(catalog.Snapshot{
			Title:             "Title " + sku,
			Price:             decimal.NewFromFloat(10),
			Currency:          "USD",
			InventoryQuantity: 1,
		})
		products = append(products, p)
	}

	// Three products with a chunk size of two produce two statements
	mock.ExpectExec(`INSERT INTO "products" .* ON CONFLICT`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO "products" .* ON CONFLICT`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	written, err := repo.BatchUpsert(context.Background(), orgID, products)
	require.NoError(t, err)
	assert.Equal(t, 3, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_BatchUpsertReportsPartialWrite(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB, 2)

	orgID := uuid.New()
	products := make([]*catalog.Product, 0, 3)
	for _, sku := range []string{"SKU-1", "SKU-2", "SKU-3"} {
		p, err := catalog.NewProduct(orgID, "walmart", sku)
		require.NoError(t, err)
		products = append(products, p)
	}

	// The first chunk lands, the second fails; the count covers the first
	mock.ExpectExec(`INSERT INTO "products" .* ON CONFLICT`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO "products" .* ON CONFLICT`).
		WillReturnError(errors.New("connection reset"))

	written, err := repo.BatchUpsert(context.Background(), orgID, products)
	require.Error(t, err)
	assert.Equal(t, 2, written)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormProductRepository_BatchUpsertRejectsForeignProducts(t *testing.T) {
	gormDB, _, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB, 25)

	product, err := catalog.NewProduct(uuid.New(), "amazon", "SKU-1")
	require.NoError(t, err)

	written, err := repo.BatchUpsert(context.Background(), uuid.New(), []*catalog.Product{product})
	assert.Error(t, err)
	assert.Zero(t, written)
}

func TestGormProductRepository_Delete(t *testing.T) {
	t.Run("marks the product inactive", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB, 25)

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), uuid.New(), "SKU-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing matches", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB, 25)

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), uuid.New(), "missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
