package persistence

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/zndr1991-lab/GanteParts/internal/domain/inventory"
	"github.com/zndr1991-lab/GanteParts/internal/domain/shared"
)

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

func newMockItemRepository(t *testing.T) (*GormItemRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormItemRepository(gormDB), mock, mockDB
}

func TestGormItemRepository_FindByIDForOwner(t *testing.T) {
	t.Run("finds owned item", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		itemID := uuid.New()
		ownerID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "owner_id", "sku_internal", "title", "status", "stock"}).
			AddRow(itemID, ownerID, "SKU-001", "Brake pads", "active", 5)

		mock.ExpectQuery(`SELECT \* FROM "inventory_items" WHERE owner_id = \$1 AND id = \$2 .* LIMIT .*`).
			WithArgs(ownerID, itemID, 1).
			WillReturnRows(rows)

		item, err := repo.FindByIDForOwner(context.Background(), ownerID, itemID)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, itemID, item.ID)
		assert.Equal(t, "SKU-001", item.SKUInternal)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "inventory_items"`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByIDForOwner(context.Background(), uuid.New(), uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormItemRepository_FindByIDsForOwner(t *testing.T) {
	t.Run("empty ids short-circuits without query", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		items, err := repo.FindByIDsForOwner(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		assert.Empty(t, items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign ids are silently absent", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		ownerID := uuid.New()
		mine := uuid.New()
		foreign := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "owner_id", "sku_internal"}).
			AddRow(mine, ownerID, "SKU-001")

		mock.ExpectQuery(`SELECT \* FROM "inventory_items" WHERE owner_id = \$1 AND id IN \(\$2,\$3\)`).
			WithArgs(ownerID, mine, foreign).
			WillReturnRows(rows)

		items, err := repo.FindByIDsForOwner(context.Background(), ownerID, []uuid.UUID{mine, foreign})

		assert.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, mine, items[0].ID)
	})
}

func TestGormItemRepository_FindOwnerByListingID(t *testing.T) {
	t.Run("matches case-insensitively", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		ownerID := uuid.New()
		rows := sqlmock.NewRows([]string{"owner_id"}).AddRow(ownerID)

		mock.ExpectQuery(`SELECT "owner_id" FROM "inventory_items" WHERE LOWER\(listing_id\) = \$1 .* LIMIT .*`).
			WithArgs("mlm123456", 1).
			WillReturnRows(rows)

		got, err := repo.FindOwnerByListingID(context.Background(), "MLM123456")

		assert.NoError(t, err)
		assert.Equal(t, ownerID, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown listing id maps to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT "owner_id" FROM "inventory_items"`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindOwnerByListingID(context.Background(), "MLM404")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormItemRepository_UpdateManyByListingID(t *testing.T) {
	t.Run("updates status only", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		ownerID := uuid.New()

		mock.ExpectExec(`UPDATE "inventory_items" SET .* WHERE owner_id = \$\d+ AND LOWER\(listing_id\) = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 2))

		count, err := repo.UpdateManyByListingID(context.Background(), ownerID, "MLM123456",
			inventory.ListingPatch{Status: inventory.StatusPaused})

		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching rows reports zero without error", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "inventory_items" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		stock := 9
		count, err := repo.UpdateManyByListingID(context.Background(), uuid.New(), "MLM1",
			inventory.ListingPatch{Status: inventory.StatusActive, Stock: &stock})

		assert.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestGormItemRepository_UpdateStatus(t *testing.T) {
	t.Run("missing item maps to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "inventory_items" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), uuid.New(), inventory.StatusInactive)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormItemRepository_DeleteManyForOwner(t *testing.T) {
	t.Run("returns deleted count", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		ownerID := uuid.New()
		ids := []uuid.UUID{uuid.New(), uuid.New()}

		mock.ExpectExec(`DELETE FROM "inventory_items" WHERE owner_id = \$1 AND id IN \(\$2,\$3\)`).
			WithArgs(ownerID, ids[0], ids[1]).
			WillReturnResult(sqlmock.NewResult(0, 2))

		count, err := repo.DeleteManyForOwner(context.Background(), ownerID, ids)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("empty ids short-circuits", func(t *testing.T) {
		repo, mock, mockDB := newMockItemRepository(t)
		defer mockDB.Close()

		count, err := repo.DeleteManyForOwner(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		assert.Zero(t, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// Model columns must line up with the migration SQL, otherwise the unique
// owner+SKU index never applies to the rows GORM writes.
func TestItemModelColumnsMatchMigration(t *testing.T) {
	parsed, err := schema.Parse(&inventory.Item{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	expected := map[string]string{
		"SKUInternal":       "sku_internal",
		"OwnerID":           "owner_id",
		"ListingID":         "listing_id",
		"SellerCustomField": "seller_custom_field",
	}
	for fieldName, column := range expected {
		field := parsed.LookUpField(fieldName)
		require.NotNil(t, field, fieldName)
		assert.Equal(t, column, field.DBName, fieldName)
	}
}
