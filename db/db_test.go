package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"bidmanager/db"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*db.Storage, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return db.NewStorage(sqlx.NewDb(mockDB, "postgres")), mock
}

func tenderRows(id int, client string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "client", "award_date", "description"}).
		AddRow(id, client, time.Now(), "")
}

func TestGetTenderNotFound(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT \* FROM tenders WHERE id=\$1`).
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	_, err := storage.GetTender(context.Background(), 42)
	require.True(t, db.IsNotFound(err))
	require.EqualError(t, err, "tender 42 not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

// Удаление тендера убирает его заказы в той же транзакции
func TestDeleteTenderCascadesOrders(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM orders WHERE tender_id=\$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM tenders WHERE id=\$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, storage.DeleteTender(context.Background(), 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTenderNotFoundRollsBack(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM orders WHERE tender_id=\$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM tenders WHERE id=\$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := storage.DeleteTender(context.Background(), 5)
	require.True(t, db.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Частичное обновление трогает только переданные поля
func TestUpdateTenderPartial(t *testing.T) {
	storage, mock := newMockStorage(t)

	client := "New Client"
	mock.ExpectQuery(`UPDATE tenders SET client=\$1\s+WHERE id=\$2`).
		WithArgs(client, 3).
		WillReturnRows(tenderRows(3, client))

	tender, err := storage.UpdateTender(context.Background(), 3, &db.TenderPatch{Client: &client})
	require.NoError(t, err)
	require.Equal(t, client, tender.Client)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTenderEmptyPatchReadsCurrent(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT \* FROM tenders WHERE id=\$1`).
		WithArgs(3).
		WillReturnRows(tenderRows(3, "Unchanged"))

	tender, err := storage.UpdateTender(context.Background(), 3, &db.TenderPatch{})
	require.NoError(t, err)
	require.Equal(t, "Unchanged", tender.Client)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectQuery(`INSERT INTO products`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := storage.CreateProduct(context.Background(), &db.Product{
		Name: "Office Chair", SKU: "CHAIR-001", UnitSalePrice: 150, UnitCost: 100,
	})
	require.True(t, db.IsDuplicateKey(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductBySKUMissingIsNil(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT \* FROM products WHERE sku=\$1`).
		WithArgs("NOPE").
		WillReturnError(sql.ErrNoRows)

	product, err := storage.GetProductBySKU(context.Background(), "NOPE")
	require.NoError(t, err)
	require.Nil(t, product)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderPartialQuantity(t *testing.T) {
	storage, mock := newMockStorage(t)

	quantity := 25
	mock.ExpectQuery(`UPDATE orders SET awarded_quantity=\$1\s+WHERE id=\$2`).
		WithArgs(quantity, 7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tender_id", "product_id", "awarded_quantity"}).
			AddRow(7, 1, 2, quantity))

	order, err := storage.UpdateOrder(context.Background(), 7, &db.OrderPatch{AwardedQuantity: &quantity})
	require.NoError(t, err)
	require.Equal(t, quantity, order.AwardedQuantity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOrders(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectQuery(`SELECT COUNT\(1\) FROM orders`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	count, err := storage.CountOrders(context.Background())
	require.NoError(t, err)
	require.Equal(t, 6, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
