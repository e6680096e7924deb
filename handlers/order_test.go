package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"catalog-service/internal/orders"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderHandler(t *testing.T) {
	r, mock := setupTestAPI(t)

	// Product with price 9.99, ordered twice: stock decremented by 2,
	// total fixed at 19.98.
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("Alice", sqlmock.AnyArg(), int64(0), orders.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE(.+) FROM products").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(9.99))
	mock.ExpectExec("UPDATE products SET stock_quantity").
		WithArgs(int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs(int64(1), int64(1), int64(2), 9.99).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE(.+) FROM order_items").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(19.98))
	mock.ExpectExec("UPDATE orders SET total_price").
		WithArgs(19.98, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rr := doRequest(r, http.MethodPost, "/orders", `{"customer_name":"Alice","items":[{"product_id":1,"quantity":2}]}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"message":"Order created","id":1,"total_price":19.98}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderHandler_ProductMissing(t *testing.T) {
	r, mock := setupTestAPI(t)

	// The order row insert commits before the product lookup fails, so the
	// request 404s while the Pending order stays persisted.
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("Alice", sqlmock.AnyArg(), int64(0), orders.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE(.+) FROM products").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	rr := doRequest(r, http.MethodPost, "/orders", `{"customer_name":"Alice","items":[{"product_id":42,"quantity":1}]}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderHandler_MissingCustomerName(t *testing.T) {
	r, _ := setupTestAPI(t)

	rr := doRequest(r, http.MethodPost, "/orders", `{"items":[{"product_id":1,"quantity":2}]}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"CustomerName value missing"}`, rr.Body.String())
}

func TestCreateOrderHandler_MissingItems(t *testing.T) {
	r, _ := setupTestAPI(t)

	rr := doRequest(r, http.MethodPost, "/orders", `{"customer_name":"Alice"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Items value missing"}`, rr.Body.String())
}

func TestListOrdersHandler(t *testing.T) {
	r, mock := setupTestAPI(t)

	orderDate := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, customer_name, order_date, total_price, status FROM orders ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_name", "order_date", "total_price", "status"}).
			AddRow(1, "Alice", orderDate, 19.98, orders.StatusPending))
	mock.ExpectQuery("SELECT order_id, product_id, quantity, price_at_purchase FROM order_items ORDER BY").
		WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "quantity", "price_at_purchase"}).
			AddRow(1, 1, 2, 9.99))

	rr := doRequest(r, http.MethodGet, "/orders", "")

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []orders.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].CustomerName)
	assert.Equal(t, 19.98, got[0].TotalPrice)
	assert.Equal(t, []orders.OrderItem{{ProductID: 1, Quantity: 2, PriceAtPurchase: 9.99}}, got[0].Items)
}

func TestGetOrderHandler(t *testing.T) {
	r, mock := setupTestAPI(t)

	orderDate := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, customer_name, order_date, total_price, status FROM orders WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_name", "order_date", "total_price", "status"}).
			AddRow(1, "Alice", orderDate, 19.98, orders.StatusPending))
	mock.ExpectQuery("SELECT product_id, quantity, price_at_purchase FROM order_items WHERE order_id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "quantity", "price_at_purchase"}).
			AddRow(1, 2, 9.99))

	rr := doRequest(r, http.MethodGet, "/orders/1", "")

	assert.Equal(t, http.StatusOK, rr.Code)

	var got orders.Order
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	// total_price reflects the price frozen at order time, whatever the
	// product's price is now.
	assert.Equal(t, 19.98, got.TotalPrice)
	assert.Equal(t, []orders.OrderItem{{ProductID: 1, Quantity: 2, PriceAtPurchase: 9.99}}, got.Items)
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	r, mock := setupTestAPI(t)

	mock.ExpectQuery("SELECT id, customer_name, order_date, total_price, status FROM orders WHERE id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	rr := doRequest(r, http.MethodGet, "/orders/42", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, rr.Body.String())
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	r, mock := setupTestAPI(t)

	mock.ExpectQuery("UPDATE orders SET status").
		WithArgs("Shipped", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	rr := doRequest(r, http.MethodPut, "/orders/1/status", `{"status":"Shipped"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Order status updated to Shipped"}`, rr.Body.String())
}

func TestUpdateOrderStatusHandler_NotFound(t *testing.T) {
	r, mock := setupTestAPI(t)

	mock.ExpectQuery("UPDATE orders SET status").
		WithArgs("Shipped", int64(42)).
		WillReturnError(sql.ErrNoRows)

	rr := doRequest(r, http.MethodPut, "/orders/42/status", `{"status":"Shipped"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Order not found"}`, rr.Body.String())
}
