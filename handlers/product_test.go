package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"catalog-service/internal/products"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProductsHandler(t *testing.T) {
	r, mock := setupTestAPI(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "stock_quantity"}).
		AddRow(1, "Widget", "A widget", 9.99, 10).
		AddRow(2, "Gadget", nil, nil, nil)
	mock.ExpectQuery("SELECT id, name, description, price, stock_quantity FROM products ORDER BY id").
		WillReturnRows(rows)

	rr := doRequest(r, http.MethodGet, "/products", "")

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []products.Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "Widget", *got[0].Name)
	// Fields never supplied stay null in the API output.
	assert.Nil(t, got[1].Description)
	assert.Nil(t, got[1].Price)
	assert.Nil(t, got[1].StockQuantity)
}

func TestGetProductHandler(t *testing.T) {
	r, mock := setupTestAPI(t)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "stock_quantity"}).
		AddRow(1, "Widget", "A widget", 9.99, 10)
	mock.ExpectQuery("SELECT id, name, description, price, stock_quantity FROM products WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	rr := doRequest(r, http.MethodGet, "/products/1", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":1,"name":"Widget","description":"A widget","price":9.99,"stock_quantity":10}`, rr.Body.String())
}

func TestGetProductHandler_NotFound(t *testing.T) {
	r, mock := setupTestAPI(t)

	mock.ExpectQuery("SELECT id, name, description, price, stock_quantity FROM products WHERE id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	rr := doRequest(r, http.MethodGet, "/products/42", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rr.Body.String())
}

func TestCreateProductHandler(t *testing.T) {
	r, mock := setupTestAPI(t)

	// Absent fields reach the database as nulls.
	mock.ExpectQuery("INSERT INTO products").
		WithArgs("Widget", nil, 9.99, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	rr := doRequest(r, http.MethodPost, "/products", `{"name":"Widget","price":9.99}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"message":"Product created","id":1}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductHandler_PatchLeavesOtherFieldsUntouched(t *testing.T) {
	r, mock := setupTestAPI(t)

	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"id", "name", "description", "price", "stock_quantity"}).
		AddRow(1, "Widget", "A widget", 9.99, 10)
	mock.ExpectQuery("SELECT id, name, description, price, stock_quantity FROM products WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE products SET name").
		WithArgs("Widget", "A widget", 12.5, int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rr := doRequest(r, http.MethodPut, "/products/1", `{"price":12.5}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Product updated"}`, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProductHandler_NotFound(t *testing.T) {
	r, mock := setupTestAPI(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, name, description, price, stock_quantity FROM products WHERE id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	rr := doRequest(r, http.MethodPut, "/products/42", `{"name":"x"}`)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rr.Body.String())
}

func TestDeleteProductHandler(t *testing.T) {
	r, mock := setupTestAPI(t)

	mock.ExpectQuery("DELETE FROM products WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	rr := doRequest(r, http.MethodDelete, "/products/1", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Product deleted"}`, rr.Body.String())
}

func TestDeleteProductHandler_NotFound(t *testing.T) {
	r, mock := setupTestAPI(t)

	mock.ExpectQuery("DELETE FROM products WHERE id").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	rr := doRequest(r, http.MethodDelete, "/products/42", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, rr.Body.String())
}
