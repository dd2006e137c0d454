package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventorypos/internal/config"
	"inventorypos/internal/infra"
	"inventorypos/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	engine *gin.Engine
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := infra.NewSQLite("file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass-1"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{
		Username: "admin", FullName: "Store Admin", PasswordHash: string(hash), Role: model.RoleAdmin, Active: true,
	}).Error)

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "router-test-secret",
		JWTExpirationHours: 1,
		StoreName:          "Corner Shop",
		CurrencyCode:       "NGN",
		InvoiceRetryLimit:  5,
	}
	env := &testEnv{engine: New(cfg, db, nil, Deps{})}
	env.token = env.login(t, "admin", "admin-pass-1")
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) createProduct(t *testing.T, name string, quantity int, price float64) (id, sku string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/products", map[string]interface{}{
		"name": name, "price": price, "cost_price": price * 0.8, "quantity": quantity,
		"reorder_level": 2, "category": "Groceries",
	}, e.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	return body["id"].(string), body["sku"].(string)
}

func TestSaleAndPaymentFlow(t *testing.T) {
	env := setupTestEnv(t)
	id, sku := env.createProduct(t, "Rice 5kg", 10, 100)

	w := env.do(t, http.MethodPost, "/v1/sales", map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": id, "quantity": 2, "price": 100, "discount": 0, "total": 200},
		},
		"customer_name": "Ada Obi", "customer_phone": "08030000000", "amount_paid": 50,
	}, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sale := decode(t, w)
	assert.Equal(t, true, sale["success"])
	assert.Equal(t, "INV-000001", sale["invoice_number"])
	saleID := int64(sale["sale_id"].(float64))

	// Public price check reflects the sale.
	w = env.do(t, http.MethodGet, "/v1/price/"+sku, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(8), decode(t, w)["available"])

	w = env.do(t, http.MethodGet, "/v1/debtors", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	paymentsPath := fmt.Sprintf("/v1/sales/%d/payments", saleID)
	w = env.do(t, http.MethodPost, paymentsPath, map[string]interface{}{"amount": 250}, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	failure := decode(t, w)
	assert.Equal(t, false, failure["success"])
	assert.Equal(t, "overpayment", failure["kind"])

	w = env.do(t, http.MethodPost, paymentsPath, map[string]interface{}{"amount": 150, "method": "card"}, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	paid := decode(t, w)
	assert.Equal(t, "paid", paid["payment_status"])

	w = env.do(t, http.MethodGet, paymentsPath, nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	var history []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history, 2)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/v1/sales/%d/receipt.pdf", saleID), nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt_INV-000001.pdf")

	w = env.do(t, http.MethodPatch, fmt.Sprintf("/v1/sales/%d/receipt", saleID), map[string]string{
		"customer_name": "Ada N. Obi", "customer_phone": "0803",
	}, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada N. Obi", decode(t, w)["customer_name"])

	w = env.do(t, http.MethodGet, "/v1/debtors", nil, env.token)
	assert.Equal(t, float64(0), decode(t, w)["total"])

	w = env.do(t, http.MethodGet, "/v1/inventory/movements?reference=INV-000001", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
}

func TestSaleFailuresMapToStatus(t *testing.T) {
	env := setupTestEnv(t)
	id, _ := env.createProduct(t, "Sugar", 0, 80)

	cart := func(productID string, qty int) map[string]interface{} {
		return map[string]interface{}{
			"items":         []map[string]interface{}{{"product_id": productID, "quantity": qty, "price": 80, "total": 80 * qty}},
			"customer_name": "Ada", "customer_phone": "0803", "amount_paid": 0,
		}
	}

	w := env.do(t, http.MethodPost, "/v1/sales", cart(id, 1), env.token)
	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "out_of_stock", body["kind"])
	assert.Equal(t, "Sugar is OUT OF STOCK", body["error"])

	w = env.do(t, http.MethodPost, "/v1/sales", map[string]interface{}{
		"items": []interface{}{}, "customer_name": "Ada", "customer_phone": "0803",
	}, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "empty_cart", decode(t, w)["kind"])

	w = env.do(t, http.MethodPost, "/v1/sales", cart("00000000-0000-0000-0000-000000000001", 1), env.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product_not_found", decode(t, w)["kind"])

	w = env.do(t, http.MethodPost, "/v1/sales", cart(id, 0), env.token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodGet, "/v1/sales/abc", nil, env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, "/v1/sales/404", nil, env.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	id, sku := env.createProduct(t, "Peak Milk", 3, 2500)

	w := env.do(t, http.MethodGet, "/v1/products/search?q=peak", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	var hits []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, sku, hits[0]["sku"])

	w = env.do(t, http.MethodPatch, "/v1/products/"+id+"/stock", map[string]interface{}{"type": "in", "delta": 5}, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, float64(8), decode(t, w)["quantity_after"])

	w = env.do(t, http.MethodPatch, "/v1/products/"+id+"/stock", map[string]interface{}{"type": "adjustment", "delta": -20}, env.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPut, "/v1/products/"+id, map[string]interface{}{"price": 2700}, env.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodGet, "/v1/products/"+id+"/price-history", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = env.do(t, http.MethodGet, "/v1/inventory/low-stock", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/v1/products/"+id, nil, env.token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, "/v1/products/"+id, nil, env.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, "/v1/price/"+sku, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRolesAndAuth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/debtors", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/login", map[string]string{"username": "admin", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/staff", map[string]interface{}{
		"username": "cashier1", "full_name": "Till Cashier", "password": "cashier-pass", "role": "staff",
	}, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/v1/staff", map[string]interface{}{
		"username": "cashier1", "full_name": "Again", "password": "cashier-pass", "role": "staff",
	}, env.token)
	assert.Equal(t, http.StatusConflict, w.Code)

	cashier := env.login(t, "cashier1", "cashier-pass")
	w = env.do(t, http.MethodPost, "/v1/products", map[string]interface{}{"name": "Nope", "price": 1}, cashier)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodGet, "/v1/staff", nil, cashier)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodGet, "/v1/debtors", nil, cashier)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthWithoutRedis(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode(t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "error", body["redis"])
	assert.Equal(t, "disabled", body["smtp"])
}
