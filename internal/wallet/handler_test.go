package wallet

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Repository behaviour is covered by repository tests and the integration
// suite; these only exercise the request validation paths that never reach
// the database.

func TestCreditHandler_BadRiderID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &Handler{}
	router.POST("/admin/wallets/:riderID/credit", h.Credit)

	body := bytes.NewBufferString(`{"amount_cents": 500}`)
	req := httptest.NewRequest("POST", "/admin/wallets/abc/credit", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreditHandler_NonPositiveAmount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &Handler{}
	router.POST("/admin/wallets/:riderID/credit", h.Credit)

	body := bytes.NewBufferString(`{"amount_cents": -100}`)
	req := httptest.NewRequest("POST", "/admin/wallets/5/credit", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDebitHandler_NonPositiveAmount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &Handler{}
	router.POST("/admin/wallets/:riderID/debit", h.Debit)

	body := bytes.NewBufferString(`{"amount_cents": 0}`)
	req := httptest.NewRequest("POST", "/admin/wallets/5/debit", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
