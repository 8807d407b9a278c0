package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePreference(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq PreferenceRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Preference{
			ID:        "pref-123",
			InitPoint: "https://www.mercadopago.com.uy/init/pref-123",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	pref, err := client.CreatePreference(context.Background(), "APP_USR-token", &PreferenceRequest{
		Items: []PreferenceItem{
			{ID: "p1", Title: "Chivito", Quantity: 1, UnitPrice: 450, CurrencyID: "UYU"},
		},
		ExternalReference: "order-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "/checkout/preferences", gotPath)
	assert.Equal(t, "Bearer APP_USR-token", gotAuth)
	assert.Equal(t, "order-1", gotReq.ExternalReference)
	assert.Equal(t, "pref-123", pref.ID)
	assert.Equal(t, "https://www.mercadopago.com.uy/init/pref-123", pref.InitPoint)
}

func TestCreatePreferenceIncomplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Preference{ID: "pref-123"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.CreatePreference(context.Background(), "token", &PreferenceRequest{})
	assert.Error(t, err)
}

func TestGetPayment(t *testing.T) {
	var gotPath, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 123456789,
			"status": "approved",
			"status_detail": "accredited",
			"external_reference": "order-1",
			"transaction_amount": 700
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	payment, err := client.GetPayment(context.Background(), "APP_USR-token", "123456789")
	require.NoError(t, err)

	assert.Equal(t, "/v1/payments/123456789", gotPath)
	assert.Equal(t, "Bearer APP_USR-token", gotAuth)
	assert.Equal(t, "approved", payment.Status)
	assert.Equal(t, "order-1", payment.ExternalReference)
	assert.Equal(t, float64(700), payment.TransactionAmount)
	assert.Equal(t, "123456789", payment.ID.String())
}

func TestGetPaymentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Payment not found", "error": "not_found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)

	_, err := client.GetPayment(context.Background(), "token", "999")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Payment not found")
}
