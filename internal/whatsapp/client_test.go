package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"099123456", "59899123456"},
		{"99123456", "59899123456"},
		{"598 99 123 456", "59899123456"},
		{"+598 99 123 456", "59899123456"},
		{"09-9123-456", "59899123456"},
		{"14085551234", "14085551234"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPhone(tt.in), "FormatPhone(%q)", tt.in)
	}
}

func TestSendText(t *testing.T) {
	var gotPath, gotAPIKey string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", "tienda")

	err := client.SendText(context.Background(), "099123456", "hola")
	require.NoError(t, err)

	assert.Equal(t, "/message/sendText/tienda", gotPath)
	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "59899123456", gotBody["number"])
	assert.Equal(t, "hola", gotBody["text"])
}

func TestSendTextGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key", "tienda")

	err := client.SendText(context.Background(), "099123456", "hola")
	assert.Error(t, err)
}

func TestSendTextUnconfigured(t *testing.T) {
	client := NewClient("", "", "")

	assert.False(t, client.Configured())
	assert.Error(t, client.SendText(context.Background(), "099123456", "hola"))
}
