package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afyapos/backend/internal/domain/payment"
)

func TestDarajaConfig_Validate(t *testing.T) {
	valid := func() *DarajaConfig {
		return &DarajaConfig{
			Env:            "sandbox",
			ConsumerKey:    "key",
			ConsumerSecret: "secret",
			ShortCode:      "174379",
			Passkey:        "passkey",
			CallbackURL:    "https://example.com/callbacks/mpesa",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*DarajaConfig)
		wantErr error
	}{
		{"valid config", func(c *DarajaConfig) {}, nil},
		{"invalid env", func(c *DarajaConfig) { c.Env = "staging" }, ErrDarajaInvalidEnv},
		{"missing consumer key", func(c *DarajaConfig) { c.ConsumerKey = "" }, ErrDarajaMissingConsumerKey},
		{"missing consumer secret", func(c *DarajaConfig) { c.ConsumerSecret = "" }, ErrDarajaMissingConsumerSecret},
		{"missing short code", func(c *DarajaConfig) { c.ShortCode = "" }, ErrDarajaMissingShortCode},
		{"missing passkey", func(c *DarajaConfig) { c.Passkey = "" }, ErrDarajaMissingPasskey},
		{"missing callback URL", func(c *DarajaConfig) { c.CallbackURL = "  " }, ErrDarajaMissingCallbackURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeMsisdn(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"local format", "0712345678", "254712345678", false},
		{"international format", "254712345678", "254712345678", false},
		{"plus prefix", "+254 712 345 678", "254712345678", false},
		{"bare subscriber number", "712345678", "254712345678", false},
		{"safaricom 01x line", "0112345678", "254112345678", false},
		{"too short", "07123", "", true},
		{"letters", "07one2345678", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeMsisdn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// darajaTestServer fakes the two Daraja endpoints the adapter talks to
func darajaTestServer(t *testing.T, authCalls *int32, handlePush http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(authCalls, 1)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "test-token",
			"expires_in":   "3599",
		})
	})
	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", handlePush)
	return httptest.NewServer(mux)
}

func testAdapter(t *testing.T, baseURL string) *DarajaAdapter {
	t.Helper()
	adapter, err := NewDarajaAdapter(&DarajaConfig{
		Env:            "sandbox",
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		ShortCode:      "174379",
		Passkey:        "testpasskey",
		CallbackURL:    "https://example.com/callbacks/mpesa",
		BaseURL:        baseURL,
	})
	require.NoError(t, err)
	return adapter
}

func TestDarajaAdapter_InitiateStkPush(t *testing.T) {
	t.Run("sends normalized request and parses response", func(t *testing.T) {
		var authCalls int32
		var captured darajaStkPushRequest

		server := darajaTestServer(t, &authCalls, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(darajaStkPushResponse{
				MerchantRequestID:   "29115-34620561-1",
				CheckoutRequestID:   "ws_CO_191220191020363925",
				ResponseCode:        "0",
				ResponseDescription: "Success. Request accepted for processing",
				CustomerMessage:     "Success. Request accepted for processing",
			})
		})
		defer server.Close()

		adapter := testAdapter(t, server.URL)
		fixedNow := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
		adapter.now = func() time.Time { return fixedNow }

		resp, err := adapter.InitiateStkPush(context.Background(), payment.StkPushRequest{
			PhoneNumber:      "0712 345 678",
			Amount:           decimal.NewFromFloat(1160.00),
			AccountReference: "SAL-20260314-0042",
			Description:      "Pharmacy purchase",
		})
		require.NoError(t, err)

		assert.Equal(t, "ws_CO_191220191020363925", resp.CheckoutRequestID)
		assert.Equal(t, "29115-34620561-1", resp.MerchantRequestID)
		assert.Equal(t, "0", resp.ResponseCode)

		assert.Equal(t, "174379", captured.BusinessShortCode)
		assert.Equal(t, "254712345678", captured.PhoneNumber)
		assert.Equal(t, "254712345678", captured.PartyA)
		assert.Equal(t, "174379", captured.PartyB)
		assert.Equal(t, int64(1160), captured.Amount)
		assert.Equal(t, "CustomerPayBillOnline", captured.TransactionType)
		assert.Equal(t, "SAL-20260314-0042", captured.AccountReference)
		assert.Equal(t, "20260314092653", captured.Timestamp)

		wantPassword := base64.StdEncoding.EncodeToString([]byte("174379" + "testpasskey" + "20260314092653"))
		assert.Equal(t, wantPassword, captured.Password)
	})

	t.Run("caches the OAuth token across calls", func(t *testing.T) {
		var authCalls int32
		server := darajaTestServer(t, &authCalls, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(darajaStkPushResponse{
				CheckoutRequestID: "ws_CO_1",
				ResponseCode:      "0",
			})
		})
		defer server.Close()

		adapter := testAdapter(t, server.URL)
		req := payment.StkPushRequest{
			PhoneNumber:      "0712345678",
			Amount:           decimal.NewFromInt(100),
			AccountReference: "SAL-1",
		}

		_, err := adapter.InitiateStkPush(context.Background(), req)
		require.NoError(t, err)
		_, err = adapter.InitiateStkPush(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, int32(1), atomic.LoadInt32(&authCalls))
	})

	t.Run("maps a Daraja error body", func(t *testing.T) {
		var authCalls int32
		server := darajaTestServer(t, &authCalls, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(darajaErrorResponse{
				RequestID:    "16813-15-1",
				ErrorCode:    "500.001.1001",
				ErrorMessage: "Unable to lock subscriber, a transaction is already in process",
			})
		})
		defer server.Close()

		adapter := testAdapter(t, server.URL)
		_, err := adapter.InitiateStkPush(context.Background(), payment.StkPushRequest{
			PhoneNumber:      "0712345678",
			Amount:           decimal.NewFromInt(100),
			AccountReference: "SAL-1",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDarajaRequestFailed)
		assert.Contains(t, err.Error(), "500.001.1001")
	})

	t.Run("rejects a non-zero response code", func(t *testing.T) {
		var authCalls int32
		server := darajaTestServer(t, &authCalls, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(darajaStkPushResponse{
				ResponseCode:        "1",
				ResponseDescription: "The initiator information is invalid",
			})
		})
		defer server.Close()

		adapter := testAdapter(t, server.URL)
		_, err := adapter.InitiateStkPush(context.Background(), payment.StkPushRequest{
			PhoneNumber:      "0712345678",
			Amount:           decimal.NewFromInt(100),
			AccountReference: "SAL-1",
		})

		assert.ErrorIs(t, err, ErrDarajaRequestFailed)
	})

	t.Run("rejects a non-positive amount before calling out", func(t *testing.T) {
		var authCalls int32
		server := darajaTestServer(t, &authCalls, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("gateway should not be called")
		})
		defer server.Close()

		adapter := testAdapter(t, server.URL)
		_, err := adapter.InitiateStkPush(context.Background(), payment.StkPushRequest{
			PhoneNumber:      "0712345678",
			Amount:           decimal.Zero,
			AccountReference: "SAL-1",
		})

		assert.ErrorIs(t, err, ErrDarajaRequestFailed)
		assert.Equal(t, int32(0), atomic.LoadInt32(&authCalls))
	})

	t.Run("rejects an auth failure", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		adapter := testAdapter(t, server.URL)
		_, err := adapter.InitiateStkPush(context.Background(), payment.StkPushRequest{
			PhoneNumber:      "0712345678",
			Amount:           decimal.NewFromInt(100),
			AccountReference: "SAL-1",
		})

		assert.ErrorIs(t, err, ErrDarajaAuthFailed)
	})
}
