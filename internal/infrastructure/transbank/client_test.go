package transbank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/autoparts/internal/domain/payment"
	"github.com/xiebiao/autoparts/internal/infrastructure/config"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
)

func testConfig() config.TransbankConfig {
	return config.TransbankConfig{
		Environment:     config.TransbankIntegration,
		CommerceCode:    "597055555532",
		APIKey:          "secret",
		Timeout:         2 * time.Second,
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	}
}

func TestClient_CreateAndCommit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "597055555532", r.Header.Get("Tbk-Api-Key-Id"))
		assert.Equal(t, "secret", r.Header.Get("Tbk-Api-Key-Secret"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == transactionsPath:
			var body createBody
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ORD1", body.BuyOrder)
			assert.Equal(t, int64(3000), body.Amount)
			_, _ = w.Write([]byte(`{"token":"tok-1","url":"https://webpay3gint.transbank.cl/webpayserver/initTransaction"}`))
		case r.Method == http.MethodPut && r.URL.Path == transactionsPath+"/tok-1":
			_, _ = w.Write([]byte(`{
				"vci":"TSY","amount":3000,"status":"AUTHORIZED","buy_order":"ORD1",
				"session_id":"7","authorization_code":"1213","payment_type_code":"VN",
				"response_code":0,"transaction_date":"2024-03-20T20:18:20.000Z",
				"card_detail":{"card_number":"6623"}
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := newClient(testConfig(), srv.URL)
	ctx := context.Background()

	trx, err := client.CreateTransaction(ctx, payment.CreateTransactionRequest{
		BuyOrder:  "ORD1",
		SessionID: "7",
		Amount:    3000,
		ReturnURL: "http://localhost:8080/api/v1/transbank/return",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", trx.Token)

	result, err := client.CommitTransaction(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, result.IsAuthorized())
	assert.Equal(t, int64(3000), result.Amount)
	assert.Equal(t, "6623", result.CardLast4)
	assert.Equal(t, 2024, result.TransactionDate.Year())
}

func TestClient_RejectionDoesNotTripBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error_message":"Invalid value for parameter: token"}`))
	}))
	defer srv.Close()

	client := newClient(testConfig(), srv.URL)
	for i := 0; i < 4; i++ {
		_, err := client.CommitTransaction(context.Background(), "bad")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrGatewayError)
		assert.Contains(t, err.Error(), "Invalid value for parameter")
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
}

func TestClient_ServerErrorsOpenBreaker(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newClient(testConfig(), srv.URL)
	ctx := context.Background()
	req := payment.CreateTransactionRequest{BuyOrder: "ORD1", Amount: 1000}

	for i := 0; i < 2; i++ {
		_, err := client.CreateTransaction(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrGatewayError)
	}

	// 连续失败2次后熔断,不再打到下游
	_, err := client.CreateTransaction(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrGatewayUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestClient_Simulation(t *testing.T) {
	cfg := testConfig()
	cfg.Simulation = true
	cfg.SuccessRate, cfg.PendingRate, cfg.FailureRate = 0.6, 0.2, 0.2
	client := newClient(cfg, "http://unused.invalid")
	ctx := context.Background()

	trx, err := client.CreateTransaction(ctx, payment.CreateTransactionRequest{BuyOrder: "ORD9", Amount: 4500})
	require.NoError(t, err)
	assert.Contains(t, trx.Token, "ORD9")

	result, err := client.CommitTransaction(ctx, trx.Token)
	require.NoError(t, err)
	assert.True(t, result.IsAuthorized())
	assert.Equal(t, int64(4500), result.Amount)

	_, err = client.CommitTransaction(ctx, trx.Token)
	assert.ErrorIs(t, err, apperrors.ErrGatewayError)

	_, err = client.CommitTransaction(ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrGatewayError)

	info := client.Info()
	assert.True(t, info.Simulation)
	assert.Equal(t, 0.6, info.SuccessRate)
}
