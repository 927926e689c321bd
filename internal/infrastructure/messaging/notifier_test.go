package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/infrastructure/config"
)

func newObservedNotifier() (*Notifier, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewNotifier(zap.New(core)), logs
}

func TestNotifier_StockLow(t *testing.T) {
	n, logs := newObservedNotifier()
	body, err := json.Marshal(shared.StockLow{ProductID: 42, SKU: "FIL-001", TotalStock: 1, StockMin: 3})
	require.NoError(t, err)

	require.NoError(t, n.Handle(context.Background(), shared.EventStockLow, body))

	entries := logs.FilterMessage("low stock alert").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "FIL-001", entries[0].ContextMap()["sku"])
}

func TestNotifier_Reconciliation(t *testing.T) {
	n, logs := newObservedNotifier()
	body, err := json.Marshal(shared.PaymentReconciliation{OrderID: 11, PaymentID: 3, ProductID: 42, BranchID: 1, Requested: 3})
	require.NoError(t, err)

	require.NoError(t, n.Handle(context.Background(), shared.EventPaymentReconciliation, body))

	entries := logs.FilterField(zap.Bool("reconciliation", true)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestNotifier_MalformedMessageIsDropped(t *testing.T) {
	n, logs := newObservedNotifier()

	err := n.Handle(context.Background(), shared.EventPaymentApproved, []byte("{not json"))
	assert.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("drop malformed event").Len())
}

func TestNotifier_UnknownRoutingKey(t *testing.T) {
	n, logs := newObservedNotifier()
	assert.NoError(t, n.Handle(context.Background(), "stock.unknown", []byte(`{}`)))
	assert.Equal(t, 1, logs.FilterMessage("event ignored").Len())
}

func TestNewEventPublisher_Disabled(t *testing.T) {
	pub, cleanup, err := NewEventPublisher(config.MQConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, shared.NoopPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), shared.EventOrderCheckedOut, shared.OrderCheckedOut{OrderID: 1}))
}
