package order_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fenanpay/commerce-bridge/internal/order"
)

func seeded(status order.Status) *order.Memory {
	m := order.NewMemory()
	m.Put(order.Order{
		ID:         42,
		TotalCents: 1999,
		Currency:   "USD",
		Billing:    order.Billing{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+10000000000"},
		Status:     status,
	})
	return m
}

func TestGetMissing(t *testing.T) {
	m := order.NewMemory()
	_, err := m.Get(context.Background(), 7)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestTotalFormatting(t *testing.T) {
	cases := map[int64]string{
		1999:   "19.99",
		100:    "1.00",
		5:      "0.05",
		123450: "1234.50",
	}
	for cents, want := range cases {
		o := order.Order{TotalCents: cents}
		require.Equal(t, want, o.Total())
	}
}

func TestMarkPaymentCompleteIdempotent(t *testing.T) {
	ctx := context.Background()
	m := seeded(order.StatusPendingPayment)

	require.NoError(t, m.MarkPaymentComplete(ctx, 42))
	o, err := m.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, order.StatusProcessing, o.Status)

	require.NoError(t, m.MarkPaymentComplete(ctx, 42))
	o, err = m.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, order.StatusProcessing, o.Status)
}

func TestPaidOrdersAreNotDemoted(t *testing.T) {
	ctx := context.Background()
	for _, paid := range []order.Status{order.StatusProcessing, order.StatusCompleted} {
		m := seeded(paid)
		require.NoError(t, m.UpdateStatus(ctx, 42, order.StatusFailed, "late failure webhook"))
		o, err := m.Get(ctx, 42)
		require.NoError(t, err)
		require.Equal(t, paid, o.Status, "status %s must survive a failed transition", paid)
		require.Empty(t, m.Notes(42), "refused transitions must not leave notes")
	}
}

func TestUpdateStatusAppendsNote(t *testing.T) {
	ctx := context.Background()
	m := seeded(order.StatusPending)
	require.NoError(t, m.UpdateStatus(ctx, 42, order.StatusPendingPayment, "Awaiting FenanPay payment."))

	o, err := m.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, order.StatusPendingPayment, o.Status)

	notes := m.Notes(42)
	require.Len(t, notes, 1)
	require.Equal(t, "Awaiting FenanPay payment.", notes[0].Text)
}

func TestAppendNoteMissingOrder(t *testing.T) {
	m := order.NewMemory()
	require.ErrorIs(t, m.AppendNote(context.Background(), 9, "x"), order.ErrNotFound)
}
