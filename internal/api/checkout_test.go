package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waveshop/shopclient/internal/domain"
)

func TestSubmitCheckout(t *testing.T) {
	_, client := newTestShop(t)
	session := NewSessionClient(client)
	checkout := NewCheckoutClient(client)
	ctx := context.Background()

	_, err := session.FetchSession(ctx)
	require.NoError(t, err)
	_, err = session.ApplyBonus(ctx, "999")
	require.NoError(t, err)

	receipt, err := checkout.SubmitCheckout(ctx, []domain.OrderItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 999-2*300-120, receipt.Balance)
	assert.Empty(t, receipt.RewardToken)
}

func TestSubmitCheckout_RewardToken(t *testing.T) {
	fake, client := newTestShop(t)
	fake.SetFlag(12, "anchors-aweigh")

	session := NewSessionClient(client)
	checkout := NewCheckoutClient(client)
	ctx := context.Background()

	_, err := session.FetchSession(ctx)
	require.NoError(t, err)
	fake.CreditAll(20000)

	receipt, err := checkout.SubmitCheckout(ctx, []domain.OrderItem{{ProductID: 12, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "anchors-aweigh", receipt.RewardToken)
	assert.Equal(t, 5000, receipt.Balance)
}

func TestSubmitCheckout_InsufficientBalance(t *testing.T) {
	_, client := newTestShop(t)
	session := NewSessionClient(client)
	checkout := NewCheckoutClient(client)
	ctx := context.Background()

	_, err := session.FetchSession(ctx)
	require.NoError(t, err)

	_, err = checkout.SubmitCheckout(ctx, []domain.OrderItem{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
}

func TestSubmitCheckout_WithoutSession(t *testing.T) {
	_, client := newTestShop(t)
	checkout := NewCheckoutClient(client)

	_, err := checkout.SubmitCheckout(context.Background(), []domain.OrderItem{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSubmitCheckout_UnknownProduct(t *testing.T) {
	_, client := newTestShop(t)
	session := NewSessionClient(client)
	checkout := NewCheckoutClient(client)
	ctx := context.Background()

	_, err := session.FetchSession(ctx)
	require.NoError(t, err)

	_, err = checkout.SubmitCheckout(ctx, []domain.OrderItem{{ProductID: 77, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrCheckoutRejected)
}

func TestSubmitCheckout_GenericRejection(t *testing.T) {
	fake, client := newTestShop(t)
	fake.SetFailCheckout(true)

	session := NewSessionClient(client)
	checkout := NewCheckoutClient(client)
	ctx := context.Background()

	_, err := session.FetchSession(ctx)
	require.NoError(t, err)

	_, err = checkout.SubmitCheckout(ctx, []domain.OrderItem{{ProductID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrCheckoutRejected)
}
