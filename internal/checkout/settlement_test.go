package checkout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mvmart/go-api/internal/checkout"
	"github.com/mvmart/go-api/pkg/models"
)

func seedOrder(store *memStore, userID bson.ObjectID, method string, grandTotal float64) *models.Order {
	order := &models.Order{
		ID:          bson.NewObjectID(),
		OrderNumber: models.GenerateOrderNumber(),
		UserID:      userID,
		Items: []models.OrderItem{
			{
				ItemID:    bson.NewObjectID(),
				ProductID: bson.NewObjectID(),
				SellerID:  bson.NewObjectID(),
				Name:      "Ceramic Vase",
				Price:     grandTotal,
				Quantity:  1,
				Status:    models.StatusPending,
			},
		},
		Subtotal:   grandTotal,
		GrandTotal: grandTotal,
		Status:     models.StatusPending,
		PaymentInfo: models.PaymentInfo{
			Method: method,
			Status: models.PaymentStatusPending,
		},
	}
	store.orders[order.ID] = order
	return order
}

func TestCreateGatewayOrder_Success(t *testing.T) {
	store := newMemStore()
	gw := newFakeGateway("secret")
	svc := newTestService(store, gw, &fakeNotifier{})

	userID := bson.NewObjectID()
	order := seedOrder(store, userID, models.PaymentMethodGateway, 499.0)

	intent, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	require.NoError(t, err)

	assert.NotEmpty(t, intent.GatewayOrderID)
	assert.Equal(t, int64(49900), intent.Amount, "amount must be in minor units")
	assert.Equal(t, "INR", intent.Currency)
	assert.Equal(t, gw.KeyID(), intent.KeyID)
	assert.Equal(t, order.OrderNumber, intent.OrderNumber)

	assert.Equal(t, intent.GatewayOrderID, store.orders[order.ID].PaymentInfo.GatewayOrderID)
	assert.Equal(t, int64(49900), gw.intents[intent.GatewayOrderID])
}

func TestCreateGatewayOrder_Guards(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, newFakeGateway("secret"), &fakeNotifier{})

	owner := bson.NewObjectID()
	paid := seedOrder(store, owner, models.PaymentMethodGateway, 100)
	paid.PaymentInfo.Status = models.PaymentStatusPaid
	cod := seedOrder(store, owner, models.PaymentMethodCOD, 100)
	open := seedOrder(store, owner, models.PaymentMethodGateway, 100)

	_, err := svc.CreateGatewayOrder(context.Background(), owner, bson.NewObjectID())
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	_, err = svc.CreateGatewayOrder(context.Background(), bson.NewObjectID(), open.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = svc.CreateGatewayOrder(context.Background(), owner, paid.ID)
	assert.ErrorIs(t, err, models.ErrOrderAlreadyPaid)

	_, err = svc.CreateGatewayOrder(context.Background(), owner, cod.ID)
	assert.ErrorIs(t, err, models.ErrWrongPaymentMethod)
}

func TestCreateGatewayOrder_PreservesConcurrentItemUpdate(t *testing.T) {
	store := newMemStore()
	gw := newFakeGateway("secret")
	svc := newTestService(store, gw, &fakeNotifier{})

	userID := bson.NewObjectID()
	order := seedOrder(store, userID, models.PaymentMethodGateway, 750)
	item := order.Items[0]

	// A seller confirms the item while the gateway call is in flight. The
	// intent id write must not revert it.
	gw.onCreate = func() {
		_, err := svc.UpdateItemStatus(context.Background(), item.SellerID, order.ID, item.ItemID,
			models.UpdateItemStatusRequest{Status: models.StatusConfirmed})
		require.NoError(t, err)
	}

	intent, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	require.NoError(t, err)

	stored := store.orders[order.ID]
	assert.Equal(t, models.StatusConfirmed, stored.Items[0].Status)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
	assert.Equal(t, intent.GatewayOrderID, stored.PaymentInfo.GatewayOrderID)
}

func TestVerifyPayment_FailureRecordPreservesConcurrentItemUpdate(t *testing.T) {
	store := newMemStore()
	gw := newFakeGateway("secret")
	svc := newTestService(store, gw, &fakeNotifier{})

	userID := bson.NewObjectID()
	order := seedOrder(store, userID, models.PaymentMethodGateway, 750)
	item := order.Items[0]

	intent, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	require.NoError(t, err)

	// The confirmation lands between the settlement read and the failure
	// write; recording the failed payment must not revert it.
	gw.onVerify = func() {
		_, err := svc.UpdateItemStatus(context.Background(), item.SellerID, order.ID, item.ItemID,
			models.UpdateItemStatusRequest{Status: models.StatusConfirmed})
		require.NoError(t, err)
	}

	_, err = svc.VerifyPayment(context.Background(), userID, checkout.VerifyPaymentRequest{
		OrderID:          order.ID.Hex(),
		GatewayOrderID:   intent.GatewayOrderID,
		GatewayPaymentID: "pay_evil",
		Signature:        "deadbeef",
	})
	require.ErrorIs(t, err, models.ErrSignatureMismatch)

	stored := store.orders[order.ID]
	assert.Equal(t, models.PaymentStatusFailed, stored.PaymentInfo.Status)
	assert.Equal(t, models.StatusConfirmed, stored.Items[0].Status)
}

func TestCreateGatewayOrder_GatewayFailureLeavesOrderUntouched(t *testing.T) {
	store := newMemStore()
	gw := newFakeGateway("secret")
	gw.fail = true
	svc := newTestService(store, gw, &fakeNotifier{})

	userID := bson.NewObjectID()
	order := seedOrder(store, userID, models.PaymentMethodGateway, 100)

	_, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	require.Error(t, err)
	assert.Empty(t, store.orders[order.ID].PaymentInfo.GatewayOrderID)
}

func TestVerifyPayment_Success(t *testing.T) {
	store := newMemStore()
	gw := newFakeGateway("secret")
	svc := newTestService(store, gw, &fakeNotifier{})

	userID := bson.NewObjectID()
	order := seedOrder(store, userID, models.PaymentMethodGateway, 750)

	intent, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	require.NoError(t, err)

	settled, err := svc.VerifyPayment(context.Background(), userID, checkout.VerifyPaymentRequest{
		OrderID:          order.ID.Hex(),
		GatewayOrderID:   intent.GatewayOrderID,
		GatewayPaymentID: "pay_001",
		Signature:        gw.sign(intent.GatewayOrderID, "pay_001"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, settled.PaymentInfo.Status)
	assert.Equal(t, "pay_001", settled.PaymentInfo.GatewayPaymentID)
	require.NotNil(t, settled.PaymentInfo.PaidAt)
	assert.Equal(t, models.PaymentStatusPaid, store.orders[order.ID].PaymentInfo.Status)
}

func TestVerifyPayment_Idempotent(t *testing.T) {
	store := newMemStore()
	gw := newFakeGateway("secret")
	svc := newTestService(store, gw, &fakeNotifier{})

	userID := bson.NewObjectID()
	order := seedOrder(store, userID, models.PaymentMethodGateway, 750)

	intent, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	require.NoError(t, err)

	req := checkout.VerifyPaymentRequest{
		OrderID:          order.ID.Hex(),
		GatewayOrderID:   intent.GatewayOrderID,
		GatewayPaymentID: "pay_once",
		Signature:        gw.sign(intent.GatewayOrderID, "pay_once"),
	}

	first, err := svc.VerifyPayment(context.Background(), userID, req)
	require.NoError(t, err)
	firstPaidAt := *first.PaymentInfo.PaidAt

	// The gateway may deliver the callback twice. The replay must observe the
	// settled state rather than reprocess it.
	second, err := svc.VerifyPayment(context.Background(), userID, req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, second.PaymentInfo.Status)
	assert.Equal(t, "pay_once", second.PaymentInfo.GatewayPaymentID)
	assert.Equal(t, firstPaidAt, *second.PaymentInfo.PaidAt)
}

func TestVerifyPayment_TamperedSignature(t *testing.T) {
	store := newMemStore()
	gw := newFakeGateway("secret")
	svc := newTestService(store, gw, &fakeNotifier{})

	userID := bson.NewObjectID()
	product := seedProduct(store, "Ceramic Vase", 750, 4, true)
	order := seedOrder(store, userID, models.PaymentMethodGateway, 750)
	order.Items[0].ProductID = product.ID

	intent, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), userID, checkout.VerifyPaymentRequest{
		OrderID:          order.ID.Hex(),
		GatewayOrderID:   intent.GatewayOrderID,
		GatewayPaymentID: "pay_evil",
		Signature:        "deadbeef",
	})
	assert.ErrorIs(t, err, models.ErrSignatureMismatch)

	stored := store.orders[order.ID]
	assert.Equal(t, models.PaymentStatusFailed, stored.PaymentInfo.Status)
	assert.Empty(t, stored.PaymentInfo.GatewayPaymentID)
	assert.Nil(t, stored.PaymentInfo.PaidAt)
	assert.Equal(t, 4, store.products[product.ID].Stock)
}

func TestVerifyPayment_WrongIntentID(t *testing.T) {
	store := newMemStore()
	gw := newFakeGateway("secret")
	svc := newTestService(store, gw, &fakeNotifier{})

	userID := bson.NewObjectID()
	order := seedOrder(store, userID, models.PaymentMethodGateway, 750)

	_, err := svc.CreateGatewayOrder(context.Background(), userID, order.ID)
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), userID, checkout.VerifyPaymentRequest{
		OrderID:          order.ID.Hex(),
		GatewayOrderID:   "order_someone_elses",
		GatewayPaymentID: "pay_002",
		Signature:        gw.sign("order_someone_elses", "pay_002"),
	})
	assert.ErrorIs(t, err, models.ErrSignatureMismatch)
}
