package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/onnez7/lenzoocrm-sub000/internal/apierror"
	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	cashierRepo *fakeCashierRepo
	orderRepo   *fakeOrderRepo
	recv        *fakeReceivableRepo
	products    *fakeProductRepo
	employees   *fakeEmployeeRepo
	clients     *fakeClientRepo

	cashierSvc CashierService
	svc        OrderService

	franchise uuid.UUID
	userID    uuid.UUID
	client    *model.Client
}

func newOrderFixture() *orderFixture {
	cashierRepo := newFakeCashierRepo()
	clients := newFakeClientRepo()
	orderRepo := newFakeOrderRepo(cashierRepo, clients)
	recv := &fakeReceivableRepo{}
	products := newFakeProductRepo()
	employees := newFakeEmployeeRepo()

	cashierSvc := NewCashierService(cashierRepo, orderRepo, recv)
	svc := NewOrderService(orderRepo, cashierSvc, cashierRepo, products, employees, clients, nil)

	f := &orderFixture{
		cashierRepo: cashierRepo,
		orderRepo:   orderRepo,
		recv:        recv,
		products:    products,
		employees:   employees,
		clients:     clients,
		cashierSvc:  cashierSvc,
		svc:         svc,
		franchise:   uuid.New(),
		userID:      uuid.New(),
	}
	f.employees.add(f.userID)
	f.client = f.clients.add("Maria Souza")
	return f
}

func (f *orderFixture) openSession(t *testing.T) uuid.UUID {
	t.Helper()
	resp, err := f.cashierSvc.Open(context.Background(), f.franchise, dto.OpenSessionRequest{
		EmployeeID:    uuid.NewString(),
		InitialAmount: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func (f *orderFixture) createOrder(t *testing.T, items []dto.OrderItemRequest) *dto.OrderResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), f.franchise, f.userID, dto.CreateOrderRequest{
		ClientID: f.client.ID.String(),
		Items:    items,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateOrderRequiresOpenSession(t *testing.T) {
	f := newOrderFixture()
	p := f.products.add("Lente CR-39", decimal.NewFromInt(100))

	_, err := f.svc.Create(context.Background(), f.franchise, f.userID, dto.CreateOrderRequest{
		ClientID: f.client.ID.String(),
		Items:    []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
	assert.Empty(t, f.orderRepo.orders)
}

func TestCreateOrderSnapshotsCatalog(t *testing.T) {
	f := newOrderFixture()
	sessionID := f.openSession(t)
	p := f.products.add("Armação Acetato", decimal.NewFromFloat(25.50))

	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 2}})

	assert.Equal(t, "OS-000001", resp.OrderNumber)
	assert.Equal(t, model.OrderPending, resp.Status)
	assert.Equal(t, sessionID.String(), resp.SessionID)
	assert.Equal(t, "51", resp.TotalAmount.String())
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Armação Acetato", resp.Items[0].ProductName)
	assert.Equal(t, "25.5", resp.Items[0].UnitPrice.String())

	// Later catalog edits never rewrite the order.
	p.SalePrice = decimal.NewFromInt(999)
	got, err := f.svc.Get(context.Background(), f.franchise, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, "51", got.TotalAmount.String())
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	f := newOrderFixture()
	f.openSession(t)
	p := f.products.add("Produto Descontinuado", decimal.NewFromInt(10))
	p.Active = false

	_, err := f.svc.Create(context.Background(), f.franchise, f.userID, dto.CreateOrderRequest{
		ClientID: f.client.ID.String(),
		Items:    []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "inativo")
}

func TestStatusTransitionTable(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{model.OrderPending, model.OrderInProgress, true},
		{model.OrderPending, model.OrderCancelled, true},
		{model.OrderPending, model.OrderCompleted, false},
		{model.OrderInProgress, model.OrderCompleted, true},
		{model.OrderInProgress, model.OrderPending, false},
		{model.OrderInProgress, model.OrderCancelled, false},
		{model.OrderCompleted, model.OrderPending, false},
		{model.OrderCompleted, model.OrderInProgress, false},
		{model.OrderCancelled, model.OrderInProgress, false},
		{model.OrderCancelled, model.OrderCompleted, false},
	}
	for _, tc := range cases {
		err := validateTransition(tc.from, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.Error(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
		}
	}
}

func TestUpdateStatusPendingToCompletedRejected(t *testing.T) {
	f := newOrderFixture()
	f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(80))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})

	_, err := f.svc.UpdateStatus(context.Background(), f.franchise, uuid.MustParse(resp.ID),
		dto.UpdateOrderStatusRequest{Status: model.OrderCompleted})

	require.Error(t, err)
	assert.ErrorContains(t, err, "em andamento")
}

func TestFinalizeCashUpdatesSessionBucket(t *testing.T) {
	f := newOrderFixture()
	sessionID := f.openSession(t)
	p := f.products.add("Óculos de Sol", decimal.NewFromInt(200))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	_, err := f.svc.UpdateStatus(context.Background(), f.franchise, orderID,
		dto.UpdateOrderStatusRequest{Status: model.OrderInProgress})
	require.NoError(t, err)

	err = f.svc.Finalize(context.Background(), f.franchise, orderID, dto.FinalizeOrderRequest{
		PaymentMethod:    model.PaymentCash,
		TotalPaid:        decimal.NewFromInt(200),
		ProductDelivered: true,
		Status:           model.OrderCompleted,
	})
	require.NoError(t, err)

	session := f.cashierRepo.sessions[sessionID]
	assert.Equal(t, "200", session.CashSales.String())
	assert.Equal(t, "200", session.TotalSales.String())
	assert.True(t, session.CardSales.IsZero())

	order := f.orderRepo.orders[orderID]
	assert.Equal(t, model.OrderCompleted, order.Status)
	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, model.PaymentCash, *order.PaymentMethod)
	assert.True(t, order.ProductDelivered)
}

func TestFinalizeInstallmentsSettlesOnCardBucket(t *testing.T) {
	f := newOrderFixture()
	sessionID := f.openSession(t)
	p := f.products.add("Multifocal", decimal.NewFromInt(900))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	_, err := f.svc.UpdateStatus(context.Background(), f.franchise, orderID,
		dto.UpdateOrderStatusRequest{Status: model.OrderInProgress})
	require.NoError(t, err)

	installments := 3
	err = f.svc.Finalize(context.Background(), f.franchise, orderID, dto.FinalizeOrderRequest{
		PaymentMethod:    model.PaymentInstallments,
		CardInstallments: &installments,
		TotalPaid:        decimal.NewFromInt(900),
		Status:           model.OrderCompleted,
	})
	require.NoError(t, err)

	session := f.cashierRepo.sessions[sessionID]
	assert.Equal(t, "900", session.CardSales.String())
	assert.True(t, session.CashSales.IsZero())
}

func TestFinalizeInstallmentsRequiresCount(t *testing.T) {
	f := newOrderFixture()
	f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(300))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	_, err := f.svc.UpdateStatus(context.Background(), f.franchise, orderID,
		dto.UpdateOrderStatusRequest{Status: model.OrderInProgress})
	require.NoError(t, err)

	err = f.svc.Finalize(context.Background(), f.franchise, orderID, dto.FinalizeOrderRequest{
		PaymentMethod: model.PaymentInstallments,
		TotalPaid:     decimal.NewFromInt(300),
		Status:        model.OrderCompleted,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "card_installments")
}

func TestFinalizeCancelledRequiresReason(t *testing.T) {
	f := newOrderFixture()
	f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(300))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	err := f.svc.Finalize(context.Background(), f.franchise, orderID, dto.FinalizeOrderRequest{
		Status: model.OrderCancelled,
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "motivo do cancelamento")

	reason := "Cliente desistiu"
	err = f.svc.Finalize(context.Background(), f.franchise, orderID, dto.FinalizeOrderRequest{
		Status:             model.OrderCancelled,
		CancellationReason: &reason,
	})
	require.NoError(t, err)

	order := f.orderRepo.orders[orderID]
	assert.Equal(t, model.OrderCancelled, order.Status)
	require.NotNil(t, order.CancellationReason)
	assert.Equal(t, reason, *order.CancellationReason)
	// Cancellation never touches the session aggregates.
	for _, s := range f.cashierRepo.sessions {
		assert.True(t, s.TotalSales.IsZero())
	}
}

func TestFinalizeAfterSessionClosedRejected(t *testing.T) {
	f := newOrderFixture()
	f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(150))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	_, err := f.svc.UpdateStatus(context.Background(), f.franchise, orderID,
		dto.UpdateOrderStatusRequest{Status: model.OrderInProgress})
	require.NoError(t, err)

	_, err = f.cashierSvc.Close(context.Background(), f.franchise, dto.CloseSessionRequest{})
	require.NoError(t, err)

	err = f.svc.Finalize(context.Background(), f.franchise, orderID, dto.FinalizeOrderRequest{
		PaymentMethod: model.PaymentCash,
		TotalPaid:     decimal.NewFromInt(150),
		Status:        model.OrderCompleted,
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
	// Order untouched
	assert.Equal(t, model.OrderInProgress, f.orderRepo.orders[orderID].Status)
}

func TestUpdateReplacesItemsAndRecomputesTotal(t *testing.T) {
	f := newOrderFixture()
	f.openSession(t)
	pa := f.products.add("Estojo", decimal.NewFromInt(10))
	pb := f.products.add("Flanela", decimal.NewFromInt(5))
	pc := f.products.add("Cordão", decimal.NewFromInt(25))

	resp := f.createOrder(t, []dto.OrderItemRequest{
		{ProductID: pa.ID.String(), Quantity: 2},
		{ProductID: pb.ID.String(), Quantity: 1},
	})
	assert.Equal(t, "25", resp.TotalAmount.String())

	newItems := []dto.OrderItemRequest{{ProductID: pc.ID.String(), Quantity: 1}}
	updated, err := f.svc.Update(context.Background(), f.franchise, uuid.MustParse(resp.ID), dto.UpdateOrderRequest{
		Items: &newItems,
	})
	require.NoError(t, err)
	assert.Equal(t, "25", updated.TotalAmount.String())
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "Cordão", updated.Items[0].ProductName)
}

func TestUpdateFinalizedOrderRejected(t *testing.T) {
	f := newOrderFixture()
	f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(100))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	reason := "Sem estoque"
	require.NoError(t, f.svc.Finalize(context.Background(), f.franchise, orderID, dto.FinalizeOrderRequest{
		Status:             model.OrderCancelled,
		CancellationReason: &reason,
	}))

	desc := "nova descrição"
	_, err := f.svc.Update(context.Background(), f.franchise, orderID, dto.UpdateOrderRequest{Description: &desc})
	require.Error(t, err)
	assert.ErrorContains(t, err, "finalizadas")
}

func TestDeleteOrder(t *testing.T) {
	f := newOrderFixture()
	f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(100))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	require.NoError(t, f.svc.Delete(context.Background(), f.franchise, orderID))
	assert.Empty(t, f.orderRepo.orders)

	err := f.svc.Delete(context.Background(), f.franchise, orderID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))
}

func TestOrderHiddenFromOtherFranchise(t *testing.T) {
	f := newOrderFixture()
	sessionID := f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(100))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)
	intruder := uuid.New()

	_, err := f.svc.Get(context.Background(), intruder, orderID)
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))

	_, err = f.svc.UpdateStatus(context.Background(), intruder, orderID,
		dto.UpdateOrderStatusRequest{Status: model.OrderInProgress})
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))

	err = f.svc.Finalize(context.Background(), intruder, orderID, dto.FinalizeOrderRequest{
		PaymentMethod: model.PaymentCash,
		TotalPaid:     decimal.NewFromInt(100),
		Status:        model.OrderCompleted,
	})
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))

	desc := "alterada"
	_, err = f.svc.Update(context.Background(), intruder, orderID, dto.UpdateOrderRequest{Description: &desc})
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))

	err = f.svc.Delete(context.Background(), intruder, orderID)
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))

	// The order and its session came through untouched.
	order := f.orderRepo.orders[orderID]
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Nil(t, order.Description)
	assert.True(t, f.cashierRepo.sessions[sessionID].TotalSales.IsZero())
}

func TestUpdateStatusAfterSessionClosedRejected(t *testing.T) {
	f := newOrderFixture()
	f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(100))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	_, err := f.cashierSvc.Close(context.Background(), f.franchise, dto.CloseSessionRequest{})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.franchise, orderID,
		dto.UpdateOrderStatusRequest{Status: model.OrderInProgress})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
	assert.Equal(t, model.OrderPending, f.orderRepo.orders[orderID].Status)
}

func TestUpdateStatusCloseRaceRejected(t *testing.T) {
	// The session closes after the pre-read sees it open; the guarded write
	// must refuse to land the status change.
	f := newOrderFixture()
	sessionID := f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(100))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	f.orderRepo.beforeGuardedUpdate = func() {
		f.cashierRepo.sessions[sessionID].Status = model.SessionClosed
	}

	_, err := f.svc.UpdateStatus(context.Background(), f.franchise, orderID,
		dto.UpdateOrderStatusRequest{Status: model.OrderInProgress})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
	assert.Equal(t, model.OrderPending, f.orderRepo.orders[orderID].Status)
}

func TestFinalizeCancelCloseRaceRejected(t *testing.T) {
	f := newOrderFixture()
	sessionID := f.openSession(t)
	p := f.products.add("Lente", decimal.NewFromInt(100))
	resp := f.createOrder(t, []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}})
	orderID := uuid.MustParse(resp.ID)

	f.orderRepo.beforeGuardedUpdate = func() {
		f.cashierRepo.sessions[sessionID].Status = model.SessionClosed
	}

	reason := "Cliente desistiu"
	err := f.svc.Finalize(context.Background(), f.franchise, orderID, dto.FinalizeOrderRequest{
		Status:             model.OrderCancelled,
		CancellationReason: &reason,
	})

	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apierror.StatusOf(err))
	order := f.orderRepo.orders[orderID]
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Nil(t, order.CancellationReason)
}
