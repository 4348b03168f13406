package service

import (
	"context"
	"fmt"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/apierror"
	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/model"
	"github.com/onnez7/lenzoocrm-sub000/internal/repository"
	"github.com/onnez7/lenzoocrm-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, franchiseID, userID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, franchiseID, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, franchiseID uuid.UUID, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	UpdateStatus(ctx context.Context, franchiseID, id uuid.UUID, req dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error)
	Finalize(ctx context.Context, franchiseID, id uuid.UUID, req dto.FinalizeOrderRequest) error
	Update(ctx context.Context, franchiseID, id uuid.UUID, req dto.UpdateOrderRequest) (*dto.OrderResponse, error)
	Delete(ctx context.Context, franchiseID, id uuid.UUID) error
}

type orderService struct {
	repo         repository.OrderRepository
	cashier      CashierService
	cashierRepo  repository.CashierRepository
	productRepo  repository.ProductRepository
	employeeRepo repository.EmployeeRepository
	clientRepo   repository.ClientRepository
	dispatcher   *worker.Dispatcher
}

func NewOrderService(
	repo repository.OrderRepository,
	cashier CashierService,
	cashierRepo repository.CashierRepository,
	productRepo repository.ProductRepository,
	employeeRepo repository.EmployeeRepository,
	clientRepo repository.ClientRepository,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{
		repo:         repo,
		cashier:      cashier,
		cashierRepo:  cashierRepo,
		productRepo:  productRepo,
		employeeRepo: employeeRepo,
		clientRepo:   clientRepo,
		dispatcher:   dispatcher,
	}
}

// ── Transition rules ─────────────────────────────────────────────────────────
// pending → {in_progress, cancelled}
// in_progress → completed
// completed, cancelled → terminal

func validateTransition(from, to string) error {
	switch from {
	case model.OrderPending:
		if to == model.OrderInProgress || to == model.OrderCancelled {
			return nil
		}
		if to == model.OrderCompleted {
			return apierror.StateTransition("a ordem precisa estar em andamento antes de ser concluída")
		}
	case model.OrderInProgress:
		if to == model.OrderCompleted {
			return nil
		}
	}
	return apierror.StateTransition(fmt.Sprintf("transição de status inválida: %s → %s", from, to))
}

// bucketForPayment maps a payment method to the session sales column it
// increments. Installment sales settle on card.
func bucketForPayment(method string) (string, error) {
	switch method {
	case model.PaymentCash:
		return "cash_sales", nil
	case model.PaymentCard, model.PaymentInstallments:
		return "card_sales", nil
	case model.PaymentPix:
		return "pix_sales", nil
	}
	return "", apierror.BadRequest("forma de pagamento inválida")
}

// ── Create ───────────────────────────────────────────────────────────────────
// Requires an open session for the caller's franchise; the order is anchored
// to that session for its entire lifetime.

func (s *orderService) Create(ctx context.Context, franchiseID, userID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	session, err := s.cashier.FindOpenSession(ctx, franchiseID)
	if err != nil {
		return nil, err
	}

	employee, err := s.employeeRepo.FindByUserID(ctx, userID)
	if err != nil || employee == nil {
		return nil, apierror.NotFound("colaborador não encontrado para o usuário autenticado")
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apierror.BadRequest("client_id inválido")
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil || client == nil {
		return nil, apierror.NotFound("cliente não encontrado")
	}

	items, total, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var order model.ServiceOrder
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}
		order = model.ServiceOrder{
			OrderNumber: fmt.Sprintf("OS-%06d", num),
			FranchiseID: franchiseID,
			ClientID:    clientID,
			EmployeeID:  employee.ID,
			SessionID:   session.ID,
			Status:      model.OrderPending,
			TotalAmount: total,
			TotalPaid:   decimal.Zero,
			Description: req.Description,
			Notes:       req.Notes,
			Items:       items,
		}
		return s.repo.CreateTx(tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	resp := orderToResponse(&order)
	resp.ClientName = client.Name
	return resp, nil
}

// resolveItems fetches each product and snapshots its name and price onto the
// item rows. Totals are computed here, never trusted from the client.
func (s *orderService) resolveItems(ctx context.Context, reqItems []dto.OrderItemRequest) ([]model.ServiceOrderItem, decimal.Decimal, error) {
	items := make([]model.ServiceOrderItem, 0, len(reqItems))
	total := decimal.Zero
	for _, item := range reqItems {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, decimal.Zero, apierror.BadRequest("product_id inválido")
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil || p == nil {
			return nil, decimal.Zero, apierror.NotFound(fmt.Sprintf("produto %s não encontrado", item.ProductID))
		}
		if !p.Active {
			return nil, decimal.Zero, apierror.BadRequest(fmt.Sprintf("produto %s está inativo", p.Name))
		}
		lineTotal := p.SalePrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, model.ServiceOrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			UnitPrice:   p.SalePrice,
			TotalPrice:  lineTotal,
		})
	}
	return items, total, nil
}

// ── Get / List ───────────────────────────────────────────────────────────────

// findFranchiseOrder loads an order and hides it from callers of any other
// franchise. A foreign order id is indistinguishable from a missing row.
func (s *orderService) findFranchiseOrder(ctx context.Context, franchiseID, id uuid.UUID) (*model.ServiceOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil || order == nil || order.FranchiseID != franchiseID {
		return nil, apierror.NotFound("ordem de serviço não encontrada")
	}
	return order, nil
}

func (s *orderService) Get(ctx context.Context, franchiseID, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.findFranchiseOrder(ctx, franchiseID, id)
	if err != nil {
		return nil, err
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, franchiseID uuid.UUID, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, total, err := s.repo.List(ctx, franchiseID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── UpdateStatus ─────────────────────────────────────────────────────────────
// The pre-read check rejects the common case; the write itself only lands
// while the owning session is still open (rows-affected check inside the tx),
// so a close racing this call can never slip a status change past the
// receivable scan.

func (s *orderService) UpdateStatus(ctx context.Context, franchiseID, id uuid.UUID, req dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	order, err := s.findFranchiseOrder(ctx, franchiseID, id)
	if err != nil {
		return nil, err
	}
	if order.Session == nil || order.Session.Status != model.SessionOpen {
		return nil, apierror.StateTransition("o caixa desta ordem já foi fechado")
	}
	if err := validateTransition(order.Status, req.Status); err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.UpdateFieldsGuardedTx(tx, id, map[string]interface{}{"status": req.Status})
		if err != nil {
			return err
		}
		if rows == 0 {
			return apierror.StateTransition("o caixa desta ordem já foi fechado")
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	order.Status = req.Status
	return orderToResponse(order), nil
}

// ── Finalize ─────────────────────────────────────────────────────────────────
// One transaction covers the order mutation and the session aggregate bump,
// so a partial failure can never leave the two out of sync. The aggregate
// update is guarded by status='open': zero rows affected means a close won
// the race and the whole finalize rolls back.

func (s *orderService) Finalize(ctx context.Context, franchiseID, id uuid.UUID, req dto.FinalizeOrderRequest) error {
	order, err := s.findFranchiseOrder(ctx, franchiseID, id)
	if err != nil {
		return err
	}
	if order.Session == nil || order.Session.Status != model.SessionOpen {
		return apierror.StateTransition("o caixa desta ordem já foi fechado")
	}
	if err := validateTransition(order.Status, req.Status); err != nil {
		return err
	}

	if req.Status == model.OrderCancelled {
		if req.CancellationReason == nil || *req.CancellationReason == "" {
			return apierror.BadRequest("motivo do cancelamento é obrigatório")
		}
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			updates := map[string]interface{}{
				"status":              model.OrderCancelled,
				"cancellation_reason": *req.CancellationReason,
			}
			if req.Observations != nil {
				updates["notes"] = *req.Observations
			}
			rows, err := s.repo.UpdateFieldsGuardedTx(tx, id, updates)
			if err != nil {
				return err
			}
			if rows == 0 {
				return apierror.StateTransition("o caixa desta ordem já foi fechado")
			}
			return nil
		})
	}

	bucket, err := bucketForPayment(req.PaymentMethod)
	if err != nil {
		return err
	}
	if req.PaymentMethod == model.PaymentInstallments &&
		(req.CardInstallments == nil || *req.CardInstallments < 1) {
		return apierror.BadRequest("card_installments é obrigatório para venda parcelada")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":            model.OrderCompleted,
			"payment_method":    req.PaymentMethod,
			"total_paid":        req.TotalPaid,
			"product_delivered": req.ProductDelivered,
		}
		if req.CardInstallments != nil {
			updates["card_installments"] = *req.CardInstallments
		}
		if req.CardInterest != nil {
			updates["card_interest"] = *req.CardInterest
		}
		if req.Observations != nil {
			updates["notes"] = *req.Observations
		}
		rows, err := s.repo.UpdateFieldsGuardedTx(tx, id, updates)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apierror.StateTransition("o caixa desta ordem já foi fechado")
		}

		rows, err = s.cashierRepo.AddSalesTx(tx, order.SessionID, bucket, req.TotalPaid)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apierror.StateTransition("o caixa desta ordem já foi fechado")
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	// Receipt generation is best-effort and off the request path.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJob{OrderID: id.String()})
	}
	return nil
}

// ── Update ───────────────────────────────────────────────────────────────────
// Partial update. A non-nil Items slice replaces every existing item row and
// recomputes total_amount; finalized orders are immutable.

func (s *orderService) Update(ctx context.Context, franchiseID, id uuid.UUID, req dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	order, err := s.findFranchiseOrder(ctx, franchiseID, id)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderCompleted || order.Status == model.OrderCancelled {
		return nil, apierror.StateTransition("ordens finalizadas não podem ser alteradas")
	}

	var newItems []model.ServiceOrderItem
	var newTotal decimal.Decimal
	if req.Items != nil {
		newItems, newTotal, err = s.resolveItems(ctx, *req.Items)
		if err != nil {
			return nil, err
		}
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}
		if req.Items != nil {
			if err := s.repo.ReplaceItemsTx(tx, id, newItems); err != nil {
				return err
			}
			updates["total_amount"] = newTotal
		}
		if len(updates) == 0 {
			return nil
		}
		return s.repo.UpdateFieldsTx(tx, id, updates)
	})
	if txErr != nil {
		return nil, txErr
	}

	refreshed, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return orderToResponse(refreshed), nil
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *orderService) Delete(ctx context.Context, franchiseID, id uuid.UUID) error {
	if _, err := s.findFranchiseOrder(ctx, franchiseID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func orderToResponse(o *model.ServiceOrder) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	resp := &dto.OrderResponse{
		ID:                 o.ID.String(),
		OrderNumber:        o.OrderNumber,
		ClientID:           o.ClientID.String(),
		EmployeeID:         o.EmployeeID.String(),
		SessionID:          o.SessionID.String(),
		Status:             o.Status,
		TotalAmount:        o.TotalAmount,
		PaymentMethod:      o.PaymentMethod,
		CardInstallments:   o.CardInstallments,
		CardInterest:       o.CardInterest,
		TotalPaid:          o.TotalPaid,
		ProductDelivered:   o.ProductDelivered,
		CancellationReason: o.CancellationReason,
		Description:        o.Description,
		Notes:              o.Notes,
		Items:              items,
		CreatedAt:          o.CreatedAt.Format(time.RFC3339),
	}
	if o.Client != nil {
		resp.ClientName = o.Client.Name
	}
	return resp
}
