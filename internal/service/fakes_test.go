package service

// In-memory repository fakes for unit tests. DB() returns nil, which makes
// runTx call the closure directly, so transactional service code runs against
// the fakes without a database.

import (
	"context"
	"errors"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/model"
	"github.com/onnez7/lenzoocrm-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── CashierRepository fake ───────────────────────────────────────────────────

type fakeCashierRepo struct {
	sessions map[uuid.UUID]*model.CashierSession
	sangrias []model.CashierSangria

	// failCreateDup simulates losing the insert race against the partial
	// unique index even when the pre-check saw no open session.
	failCreateDup bool
}

func newFakeCashierRepo() *fakeCashierRepo {
	return &fakeCashierRepo{sessions: make(map[uuid.UUID]*model.CashierSession)}
}

func (r *fakeCashierRepo) DB() *gorm.DB { return nil }

func (r *fakeCashierRepo) CreateSession(_ context.Context, s *model.CashierSession) error {
	if r.failCreateDup {
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range r.sessions {
		if existing.FranchiseID == s.FranchiseID && existing.Status == model.SessionOpen {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *fakeCashierRepo) FindOpenByFranchise(_ context.Context, franchiseID uuid.UUID) (*model.CashierSession, error) {
	for _, s := range r.sessions {
		if s.FranchiseID == franchiseID && s.Status == model.SessionOpen {
			copied := *s
			return &copied, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeCashierRepo) FindSessionByID(_ context.Context, id uuid.UUID) (*model.CashierSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *s
	return &copied, nil
}

func (r *fakeCashierRepo) CloseSessionTx(_ *gorm.DB, id uuid.UUID, finalAmount, difference decimal.Decimal, closeTime time.Time, notes *string) (int64, error) {
	s, ok := r.sessions[id]
	if !ok || s.Status != model.SessionOpen {
		return 0, nil
	}
	s.Status = model.SessionClosed
	s.FinalAmount = &finalAmount
	s.Difference = &difference
	s.CloseTime = &closeTime
	if notes != nil {
		s.Notes = notes
	}
	return 1, nil
}

func (r *fakeCashierRepo) AddSalesTx(_ *gorm.DB, sessionID uuid.UUID, bucket string, amount decimal.Decimal) (int64, error) {
	s, ok := r.sessions[sessionID]
	if !ok || s.Status != model.SessionOpen {
		return 0, nil
	}
	switch bucket {
	case "cash_sales":
		s.CashSales = s.CashSales.Add(amount)
	case "card_sales":
		s.CardSales = s.CardSales.Add(amount)
	case "pix_sales":
		s.PixSales = s.PixSales.Add(amount)
	default:
		return 0, errors.New("unknown bucket " + bucket)
	}
	s.TotalSales = s.TotalSales.Add(amount)
	return 1, nil
}

func (r *fakeCashierRepo) CreateSangria(_ context.Context, s *model.CashierSangria) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	r.sangrias = append(r.sangrias, *s)
	return nil
}

func (r *fakeCashierRepo) ListSangrias(_ context.Context, sessionID uuid.UUID) ([]model.CashierSangria, error) {
	var out []model.CashierSangria
	for _, s := range r.sangrias {
		if s.SessionID == sessionID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeCashierRepo) SumSangrias(_ context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, s := range r.sangrias {
		if s.SessionID == sessionID {
			total = total.Add(s.Amount)
		}
	}
	return total, nil
}

func (r *fakeCashierRepo) ListClosed(_ context.Context, franchiseID uuid.UUID, page, limit int) ([]model.CashierSession, int64, error) {
	var all []model.CashierSession
	for _, s := range r.sessions {
		if s.FranchiseID == franchiseID && s.Status == model.SessionClosed {
			all = append(all, *s)
		}
	}
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

var _ repository.CashierRepository = (*fakeCashierRepo)(nil)

// ── OrderRepository fake ─────────────────────────────────────────────────────

type fakeOrderRepo struct {
	orders  map[uuid.UUID]*model.ServiceOrder
	cashier *fakeCashierRepo // for attaching Session on FindByID
	clients *fakeClientRepo  // for attaching Client on FindByID
	nextNum int64

	// beforeGuardedUpdate, when set, runs just before a guarded write lands.
	// Tests use it to commit a session close in the gap between the service's
	// pre-read and its write.
	beforeGuardedUpdate func()
}

func newFakeOrderRepo(cashier *fakeCashierRepo, clients *fakeClientRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:  make(map[uuid.UUID]*model.ServiceOrder),
		cashier: cashier,
		clients: clients,
	}
}

func (r *fakeOrderRepo) DB() *gorm.DB { return nil }

func (r *fakeOrderRepo) CreateTx(_ *gorm.DB, o *model.ServiceOrder) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	o.CreatedAt = time.Now()
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copied := *o
	// Preload behavior: snapshot the session and client as of this fetch.
	if r.cashier != nil {
		if s, ok := r.cashier.sessions[o.SessionID]; ok {
			sc := *s
			copied.Session = &sc
		}
	}
	if r.clients != nil {
		if c, ok := r.clients.clients[o.ClientID]; ok {
			cc := *c
			copied.Client = &cc
		}
	}
	return &copied, nil
}

func (r *fakeOrderRepo) UpdateFieldsTx(_ *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	o, ok := r.orders[id]
	if !ok {
		return errors.New("not found")
	}
	return applyOrderUpdates(o, updates)
}

func (r *fakeOrderRepo) UpdateFieldsGuardedTx(_ *gorm.DB, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	if r.beforeGuardedUpdate != nil {
		r.beforeGuardedUpdate()
	}
	o, ok := r.orders[id]
	if !ok {
		return 0, nil
	}
	session, ok := r.cashier.sessions[o.SessionID]
	if !ok || session.Status != model.SessionOpen {
		return 0, nil
	}
	if err := applyOrderUpdates(o, updates); err != nil {
		return 0, err
	}
	return 1, nil
}

func applyOrderUpdates(o *model.ServiceOrder, updates map[string]interface{}) error {
	for k, v := range updates {
		switch k {
		case "status":
			o.Status = v.(string)
		case "payment_method":
			pm := v.(string)
			o.PaymentMethod = &pm
		case "card_installments":
			ci := v.(int)
			o.CardInstallments = &ci
		case "card_interest":
			d := v.(decimal.Decimal)
			o.CardInterest = &d
		case "total_paid":
			o.TotalPaid = v.(decimal.Decimal)
		case "total_amount":
			o.TotalAmount = v.(decimal.Decimal)
		case "product_delivered":
			o.ProductDelivered = v.(bool)
		case "cancellation_reason":
			s := v.(string)
			o.CancellationReason = &s
		case "description":
			s := v.(string)
			o.Description = &s
		case "notes":
			s := v.(string)
			o.Notes = &s
		default:
			return errors.New("unexpected update field " + k)
		}
	}
	return nil
}

func (r *fakeOrderRepo) ReplaceItemsTx(_ *gorm.DB, orderID uuid.UUID, items []model.ServiceOrderItem) error {
	o, ok := r.orders[orderID]
	if !ok {
		return errors.New("not found")
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = orderID
	}
	o.Items = items
	return nil
}

func (r *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) List(_ context.Context, franchiseID uuid.UUID, filter dto.OrderFilter) ([]model.ServiceOrder, int64, error) {
	var out []model.ServiceOrder
	for _, o := range r.orders {
		if o.FranchiseID != franchiseID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && o.Status != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) CompletedInstallmentsBySessionTx(_ *gorm.DB, sessionID uuid.UUID) ([]model.ServiceOrder, error) {
	var out []model.ServiceOrder
	for _, o := range r.orders {
		if o.SessionID == sessionID && o.Status == model.OrderCompleted &&
			o.PaymentMethod != nil && *o.PaymentMethod == model.PaymentInstallments {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) NextOrderNumber(_ context.Context, _ *gorm.DB) (int64, error) {
	r.nextNum++
	return r.nextNum, nil
}

var _ repository.OrderRepository = (*fakeOrderRepo)(nil)

// ── ReceivableRepository fake ────────────────────────────────────────────────

type fakeReceivableRepo struct {
	rows []model.Receivable
}

func (r *fakeReceivableRepo) CreateBatchTx(_ *gorm.DB, rows []model.Receivable) error {
	for i := range rows {
		if rows[i].ID == uuid.Nil {
			rows[i].ID = uuid.New()
		}
	}
	r.rows = append(r.rows, rows...)
	return nil
}

func (r *fakeReceivableRepo) List(_ context.Context, franchiseID uuid.UUID, filter dto.ReceivableFilter) ([]model.Receivable, int64, error) {
	var out []model.Receivable
	for _, row := range r.rows {
		if row.FranchiseID != franchiseID {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && row.Status != filter.Status {
			continue
		}
		out = append(out, row)
	}
	return out, int64(len(out)), nil
}

func (r *fakeReceivableRepo) MarkPaid(_ context.Context, franchiseID, id uuid.UUID, paidAt time.Time) (int64, error) {
	for i := range r.rows {
		if r.rows[i].ID == id && r.rows[i].FranchiseID == franchiseID && r.rows[i].Status != model.ReceivablePaid {
			r.rows[i].Status = model.ReceivablePaid
			r.rows[i].PaidAt = &paidAt
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeReceivableRepo) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for i := range r.rows {
		if r.rows[i].Status == model.ReceivablePending && r.rows[i].DueDate.Before(now) {
			r.rows[i].Status = model.ReceivableOverdue
			count++
		}
	}
	return count, nil
}

var _ repository.ReceivableRepository = (*fakeReceivableRepo)(nil)

// ── ProductRepository fake ───────────────────────────────────────────────────

type fakeProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *fakeProductRepo) add(name string, price decimal.Decimal) *model.Product {
	p := &model.Product{ID: uuid.New(), Name: name, SalePrice: price, Active: true}
	r.products[p.ID] = p
	return p
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *fakeProductRepo) List(_ context.Context, franchiseID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.FranchiseID == franchiseID && p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

// ── EmployeeRepository fake ──────────────────────────────────────────────────

type fakeEmployeeRepo struct {
	byUserID map[uuid.UUID]*model.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byUserID: make(map[uuid.UUID]*model.Employee)}
}

func (r *fakeEmployeeRepo) add(userID uuid.UUID) *model.Employee {
	e := &model.Employee{ID: uuid.New(), UserID: &userID, Name: "Funcionário Teste", Active: true}
	r.byUserID[userID] = e
	return e
}

func (r *fakeEmployeeRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.Employee, error) {
	e, ok := r.byUserID[userID]
	if !ok {
		return nil, errors.New("not found")
	}
	return e, nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Employee, error) {
	for _, e := range r.byUserID {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, errors.New("not found")
}

var _ repository.EmployeeRepository = (*fakeEmployeeRepo)(nil)

// ── ClientRepository fake ────────────────────────────────────────────────────

type fakeClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[uuid.UUID]*model.Client)}
}

func (r *fakeClientRepo) add(name string) *model.Client {
	c := &model.Client{ID: uuid.New(), Name: name, Active: true}
	r.clients[c.ID] = c
	return c
}

func (r *fakeClientRepo) Create(_ context.Context, c *model.Client) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	r.clients[c.ID] = c
	return nil
}

func (r *fakeClientRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return c, nil
}

func (r *fakeClientRepo) List(_ context.Context, franchiseID uuid.UUID, page, limit int) ([]model.Client, int64, error) {
	var out []model.Client
	for _, c := range r.clients {
		if c.FranchiseID == franchiseID && c.Active {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

var _ repository.ClientRepository = (*fakeClientRepo)(nil)

// ── UserRepository fake ──────────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.Username] = u
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := r.users[username]
	if !ok || !u.Active {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
