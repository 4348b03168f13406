package repository

import (
	"context"

	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	CreateTx(tx *gorm.DB, o *model.ServiceOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
	UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	// UpdateFieldsGuardedTx applies updates only while the order's session is
	// still open. Zero rows affected means a session close committed first and
	// the caller must roll back.
	UpdateFieldsGuardedTx(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (int64, error)
	// ReplaceItemsTx deletes every existing item row for the order and
	// inserts the given replacements, the wholesale-swap update semantics.
	ReplaceItemsTx(tx *gorm.DB, orderID uuid.UUID, items []model.ServiceOrderItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, franchiseID uuid.UUID, filter dto.OrderFilter) ([]model.ServiceOrder, int64, error)
	// CompletedInstallmentsBySessionTx returns the session's completed orders
	// paid in installments, the input of receivable generation at close.
	CompletedInstallmentsBySessionTx(tx *gorm.DB, sessionID uuid.UUID) ([]model.ServiceOrder, error)
	NextOrderNumber(ctx context.Context, tx *gorm.DB) (int64, error)
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.ServiceOrder) error {
	return tx.Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	var o model.ServiceOrder
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Session").Preload("Client").
		First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return tx.Model(&model.ServiceOrder{}).Where("id = ?", id).Updates(updates).Error
}

func (r *orderRepo) UpdateFieldsGuardedTx(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	res := tx.Model(&model.ServiceOrder{}).
		Where("id = ? AND session_id IN (SELECT id FROM cashier_sessions WHERE status = ?)",
			id, model.SessionOpen).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *orderRepo) ReplaceItemsTx(tx *gorm.DB, orderID uuid.UUID, items []model.ServiceOrderItem) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&model.ServiceOrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return tx.Create(&items).Error
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Items go with the order via the DB-level ON DELETE CASCADE.
	return r.db.WithContext(ctx).Delete(&model.ServiceOrder{}, id).Error
}

func (r *orderRepo) List(ctx context.Context, franchiseID uuid.UUID, filter dto.OrderFilter) ([]model.ServiceOrder, int64, error) {
	var orders []model.ServiceOrder
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.ServiceOrder{}).
		Where("franchise_id = ?", franchiseID)

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").Preload("Client").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error

	return orders, total, err
}

func (r *orderRepo) CompletedInstallmentsBySessionTx(tx *gorm.DB, sessionID uuid.UUID) ([]model.ServiceOrder, error) {
	var orders []model.ServiceOrder
	err := tx.
		Where("session_id = ? AND status = ? AND payment_method = ?",
			sessionID, model.OrderCompleted, model.PaymentInstallments).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) NextOrderNumber(ctx context.Context, tx *gorm.DB) (int64, error) {
	// PostgreSQL sequence for atomic order number generation
	var num int64
	err := tx.WithContext(ctx).Raw("SELECT nextval('service_orders_number_seq')").Scan(&num).Error
	return num, err
}
