package repository

import (
	"context"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashierRepository interface {
	CreateSession(ctx context.Context, s *model.CashierSession) error
	FindOpenByFranchise(ctx context.Context, franchiseID uuid.UUID) (*model.CashierSession, error)
	FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashierSession, error)
	// CloseSessionTx flips an open session to closed and fixes the final
	// figures. Returns the number of rows updated: 0 means the session was
	// already closed (or absent); the caller treats that as a lost race.
	CloseSessionTx(tx *gorm.DB, id uuid.UUID, finalAmount, difference decimal.Decimal, closeTime time.Time, notes *string) (int64, error)
	// AddSalesTx additively bumps one payment bucket plus total_sales,
	// guarded by status='open' so a finalize racing a close loses cleanly.
	AddSalesTx(tx *gorm.DB, sessionID uuid.UUID, bucket string, amount decimal.Decimal) (int64, error)
	CreateSangria(ctx context.Context, s *model.CashierSangria) error
	ListSangrias(ctx context.Context, sessionID uuid.UUID) ([]model.CashierSangria, error)
	SumSangrias(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error)
	ListClosed(ctx context.Context, franchiseID uuid.UUID, page, limit int) ([]model.CashierSession, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in the service layer
}

type cashierRepo struct{ db *gorm.DB }

func NewCashierRepository(db *gorm.DB) CashierRepository { return &cashierRepo{db: db} }

func (r *cashierRepo) DB() *gorm.DB { return r.db }

func (r *cashierRepo) CreateSession(ctx context.Context, s *model.CashierSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashierRepo) FindOpenByFranchise(ctx context.Context, franchiseID uuid.UUID) (*model.CashierSession, error) {
	var s model.CashierSession
	err := r.db.WithContext(ctx).
		Where("franchise_id = ? AND status = ?", franchiseID, model.SessionOpen).
		Order("open_time DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashierRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.CashierSession, error) {
	var s model.CashierSession
	err := r.db.WithContext(ctx).First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *cashierRepo) CloseSessionTx(tx *gorm.DB, id uuid.UUID, finalAmount, difference decimal.Decimal, closeTime time.Time, notes *string) (int64, error) {
	updates := map[string]interface{}{
		"status":       model.SessionClosed,
		"final_amount": finalAmount,
		"difference":   difference,
		"close_time":   closeTime,
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	res := tx.Model(&model.CashierSession{}).
		Where("id = ? AND status = ?", id, model.SessionOpen).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *cashierRepo) AddSalesTx(tx *gorm.DB, sessionID uuid.UUID, bucket string, amount decimal.Decimal) (int64, error) {
	// bucket is one of the fixed column names cash_sales | card_sales |
	// pix_sales, never user input.
	res := tx.Model(&model.CashierSession{}).
		Where("id = ? AND status = ?", sessionID, model.SessionOpen).
		Updates(map[string]interface{}{
			bucket:        gorm.Expr(bucket+" + ?", amount),
			"total_sales": gorm.Expr("total_sales + ?", amount),
		})
	return res.RowsAffected, res.Error
}

func (r *cashierRepo) CreateSangria(ctx context.Context, s *model.CashierSangria) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashierRepo) ListSangrias(ctx context.Context, sessionID uuid.UUID) ([]model.CashierSangria, error) {
	var sangrias []model.CashierSangria
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&sangrias).Error
	return sangrias, err
}

func (r *cashierRepo) SumSangrias(ctx context.Context, sessionID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.CashierSangria{}).
		Select("SUM(amount)").
		Where("session_id = ?", sessionID).
		Scan(&total).Error
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *cashierRepo) ListClosed(ctx context.Context, franchiseID uuid.UUID, page, limit int) ([]model.CashierSession, int64, error) {
	var sessions []model.CashierSession
	var total int64
	q := r.db.WithContext(ctx).Model(&model.CashierSession{}).
		Where("franchise_id = ? AND status = ?", franchiseID, model.SessionClosed)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("close_time DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
