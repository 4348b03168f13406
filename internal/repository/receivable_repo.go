package repository

import (
	"context"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceivableRepository interface {
	CreateBatchTx(tx *gorm.DB, rows []model.Receivable) error
	List(ctx context.Context, franchiseID uuid.UUID, filter dto.ReceivableFilter) ([]model.Receivable, int64, error)
	// MarkPaid returns 0 rows when the receivable is absent, already paid, or
	// belongs to another franchise.
	MarkPaid(ctx context.Context, franchiseID, id uuid.UUID, paidAt time.Time) (int64, error)
	// MarkOverdue flips pending rows past their due date; run by the daily cron.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type receivableRepo struct{ db *gorm.DB }

func NewReceivableRepository(db *gorm.DB) ReceivableRepository { return &receivableRepo{db: db} }

func (r *receivableRepo) CreateBatchTx(tx *gorm.DB, rows []model.Receivable) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func (r *receivableRepo) List(ctx context.Context, franchiseID uuid.UUID, filter dto.ReceivableFilter) ([]model.Receivable, int64, error) {
	var rows []model.Receivable
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Receivable{}).
		Where("franchise_id = ?", franchiseID)
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("due_date ASC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *receivableRepo) MarkPaid(ctx context.Context, franchiseID, id uuid.UUID, paidAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Receivable{}).
		Where("id = ? AND franchise_id = ? AND status <> ?", id, franchiseID, model.ReceivablePaid).
		Updates(map[string]interface{}{
			"status":  model.ReceivablePaid,
			"paid_at": paidAt,
		})
	return res.RowsAffected, res.Error
}

func (r *receivableRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Receivable{}).
		Where("status = ? AND due_date < ?", model.ReceivablePending, now).
		Update("status", model.ReceivableOverdue)
	return res.RowsAffected, res.Error
}
