package service

import (
	"context"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/apierror"
	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/repository"

	"github.com/google/uuid"
)

type ReceivableService interface {
	List(ctx context.Context, franchiseID uuid.UUID, filter dto.ReceivableFilter) (*dto.ReceivableListResponse, error)
	MarkPaid(ctx context.Context, franchiseID, id uuid.UUID) error
	// MarkOverdue is invoked by the daily scheduler, not by a handler.
	MarkOverdue(ctx context.Context) (int64, error)
}

type receivableService struct {
	repo repository.ReceivableRepository
}

func NewReceivableService(repo repository.ReceivableRepository) ReceivableService {
	return &receivableService{repo: repo}
}

func (s *receivableService) List(ctx context.Context, franchiseID uuid.UUID, filter dto.ReceivableFilter) (*dto.ReceivableListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	rows, total, err := s.repo.List(ctx, franchiseID, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ReceivableResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.ReceivableResponse{
			ID:          r.ID.String(),
			Category:    r.Category,
			Description: r.Description,
			Amount:      r.Amount,
			DueDate:     r.DueDate.Format("2006-01-02"),
			Status:      r.Status,
		}
		if r.OrderID != nil {
			id := r.OrderID.String()
			item.OrderID = &id
		}
		if r.SessionID != nil {
			id := r.SessionID.String()
			item.SessionID = &id
		}
		if r.PaidAt != nil {
			t := r.PaidAt.Format(time.RFC3339)
			item.PaidAt = &t
		}
		data = append(data, item)
	}
	return &dto.ReceivableListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *receivableService) MarkPaid(ctx context.Context, franchiseID, id uuid.UUID) error {
	rows, err := s.repo.MarkPaid(ctx, franchiseID, id, time.Now())
	if err != nil {
		return err
	}
	if rows == 0 {
		return apierror.NotFound("conta a receber não encontrada ou já liquidada")
	}
	return nil
}

func (s *receivableService) MarkOverdue(ctx context.Context) (int64, error) {
	return s.repo.MarkOverdue(ctx, time.Now())
}
