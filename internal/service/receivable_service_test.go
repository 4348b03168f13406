package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/apierror"
	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedReceivable(repo *fakeReceivableRepo, franchiseID uuid.UUID, status string, due time.Time) uuid.UUID {
	id := uuid.New()
	repo.rows = append(repo.rows, model.Receivable{
		ID:          id,
		FranchiseID: franchiseID,
		Category:    model.CategoryInstallmentSales,
		Description: "Parcela 1/1 - OS-000001",
		Amount:      decimal.NewFromInt(100),
		DueDate:     due,
		Status:      status,
	})
	return id
}

func TestMarkPaid(t *testing.T) {
	repo := &fakeReceivableRepo{}
	svc := NewReceivableService(repo)
	fid := uuid.New()
	id := seedReceivable(repo, fid, model.ReceivablePending, time.Now().AddDate(0, 1, 0))

	require.NoError(t, svc.MarkPaid(context.Background(), fid, id))

	assert.Equal(t, model.ReceivablePaid, repo.rows[0].Status)
	require.NotNil(t, repo.rows[0].PaidAt)
}

func TestMarkPaidTwice(t *testing.T) {
	repo := &fakeReceivableRepo{}
	svc := NewReceivableService(repo)
	fid := uuid.New()
	id := seedReceivable(repo, fid, model.ReceivablePaid, time.Now())

	err := svc.MarkPaid(context.Background(), fid, id)

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))
}

func TestMarkPaidUnknownID(t *testing.T) {
	repo := &fakeReceivableRepo{}
	svc := NewReceivableService(repo)

	err := svc.MarkPaid(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))
}

func TestMarkPaidOtherFranchise(t *testing.T) {
	repo := &fakeReceivableRepo{}
	svc := NewReceivableService(repo)
	owner := uuid.New()
	id := seedReceivable(repo, owner, model.ReceivablePending, time.Now())

	err := svc.MarkPaid(context.Background(), uuid.New(), id)

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierror.StatusOf(err))
	assert.Equal(t, model.ReceivablePending, repo.rows[0].Status)
}

func TestMarkOverdueSweep(t *testing.T) {
	repo := &fakeReceivableRepo{}
	svc := NewReceivableService(repo)
	fid := uuid.New()

	past := time.Now().AddDate(0, 0, -1)
	future := time.Now().AddDate(0, 0, 10)
	seedReceivable(repo, fid, model.ReceivablePending, past)
	seedReceivable(repo, fid, model.ReceivablePending, future)
	seedReceivable(repo, fid, model.ReceivablePaid, past) // paid stays paid

	rows, err := svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	assert.Equal(t, model.ReceivableOverdue, repo.rows[0].Status)
	assert.Equal(t, model.ReceivablePending, repo.rows[1].Status)
	assert.Equal(t, model.ReceivablePaid, repo.rows[2].Status)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := &fakeReceivableRepo{}
	svc := NewReceivableService(repo)
	fid := uuid.New()
	seedReceivable(repo, fid, model.ReceivablePending, time.Now())
	seedReceivable(repo, fid, model.ReceivablePaid, time.Now())
	seedReceivable(repo, uuid.New(), model.ReceivablePending, time.Now()) // other franchise

	resp, err := svc.List(context.Background(), fid, dto.ReceivableFilter{Status: model.ReceivablePending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, model.ReceivablePending, resp.Data[0].Status)
}
