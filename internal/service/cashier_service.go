package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/apierror"
	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/model"
	"github.com/onnez7/lenzoocrm-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashierService interface {
	Open(ctx context.Context, franchiseID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error)
	GetOpen(ctx context.Context, franchiseID uuid.UUID) (*dto.SessionResponse, error)
	Close(ctx context.Context, franchiseID uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error)
	RegisterSangria(ctx context.Context, franchiseID uuid.UUID, req dto.SangriaRequest) (*dto.SangriaResponse, error)
	ListSangrias(ctx context.Context, franchiseID, sessionID uuid.UUID) ([]dto.SangriaResponse, error)
	History(ctx context.Context, franchiseID uuid.UUID, page, limit int) (*dto.SessionListResponse, error)
	// FindOpenSession is called by OrderService to anchor new orders.
	FindOpenSession(ctx context.Context, franchiseID uuid.UUID) (*model.CashierSession, error)
}

type cashierService struct {
	repo           repository.CashierRepository
	orderRepo      repository.OrderRepository
	receivableRepo repository.ReceivableRepository
}

func NewCashierService(repo repository.CashierRepository, orderRepo repository.OrderRepository, receivableRepo repository.ReceivableRepository) CashierService {
	return &cashierService{repo: repo, orderRepo: orderRepo, receivableRepo: receivableRepo}
}

// ── Open ─────────────────────────────────────────────────────────────────────

func (s *cashierService) Open(ctx context.Context, franchiseID uuid.UUID, req dto.OpenSessionRequest) (*dto.SessionResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return nil, apierror.BadRequest("employee_id inválido")
	}

	// Fast-path guard; the partial unique index on (franchise_id) WHERE
	// status='open' is the authoritative backstop for concurrent opens.
	if existing, err := s.repo.FindOpenByFranchise(ctx, franchiseID); err == nil && existing != nil {
		return nil, apierror.Conflict("já existe um caixa aberto para esta franquia")
	}

	session := &model.CashierSession{
		SessionCode:   newSessionCode(),
		FranchiseID:   franchiseID,
		EmployeeID:    employeeID,
		InitialAmount: req.InitialAmount,
		CashSales:     decimal.Zero,
		CardSales:     decimal.Zero,
		PixSales:      decimal.Zero,
		TotalSales:    decimal.Zero,
		Status:        model.SessionOpen,
		Notes:         req.Notes,
		OpenTime:      time.Now(),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race: another request opened a session between the
			// lookup above and this insert.
			return nil, apierror.Conflict("já existe um caixa aberto para esta franquia")
		}
		return nil, err
	}

	return sessionToResponse(session), nil
}

// ── GetOpen ──────────────────────────────────────────────────────────────────

func (s *cashierService) GetOpen(ctx context.Context, franchiseID uuid.UUID) (*dto.SessionResponse, error) {
	session, err := s.repo.FindOpenByFranchise(ctx, franchiseID)
	if err != nil || session == nil {
		return nil, apierror.NotFound("nenhum caixa aberto para esta franquia")
	}
	return sessionToResponse(session), nil
}

func (s *cashierService) FindOpenSession(ctx context.Context, franchiseID uuid.UUID) (*model.CashierSession, error) {
	session, err := s.repo.FindOpenByFranchise(ctx, franchiseID)
	if err != nil || session == nil {
		return nil, apierror.Conflict("nenhum caixa aberto para esta franquia")
	}
	return session, nil
}

// ── Close ────────────────────────────────────────────────────────────────────
// Single transaction: flip the session to closed (guarded by status='open'
// with a rows-affected check) and generate installment receivables for every
// completed installment order of the session. Either everything lands or
// nothing does.

func (s *cashierService) Close(ctx context.Context, franchiseID uuid.UUID, req dto.CloseSessionRequest) (*dto.CloseSessionResponse, error) {
	session, err := s.repo.FindOpenByFranchise(ctx, franchiseID)
	if err != nil || session == nil {
		return nil, apierror.BadRequest("nenhum caixa aberto para fechar")
	}

	counted := req.CashAmount.Add(req.CardAmount).Add(req.PixAmount)
	expected := session.InitialAmount.Add(session.TotalSales)
	difference := counted.Sub(expected)
	closeTime := time.Now()

	receivablesCreated := 0
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		rows, err := s.repo.CloseSessionTx(tx, session.ID, counted, difference, closeTime, req.Notes)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apierror.StateTransition("o caixa já foi fechado")
		}

		orders, err := s.orderRepo.CompletedInstallmentsBySessionTx(tx, session.ID)
		if err != nil {
			return err
		}
		var receivables []model.Receivable
		for i := range orders {
			receivables = append(receivables, buildInstallmentReceivables(&orders[i], closeTime)...)
		}
		receivablesCreated = len(receivables)
		return s.receivableRepo.CreateBatchTx(tx, receivables)
	})
	if txErr != nil {
		return nil, txErr
	}

	session.Status = model.SessionClosed
	session.FinalAmount = &counted
	session.Difference = &difference
	session.CloseTime = &closeTime
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	sangriaTotal, _ := s.repo.SumSangrias(ctx, session.ID)

	return &dto.CloseSessionResponse{
		Session:            *sessionToResponse(session),
		ExpectedTotal:      expected,
		CountedTotal:       counted,
		Difference:         difference,
		SangriaTotal:       sangriaTotal,
		ReceivablesCreated: receivablesCreated,
	}, nil
}

// ── RegisterSangria ──────────────────────────────────────────────────────────
// Sangrias are append-only and only accepted against an open session of the
// caller's own franchise; a foreign session id reads as not found.

func (s *cashierService) RegisterSangria(ctx context.Context, franchiseID uuid.UUID, req dto.SangriaRequest) (*dto.SangriaResponse, error) {
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		return nil, apierror.BadRequest("session_id inválido")
	}
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil || session == nil || session.FranchiseID != franchiseID {
		return nil, apierror.NotFound("caixa não encontrado")
	}
	if session.Status != model.SessionOpen {
		return nil, apierror.StateTransition("não é possível registrar sangria em caixa fechado")
	}

	sangria := &model.CashierSangria{
		SessionID:   sessionID,
		Amount:      req.Amount,
		Description: req.Description,
	}
	if err := s.repo.CreateSangria(ctx, sangria); err != nil {
		return nil, err
	}
	return sangriaToResponse(sangria), nil
}

func (s *cashierService) ListSangrias(ctx context.Context, franchiseID, sessionID uuid.UUID) ([]dto.SangriaResponse, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil || session == nil || session.FranchiseID != franchiseID {
		return nil, apierror.NotFound("caixa não encontrado")
	}
	sangrias, err := s.repo.ListSangrias(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SangriaResponse, 0, len(sangrias))
	for i := range sangrias {
		out = append(out, *sangriaToResponse(&sangrias[i]))
	}
	return out, nil
}

// ── History ──────────────────────────────────────────────────────────────────

func (s *cashierService) History(ctx context.Context, franchiseID uuid.UUID, page, limit int) (*dto.SessionListResponse, error) {
	sessions, total, err := s.repo.ListClosed(ctx, franchiseID, page, limit)
	if err != nil {
		return nil, err
	}
	data := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		data = append(data, *sessionToResponse(&sessions[i]))
	}
	return &dto.SessionListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// newSessionCode derives a short human-readable code from the current
// timestamp, e.g. "CS-483920".
func newSessionCode() string {
	return fmt.Sprintf("CS-%06d", time.Now().UnixMilli()%1_000_000)
}

func sessionToResponse(s *model.CashierSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:            s.ID.String(),
		SessionCode:   s.SessionCode,
		FranchiseID:   s.FranchiseID.String(),
		EmployeeID:    s.EmployeeID.String(),
		InitialAmount: s.InitialAmount,
		FinalAmount:   s.FinalAmount,
		Difference:    s.Difference,
		CashSales:     s.CashSales,
		CardSales:     s.CardSales,
		PixSales:      s.PixSales,
		TotalSales:    s.TotalSales,
		Status:        s.Status,
		Notes:         s.Notes,
		OpenTime:      s.OpenTime.Format(time.RFC3339),
	}
	if s.CloseTime != nil {
		t := s.CloseTime.Format(time.RFC3339)
		resp.CloseTime = &t
	}
	return resp
}

func sangriaToResponse(s *model.CashierSangria) *dto.SangriaResponse {
	return &dto.SangriaResponse{
		ID:          s.ID.String(),
		SessionID:   s.SessionID.String(),
		Amount:      s.Amount,
		Description: s.Description,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}
