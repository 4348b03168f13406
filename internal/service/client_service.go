package service

import (
	"context"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/model"
	"github.com/onnez7/lenzoocrm-sub000/internal/repository"

	"github.com/google/uuid"
)

type ClientService interface {
	Create(ctx context.Context, franchiseID uuid.UUID, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	List(ctx context.Context, franchiseID uuid.UUID, page, limit int) ([]dto.ClientResponse, int64, error)
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) Create(ctx context.Context, franchiseID uuid.UUID, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	client := &model.Client{
		FranchiseID: franchiseID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Active:      true,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return clientToResponse(client), nil
}

func (s *clientService) List(ctx context.Context, franchiseID uuid.UUID, page, limit int) ([]dto.ClientResponse, int64, error) {
	clients, total, err := s.repo.List(ctx, franchiseID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		out = append(out, *clientToResponse(&clients[i]))
	}
	return out, total, nil
}

func clientToResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Active:    c.Active,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
