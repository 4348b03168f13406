package handler

import (
	"net/http"

	"github.com/onnez7/lenzoocrm-sub000/internal/apierror"
	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/middleware"
	"github.com/onnez7/lenzoocrm-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct{ svc service.OrderService }

func NewOrderHandler(svc service.OrderService) *OrderHandler { return &OrderHandler{svc: svc} }

func orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// Create godoc
// @Summary Cria uma ordem de serviço ancorada ao caixa aberto
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateOrderRequest true "Dados da ordem"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	claims := middleware.GetClaims(c)
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("user_id inválido no token"))
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), fid, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary Lista as ordens da franquia (padrão: dia corrente)
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param date query string false "Data no formato YYYY-MM-DD"
// @Param status query string false "pending | in_progress | completed | cancelled | all"
// @Success 200 {object} dto.OrderListResponse
// @Router /v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("parâmetros de busca inválidos"))
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), fid, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get returns a single order with items, client, and session.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), fid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary Avança o status de uma ordem (pending → in_progress → completed)
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da ordem"
// @Param body body dto.UpdateOrderStatusRequest true "Novo status"
// @Success 200 {object} dto.OrderResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), fid, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Finalize godoc
// @Summary Finaliza uma ordem registrando o pagamento no caixa
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da ordem"
// @Param body body dto.FinalizeOrderRequest true "Dados do pagamento"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/orders/{id}/finalize [post]
func (h *OrderHandler) Finalize(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req dto.FinalizeOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	if err := h.svc.Finalize(c.Request.Context(), fid, id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Update applies a partial update; a non-nil items array replaces all items.
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req dto.UpdateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), fid, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete removes an order and its items.
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), fid, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
