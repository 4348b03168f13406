package handler

import (
	"net/http"
	"strconv"

	"github.com/onnez7/lenzoocrm-sub000/internal/apierror"
	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/middleware"
	"github.com/onnez7/lenzoocrm-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CashierHandler struct{ svc service.CashierService }

func NewCashierHandler(svc service.CashierService) *CashierHandler {
	return &CashierHandler{svc: svc}
}

// franchiseID resolves the caller's franchise from the JWT, never from input.
func franchiseID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.FranchiseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("franchise_id inválido no token"))
		return uuid.Nil, false
	}
	return id, true
}

// Open godoc
// @Summary Abre um novo caixa para a franquia
// @Tags cashier
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenSessionRequest true "Dados de abertura"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashier/open [post]
func (h *CashierHandler) Open(c *gin.Context) {
	var req dto.OpenSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), fid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetOpen godoc
// @Summary Retorna o caixa aberto da franquia
// @Tags cashier
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cashier/open-session [get]
func (h *CashierHandler) GetOpen(c *gin.Context) {
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetOpen(c.Request.Context(), fid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Close godoc
// @Summary Fecha o caixa aberto e gera as contas a receber parceladas
// @Tags cashier
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseSessionRequest true "Valores contados por forma de pagamento"
// @Success 200 {object} dto.CloseSessionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashier/close [post]
func (h *CashierHandler) Close(c *gin.Context) {
	var req dto.CloseSessionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), fid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sangria godoc
// @Summary Registra uma retirada de dinheiro do caixa
// @Tags cashier
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SangriaRequest true "Dados da sangria"
// @Success 201 {object} dto.SangriaResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/cashier/sangria [post]
func (h *CashierHandler) Sangria(c *gin.Context) {
	var req dto.SangriaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.RegisterSangria(c.Request.Context(), fid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListSangrias returns every withdrawal registered against a session.
func (h *CashierHandler) ListSangrias(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListSangrias(c.Request.Context(), fid, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// History returns a paginated list of closed sessions for the franchise.
func (h *CashierHandler) History(c *gin.Context) {
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.History(c.Request.Context(), fid, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
