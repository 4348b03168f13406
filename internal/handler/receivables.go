package handler

import (
	"net/http"

	"github.com/onnez7/lenzoocrm-sub000/internal/apierror"
	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReceivableHandler struct{ svc service.ReceivableService }

func NewReceivableHandler(svc service.ReceivableService) *ReceivableHandler {
	return &ReceivableHandler{svc: svc}
}

// List godoc
// @Summary Lista as contas a receber da franquia
// @Tags receivables
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending | paid | overdue | all"
// @Success 200 {object} dto.ReceivableListResponse
// @Router /v1/receivables [get]
func (h *ReceivableHandler) List(c *gin.Context) {
	var filter dto.ReceivableFilter
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

// Pay godoc
// @Summary Liquida uma conta a receber
// @Tags receivables
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID da conta"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/receivables/{id}/pay [patch]
func (h *ReceivableHandler) Pay(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	if err := h.svc.MarkPaid(c.Request.Context(), fid, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
