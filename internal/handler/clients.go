package handler

import (
	"net/http"
	"strconv"

	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct{ svc service.ClientService }

func NewClientHandler(svc service.ClientService) *ClientHandler { return &ClientHandler{svc: svc} }

// Create godoc
// @Summary Cadastra um cliente na franquia
// @Tags clients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateClientRequest true "Dados do cliente"
// @Success 201 {object} dto.ClientResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req dto.CreateClientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), fid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List returns a paginated client list for the franchise.
func (h *ClientHandler) List(c *gin.Context) {
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	clients, total, err := h.svc.List(c.Request.Context(), fid, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ClientListResponse{Data: clients, Total: total, Page: page, Limit: limit})
}
