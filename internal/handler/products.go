package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/apierror"
	"github.com/onnez7/lenzoocrm-sub000/internal/dto"
	"github.com/onnez7/lenzoocrm-sub000/internal/model"
	"github.com/onnez7/lenzoocrm-sub000/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const productCacheTTL = 4 * time.Hour

// ProductHandler serves the read-only product catalog consumed by the order
// creation screen. Reads go through a Redis cache; the catalog changes rarely
// compared to how often it is listed.
type ProductHandler struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductHandler(repo repository.ProductRepository, rdb *redis.Client) *ProductHandler {
	return &ProductHandler{repo: repo, rdb: rdb}
}

// List godoc
// @Summary Lista os produtos ativos da franquia
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ProductResponse
// @Router /v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	cacheKey := "products:" + fid.String()

	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp []dto.ProductResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, gin.H{"data": resp})
			return
		}
	}

	products, err := h.repo.List(ctx, fid)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, productToResponse(&products[i]))
	}

	// Populate cache, best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, productCacheTTL).Err()
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Get returns a single product by id, bypassing the cache. Products of other
// franchises read as not found.
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	fid, ok := franchiseID(c)
	if !ok {
		return
	}
	p, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil || p.FranchiseID != fid {
		c.JSON(http.StatusNotFound, apierror.New("produto não encontrado"))
		return
	}
	c.JSON(http.StatusOK, productToResponse(p))
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		SKU:       p.SKU,
		SalePrice: p.SalePrice,
		Stock:     p.Stock,
		Active:    p.Active,
	}
}
