package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"inventorypos/internal/apierror"
	"inventorypos/internal/dto"
	"inventorypos/internal/repository"
	"inventorypos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// PriceCheckHandler serves the public price check endpoint.
// No authentication required and no side effects.
type PriceCheckHandler struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewPriceCheckHandler(repo repository.ProductRepository, rdb *redis.Client) *PriceCheckHandler {
	return &PriceCheckHandler{repo: repo, rdb: rdb}
}

// GetPrice godoc
// @Summary Price check by SKU (no authentication)
// @Tags price
// @Produce json
// @Param sku path string true "Product SKU"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{sku} [get]
func (h *PriceCheckHandler) GetPrice(c *gin.Context) {
	sku := c.Param("sku")
	ctx := c.Request.Context()
	cacheKey := service.PriceCacheKey(sku)

	// 1. Try Redis cache
	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.PriceCheckResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	// 2. Cache miss, query DB
	product, err := h.repo.FindBySKU(ctx, sku)
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, apierror.New("Product not found"))
			return
		}
		fail(c, err)
		return
	}

	resp := dto.PriceCheckResponse{
		Name:      product.Name,
		SKU:       product.SKU,
		Price:     product.Price,
		Available: product.Quantity,
	}
	if product.Category != nil {
		resp.Category = product.Category.Name
	}

	// 3. Populate cache, best effort
	if h.rdb != nil {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, service.PriceCacheTTL).Err()
		}
	}

	c.JSON(http.StatusOK, resp)
}
