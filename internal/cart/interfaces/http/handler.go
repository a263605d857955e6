package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"

	authdomain "github.com/marginalfriend/my-garage/internal/auth/domain"
	"github.com/marginalfriend/my-garage/internal/cart/application"
	"github.com/marginalfriend/my-garage/internal/cart/domain"
	"github.com/marginalfriend/my-garage/pkg/middleware"
)

// CartHandler 购物车 HTTP 处理器，所有路由都要求登录
type CartHandler struct {
	svc  *application.CartService
	auth gin.HandlerFunc
}

func NewCartHandler(svc *application.CartService, auth gin.HandlerFunc) *CartHandler {
	return &CartHandler{svc: svc, auth: auth}
}

// RegisterRoutes 注册路由
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/cart", h.auth)
	{
		api.POST("", h.AddItem)
		api.GET("", h.GetCart)
		api.GET("/:productId", h.GetItem)
		api.PUT("", h.UpdateItem)
		api.DELETE("", h.RemoveItem)
	}
}

func (h *CartHandler) fail(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, authdomain.ErrCustomerNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "User not found", "")
	case errors.Is(err, domain.ErrProductUnavailable):
		response.ErrorWithStatus(c, http.StatusNotFound, "Product not found or inactive", "")
	case errors.Is(err, domain.ErrEntryNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "Cart item not found", "")
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrInvalidQuantity):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	default:
		logging.Error(c.Request.Context(), "Cart operation failed", "action", action, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "Server error", "")
	}
}

type CartItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// AddItem 加购
func (h *CartHandler) AddItem(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	entry, err := h.svc.AddItem(c.Request.Context(), identity, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(c, err, "add item")
		return
	}
	response.Success(c, gin.H{"message": "Product added to cart successfully", "cartItem": entry})
}

// GetCart 查询整车
func (h *CartHandler) GetCart(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	entries, err := h.svc.GetCart(c.Request.Context(), identity)
	if err != nil {
		h.fail(c, err, "get cart")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetItem 查询单个商品的加购情况
func (h *CartHandler) GetItem(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return
	}

	entry, err := h.svc.GetItem(c.Request.Context(), identity, uint(productID))
	if err != nil {
		h.fail(c, err, "get item")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateItem 更新数量，数量为 0 时删除
func (h *CartHandler) UpdateItem(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	entry, err := h.svc.UpdateItem(c.Request.Context(), identity, req.ProductID, req.Quantity)
	if err != nil {
		h.fail(c, err, "update item")
		return
	}
	if entry == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// RemoveItem 删除条目
func (h *CartHandler) RemoveItem(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := h.svc.RemoveItem(c.Request.Context(), identity, req.ProductID); err != nil {
		h.fail(c, err, "remove item")
		return
	}
	c.Status(http.StatusNoContent)
}
