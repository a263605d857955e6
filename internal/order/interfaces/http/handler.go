package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"

	authdomain "github.com/marginalfriend/my-garage/internal/auth/domain"
	catalog "github.com/marginalfriend/my-garage/internal/catalog/domain"
	"github.com/marginalfriend/my-garage/internal/order/application"
	"github.com/marginalfriend/my-garage/internal/order/domain"
	"github.com/marginalfriend/my-garage/pkg/middleware"
)

// OrderHandler 订单 HTTP 处理器，所有路由都要求登录
type OrderHandler struct {
	svc  *application.OrderService
	auth gin.HandlerFunc
}

func NewOrderHandler(svc *application.OrderService, auth gin.HandlerFunc) *OrderHandler {
	return &OrderHandler{svc: svc, auth: auth}
}

// RegisterRoutes 注册路由。
// /admin 与 /checkstock 必须先于 /:orderId 注册，避免被参数路由吞掉。
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/orders", h.auth)
	{
		api.POST("", h.PlaceOrder)
		api.GET("", h.ListOrders)
		api.GET("/admin", middleware.StaffOnly(), h.Report)
		api.GET("/checkstock/:orderId", h.CheckLowStock)
		api.GET("/:orderId", h.GetOrder)
		api.PATCH("/:orderId", middleware.StaffOnly(), h.UpdatePaymentStatus)
		api.PATCH("", h.Cancel)
	}
}

func (h *OrderHandler) fail(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, authdomain.ErrCustomerNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "User not found", "")
	case errors.Is(err, domain.ErrOrderNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "Order not found", "")
	case errors.Is(err, catalog.ErrProductNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "Product not found", "")
	case errors.Is(err, domain.ErrNotOwner), errors.Is(err, domain.ErrNotStaff):
		response.ErrorWithStatus(c, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrEmptyOrder),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrOrderAlreadyFinal),
		errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.Error(c.Request.Context(), "Order operation failed", "action", action, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "Server error", "")
	}
}

func (h *OrderHandler) orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("orderId"), 10, 32)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid order id", "")
		return 0, false
	}
	return uint(id), true
}

type orderItemRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type placeOrderRequest struct {
	Items []orderItemRequest `json:"items" binding:"required"`
}

// PlaceOrder 按请求明细下单，整车随之清空
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]application.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, application.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := h.svc.PlaceOrder(c.Request.Context(), identity, items)
	if err != nil {
		h.fail(c, err, "place order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

// ListOrders 员工看全量，顾客看自己的
func (h *OrderHandler) ListOrders(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	orders, err := h.svc.ListOrders(c.Request.Context(), identity)
	if err != nil {
		h.fail(c, err, "list orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Report 后台分页报表
func (h *OrderHandler) Report(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	filter := domain.ReportFilter{
		Status:  domain.PaymentStatus(c.Query("paymentStatus")),
		Page:    page,
		Limit:   limit,
		SortAsc: c.Query("sort") == "asc",
	}

	report, err := h.svc.Report(c.Request.Context(), identity, filter)
	if err != nil {
		h.fail(c, err, "order report")
		return
	}
	c.JSON(http.StatusOK, report)
}

// CheckLowStock 列出订单里库存告急的商品名
func (h *OrderHandler) CheckLowStock(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	names, err := h.svc.CheckLowStock(c.Request.Context(), identity, id)
	if err != nil {
		h.fail(c, err, "check low stock")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lowStockProducts": names})
}

// GetOrder 读取单个订单
func (h *OrderHandler) GetOrder(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.svc.GetOrder(c.Request.Context(), identity, id)
	if err != nil {
		h.fail(c, err, "get order")
		return
	}
	c.JSON(http.StatusOK, order)
}

type updateStatusRequest struct {
	PaymentStatus domain.PaymentStatus `json:"paymentStatus" binding:"required"`
}

// UpdatePaymentStatus 后台改写支付状态
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	id, ok := h.orderID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	order, err := h.svc.UpdatePaymentStatus(c.Request.Context(), identity, id, req.PaymentStatus)
	if err != nil {
		h.fail(c, err, "update payment status")
		return
	}
	response.Success(c, gin.H{"message": "Payment status updated", "order": order})
}

type cancelRequest struct {
	OrderID uint `json:"orderId" binding:"required"`
}

// Cancel 顾客取消自己的订单
func (h *OrderHandler) Cancel(c *gin.Context) {
	identity, _ := middleware.GetIdentity(c)
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), identity, req.OrderID); err != nil {
		h.fail(c, err, "cancel order")
		return
	}
	response.Success(c, gin.H{"message": "Order cancelled successfully"})
}
