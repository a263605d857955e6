package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"

	"github.com/marginalfriend/my-garage/internal/catalog/application"
	"github.com/marginalfriend/my-garage/internal/catalog/domain"
	"github.com/marginalfriend/my-garage/pkg/middleware"
)

// CatalogHandler 分类与商品的 HTTP 处理器。
// 读操作公开，写操作仅限后台角色。
type CatalogHandler struct {
	svc  *application.CatalogService
	auth gin.HandlerFunc
}

func NewCatalogHandler(svc *application.CatalogService, auth gin.HandlerFunc) *CatalogHandler {
	return &CatalogHandler{svc: svc, auth: auth}
}

// RegisterRoutes 注册路由
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategory)
		categories.POST("", h.auth, middleware.StaffOnly(), h.CreateCategory)
		categories.PUT("/:id", h.auth, middleware.StaffOnly(), h.UpdateCategory)
		categories.DELETE("/:id", h.auth, middleware.StaffOnly(), h.DeleteCategory)
	}
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", h.auth, middleware.StaffOnly(), h.CreateProduct)
		products.PUT("/:id", h.auth, middleware.StaffOnly(), h.UpdateProduct)
		products.DELETE("/:id", h.auth, middleware.StaffOnly(), h.DeleteProduct)
	}
}

func (h *CatalogHandler) fail(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "Category not found", "")
	case errors.Is(err, domain.ErrProductNotFound):
		response.ErrorWithStatus(c, http.StatusNotFound, "Product not found", "")
	case errors.Is(err, domain.ErrProductReferenced):
		response.ErrorWithStatus(c, http.StatusBadRequest, "Product has order history; deactivate it instead", "")
	case errors.Is(err, domain.ErrInvalidPrice), errors.Is(err, domain.ErrInvalidStock):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
	default:
		logging.Error(c.Request.Context(), "Catalog operation failed", "action", action, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "An unexpected error occurred", "")
	}
}

// --- Category ---

type CategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	IsActive bool   `json:"isActive"`
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	category, err := h.svc.CreateCategory(c.Request.Context(), req.Name, req.IsActive)
	if err != nil {
		h.fail(c, err, "create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid category id", "")
		return
	}
	category, err := h.svc.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid category id", "")
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}
	category, err := h.svc.UpdateCategory(c.Request.Context(), id, req.Name, req.IsActive)
	if err != nil {
		h.fail(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid category id", "")
		return
	}
	if err := h.svc.DeleteCategory(c.Request.Context(), id); err != nil {
		h.fail(c, err, "delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Product ---

// CreateProduct 创建商品，multipart 表单，images 字段携带图片文件
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	categoryID, err := parseID(c.PostForm("categoryId"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid categoryId", "")
		return
	}
	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid price", "")
		return
	}
	stock, err := strconv.Atoi(c.PostForm("stock"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid stock", "")
		return
	}
	name := c.PostForm("name")
	if name == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "Missing required fields", "")
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), application.CreateProductCommand{
		CategoryID:  categoryID,
		Name:        name,
		Price:       price,
		Description: c.PostForm("description"),
		Stock:       stock,
		Files:       form.File["images"],
	})
	if err != nil {
		h.fail(c, err, "create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct 更新商品；keepImageIds 指定保留的既有图片
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	categoryID, err := parseID(c.PostForm("categoryId"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid categoryId", "")
		return
	}
	price, err := decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid price", "")
		return
	}
	stock, err := strconv.Atoi(c.PostForm("stock"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid stock", "")
		return
	}
	name := c.PostForm("name")
	if name == "" {
		response.ErrorWithStatus(c, http.StatusBadRequest, "Missing required fields", "")
		return
	}

	var keepImageIDs []uint
	for _, raw := range c.PostFormArray("keepImageIds") {
		imageID, err := parseID(raw)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid keepImageIds", "")
			return
		}
		keepImageIDs = append(keepImageIDs, imageID)
	}

	product, err := h.svc.UpdateProduct(c.Request.Context(), application.UpdateProductCommand{
		ID:           id,
		CategoryID:   categoryID,
		Name:         name,
		Price:        price,
		Description:  c.PostForm("description"),
		Stock:        stock,
		IsActive:     c.PostForm("isActive") == "true",
		KeepImageIDs: keepImageIDs,
		Files:        form.File["images"],
	})
	if err != nil {
		h.fail(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		h.fail(c, err, "delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid product id", "")
		return
	}
	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProducts 分页商品列表，支持名称模糊与分类过滤
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	var categoryID uint
	if raw := c.Query("categoryId"); raw != "" {
		parsed, err := parseID(raw)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid categoryId", "")
			return
		}
		categoryID = parsed
	}

	products, total, err := h.svc.ListProducts(c.Request.Context(), domain.ProductFilter{
		Name:       c.Query("name"),
		CategoryID: categoryID,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		h.fail(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":      products,
		"totalProducts": total,
	})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
