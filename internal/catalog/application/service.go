package application

import (
	"context"
	"mime/multipart"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"

	"github.com/marginalfriend/my-garage/internal/catalog/domain"
	"github.com/marginalfriend/my-garage/internal/catalog/infrastructure/storage"
)

// CatalogService 分类与商品的增删改查
type CatalogService struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	files      storage.FileStore
}

func NewCatalogService(categories domain.CategoryRepository, products domain.ProductRepository, files storage.FileStore) *CatalogService {
	return &CatalogService{categories: categories, products: products, files: files}
}

// --- Category ---

func (s *CatalogService) CreateCategory(ctx context.Context, name string, isActive bool) (*domain.Category, error) {
	category := &domain.Category{Name: name, IsActive: isActive}
	if err := s.categories.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*domain.Category, error) {
	return s.categories.GetCategory(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, name string, isActive bool) (*domain.Category, error) {
	category, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	category.IsActive = isActive
	if err := s.categories.SaveCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.categories.GetCategory(ctx, id); err != nil {
		return err
	}
	return s.categories.DeleteCategory(ctx, id)
}

// --- Product ---

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	CategoryID  uint
	Name        string
	Price       decimal.Decimal
	Description string
	Stock       int
	Files       []*multipart.FileHeader
}

func (s *CatalogService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	if cmd.Price.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidPrice
	}
	if cmd.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}
	if _, err := s.categories.GetCategory(ctx, cmd.CategoryID); err != nil {
		return nil, err
	}

	urls, err := s.saveFiles(cmd.Files)
	if err != nil {
		s.removeFiles(ctx, urls)
		return nil, err
	}

	product := &domain.Product{
		Name:        cmd.Name,
		Price:       cmd.Price,
		Description: cmd.Description,
		Stock:       cmd.Stock,
		IsActive:    true,
		CategoryID:  cmd.CategoryID,
	}
	err = s.products.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.products.SaveProduct(txCtx, product); err != nil {
			return err
		}
		images := make([]domain.Image, 0, len(urls))
		for _, url := range urls {
			images = append(images, domain.Image{URL: url, ProductID: product.ID})
		}
		return s.products.AddImages(txCtx, images)
	})
	if err != nil {
		s.removeFiles(ctx, urls)
		return nil, err
	}
	return s.products.GetProduct(ctx, product.ID)
}

// UpdateProductCommand 更新商品命令。
// KeepImageIDs 列出要保留的既有图片，其余的连同磁盘文件一并删除。
type UpdateProductCommand struct {
	ID           uint
	CategoryID   uint
	Name         string
	Price        decimal.Decimal
	Description  string
	Stock        int
	IsActive     bool
	KeepImageIDs []uint
	Files        []*multipart.FileHeader
}

func (s *CatalogService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	if cmd.Price.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidPrice
	}
	if cmd.Stock < 0 {
		return nil, domain.ErrInvalidStock
	}

	newURLs, err := s.saveFiles(cmd.Files)
	if err != nil {
		s.removeFiles(ctx, newURLs)
		return nil, err
	}

	keep := make(map[uint]bool, len(cmd.KeepImageIDs))
	for _, id := range cmd.KeepImageIDs {
		keep[id] = true
	}

	var droppedURLs []string
	err = s.products.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.products.GetProduct(txCtx, cmd.ID)
		if err != nil {
			return err
		}

		var droppedIDs []uint
		for _, image := range product.Images {
			if !keep[image.ID] {
				droppedIDs = append(droppedIDs, image.ID)
				droppedURLs = append(droppedURLs, image.URL)
			}
		}
		if err := s.products.DeleteImages(txCtx, droppedIDs); err != nil {
			return err
		}

		images := make([]domain.Image, 0, len(newURLs))
		for _, url := range newURLs {
			images = append(images, domain.Image{URL: url, ProductID: product.ID})
		}
		if err := s.products.AddImages(txCtx, images); err != nil {
			return err
		}

		product.Name = cmd.Name
		product.Price = cmd.Price
		product.Description = cmd.Description
		product.Stock = cmd.Stock
		product.IsActive = cmd.IsActive
		product.CategoryID = cmd.CategoryID
		return s.products.SaveProduct(txCtx, product)
	})
	if err != nil {
		s.removeFiles(ctx, newURLs)
		return nil, err
	}

	// 磁盘文件在事务提交后才删，回滚时不丢已有图片
	s.removeFiles(ctx, droppedURLs)
	return s.products.GetProduct(ctx, cmd.ID)
}

// DeleteProduct 删除商品及其图片与购物车引用。
// 仍被订单明细引用的商品拒绝删除，调用方应改为下架（isActive=false）。
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	var imageURLs []string
	err := s.products.WithTx(ctx, func(txCtx context.Context) error {
		product, err := s.products.GetProduct(txCtx, id)
		if err != nil {
			return err
		}

		referenced, err := s.products.CountOrderLines(txCtx, id)
		if err != nil {
			return err
		}
		if referenced > 0 {
			return domain.ErrProductReferenced
		}

		for _, image := range product.Images {
			imageURLs = append(imageURLs, image.URL)
		}
		if err := s.products.DeleteCartEntriesByProduct(txCtx, id); err != nil {
			return err
		}
		if err := s.products.DeleteImagesByProduct(txCtx, id); err != nil {
			return err
		}
		return s.products.DeleteProduct(txCtx, id)
	})
	if err != nil {
		return err
	}

	s.removeFiles(ctx, imageURLs)
	return nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.products.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 10
	}
	return s.products.ListProducts(ctx, filter)
}

func (s *CatalogService) saveFiles(files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.files.Save(file)
		if err != nil {
			return urls, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *CatalogService) removeFiles(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.files.Remove(url); err != nil {
			logging.Warn(ctx, "Failed to remove image file", "url", url, "error", err)
		}
	}
}
