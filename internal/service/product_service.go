package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"medstock/internal/model"
	"medstock/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DTOs
type CreateProductRequest struct {
	Name      string `json:"name" binding:"required"`
	UnitPrice string `json:"unit_price"`
}

type UpdateProductRequest struct {
	Name      string `json:"name" binding:"required"`
	UnitPrice string `json:"unit_price"`
}

type ProductResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
}

type ProductService interface {
	List(ctx context.Context, page, limit int) ([]ProductResponse, int64, error)
	Create(ctx context.Context, adminID uuid.UUID, req CreateProductRequest) (ProductResponse, error)
	Update(ctx context.Context, adminID, id uuid.UUID, req UpdateProductRequest) (ProductResponse, error)
	Delete(ctx context.Context, adminID, id uuid.UUID) error
}

type productService struct {
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo: productRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func (s *productService) List(ctx context.Context, page, limit int) ([]ProductResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	products, total, err := s.productRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	res := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, toProductResponse(&p))
	}
	return res, total, nil
}

func (s *productService) Create(ctx context.Context, adminID uuid.UUID, req CreateProductRequest) (ProductResponse, error) {
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return ProductResponse{}, err
	}

	product := model.Product{
		Name:      req.Name,
		UnitPrice: price,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.productRepo.Create(txCtx, &product); createErr != nil {
			return fmt.Errorf("failed to create product: %w", createErr)
		}
		return s.logProductAction(txCtx, adminID, model.ActionCreateProduct, &product, req)
	})

	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(&product), nil
}

func (s *productService) Update(ctx context.Context, adminID, id uuid.UUID, req UpdateProductRequest) (ProductResponse, error) {
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return ProductResponse{}, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, ErrInvalidProduct
		}
		return ProductResponse{}, fmt.Errorf("failed to find product: %w", err)
	}

	product.Name = req.Name
	product.UnitPrice = price

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.productRepo.Update(txCtx, product); updateErr != nil {
			return fmt.Errorf("failed to update product: %w", updateErr)
		}
		return s.logProductAction(txCtx, adminID, model.ActionUpdateProduct, product, req)
	})

	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(product), nil
}

func (s *productService) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidProduct
		}
		return fmt.Errorf("failed to find product: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.productRepo.Delete(txCtx, id); deleteErr != nil {
			return fmt.Errorf("failed to delete product: %w", deleteErr)
		}
		return s.logProductAction(txCtx, adminID, model.ActionDeleteProduct, product, nil)
	})
}

func (s *productService) logProductAction(ctx context.Context, adminID uuid.UUID, action string, product *model.Product, payload interface{}) error {
	details, _ := json.Marshal(payload)
	audit := &model.AuditLog{
		UserID:     &adminID,
		Action:     action,
		EntityID:   product.ID.String(),
		EntityName: product.Name,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, audit); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() {
		return decimal.Decimal{}, errors.New("unit_price must be a non-negative number")
	}
	return price, nil
}

func toProductResponse(product *model.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID.String(),
		Name:      product.Name,
		UnitPrice: product.UnitPrice.String(),
	}
}
