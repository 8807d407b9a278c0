package service

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/redisclient"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService manages a merchant's products, categories, and delivery
// zones, and serves the public storefront view.
type CatalogService struct {
	store  *store.Store
	cache  *redisclient.Client
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, cache *redisclient.Client) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// Storefront is the public catalog page payload for one merchant
type Storefront struct {
	Merchant      *models.Merchant      `json:"merchant"`
	Categories    []models.Category     `json:"categories"`
	Products      []models.Product      `json:"products"`
	DeliveryZones []models.DeliveryZone `json:"delivery_zones"`
}

// GetStorefront assembles the public catalog for a merchant slug,
// served from the Redis cache when fresh.
func (s *CatalogService) GetStorefront(ctx context.Context, slug string) (*Storefront, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.GetStorefront")
	defer span.End()

	if s.cache != nil {
		payload, err := s.cache.GetStorefront(ctx, slug)
		if err != nil {
			s.logger.Warn("Storefront cache read failed", zap.String("slug", slug), zap.Error(err))
		} else if payload != nil {
			var sf Storefront
			if err := json.Unmarshal(payload, &sf); err == nil {
				util.StorefrontCacheHits.Inc()
				return &sf, nil
			}
		}
	}

	merchant, err := s.store.GetMerchantBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant: %w", err)
	}
	if merchant == nil {
		return nil, fmt.Errorf("%w: storefront %s", ErrNotFound, slug)
	}

	categories, err := s.store.ListCategories(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	products, err := s.store.ListActiveProducts(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	zones, err := s.store.ListDeliveryZones(ctx, merchant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery zones: %w", err)
	}

	sf := &Storefront{
		Merchant:      merchant,
		Categories:    activeCategories(categories),
		Products:      products,
		DeliveryZones: activeZones(zones),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(sf); err == nil {
			if err := s.cache.CacheStorefront(ctx, slug, payload); err != nil {
				s.logger.Warn("Storefront cache write failed", zap.String("slug", slug), zap.Error(err))
			}
		}
	}

	return sf, nil
}

// ProductRequest carries the merchant-editable product fields
type ProductRequest struct {
	CategoryID  string `json:"category_id,omitempty"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	PriceUYU    int64  `json:"price_uyu" binding:"required,min=1"`
	ImageURL    string `json:"image_url,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsFeatured  bool   `json:"is_featured"`
	SortOrder   int    `json:"sort_order"`
}

// CreateProduct creates a product with a per-merchant unique slug
func (s *CatalogService) CreateProduct(ctx context.Context, merchantID string, req *ProductRequest) (*models.Product, error) {
	if req.PriceUYU <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	product := &models.Product{
		ID:          uuid.New().String(),
		MerchantID:  merchantID,
		CategoryID:  nullString(req.CategoryID),
		Name:        req.Name,
		Slug:        uniqueSlug(req.Name),
		Description: nullString(req.Description),
		PriceUYU:    req.PriceUYU,
		ImageURL:    nullString(req.ImageURL),
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
		SortOrder:   req.SortOrder,
	}

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateStorefront(ctx, merchantID)
	return product, nil
}

// UpdateProduct mutates a product, scoped to its merchant
func (s *CatalogService) UpdateProduct(ctx context.Context, merchantID, productID string, req *ProductRequest) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, merchantID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}
	if req.PriceUYU <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	product.CategoryID = nullString(req.CategoryID)
	product.Name = req.Name
	product.Description = nullString(req.Description)
	product.PriceUYU = req.PriceUYU
	product.ImageURL = nullString(req.ImageURL)
	product.IsActive = req.IsActive
	product.IsFeatured = req.IsFeatured
	product.SortOrder = req.SortOrder

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.invalidateStorefront(ctx, merchantID)
	return product, nil
}

// DeleteProduct removes a product, scoped to its merchant
func (s *CatalogService) DeleteProduct(ctx context.Context, merchantID, productID string) error {
	if err := s.store.DeleteProduct(ctx, merchantID, productID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.invalidateStorefront(ctx, merchantID)
	return nil
}

// ListProducts retrieves the merchant's full product list for the dashboard
func (s *CatalogService) ListProducts(ctx context.Context, merchantID string) ([]models.Product, error) {
	return s.store.ListProducts(ctx, merchantID)
}

// CategoryRequest carries the merchant-editable category fields
type CategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

// CreateCategory creates a category
func (s *CatalogService) CreateCategory(ctx context.Context, merchantID string, req *CategoryRequest) (*models.Category, error) {
	category := &models.Category{
		ID:         uuid.New().String(),
		MerchantID: merchantID,
		Name:       req.Name,
		Slug:       uniqueSlug(req.Name),
		SortOrder:  req.SortOrder,
		IsActive:   req.IsActive,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateStorefront(ctx, merchantID)
	return category, nil
}

// UpdateCategory mutates a category, scoped to its merchant
func (s *CatalogService) UpdateCategory(ctx context.Context, merchantID, categoryID string, req *CategoryRequest) error {
	category := &models.Category{
		ID:         categoryID,
		MerchantID: merchantID,
		Name:       req.Name,
		SortOrder:  req.SortOrder,
		IsActive:   req.IsActive,
	}
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	s.invalidateStorefront(ctx, merchantID)
	return nil
}

// DeleteCategory removes a category, scoped to its merchant
func (s *CatalogService) DeleteCategory(ctx context.Context, merchantID, categoryID string) error {
	if err := s.store.DeleteCategory(ctx, merchantID, categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.invalidateStorefront(ctx, merchantID)
	return nil
}

// ListCategories retrieves the merchant's categories
func (s *CatalogService) ListCategories(ctx context.Context, merchantID string) ([]models.Category, error) {
	return s.store.ListCategories(ctx, merchantID)
}

// ZoneRequest carries the merchant-editable delivery zone fields
type ZoneRequest struct {
	Name            string `json:"name" binding:"required"`
	Barrio          string `json:"barrio" binding:"required"`
	DeliveryCostUYU int64  `json:"delivery_cost_uyu" binding:"min=0"`
	MinOrderUYU     int64  `json:"min_order_uyu" binding:"min=0"`
	IsActive        bool   `json:"is_active"`
}

// CreateDeliveryZone creates a delivery zone
func (s *CatalogService) CreateDeliveryZone(ctx context.Context, merchantID string, req *ZoneRequest) (*models.DeliveryZone, error) {
	zone := &models.DeliveryZone{
		ID:              uuid.New().String(),
		MerchantID:      merchantID,
		Name:            req.Name,
		Barrio:          req.Barrio,
		DeliveryCostUYU: req.DeliveryCostUYU,
		MinOrderUYU:     req.MinOrderUYU,
		IsActive:        req.IsActive,
	}
	if err := s.store.CreateDeliveryZone(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to create delivery zone: %w", err)
	}
	s.invalidateStorefront(ctx, merchantID)
	return zone, nil
}

// UpdateDeliveryZone mutates a delivery zone, scoped to its merchant
func (s *CatalogService) UpdateDeliveryZone(ctx context.Context, merchantID, zoneID string, req *ZoneRequest) error {
	zone := &models.DeliveryZone{
		ID:              zoneID,
		MerchantID:      merchantID,
		Name:            req.Name,
		Barrio:          req.Barrio,
		DeliveryCostUYU: req.DeliveryCostUYU,
		MinOrderUYU:     req.MinOrderUYU,
		IsActive:        req.IsActive,
	}
	if err := s.store.UpdateDeliveryZone(ctx, zone); err != nil {
		return fmt.Errorf("failed to update delivery zone: %w", err)
	}
	s.invalidateStorefront(ctx, merchantID)
	return nil
}

// DeleteDeliveryZone removes a delivery zone, scoped to its merchant
func (s *CatalogService) DeleteDeliveryZone(ctx context.Context, merchantID, zoneID string) error {
	if err := s.store.DeleteDeliveryZone(ctx, merchantID, zoneID); err != nil {
		return fmt.Errorf("failed to delete delivery zone: %w", err)
	}
	s.invalidateStorefront(ctx, merchantID)
	return nil
}

// ListDeliveryZones retrieves the merchant's delivery zones
func (s *CatalogService) ListDeliveryZones(ctx context.Context, merchantID string) ([]models.DeliveryZone, error) {
	return s.store.ListDeliveryZones(ctx, merchantID)
}

// invalidateStorefront drops the cached public view after a mutation.
// Cache trouble only costs freshness, never the mutation itself.
func (s *CatalogService) invalidateStorefront(ctx context.Context, merchantID string) {
	if s.cache == nil {
		return
	}
	merchant, err := s.store.GetMerchantByID(ctx, merchantID)
	if err != nil || merchant == nil {
		return
	}
	if err := s.cache.InvalidateStorefront(ctx, merchant.Slug); err != nil {
		s.logger.Warn("Storefront cache invalidation failed",
			zap.String("slug", merchant.Slug), zap.Error(err))
	}
}

func activeCategories(categories []models.Category) []models.Category {
	out := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

func activeZones(zones []models.DeliveryZone) []models.DeliveryZone {
	out := make([]models.DeliveryZone, 0, len(zones))
	for _, z := range zones {
		if z.IsActive {
			out = append(out, z)
		}
	}
	return out
}
