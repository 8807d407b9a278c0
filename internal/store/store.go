package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// ---- users ----

// CreateAccount inserts the auth identity and its merchant profile in one
// transaction, so a failed merchant insert rolls the identity back too.
func (s *Store) CreateAccount(ctx context.Context, user *models.User, merchant *models.Merchant) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO merchants (id, user_id, name, slug, email, whatsapp, barrio, city, currency,
			primary_color, secondary_color, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		merchant.ID, user.ID, merchant.Name, merchant.Slug, merchant.Email,
		merchant.Whatsapp, merchant.Barrio, merchant.City, merchant.Currency,
		merchant.PrimaryColor, merchant.SecondaryColor, merchant.IsActive)
	if err != nil {
		return fmt.Errorf("failed to create merchant: %w", err)
	}

	return tx.Commit()
}

// GetUserByEmail retrieves an auth identity by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ---- merchants ----

// GetMerchantByID retrieves a merchant by ID
func (s *Store) GetMerchantByID(ctx context.Context, id string) (*models.Merchant, error) {
	var m models.Merchant
	err := s.db.GetContext(ctx, &m, "SELECT * FROM merchants WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMerchantBySlug retrieves an active merchant by its storefront slug
func (s *Store) GetMerchantBySlug(ctx context.Context, slug string) (*models.Merchant, error) {
	var m models.Merchant
	err := s.db.GetContext(ctx, &m,
		"SELECT * FROM merchants WHERE slug = $1 AND is_active = TRUE", slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMerchantByUserID retrieves the merchant owned by an auth identity
func (s *Store) GetMerchantByUserID(ctx context.Context, userID string) (*models.Merchant, error) {
	var m models.Merchant
	err := s.db.GetContext(ctx, &m, "SELECT * FROM merchants WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMerchantSettings updates the merchant-editable profile fields
func (s *Store) UpdateMerchantSettings(ctx context.Context, m *models.Merchant) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE merchants SET
			name = $1, description = $2, email = $3, phone = $4, whatsapp = $5,
			barrio = $6, city = $7, logo_url = $8, primary_color = $9, secondary_color = $10,
			mp_access_token = $11,
			accepts_cash = $12, accepts_transfer = $13, accepts_abitab = $14,
			updated_at = NOW()
		WHERE id = $15`,
		m.Name, m.Description, m.Email, m.Phone, m.Whatsapp,
		m.Barrio, m.City, m.LogoURL, m.PrimaryColor, m.SecondaryColor,
		m.MPAccessToken,
		m.AcceptsCash, m.AcceptsTransfer, m.AcceptsAbitab, m.ID)
	return err
}

// ListMerchants retrieves all merchants for the admin panel
func (s *Store) ListMerchants(ctx context.Context, limit, offset int) ([]models.Merchant, error) {
	var merchants []models.Merchant
	err := s.db.SelectContext(ctx, &merchants,
		"SELECT * FROM merchants ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	return merchants, err
}

// SetMerchantVerified flips the admin verification flag
func (s *Store) SetMerchantVerified(ctx context.Context, id string, verified bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE merchants SET is_verified = $1, updated_at = NOW() WHERE id = $2", verified, id)
	return err
}

// SetMerchantActive flips the tenant active flag
func (s *Store) SetMerchantActive(ctx context.Context, id string, active bool) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE merchants SET is_active = $1, updated_at = NOW() WHERE id = $2", active, id)
	return err
}

// ---- plans ----

// GetPlans retrieves all active subscription plans
func (s *Store) GetPlans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.SelectContext(ctx, &plans,
		"SELECT * FROM plans WHERE is_active = TRUE ORDER BY price_uyu")
	return plans, err
}

// ---- categories ----

// CreateCategory creates a new category
func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	return s.db.GetContext(ctx, c, `
		INSERT INTO categories (id, merchant_id, name, slug, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`,
		c.ID, c.MerchantID, c.Name, c.Slug, c.SortOrder, c.IsActive)
}

// ListCategories retrieves all categories for a merchant ordered for display
func (s *Store) ListCategories(ctx context.Context, merchantID string) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.SelectContext(ctx, &categories,
		"SELECT * FROM categories WHERE merchant_id = $1 ORDER BY sort_order, name", merchantID)
	return categories, err
}

// UpdateCategory updates a category's mutable fields, scoped to its merchant
func (s *Store) UpdateCategory(ctx context.Context, c *models.Category) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = $1, sort_order = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4 AND merchant_id = $5`,
		c.Name, c.SortOrder, c.IsActive, c.ID, c.MerchantID)
	return err
}

// DeleteCategory deletes a category, scoped to its merchant
func (s *Store) DeleteCategory(ctx context.Context, merchantID, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = $1 AND merchant_id = $2", id, merchantID)
	return err
}

// ---- products ----

// CreateProduct creates a new product
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return s.db.GetContext(ctx, p, `
		INSERT INTO products (id, merchant_id, category_id, name, slug, description,
			price_uyu, image_url, is_active, is_featured, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING *`,
		p.ID, p.MerchantID, p.CategoryID, p.Name, p.Slug, p.Description,
		p.PriceUYU, p.ImageURL, p.IsActive, p.IsFeatured, p.SortOrder)
}

// GetProductByID retrieves a product scoped to its merchant
func (s *Store) GetProductByID(ctx context.Context, merchantID, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p,
		"SELECT * FROM products WHERE id = $1 AND merchant_id = $2", id, merchantID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts retrieves all products for a merchant's dashboard
func (s *Store) ListProducts(ctx context.Context, merchantID string) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE merchant_id = $1 ORDER BY sort_order, name", merchantID)
	return products, err
}

// ListActiveProducts retrieves the storefront-visible products for a merchant
func (s *Store) ListActiveProducts(ctx context.Context, merchantID string) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products, `
		SELECT * FROM products
		WHERE merchant_id = $1 AND is_active = TRUE
		ORDER BY is_featured DESC, sort_order, name`, merchantID)
	return products, err
}

// UpdateProduct updates a product's mutable fields, scoped to its merchant
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE products SET
			category_id = $1, name = $2, description = $3, price_uyu = $4,
			image_url = $5, is_active = $6, is_featured = $7, sort_order = $8,
			updated_at = NOW()
		WHERE id = $9 AND merchant_id = $10`,
		p.CategoryID, p.Name, p.Description, p.PriceUYU,
		p.ImageURL, p.IsActive, p.IsFeatured, p.SortOrder, p.ID, p.MerchantID)
	return err
}

// DeleteProduct deletes a product, scoped to its merchant
func (s *Store) DeleteProduct(ctx context.Context, merchantID, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM products WHERE id = $1 AND merchant_id = $2", id, merchantID)
	return err
}

// ---- delivery zones ----

// CreateDeliveryZone creates a delivery zone
func (s *Store) CreateDeliveryZone(ctx context.Context, z *models.DeliveryZone) error {
	return s.db.GetContext(ctx, z, `
		INSERT INTO delivery_zones (id, merchant_id, name, barrio, delivery_cost_uyu, min_order_uyu, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`,
		z.ID, z.MerchantID, z.Name, z.Barrio, z.DeliveryCostUYU, z.MinOrderUYU, z.IsActive)
}

// ListDeliveryZones retrieves a merchant's delivery zones
func (s *Store) ListDeliveryZones(ctx context.Context, merchantID string) ([]models.DeliveryZone, error) {
	var zones []models.DeliveryZone
	err := s.db.SelectContext(ctx, &zones,
		"SELECT * FROM delivery_zones WHERE merchant_id = $1 ORDER BY barrio", merchantID)
	return zones, err
}

// UpdateDeliveryZone updates a delivery zone, scoped to its merchant
func (s *Store) UpdateDeliveryZone(ctx context.Context, z *models.DeliveryZone) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE delivery_zones SET name = $1, barrio = $2, delivery_cost_uyu = $3,
			min_order_uyu = $4, is_active = $5
		WHERE id = $6 AND merchant_id = $7`,
		z.Name, z.Barrio, z.DeliveryCostUYU, z.MinOrderUYU, z.IsActive, z.ID, z.MerchantID)
	return err
}

// DeleteDeliveryZone deletes a delivery zone, scoped to its merchant
func (s *Store) DeleteDeliveryZone(ctx context.Context, merchantID, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM delivery_zones WHERE id = $1 AND merchant_id = $2", id, merchantID)
	return err
}
