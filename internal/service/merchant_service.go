package service

import (
	"context"
	"fmt"
	"strings"

	"storefront-service/internal/auth"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MerchantService handles registration, login, settings, and admin oversight
type MerchantService struct {
	store  *store.Store
	tokens *auth.Manager
	logger *zap.Logger
}

// NewMerchantService creates a new merchant service
func NewMerchantService(store *store.Store, tokens *auth.Manager) *MerchantService {
	return &MerchantService{
		store:  store,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// RegisterRequest is the merchant signup payload
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	MerchantName string `json:"merchantName" binding:"required"`
	Whatsapp     string `json:"whatsapp,omitempty"`
	Barrio       string `json:"barrio,omitempty"`
}

// RegisterResult identifies the created account
type RegisterResult struct {
	UserID     string `json:"userId"`
	MerchantID string `json:"merchantId"`
	Slug       string `json:"slug"`
}

// Register creates the auth identity and the merchant profile as one
// unit: if the merchant row cannot be created the identity rolls back too.
func (s *MerchantService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResult, error) {
	ctx, span := util.StartSpan(ctx, "MerchantService.Register")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || req.MerchantName == "" {
		return nil, fmt.Errorf("%w: email, password and merchant name are required", ErrValidation)
	}

	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleMerchant,
	}
	merchant := &models.Merchant{
		ID:             uuid.New().String(),
		Name:           req.MerchantName,
		Slug:           uniqueSlug(req.MerchantName),
		Email:          nullString(email),
		Whatsapp:       nullString(req.Whatsapp),
		Barrio:         nullString(req.Barrio),
		City:           "Montevideo",
		Currency:       "UYU",
		PrimaryColor:   "#16a34a",
		SecondaryColor: "#f97316",
		IsActive:       true,
	}

	if err := s.store.CreateAccount(ctx, user, merchant); err != nil {
		return nil, fmt.Errorf("failed to register merchant: %w", err)
	}

	util.MerchantsRegisteredTotal.Inc()
	s.logger.Info("Merchant registered",
		zap.String("merchant_id", merchant.ID),
		zap.String("slug", merchant.Slug))

	return &RegisterResult{
		UserID:     user.ID,
		MerchantID: merchant.ID,
		Slug:       merchant.Slug,
	}, nil
}

// LoginResult carries the session token and the merchant profile, when any
type LoginResult struct {
	Token    string           `json:"token"`
	Role     string           `json:"role"`
	Merchant *models.Merchant `json:"merchant,omitempty"`
}

// Login verifies credentials and issues a session token
func (s *MerchantService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", ErrValidation)
	}

	var merchantID string
	var merchant *models.Merchant
	if user.Role == auth.RoleMerchant {
		merchant, err = s.store.GetMerchantByUserID(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load merchant: %w", err)
		}
		if merchant != nil {
			merchantID = merchant.ID
		}
	}

	token, err := s.tokens.IssueToken(user.ID, merchantID, user.Role)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, Role: user.Role, Merchant: merchant}, nil
}

// SettingsRequest carries the merchant-editable profile fields
type SettingsRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description,omitempty"`
	Email           string `json:"email,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Whatsapp        string `json:"whatsapp,omitempty"`
	Barrio          string `json:"barrio,omitempty"`
	City            string `json:"city,omitempty"`
	LogoURL         string `json:"logo_url,omitempty"`
	PrimaryColor    string `json:"primary_color,omitempty"`
	SecondaryColor  string `json:"secondary_color,omitempty"`
	MPAccessToken   string `json:"mp_access_token,omitempty"`
	AcceptsCash     bool   `json:"accepts_cash"`
	AcceptsTransfer bool   `json:"accepts_transfer"`
	AcceptsAbitab   bool   `json:"accepts_abitab"`
}

// UpdateSettings mutates a merchant's profile and payment configuration
func (s *MerchantService) UpdateSettings(ctx context.Context, merchantID string, req *SettingsRequest) (*models.Merchant, error) {
	merchant, err := s.store.GetMerchantByID(ctx, merchantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load merchant: %w", err)
	}
	if merchant == nil {
		return nil, fmt.Errorf("%w: merchant %s", ErrNotFound, merchantID)
	}

	merchant.Name = req.Name
	merchant.Description = nullString(req.Description)
	merchant.Email = nullString(req.Email)
	merchant.Phone = nullString(req.Phone)
	merchant.Whatsapp = nullString(req.Whatsapp)
	merchant.Barrio = nullString(req.Barrio)
	if req.City != "" {
		merchant.City = req.City
	}
	merchant.LogoURL = nullString(req.LogoURL)
	if req.PrimaryColor != "" {
		merchant.PrimaryColor = req.PrimaryColor
	}
	if req.SecondaryColor != "" {
		merchant.SecondaryColor = req.SecondaryColor
	}
	// An empty token in the request clears the stored credential.
	merchant.MPAccessToken = nullString(req.MPAccessToken)
	merchant.AcceptsCash = req.AcceptsCash
	merchant.AcceptsTransfer = req.AcceptsTransfer
	merchant.AcceptsAbitab = req.AcceptsAbitab

	if err := s.store.UpdateMerchantSettings(ctx, merchant); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	return merchant, nil
}

// GetMerchant retrieves a merchant profile by id
func (s *MerchantService) GetMerchant(ctx context.Context, merchantID string) (*models.Merchant, error) {
	merchant, err := s.store.GetMerchantByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, fmt.Errorf("%w: merchant %s", ErrNotFound, merchantID)
	}
	return merchant, nil
}

// ListMerchants retrieves merchants for the admin panel
func (s *MerchantService) ListMerchants(ctx context.Context, limit, offset int) ([]models.Merchant, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListMerchants(ctx, limit, offset)
}

// SetMerchantVerified toggles the admin verification flag
func (s *MerchantService) SetMerchantVerified(ctx context.Context, merchantID string, verified bool) error {
	return s.store.SetMerchantVerified(ctx, merchantID, verified)
}

// SetMerchantActive toggles whether the tenant's storefront is live
func (s *MerchantService) SetMerchantActive(ctx context.Context, merchantID string, active bool) error {
	return s.store.SetMerchantActive(ctx, merchantID, active)
}

// GetPlans retrieves the active subscription plans
func (s *MerchantService) GetPlans(ctx context.Context) ([]models.Plan, error) {
	return s.store.GetPlans(ctx)
}
