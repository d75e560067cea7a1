package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/inbalnitzani/Integrations/internal/models"
	appErrors "github.com/inbalnitzani/Integrations/pkg/errors"
)

const suppliersCacheKey = "integrations:suppliers"

type integrationRepository interface {
	List(ctx context.Context, filter models.IntegrationFilter) ([]models.Integration, int, error)
	ListAll(ctx context.Context, filter models.IntegrationFilter) ([]models.Integration, error)
	FindByID(ctx context.Context, id string) (*models.Integration, error)
	DistinctSuppliers(ctx context.Context) ([]string, error)
	Create(ctx context.Context, record *models.Integration) error
	Update(ctx context.Context, record *models.Integration) error
	Delete(ctx context.Context, id string) error
}

type supplierCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IntegrationRequest holds the payload for creating or updating a record.
// Name, type, supplier and description are required for persistence.
type IntegrationRequest struct {
	Name          string                 `json:"name" validate:"required"`
	Type          models.IntegrationType `json:"integration_type" validate:"required"`
	Supplier      string                 `json:"supplier" validate:"required"`
	Description   string                 `json:"description" validate:"required"`
	Tags          string                 `json:"tags"`
	APIDocsURL    string                 `json:"api_docs_url" validate:"omitempty,url"`
	ConfigExample string                 `json:"config_example"`
	LogoURL       string                 `json:"logo_url" validate:"omitempty,url"`
}

// IntegrationService handles catalog use-cases.
type IntegrationService struct {
	repo      integrationRepository
	cache     supplierCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIntegrationService constructs the integration service.
func NewIntegrationService(repo integrationRepository, cache supplierCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *IntegrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntegrationService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// List returns matching records and pagination metadata.
func (s *IntegrationService) List(ctx context.Context, filter models.IntegrationFilter) ([]models.Integration, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list integrations")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

// Get returns a single record by ID.
func (s *IntegrationService) Get(ctx context.Context, id string) (*models.Integration, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "integration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load integration")
	}
	return record, nil
}

// Suppliers returns the sorted distinct supplier set, cached with a short TTL.
func (s *IntegrationService) Suppliers(ctx context.Context) ([]string, error) {
	var cached []string
	if s.cache != nil {
		if err := s.cache.Get(ctx, suppliersCacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("supplier cache read failed", zap.Error(err))
		}
	}

	suppliers, err := s.repo.DistinctSuppliers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load suppliers")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, suppliersCacheKey, suppliers, s.cacheTTL); err != nil {
			s.logger.Warn("supplier cache write failed", zap.Error(err))
		}
	}
	return suppliers, nil
}

// Create inserts a new record stamped with the creating user as author.
func (s *IntegrationService) Create(ctx context.Context, req IntegrationRequest, authorID string) (*models.Integration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid integration payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown integration type")
	}

	record := &models.Integration{
		Name:          req.Name,
		Type:          req.Type,
		Supplier:      req.Supplier,
		Description:   req.Description,
		Tags:          req.Tags,
		APIDocsURL:    req.APIDocsURL,
		ConfigExample: req.ConfigExample,
		LogoURL:       req.LogoURL,
		Author:        authorID,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create integration")
	}

	s.invalidateSuppliers(ctx)
	return record, nil
}

// Update replaces the mutable fields of an existing record. Concurrent
// updates race with last-write-wins semantics; there is no version field.
func (s *IntegrationService) Update(ctx context.Context, id string, req IntegrationRequest) (*models.Integration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid integration payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown integration type")
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "integration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load integration")
	}

	record.Name = req.Name
	record.Type = req.Type
	record.Supplier = req.Supplier
	record.Description = req.Description
	record.Tags = req.Tags
	record.APIDocsURL = req.APIDocsURL
	record.ConfigExample = req.ConfigExample
	record.LogoURL = req.LogoURL

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update integration")
	}

	s.invalidateSuppliers(ctx)
	return record, nil
}

// Delete removes a record permanently.
func (s *IntegrationService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "integration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load integration")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete integration")
	}

	s.invalidateSuppliers(ctx)
	return nil
}

func (s *IntegrationService) invalidateSuppliers(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, suppliersCacheKey); err != nil {
		s.logger.Warn("supplier cache invalidation failed", zap.Error(err))
	}
}
