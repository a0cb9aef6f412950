package services

import (
	"context"

	"github.com/fintrove/family_finance_app/internal/core/domain"
	"github.com/fintrove/family_finance_app/internal/dto"
)

// CategorySvcFacade manages income/expense categories.
type CategorySvcFacade interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, userID string) (*domain.Category, error)
	GetCategory(ctx context.Context, categoryID string, userID string) (*domain.Category, error)
	ListCategories(ctx context.Context, userID string, familyID *string, kind *domain.CategoryKind) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, req dto.UpdateCategoryRequest, userID string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, categoryID string, userID string) error
}
