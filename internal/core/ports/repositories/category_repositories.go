package repositories

import (
	"context"

	"github.com/fintrove/family_finance_app/internal/core/domain"
)

// CategoryRepository persists income/expense categories.
type CategoryRepository interface {
	SaveCategory(ctx context.Context, category domain.Category) error
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	ListCategories(ctx context.Context, ownerUserID string, familyID *string, kind *domain.CategoryKind) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) error
	// DeleteCategory fails with ErrConflict while transactions or budgets
	// still reference the category (RESTRICT).
	DeleteCategory(ctx context.Context, categoryID string) error
}
