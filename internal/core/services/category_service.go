package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fintrove/family_finance_app/internal/apperrors"
	"github.com/fintrove/family_finance_app/internal/core/domain"
	portsrepo "github.com/fintrove/family_finance_app/internal/core/ports/repositories"
	portssvc "github.com/fintrove/family_finance_app/internal/core/ports/services"
	"github.com/fintrove/family_finance_app/internal/dto"
)

// categoryService manages income/expense categories. System categories (nil
// owner) are read-only for everyone.
type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepository
	permission   portssvc.PermissionSvcFacade
}

// NewCategoryService creates a new category service.
func NewCategoryService(categoryRepo portsrepo.CategoryRepository, permission portssvc.PermissionSvcFacade) portssvc.CategorySvcFacade {
	return &categoryService{categoryRepo: categoryRepo, permission: permission}
}

var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, userID string) (*domain.Category, error) {
	if req.FamilyID != nil {
		if err := s.permission.CheckRead(ctx, userID, portssvc.ResourceScope{FamilyID: req.FamilyID}); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	category := domain.Category{
		CategoryID:  uuid.NewString(),
		OwnerUserID: &userID,
		FamilyID:    req.FamilyID,
		Kind:        req.Kind,
		Name:        req.Name,
		Icon:        req.Icon,
		Color:       req.Color,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		s.LogError(ctx, err, "Failed to save category", slog.String("category_id", category.CategoryID))
		return nil, err
	}

	s.LogInfo(ctx, "Category created", slog.String("category_id", category.CategoryID))
	return &category, nil
}

func (s *categoryService) GetCategory(ctx context.Context, categoryID string, userID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategoryRead(ctx, category, userID); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, userID string, familyID *string, kind *domain.CategoryKind) ([]domain.Category, error) {
	if familyID != nil {
		if err := s.permission.CheckRead(ctx, userID, portssvc.ResourceScope{FamilyID: familyID}); err != nil {
			return nil, err
		}
	}
	categories, err := s.categoryRepo.ListCategories(ctx, userID, familyID, kind)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories", slog.String("user_id", userID))
		return nil, err
	}
	return categories, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID string, req dto.UpdateCategoryRequest, userID string) (*domain.Category, error) {
	category, err := s.editableCategory(ctx, categoryID, userID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil && *req.Name != category.Name {
		category.Name = *req.Name
		updated = true
	}
	if req.Icon != nil && *req.Icon != category.Icon {
		category.Icon = *req.Icon
		updated = true
	}
	if req.Color != nil && *req.Color != category.Color {
		category.Color = *req.Color
		updated = true
	}
	if !updated {
		return category, nil
	}

	category.LastUpdatedAt = time.Now().UTC()
	category.LastUpdatedBy = userID
	if err := s.categoryRepo.UpdateCategory(ctx, *category); err != nil {
		s.LogError(ctx, err, "Failed to update category", slog.String("category_id", categoryID))
		return nil, err
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID string, userID string) error {
	if _, err := s.editableCategory(ctx, categoryID, userID); err != nil {
		return err
	}
	if err := s.categoryRepo.DeleteCategory(ctx, categoryID); err != nil {
		s.LogError(ctx, err, "Failed to delete category", slog.String("category_id", categoryID))
		return err
	}
	s.LogInfo(ctx, "Category deleted", slog.String("category_id", categoryID))
	return nil
}

func (s *categoryService) checkCategoryRead(ctx context.Context, category *domain.Category, userID string) error {
	if category.OwnerUserID == nil {
		return nil // system category
	}
	if *category.OwnerUserID == userID {
		return nil
	}
	if category.FamilyID != nil {
		if err := s.permission.CheckRead(ctx, userID,
			portssvc.ResourceScope{OwnerUserID: *category.OwnerUserID, FamilyID: category.FamilyID}); err == nil {
			return nil
		}
	}
	return apperrors.ErrNotFound
}

// editableCategory loads the category and checks mutation rights: its creator
// always may; for family categories an admin also may. System rows never.
func (s *categoryService) editableCategory(ctx context.Context, categoryID, userID string) (*domain.Category, error) {
	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.OwnerUserID == nil {
		return nil, fmt.Errorf("%w: system categories are read-only", apperrors.ErrForbidden)
	}
	if *category.OwnerUserID == userID {
		return category, nil
	}
	if category.FamilyID != nil {
		if _, err := s.permission.RequireAdministrative(ctx, *category.FamilyID, userID); err == nil {
			return category, nil
		}
	}
	return nil, apperrors.ErrNotFound
}
